package seed

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/okian/applytrack/internal/domain/dates"
)

// Day offsets from today that generated dates fall between.
const (
	deadlineMin = -5
	deadlineMax = 75
	taskDueMin  = -14
	taskDueMax  = 45

	doneChance     = 0.3
	submitEvery    = 3
	maxRating      = 5
	pcgIncrement   = 0x9e3779b97f4a7c15
	platformCommon = "Common App"
)

// Plan is everything one run creates.
type Plan struct {
	Owner string     `json:"owner"`
	Today string     `json:"today"`
	Items []Item     `json:"items"`
	Loose []TaskSeed `json:"loose_tasks"`
}

// Item is one school with its list entry, application and tasks.
type Item struct {
	School      SchoolSeed `json:"school"`
	Bucket      string     `json:"ranking_bucket,omitempty"`
	Status      string     `json:"status"`
	Prestige    int        `json:"prestige"`
	Application AppSeed    `json:"application"`
	Tasks       []TaskSeed `json:"tasks"`
}

// SchoolSeed is a catalog school.
type SchoolSeed struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location string   `json:"location_text"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
}

// AppSeed is an application. Submit moves it to Submitted after creation.
type AppSeed struct {
	Platform     string `json:"platform"`
	DecisionType string `json:"decision_type"`
	Deadline     string `json:"deadline_date"`
	Submit       bool   `json:"submit"`
}

// TaskSeed is a task. Done tasks are created open and then completed.
type TaskSeed struct {
	Title string `json:"title"`
	Due   string `json:"due_date"`
	Done  bool   `json:"done"`
}

// Generate builds a plan relative to today. The same seed and today always
// give the same plan, apart from the school IDs.
func Generate(cfg *Config, today time.Time) *Plan {
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewPCG(seed, seed^pcgIncrement))

	owner := cfg.Owner
	if owner == "" {
		owner = "seed-" + uuid.NewString()[:8]
	}

	n := min(max(cfg.Schools, 0), len(catalog))
	plan := &Plan{
		Owner: owner,
		Today: dates.ISODate(today),
		Items: make([]Item, 0, n),
	}

	due := func(lo, hi int) string {
		return dates.ISODate(dates.AddDays(today, lo+rng.IntN(hi-lo+1)))
	}

	for i, idx := range rng.Perm(len(catalog))[:n] {
		c := catalog[idx]
		school := SchoolSeed{ID: uuid.NewString(), Name: c.Name, Location: c.Location}
		if !c.NoCoords {
			lat, lng := c.Lat, c.Lng
			school.Lat, school.Lng = &lat, &lng
		}

		item := Item{
			School:   school,
			Bucket:   buckets[rng.IntN(len(buckets))],
			Status:   listStatuses[rng.IntN(len(listStatuses))],
			Prestige: 1 + rng.IntN(maxRating),
			Application: AppSeed{
				Platform:     platformCommon,
				DecisionType: decisionTypes[rng.IntN(len(decisionTypes))],
				Deadline:     due(deadlineMin, deadlineMax),
				Submit:       i%submitEvery == 0,
			},
		}
		for j := 0; j < cfg.TasksPerApp; j++ {
			item.Tasks = append(item.Tasks, TaskSeed{
				Title: taskTitles[(i+j)%len(taskTitles)],
				Due:   due(taskDueMin, taskDueMax),
				Done:  rng.Float64() < doneChance,
			})
		}
		plan.Items = append(plan.Items, item)
	}

	plan.Loose = []TaskSeed{
		{Title: "Update resume", Due: due(taskDueMin, taskDueMax)},
		{Title: "Research scholarships", Due: due(taskDueMin, taskDueMax), Done: true},
	}
	return plan
}

// tasks returns every task in the plan.
func (p *Plan) tasks() []TaskSeed {
	out := append([]TaskSeed(nil), p.Loose...)
	for _, it := range p.Items {
		out = append(out, it.Tasks...)
	}
	return out
}

// Expected are the dashboard numbers a fresh owner should see after the
// plan is applied.
type Expected struct {
	Colleges     int
	Applications int
	OpenTasks    int
	Overdue      int
	Completed    int
	Submitted    int
	Pins         int
	Missing      int
}

// Expect computes the dashboard numbers of the plan.
func (p *Plan) Expect() Expected {
	e := Expected{Colleges: len(p.Items), Applications: len(p.Items)}
	for _, it := range p.Items {
		if it.Application.Submit {
			e.Submitted++
		}
		if it.School.Lat != nil {
			e.Pins++
		} else {
			e.Missing++
		}
	}
	for _, t := range p.tasks() {
		if t.Done {
			e.Completed++
			continue
		}
		e.OpenTasks++
		if t.Due < p.Today {
			e.Overdue++
		}
	}
	return e
}

// OpenDuesBetween counts open tasks due in [from, to].
func (p *Plan) OpenDuesBetween(from, to string) int {
	n := 0
	for _, t := range p.tasks() {
		if !t.Done && t.Due >= from && t.Due <= to {
			n++
		}
	}
	return n
}

// DeadlinesBetween counts application deadlines in [from, to].
func (p *Plan) DeadlinesBetween(from, to string) int {
	n := 0
	for _, it := range p.Items {
		if d := it.Application.Deadline; d >= from && d <= to {
			n++
		}
	}
	return n
}

// BusiestOpenDay is the day with the most open tasks due, and that count.
func (p *Plan) BusiestOpenDay() (string, int) {
	counts := map[string]int{}
	for _, t := range p.tasks() {
		if !t.Done {
			counts[t.Due]++
		}
	}
	best, n := "", 0
	for day, c := range counts {
		if c > n || (c == n && day < best) {
			best, n = day, c
		}
	}
	return best, n
}
