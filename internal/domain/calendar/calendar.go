// Package calendar builds the six-week dashboard grid and tallies task due
// dates and application deadlines per day.
package calendar

import (
	"strings"
	"time"

	"github.com/okian/applytrack/internal/domain/dates"
	"github.com/okian/applytrack/internal/domain/types"
)

// GridDays is the number of cells in a grid: six full Sunday-start weeks.
const GridDays = 6 * dates.DaysPerWeek

// ViewMode selects how the grid is anchored.
type ViewMode string

const (
	// ModeMonth anchors the grid on the first of a month.
	ModeMonth ViewMode = "month"
	// ModeUpcoming anchors the grid on the current week.
	ModeUpcoming ViewMode = "upcoming"
)

// ParseViewMode accepts "month" (also the empty string) and "upcoming".
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeMonth:
		return ModeMonth, nil
	case ModeUpcoming:
		return ModeUpcoming, nil
	default:
		return "", types.Invalid("calendar.ParseViewMode", "unknown view mode %q", s)
	}
}

// Counts is the per-day tally.
type Counts struct {
	TasksDue int `json:"tasks_due"`
	AppsDue  int `json:"apps_due"`
}

// Input is a snapshot of the records a grid is built from.
type Input struct {
	Mode ViewMode
	// Month is any instant in the anchor month. Required in month mode.
	Month time.Time
	// Now is the reference instant. Required in both modes.
	Now time.Time

	TaskDues     []string
	AppDeadlines []string
}

// Grid is a 42-day window with sparse per-day counts.
type Grid struct {
	Mode  ViewMode
	Month time.Time // first of the anchor month (now's month in upcoming mode)
	Start time.Time
	Days  []time.Time
	// Counts is keyed by ISO date and only holds days with records.
	Counts map[string]Counts
	// Ignored counts dates that were malformed or outside the grid.
	Ignored int
}

// Build computes the grid for in. It never mutates in.
func Build(in Input) (Grid, error) {
	const op = "calendar.Build"
	mode := in.Mode
	if mode == "" {
		mode = ModeMonth
	}
	if in.Now.IsZero() {
		return Grid{}, types.Invalid(op, "missing reference date")
	}

	var anchor time.Time
	switch mode {
	case ModeMonth:
		if in.Month.IsZero() {
			return Grid{}, types.Invalid(op, "missing anchor month")
		}
		anchor = dates.StartOfMonth(in.Month)
	case ModeUpcoming:
		anchor = dates.StartOfDay(in.Now)
	default:
		return Grid{}, types.Invalid(op, "unknown view mode %q", mode)
	}

	start := dates.SundayOnOrBefore(anchor)
	g := Grid{
		Mode:   mode,
		Month:  dates.StartOfMonth(anchor),
		Start:  start,
		Days:   make([]time.Time, GridDays),
		Counts: make(map[string]Counts),
	}
	inSpan := make(map[string]struct{}, GridDays)
	for i := range GridDays {
		d := dates.AddDays(start, i)
		g.Days[i] = d
		inSpan[dates.ISODate(d)] = struct{}{}
	}

	for _, iso := range in.TaskDues {
		key := strings.TrimSpace(iso)
		if _, ok := inSpan[key]; !ok {
			g.Ignored++
			continue
		}
		c := g.Counts[key]
		c.TasksDue++
		g.Counts[key] = c
	}
	for _, iso := range in.AppDeadlines {
		key := strings.TrimSpace(iso)
		if _, ok := inSpan[key]; !ok {
			g.Ignored++
			continue
		}
		c := g.Counts[key]
		c.AppsDue++
		g.Counts[key] = c
	}
	return g, nil
}

// Span returns the inclusive ISO bounds of the grid.
func (g Grid) Span() (from, to string) {
	if len(g.Days) == 0 {
		return "", ""
	}
	return dates.ISODate(g.Days[0]), dates.ISODate(g.Days[len(g.Days)-1])
}

// CountsFor returns the tally of an ISO day, zero when absent.
func (g Grid) CountsFor(iso string) Counts {
	return g.Counts[iso]
}

// Recorded is the number of records counted into the grid.
func (g Grid) Recorded() int {
	n := 0
	for _, c := range g.Counts {
		n += c.TasksDue + c.AppsDue
	}
	return n
}

// Cell is one rendered grid day.
type Cell struct {
	Date     string `json:"date"`
	Day      int    `json:"day"`
	Weekday  int    `json:"weekday"`
	InMonth  bool   `json:"in_month"`
	Today    bool   `json:"today"`
	Selected bool   `json:"selected"`
	Counts
}

// Cells annotates the grid days with display flags. Days outside the
// anchor month are flagged only in month mode. selected is an ISO date and
// may be empty.
func (g Grid) Cells(now time.Time, selected string) []Cell {
	today := dates.ISODate(now)
	cells := make([]Cell, len(g.Days))
	for i, d := range g.Days {
		iso := dates.ISODate(d)
		inMonth := true
		if g.Mode == ModeMonth {
			inMonth = d.Year() == g.Month.Year() && d.Month() == g.Month.Month()
		}
		cells[i] = Cell{
			Date:     iso,
			Day:      d.Day(),
			Weekday:  int(d.Weekday()),
			InMonth:  inMonth,
			Today:    iso == today,
			Selected: selected != "" && iso == selected,
			Counts:   g.Counts[iso],
		}
	}
	return cells
}
