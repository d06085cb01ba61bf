package seed_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/applytrack/internal/adapters/http/api"
	"github.com/okian/applytrack/internal/adapters/repository"
	service "github.com/okian/applytrack/internal/app"
	"github.com/okian/applytrack/internal/seed"
	"github.com/okian/applytrack/pkg/logger"
)

var fixedNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func newServer(t *testing.T) *httptest.Server {
	ctx := context.Background()
	clock := func() time.Time { return fixedNow }
	store, err := repository.Open(ctx, filepath.Join(t.TempDir(), "seed.db"), repository.WithClock(clock))
	So(err, ShouldBeNil)
	t.Cleanup(func() { _ = store.Close() })

	svc := service.New(
		service.WithStore(store),
		service.WithClock(clock),
		service.WithLocation(time.UTC),
		service.WithLogger(logger.Nop()),
	)
	So(svc.Start(ctx), ShouldBeNil)

	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		cfg := &seed.Config{Owner: "demo", Schools: 9, TasksPerApp: 3, Seed: 42}

		Convey("When generating twice with the same seed", func() {
			a := seed.Generate(cfg, fixedNow)
			b := seed.Generate(cfg, fixedNow)

			Convey("Then the plans match apart from IDs", func() {
				So(a.Owner, ShouldEqual, "demo")
				So(a.Today, ShouldEqual, "2024-03-15")
				So(a.Items, ShouldHaveLength, 9)
				for i := range a.Items {
					So(a.Items[i].School.Name, ShouldEqual, b.Items[i].School.Name)
					So(a.Items[i].Application, ShouldResemble, b.Items[i].Application)
					So(a.Items[i].Tasks, ShouldResemble, b.Items[i].Tasks)
					So(a.Items[i].School.ID, ShouldNotEqual, b.Items[i].School.ID)
				}
			})

			Convey("Then every date falls inside its window", func() {
				for _, it := range a.Items {
					So(it.Application.Deadline, ShouldBeBetweenOrEqual, "2024-03-10", "2024-05-29")
					So(it.Tasks, ShouldHaveLength, 3)
					for _, task := range it.Tasks {
						So(task.Due, ShouldBeBetweenOrEqual, "2024-03-01", "2024-04-29")
					}
				}
			})

			Convey("Then the expectations add up", func() {
				e := a.Expect()
				So(e.Colleges, ShouldEqual, 9)
				So(e.Applications, ShouldEqual, 9)
				So(e.Submitted, ShouldEqual, 3)
				So(e.Pins+e.Missing, ShouldEqual, 9)
				So(e.OpenTasks+e.Completed, ShouldEqual, 9*3+2)
				So(e.Overdue, ShouldBeLessThanOrEqualTo, e.OpenTasks)
			})
		})

		Convey("When asking for more schools than the catalog holds", func() {
			cfg.Schools = 1000
			cfg.Owner = ""
			p := seed.Generate(cfg, fixedNow)

			Convey("Then the plan is capped and gets a fresh owner", func() {
				So(len(p.Items), ShouldBeLessThan, 1000)
				So(len(p.Items), ShouldBeGreaterThan, 0)
				So(p.Owner, ShouldStartWith, "seed-")
			})
		})
	})
}

func TestPlanQueries(t *testing.T) {
	Convey("Given a hand-written plan", t, func() {
		p := &seed.Plan{
			Today: "2024-03-15",
			Items: []seed.Item{{
				Application: seed.AppSeed{Deadline: "2024-03-20"},
				Tasks: []seed.TaskSeed{
					{Title: "a", Due: "2024-03-10"},
					{Title: "b", Due: "2024-03-18"},
					{Title: "c", Due: "2024-03-18", Done: true},
				},
			}},
			Loose: []seed.TaskSeed{{Title: "d", Due: "2024-03-18"}},
		}

		So(p.OpenDuesBetween("2024-03-01", "2024-03-31"), ShouldEqual, 3)
		So(p.OpenDuesBetween("2024-03-11", "2024-03-17"), ShouldEqual, 0)
		So(p.DeadlinesBetween("2024-03-20", "2024-03-20"), ShouldEqual, 1)

		day, n := p.BusiestOpenDay()
		So(day, ShouldEqual, "2024-03-18")
		So(n, ShouldEqual, 2)

		e := p.Expect()
		So(e.OpenTasks, ShouldEqual, 3)
		So(e.Overdue, ShouldEqual, 1)
		So(e.Completed, ShouldEqual, 1)
		So(e.Missing, ShouldEqual, 1)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running server", t, func() {
		srv := newServer(t)
		out := filepath.Join(t.TempDir(), "plans", "plan.json")
		cfg := &seed.Config{
			BaseURL:     srv.URL,
			Owner:       "demo",
			Schools:     8,
			TasksPerApp: 3,
			Workers:     4,
			Timeout:     5 * time.Second,
			Seed:        7,
			OutputFile:  out,
		}

		Convey("When seeding a fresh owner", func() {
			stats, err := seed.Run(context.Background(), cfg)

			Convey("Then everything is created and verified", func() {
				So(err, ShouldBeNil)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Schools, ShouldEqual, 8)
				So(stats.Applications, ShouldEqual, 8)
				So(stats.Tasks, ShouldEqual, 8*3+2)
				So(stats.Checks, ShouldBeGreaterThan, 10)
			})

			Convey("Then the plan is saved", func() {
				data, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				var plan seed.Plan
				So(json.Unmarshal(data, &plan), ShouldBeNil)
				So(plan.Owner, ShouldEqual, "demo")
				So(plan.Today, ShouldEqual, "2024-03-15")
				So(plan.Items, ShouldHaveLength, 8)
			})

			Convey("Then seeding the same owner again fails verification", func() {
				cfg.OutputFile = ""
				_, err := seed.Run(context.Background(), cfg)
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "overview colleges")
			})
		})

		Convey("When the server is unhealthy", func() {
			bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			}))
			defer bad.Close()
			cfg.BaseURL = bad.URL

			_, err := seed.Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "health check")
		})
	})
}
