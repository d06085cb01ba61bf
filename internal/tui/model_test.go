package tui_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/applytrack/internal/app"
	"github.com/okian/applytrack/internal/domain/calendar"
	"github.com/okian/applytrack/internal/domain/generation"
	"github.com/okian/applytrack/internal/domain/model"
	"github.com/okian/applytrack/internal/domain/progress"
	"github.com/okian/applytrack/internal/domain/urgency"
	"github.com/okian/applytrack/internal/tui"
)

type fakeSource struct {
	mu   sync.Mutex
	now  time.Time
	fail error
}

func (f *fakeSource) err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail
}

func (f *fakeSource) setFail(err error) {
	f.mu.Lock()
	f.fail = err
	f.mu.Unlock()
}

func (f *fakeSource) Now() time.Time { return f.now }

func (f *fakeSource) Overview(_ context.Context, _ string) (*service.Overview, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	return &service.Overview{
		Today:    "2024-03-15",
		Colleges: 2,
		Due: urgency.Buckets{
			Overdue: []model.Task{{ID: "t1", Title: "Request transcripts"}},
		},
	}, nil
}

func (f *fakeSource) Calendar(_ context.Context, _ string, mode calendar.ViewMode, month, selected string) (*service.CalendarView, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	if mode == calendar.ModeUpcoming {
		return &service.CalendarView{Mode: mode, Month: "2024-03", From: "2024-03-10", To: "2024-04-20", Selected: selected}, nil
	}
	return &service.CalendarView{
		Mode:     mode,
		Month:    month,
		Selected: selected,
		Days: []calendar.Cell{
			{Date: month + "-01", Day: 1, InMonth: true, Counts: calendar.Counts{TasksDue: 1}},
		},
	}, nil
}

func (f *fakeSource) Agenda(_ context.Context, _ string, day string) (*service.AgendaView, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	return &service.AgendaView{
		Day: day,
		Tasks: []service.AgendaTask{
			{Task: model.Task{ID: "t2", Title: "Draft essay"}, Urgency: urgency.Soon, DueLabel: "due in 3d"},
		},
	}, nil
}

func (f *fakeSource) Progress(_ context.Context, _ string) (*service.ProgressView, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	points := make([]progress.Point, progress.Weeks)
	points[progress.Weeks-1] = progress.Point{Week: "3/11", WeekStart: "2024-03-11", TasksCompleted: 2, ApplicationsSubmitted: 1}
	return &service.ProgressView{Since: "2023-12-29", Points: points}, nil
}

// collect runs cmd and flattens batches into the messages they produce.
// Spinner ticks are skipped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	case spinner.TickMsg:
		return nil
	}
	return []tea.Msg{msg}
}

func deliver(m *tui.Model, msgs []tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func press(m *tui.Model, k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func newFake() *fakeSource {
	return &fakeSource{now: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
}

func TestDashboardLoad(t *testing.T) {
	Convey("Given a dashboard over a source", t, func() {
		src := newFake()
		m := tui.New(src, tui.WithOwner("me"))

		Convey("It starts on today in month mode", func() {
			So(m.Selected(), ShouldEqual, "2024-03-15")
			So(m.Month(), ShouldEqual, "2024-03")
			So(m.Mode(), ShouldEqual, calendar.ModeMonth)
		})

		Convey("When the initial loads complete", func() {
			deliver(m, collect(m.Init()))

			Convey("Then every panel is filled", func() {
				So(m.Loading(), ShouldBeFalse)
				So(m.Err(), ShouldBeNil)
				So(m.Calendar().Month, ShouldEqual, "2024-03")
				So(m.Calendar().Selected, ShouldEqual, "2024-03-15")
				So(m.Agenda().Day, ShouldEqual, "2024-03-15")
				So(m.Overview().Colleges, ShouldEqual, 2)
				So(m.Progress().Points, ShouldHaveLength, progress.Weeks)
			})

			Convey("Then the view renders them", func() {
				out := m.View()
				So(out, ShouldContainSubstring, "March 2024")
				So(out, ShouldContainSubstring, "Draft essay")
				So(out, ShouldContainSubstring, "Overdue (1)")
				So(out, ShouldContainSubstring, "Request transcripts")
				So(out, ShouldContainSubstring, "3/11")
				So(out, ShouldContainSubstring, "2 colleges")
			})
		})

		Convey("When the source fails", func() {
			src.setFail(errors.New("database is locked"))
			deliver(m, collect(m.Init()))

			So(m.Err(), ShouldNotBeNil)
			So(m.View(), ShouldContainSubstring, "database is locked")

			Convey("Then a refresh recovers", func() {
				src.setFail(nil)
				deliver(m, collect(press(m, "r")))
				So(m.Err(), ShouldBeNil)
				So(m.Calendar(), ShouldNotBeNil)
			})
		})
	})
}

func TestDashboardNavigation(t *testing.T) {
	Convey("Given a loaded dashboard", t, func() {
		m := tui.New(newFake())
		deliver(m, collect(m.Init()))

		Convey("When paging back a month", func() {
			deliver(m, collect(press(m, "[")))

			So(m.Month(), ShouldEqual, "2024-02")
			So(m.Selected(), ShouldEqual, "2024-02-01")
			So(m.Calendar().Month, ShouldEqual, "2024-02")
			So(m.Calendar().Selected, ShouldEqual, "2024-02-01")

			Convey("Then stepping off the first day pages again", func() {
				deliver(m, collect(press(m, "left")))
				So(m.Selected(), ShouldEqual, "2024-01-31")
				So(m.Month(), ShouldEqual, "2024-01")
				So(m.Calendar().Month, ShouldEqual, "2024-01")
				So(m.Agenda().Day, ShouldEqual, "2024-01-31")
			})
		})

		Convey("When moving within the month", func() {
			deliver(m, collect(press(m, "down")))
			So(m.Selected(), ShouldEqual, "2024-03-22")
			So(m.Month(), ShouldEqual, "2024-03")
			So(m.Agenda().Day, ShouldEqual, "2024-03-22")
		})

		Convey("When switching to upcoming mode", func() {
			deliver(m, collect(press(m, "v")))
			So(m.Mode(), ShouldEqual, calendar.ModeUpcoming)
			So(m.Calendar().From, ShouldEqual, "2024-03-10")

			Convey("Then the selection stays inside the span", func() {
				deliver(m, collect(press(m, "up")))
				So(m.Selected(), ShouldEqual, "2024-03-15")
				deliver(m, collect(press(m, "right")))
				So(m.Selected(), ShouldEqual, "2024-03-16")
			})

			Convey("Then month paging is disabled", func() {
				So(press(m, "]"), ShouldBeNil)
				So(m.Month(), ShouldEqual, "2024-03")
			})
		})

		Convey("When jumping back to today", func() {
			deliver(m, collect(press(m, "]")))
			deliver(m, collect(press(m, "t")))
			So(m.Selected(), ShouldEqual, "2024-03-15")
			So(m.Calendar().Month, ShouldEqual, "2024-03")
		})

		Convey("When toggling help", func() {
			So(m.View(), ShouldNotContainSubstring, "prev month")
			press(m, "?")
			So(m.View(), ShouldContainSubstring, "prev month")
		})

		Convey("When quitting", func() {
			cmd := press(m, "q")
			So(cmd, ShouldNotBeNil)
			So(cmd(), ShouldResemble, tea.QuitMsg{})
		})
	})
}

func TestDashboardStaleLoads(t *testing.T) {
	Convey("Given a dashboard with its own tracker", t, func() {
		tracker := generation.New()
		m := tui.New(newFake(), tui.WithTracker(tracker))
		deliver(m, collect(m.Init()))
		So(tracker.Stale(), ShouldEqual, 0)

		first := collect(press(m, "]"))
		second := collect(press(m, "]"))

		Convey("When the newer loads finish first", func() {
			deliver(m, second)
			deliver(m, first)

			Convey("Then the older results are dropped", func() {
				So(m.Calendar().Month, ShouldEqual, "2024-05")
				So(m.Agenda().Day, ShouldEqual, "2024-05-01")
				So(tracker.Stale(), ShouldEqual, 2)
				So(m.Loading(), ShouldBeFalse)
			})
		})

		Convey("When the older loads finish first", func() {
			deliver(m, first)

			Convey("Then they are still dropped", func() {
				So(m.Calendar().Month, ShouldEqual, "2024-03")
				So(tracker.Stale(), ShouldEqual, 2)
			})

			deliver(m, second)
			So(m.Calendar().Month, ShouldEqual, "2024-05")
		})

		Convey("When a result is delivered twice", func() {
			deliver(m, second)
			deliver(m, second)

			Convey("Then the repeat is dropped", func() {
				So(tracker.Stale(), ShouldEqual, 2)
				So(m.Calendar().Month, ShouldEqual, "2024-05")
			})
		})
	})
}
