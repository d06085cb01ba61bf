package service

import (
	"context"
	"time"

	"github.com/okian/applytrack/internal/adapters/repository"
	"github.com/okian/applytrack/internal/domain/calendar"
	"github.com/okian/applytrack/internal/domain/dates"
	"github.com/okian/applytrack/internal/domain/model"
	"github.com/okian/applytrack/internal/domain/progress"
	"github.com/okian/applytrack/internal/domain/types"
	"github.com/okian/applytrack/internal/domain/urgency"
	"github.com/okian/applytrack/pkg/logger"
	"github.com/okian/applytrack/pkg/metrics"
)

// Overview is the dashboard summary.
type Overview struct {
	Today        string              `json:"today"`
	Colleges     int                 `json:"colleges"`
	Applications int                 `json:"applications"`
	OpenTasks    int                 `json:"open_tasks"`
	Ranking      model.BucketCounts  `json:"ranking"`
	Statuses     []model.StatusCount `json:"statuses"`
	Due          urgency.Buckets     `json:"due"`
}

// CalendarView is a rendered 42-day grid.
type CalendarView struct {
	Mode     calendar.ViewMode `json:"mode"`
	Month    string            `json:"month"`
	From     string            `json:"from"`
	To       string            `json:"to"`
	Days     []calendar.Cell   `json:"days"`
	Selected string            `json:"selected,omitempty"`
	Ignored  int               `json:"ignored"`
}

// AgendaTask is an open task annotated for display.
type AgendaTask struct {
	model.Task
	Urgency  urgency.Urgency `json:"urgency"`
	DueLabel string          `json:"due_label"`
}

// AgendaApplication is an application whose deadline falls on the day.
type AgendaApplication struct {
	model.Application
	Urgency  urgency.Urgency `json:"urgency"`
	DueLabel string          `json:"due_label"`
}

// AgendaView lists what is due on one day.
type AgendaView struct {
	Day          string              `json:"day"`
	Tasks        []AgendaTask        `json:"tasks"`
	Applications []AgendaApplication `json:"applications"`
}

// ProgressView is the twelve-week histogram.
type ProgressView struct {
	Since   string           `json:"since"`
	Points  []progress.Point `json:"points"`
	Ignored int              `json:"ignored"`
}

// Pin is a school on the map.
type Pin struct {
	MySchoolID string  `json:"my_school_id"`
	SchoolID   string  `json:"school_id"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Rank       int     `json:"rank"`
	Status     string  `json:"status"`
	Bucket     *string `json:"ranking_bucket"`
}

// MapView splits the list into pins and schools without coordinates.
type MapView struct {
	Pins    []Pin             `json:"pins"`
	Missing []model.SchoolRef `json:"missing"`
}

// Overview counts the owner's records and buckets open tasks due up to the
// end of the month window. Overdue tasks are always included.
func (s *Service) Overview(ctx context.Context, owner string) (*Overview, error) {
	const op = "service.Overview"
	store, err := s.repo(op)
	if err != nil {
		return nil, err
	}
	now := s.Now()

	out := &Overview{Today: dates.ISODate(now)}
	list, err := store.ListMySchools(ctx, owner, repository.MySchoolFilter{})
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	out.Colleges = len(list)
	out.Ranking = model.CountBuckets(list)

	if out.Applications, err = store.CountApplications(ctx, owner); err != nil {
		return nil, types.Wrap(op, err)
	}
	if out.OpenTasks, err = store.CountOpenTasks(ctx, owner); err != nil {
		return nil, types.Wrap(op, err)
	}
	if out.Statuses, err = store.StatusCounts(ctx, owner); err != nil {
		return nil, types.Wrap(op, err)
	}

	// Overdue and upcoming are capped separately so a long overdue backlog
	// cannot crowd the week and month buckets out of the limit.
	started := time.Now()
	yesterday := dates.ISODate(dates.AddDays(now, -1))
	horizon := dates.ISODate(dates.AddDays(now, s.windows.Month))
	overdue, err := store.OpenTasksDueBetween(ctx, owner, "", yesterday, s.listLimit)
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	upcoming, err := store.OpenTasksDueBetween(ctx, owner, out.Today, horizon, s.listLimit)
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	tasks := append(overdue, upcoming...)
	out.Due = urgency.BucketizeWithin(now, tasks, s.windows)
	metrics.ObserveAggregation("urgency", started, out.Due.Total(), len(tasks)-out.Due.Total())
	metrics.UpdateTrackerTotals(out.Colleges, out.Applications, out.OpenTasks, len(out.Due.Overdue))

	return out, nil
}

// Calendar builds the grid for mode. month is YYYY-MM and defaults to the
// current month; it is ignored in upcoming mode. selected is an optional
// YYYY-MM-DD day flagged on its cell.
func (s *Service) Calendar(ctx context.Context, owner string, mode calendar.ViewMode, month, selected string) (*CalendarView, error) {
	const op = "service.Calendar"
	store, err := s.repo(op)
	if err != nil {
		return nil, err
	}
	now := s.Now()

	anchor := now
	if mode != calendar.ModeUpcoming && month != "" {
		if anchor, err = dates.ParseMonth(month, s.loc); err != nil {
			return nil, types.WrapKind(op, types.ErrInvalidArgument, err)
		}
	}
	if selected != "" {
		day, err := dates.ParseISO(selected, s.loc)
		if err != nil {
			return nil, types.WrapKind(op, types.ErrInvalidArgument, err)
		}
		selected = dates.ISODate(day)
	}

	// Query exactly the grid span. An empty grid fixes the bounds.
	bounds, err := calendar.Build(calendar.Input{Mode: mode, Month: anchor, Now: now})
	if err != nil {
		return nil, err
	}
	from, to := bounds.Span()

	taskDues, err := store.OpenTaskDuesBetween(ctx, owner, from, to)
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	deadlines, err := store.DeadlinesBetween(ctx, owner, from, to)
	if err != nil {
		return nil, types.Wrap(op, err)
	}

	started := time.Now()
	grid, err := calendar.Build(calendar.Input{
		Mode:         mode,
		Month:        anchor,
		Now:          now,
		TaskDues:     taskDues,
		AppDeadlines: deadlines,
	})
	if err != nil {
		return nil, err
	}
	metrics.ObserveAggregation("calendar", started, grid.Recorded(), grid.Ignored)
	if grid.Ignored > 0 {
		s.logger.Debug(ctx, "calendar ignored records", logger.Int("ignored", grid.Ignored))
	}

	return &CalendarView{
		Mode:     grid.Mode,
		Month:    grid.Month.Format("2006-01"),
		From:     from,
		To:       to,
		Days:     grid.Cells(now, selected),
		Selected: selected,
		Ignored:  grid.Ignored,
	}, nil
}

// Agenda lists the open tasks due on day and the applications whose
// deadline is day, each annotated with urgency and a relative label.
func (s *Service) Agenda(ctx context.Context, owner, day string) (*AgendaView, error) {
	const op = "service.Agenda"
	store, err := s.repo(op)
	if err != nil {
		return nil, err
	}
	d, err := dates.ParseISO(day, s.loc)
	if err != nil {
		return nil, types.WrapKind(op, types.ErrInvalidArgument, err)
	}
	iso := dates.ISODate(d)

	tasks, err := store.OpenTasksDueOn(ctx, owner, iso, s.agendaLimit)
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	apps, err := store.ApplicationsDueOn(ctx, owner, iso, s.agendaLimit)
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	agenda, err := calendar.Agenda(iso, tasks, apps)
	if err != nil {
		return nil, types.WrapKind(op, types.ErrInvalidArgument, err)
	}

	now := s.Now()
	level, _ := urgency.ForDue(now, iso)
	label, _ := dates.DueLabel(now, iso)

	out := &AgendaView{
		Day:          iso,
		Tasks:        make([]AgendaTask, 0, len(agenda.Tasks)),
		Applications: make([]AgendaApplication, 0, len(agenda.Applications)),
	}
	for _, t := range agenda.Tasks {
		out.Tasks = append(out.Tasks, AgendaTask{Task: t, Urgency: level, DueLabel: label})
	}
	for _, a := range agenda.Applications {
		out.Applications = append(out.Applications, AgendaApplication{Application: a, Urgency: level, DueLabel: label})
	}
	return out, nil
}

// Progress builds the twelve-week completion and submission histogram.
func (s *Service) Progress(ctx context.Context, owner string) (*ProgressView, error) {
	const op = "service.Progress"
	store, err := s.repo(op)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	since := progress.Window(now)

	completions, err := store.CompletedSince(ctx, owner, since)
	if err != nil {
		return nil, types.Wrap(op, err)
	}
	submissions, err := store.SubmittedSince(ctx, owner, since)
	if err != nil {
		return nil, types.Wrap(op, err)
	}

	started := time.Now()
	res, err := progress.Aggregate(now, completions, submissions)
	if err != nil {
		return nil, err
	}
	metrics.ObserveAggregation("progress", started, len(completions)+len(submissions)-res.Ignored, res.Ignored)

	return &ProgressView{
		Since:   dates.ISODate(since),
		Points:  res.Points,
		Ignored: res.Ignored,
	}, nil
}

// MapPins returns the owner's schools with coordinates in rank order, and
// the schools that cannot be placed.
func (s *Service) MapPins(ctx context.Context, owner string) (*MapView, error) {
	const op = "service.MapPins"
	store, err := s.repo(op)
	if err != nil {
		return nil, err
	}
	list, err := store.ListMySchools(ctx, owner, repository.MySchoolFilter{Sort: repository.SortRank})
	if err != nil {
		return nil, types.Wrap(op, err)
	}

	out := &MapView{Pins: []Pin{}, Missing: []model.SchoolRef{}}
	for _, m := range list {
		if m.School == nil {
			continue
		}
		if !m.School.HasCoordinates() {
			out.Missing = append(out.Missing, *m.Ref())
			continue
		}
		out.Pins = append(out.Pins, Pin{
			MySchoolID: m.ID,
			SchoolID:   m.SchoolID,
			Name:       m.School.Name,
			Lat:        *m.School.Lat,
			Lng:        *m.School.Lng,
			Rank:       m.Rank,
			Status:     m.Status,
			Bucket:     m.RankingBucket,
		})
	}
	return out, nil
}
