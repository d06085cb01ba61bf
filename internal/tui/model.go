// Package tui is the terminal dashboard: a month or upcoming calendar with
// a day agenda, the urgency buckets and the twelve-week progress chart.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	service "github.com/okian/applytrack/internal/app"
	"github.com/okian/applytrack/internal/domain/calendar"
	"github.com/okian/applytrack/internal/domain/dates"
	"github.com/okian/applytrack/internal/domain/generation"
	"github.com/okian/applytrack/pkg/logger"
	"github.com/okian/applytrack/pkg/metrics"
)

// Load scopes. Each scope has its own generation counter.
const (
	ScopeOverview = "tui.overview"
	ScopeCalendar = "tui.calendar"
	ScopeAgenda   = "tui.agenda"
	ScopeProgress = "tui.progress"
)

// Source is what the dashboard reads from.
type Source interface {
	Overview(ctx context.Context, owner string) (*service.Overview, error)
	Calendar(ctx context.Context, owner string, mode calendar.ViewMode, month, selected string) (*service.CalendarView, error)
	Agenda(ctx context.Context, owner, day string) (*service.AgendaView, error)
	Progress(ctx context.Context, owner string) (*service.ProgressView, error)
	Now() time.Time
}

// loadedMsg carries the result of one load back to Update.
type loadedMsg struct {
	tok  generation.Token
	data any
	err  error
}

// Model is the root bubbletea model.
type Model struct {
	ctx    context.Context
	src    Source
	owner  string
	loads  *generation.Tracker
	log    logger.Logger
	keys   KeyMap
	styles *Styles

	help    help.Model
	spinner spinner.Model
	pending int

	mode     calendar.ViewMode
	month    time.Time
	selected time.Time

	overview *service.Overview
	cal      *service.CalendarView
	agenda   *service.AgendaView
	progress *service.ProgressView
	err      error

	width  int
	height int
}

// New creates the dashboard over src. The selection starts on today.
func New(src Source, opts ...Option) *Model {
	m := &Model{
		ctx:    context.Background(),
		src:    src,
		owner:  "local",
		log:    logger.Nop(),
		keys:   DefaultKeyMap(),
		styles: NewStyles(TokyoNight),
		help:   help.New(),
		mode:   calendar.ModeMonth,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.loads == nil {
		m.loads = generation.New(generation.WithOnStale(metrics.RecordStaleLoad))
	}
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = m.styles.Muted

	today := dates.StartOfDay(src.Now())
	m.selected = today
	m.month = dates.StartOfMonth(today)
	return m
}

// Init loads every panel.
func (m *Model) Init() tea.Cmd {
	return m.reloadAll()
}

// Update handles keys, window resizes and load results.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case loadedMsg:
		m.apply(msg)
		return m, nil

	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	case key.Matches(msg, m.keys.Left):
		return m.moveSelection(-1)
	case key.Matches(msg, m.keys.Right):
		return m.moveSelection(1)
	case key.Matches(msg, m.keys.Up):
		return m.moveSelection(-dates.DaysPerWeek)
	case key.Matches(msg, m.keys.Down):
		return m.moveSelection(dates.DaysPerWeek)
	case key.Matches(msg, m.keys.PrevMonth):
		return m.shiftMonth(-1)
	case key.Matches(msg, m.keys.NextMonth):
		return m.shiftMonth(1)
	case key.Matches(msg, m.keys.Today):
		today := dates.StartOfDay(m.src.Now())
		m.selected = today
		m.month = dates.StartOfMonth(today)
		return m.batch(m.loadCalendar(), m.loadAgenda())
	case key.Matches(msg, m.keys.View):
		if m.mode == calendar.ModeMonth {
			m.mode = calendar.ModeUpcoming
		} else {
			m.mode = calendar.ModeMonth
		}
		today := dates.StartOfDay(m.src.Now())
		m.selected = today
		m.month = dates.StartOfMonth(today)
		m.cal = nil
		return m.batch(m.loadCalendar(), m.loadAgenda())
	case key.Matches(msg, m.keys.Refresh):
		return m.reloadAll()
	}
	return nil
}

// moveSelection moves the selected day by n days. In month mode leaving
// the month pages the grid; in upcoming mode the selection stays inside
// the loaded span.
func (m *Model) moveSelection(n int) tea.Cmd {
	next := dates.AddDays(m.selected, n)
	if m.mode == calendar.ModeUpcoming {
		if m.cal == nil {
			return nil
		}
		iso := dates.ISODate(next)
		if iso < m.cal.From || iso > m.cal.To {
			return nil
		}
		m.selected = next
		return m.batch(m.loadAgenda())
	}

	m.selected = next
	if month := dates.StartOfMonth(next); !month.Equal(m.month) {
		m.month = month
		return m.batch(m.loadCalendar(), m.loadAgenda())
	}
	return m.batch(m.loadAgenda())
}

func (m *Model) shiftMonth(n int) tea.Cmd {
	if m.mode != calendar.ModeMonth {
		return nil
	}
	m.month = dates.AddMonths(m.month, n)
	m.selected = m.month
	return m.batch(m.loadCalendar(), m.loadAgenda())
}

func (m *Model) reloadAll() tea.Cmd {
	return m.batch(m.loadOverview(), m.loadCalendar(), m.loadAgenda(), m.loadProgress())
}

// batch adds a spinner tick when the first load of a burst starts.
func (m *Model) batch(cmds ...tea.Cmd) tea.Cmd {
	if m.pending == len(cmds) {
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// fetch issues a load for scope. The token is taken now so any later load
// of the same scope supersedes this one, whatever order they finish in.
func (m *Model) fetch(scope string, fn func(ctx context.Context) (any, error)) tea.Cmd {
	tok := m.loads.Next(scope)
	m.pending++
	ctx := m.ctx
	return func() tea.Msg {
		data, err := fn(ctx)
		return loadedMsg{tok: tok, data: data, err: err}
	}
}

func (m *Model) loadOverview() tea.Cmd {
	src, owner := m.src, m.owner
	return m.fetch(ScopeOverview, func(ctx context.Context) (any, error) {
		return src.Overview(ctx, owner)
	})
}

func (m *Model) loadCalendar() tea.Cmd {
	src, owner, mode := m.src, m.owner, m.mode
	month, day := m.month.Format("2006-01"), dates.ISODate(m.selected)
	return m.fetch(ScopeCalendar, func(ctx context.Context) (any, error) {
		return src.Calendar(ctx, owner, mode, month, day)
	})
}

func (m *Model) loadAgenda() tea.Cmd {
	src, owner := m.src, m.owner
	day := dates.ISODate(m.selected)
	return m.fetch(ScopeAgenda, func(ctx context.Context) (any, error) {
		return src.Agenda(ctx, owner, day)
	})
}

func (m *Model) loadProgress() tea.Cmd {
	src, owner := m.src, m.owner
	return m.fetch(ScopeProgress, func(ctx context.Context) (any, error) {
		return src.Progress(ctx, owner)
	})
}

// apply stores a load result if its token is still current.
func (m *Model) apply(msg loadedMsg) {
	if m.pending > 0 {
		m.pending--
	}
	if !m.loads.Accept(msg.tok) {
		m.log.Debug(m.ctx, "dropped stale load", logger.String("scope", msg.tok.Key))
		return
	}
	if msg.err != nil {
		m.err = msg.err
		m.log.Warn(m.ctx, "load failed", logger.String("scope", msg.tok.Key), logger.Error(msg.err))
		return
	}
	m.err = nil

	switch msg.tok.Key {
	case ScopeOverview:
		m.overview, _ = msg.data.(*service.Overview)
	case ScopeCalendar:
		m.cal, _ = msg.data.(*service.CalendarView)
	case ScopeAgenda:
		m.agenda, _ = msg.data.(*service.AgendaView)
	case ScopeProgress:
		m.progress, _ = msg.data.(*service.ProgressView)
	}
}

// Mode is the current calendar mode.
func (m *Model) Mode() calendar.ViewMode { return m.mode }

// Selected is the selected day as YYYY-MM-DD.
func (m *Model) Selected() string { return dates.ISODate(m.selected) }

// Month is the anchor month as YYYY-MM.
func (m *Model) Month() string { return m.month.Format("2006-01") }

// Calendar is the last accepted calendar.
func (m *Model) Calendar() *service.CalendarView { return m.cal }

// Agenda is the last accepted agenda.
func (m *Model) Agenda() *service.AgendaView { return m.agenda }

// Overview is the last accepted overview.
func (m *Model) Overview() *service.Overview { return m.overview }

// Progress is the last accepted progress chart.
func (m *Model) Progress() *service.ProgressView { return m.progress }

// Err is the error of the last accepted load, if it failed.
func (m *Model) Err() error { return m.err }

// Loading reports whether loads are in flight.
func (m *Model) Loading() bool { return m.pending > 0 }
