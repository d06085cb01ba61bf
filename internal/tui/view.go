package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/okian/applytrack/internal/domain/calendar"
	"github.com/okian/applytrack/internal/domain/model"
	"github.com/okian/applytrack/internal/domain/urgency"
)

const (
	barWidth     = 24
	bucketSample = 3
)

var weekdays = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

// View renders the dashboard.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(m.styles.Error.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Panel.Render(m.renderCalendar()),
		" ",
		m.styles.Panel.Render(m.renderAgenda()),
	)
	bottom := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Panel.Render(m.renderBuckets()),
		" ",
		m.styles.Panel.Render(m.renderProgress()),
	)
	b.WriteString(lipgloss.JoinVertical(lipgloss.Left, top, bottom))
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderHeader() string {
	title := m.styles.Title.Render("applytrack") + m.styles.Muted.Render(" · "+m.owner)
	if m.pending > 0 {
		title += " " + m.spinner.View()
	}
	if o := m.overview; o != nil {
		title += m.styles.Muted.Render(fmt.Sprintf("   %d colleges · %d applications · %d open tasks",
			o.Colleges, o.Applications, o.OpenTasks))
	}
	return title
}

func (m *Model) renderCalendar() string {
	var b strings.Builder

	switch {
	case m.cal == nil:
		b.WriteString(m.styles.Heading.Render(m.month.Format("January 2006")))
	case m.cal.Mode == calendar.ModeUpcoming:
		b.WriteString(m.styles.Heading.Render("Upcoming " + m.cal.From + " → " + m.cal.To))
	default:
		b.WriteString(m.styles.Heading.Render(m.month.Format("January 2006")))
	}
	b.WriteString("\n")

	for _, d := range weekdays {
		b.WriteString(m.styles.Weekday.Render(d))
	}
	b.WriteString("\n")

	if m.cal == nil {
		b.WriteString(m.styles.Muted.Render("loading…"))
		return b.String()
	}

	selected := m.Selected()
	for i, c := range m.cal.Days {
		b.WriteString(m.renderCell(c, c.Date == selected))
		if (i+1)%len(weekdays) == 0 && i+1 < len(m.cal.Days) {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m *Model) renderCell(c calendar.Cell, selected bool) string {
	text := fmt.Sprintf("%2d", c.Day)
	if c.TasksDue > 0 {
		text += m.styles.TaskMark.Render("•")
	}
	if c.AppsDue > 0 {
		text += m.styles.AppMark.Render("◆")
	}

	switch {
	case selected:
		return m.styles.CellSelected.Render(text)
	case c.Today:
		return m.styles.CellToday.Render(text)
	case !c.InMonth:
		return m.styles.CellOut.Render(text)
	default:
		return m.styles.Cell.Render(text)
	}
}

func (m *Model) renderAgenda() string {
	var b strings.Builder
	b.WriteString(m.styles.Heading.Render("Due " + m.Selected()))
	b.WriteString("\n")

	a := m.agenda
	if a == nil || a.Day != m.Selected() {
		b.WriteString(m.styles.Muted.Render("loading…"))
		return b.String()
	}
	if len(a.Tasks) == 0 && len(a.Applications) == 0 {
		b.WriteString(m.styles.Muted.Render("Nothing due."))
		return b.String()
	}

	for _, t := range a.Tasks {
		line := "☐ " + t.Title
		if s := t.School(); s != nil {
			line += " · " + s.Name
		}
		b.WriteString(m.styles.ForUrgency(t.Urgency).Render(line + "  " + t.DueLabel))
		b.WriteString("\n")
	}
	for _, app := range a.Applications {
		line := "◆ " + applicationName(app.Application)
		b.WriteString(m.styles.ForUrgency(app.Urgency).Render(line + "  " + app.DueLabel))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func applicationName(a model.Application) string {
	name := "Application"
	if a.School != nil {
		name = a.School.Name
	}
	if a.DecisionType != nil && *a.DecisionType != "" {
		name += " (" + *a.DecisionType + ")"
	}
	return name
}

func (m *Model) renderBuckets() string {
	var b strings.Builder
	b.WriteString(m.styles.Heading.Render("Open tasks"))

	if m.overview == nil {
		b.WriteString("\n" + m.styles.Muted.Render("loading…"))
		return b.String()
	}

	due := m.overview.Due
	groups := []struct {
		bucket urgency.Bucket
		level  urgency.Urgency
		tasks  []model.Task
	}{
		{urgency.BucketOverdue, urgency.Overdue, due.Overdue},
		{urgency.BucketWeek, urgency.Soon, due.Week},
		{urgency.BucketMonth, urgency.Later, due.Month},
	}
	for _, g := range groups {
		b.WriteString("\n")
		b.WriteString(m.styles.ForUrgency(g.level).Render(fmt.Sprintf("%s (%d)", urgency.BucketTitle(g.bucket), len(g.tasks))))
		for i, t := range g.tasks {
			if i == bucketSample {
				b.WriteString("\n" + m.styles.Muted.Render(fmt.Sprintf("  +%d more", len(g.tasks)-bucketSample)))
				break
			}
			when := ""
			if t.DueDate != nil {
				when = *t.DueDate
			}
			b.WriteString("\n  " + t.Title + m.styles.Muted.Render(" "+when))
		}
	}
	return b.String()
}

func (m *Model) renderProgress() string {
	var b strings.Builder
	b.WriteString(m.styles.Heading.Render("Last 12 weeks"))
	b.WriteString(" ")
	b.WriteString(m.styles.BarTasks.Render("■ tasks"))
	b.WriteString(" ")
	b.WriteString(m.styles.BarApps.Render("■ submitted"))

	if m.progress == nil {
		b.WriteString("\n" + m.styles.Muted.Render("loading…"))
		return b.String()
	}

	peak := 0
	for _, p := range m.progress.Points {
		peak = max(peak, p.TasksCompleted+p.ApplicationsSubmitted)
	}
	for _, p := range m.progress.Points {
		b.WriteString("\n")
		b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%-6s", p.Week)))
		b.WriteString(m.styles.BarTasks.Render(strings.Repeat("█", scale(p.TasksCompleted, peak))))
		b.WriteString(m.styles.BarApps.Render(strings.Repeat("█", scale(p.ApplicationsSubmitted, peak))))
		if p.TasksCompleted+p.ApplicationsSubmitted > 0 {
			b.WriteString(m.styles.Muted.Render(fmt.Sprintf(" %d/%d", p.TasksCompleted, p.ApplicationsSubmitted)))
		}
	}
	return b.String()
}

// scale maps v in [0, peak] onto [0, barWidth]. Non-zero values get at
// least one cell.
func scale(v, peak int) int {
	if v <= 0 || peak <= 0 {
		return 0
	}
	return max(1, v*barWidth/peak)
}
