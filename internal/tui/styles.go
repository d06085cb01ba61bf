package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/okian/applytrack/internal/domain/urgency"
)

// Theme is the dashboard palette.
type Theme struct {
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color
	Primary       lipgloss.Color
	Accent        lipgloss.Color
	Success       lipgloss.Color
	Warning       lipgloss.Color
	Error         lipgloss.Color
	Border        lipgloss.Color
	Selection     lipgloss.Color
}

// TokyoNight is the default palette.
var TokyoNight = Theme{
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),
	Primary:       lipgloss.Color("#7aa2f7"),
	Accent:        lipgloss.Color("#7dcfff"),
	Success:       lipgloss.Color("#9ece6a"),
	Warning:       lipgloss.Color("#e0af68"),
	Error:         lipgloss.Color("#f7768e"),
	Border:        lipgloss.Color("#3b4261"),
	Selection:     lipgloss.Color("#33467c"),
}

// cellWidth fits a day number and two markers.
const cellWidth = 7

// Styles holds the pre-computed styles.
type Styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Panel   lipgloss.Style
	Heading lipgloss.Style

	Cell         lipgloss.Style
	CellOut      lipgloss.Style
	CellToday    lipgloss.Style
	CellSelected lipgloss.Style
	Weekday      lipgloss.Style

	TaskMark lipgloss.Style
	AppMark  lipgloss.Style

	Overdue lipgloss.Style
	Soon    lipgloss.Style
	Later   lipgloss.Style

	BarTasks lipgloss.Style
	BarApps  lipgloss.Style

	Error lipgloss.Style
}

// NewStyles derives styles from t.
func NewStyles(t Theme) *Styles {
	cell := lipgloss.NewStyle().Width(cellWidth).Foreground(t.Foreground)
	return &Styles{
		Title:   lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(t.ForegroundDim),
		Heading: lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		Cell:         cell,
		CellOut:      cell.Foreground(t.ForegroundDim),
		CellToday:    cell.Foreground(t.Primary).Bold(true),
		CellSelected: cell.Background(t.Selection).Bold(true),
		Weekday:      cell.Foreground(t.ForegroundDim),

		TaskMark: lipgloss.NewStyle().Foreground(t.Warning),
		AppMark:  lipgloss.NewStyle().Foreground(t.Accent),

		Overdue: lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		Soon:    lipgloss.NewStyle().Foreground(t.Warning),
		Later:   lipgloss.NewStyle().Foreground(t.ForegroundDim),

		BarTasks: lipgloss.NewStyle().Foreground(t.Success),
		BarApps:  lipgloss.NewStyle().Foreground(t.Primary),

		Error: lipgloss.NewStyle().Foreground(t.Error),
	}
}

// ForUrgency picks the style of an urgency tier.
func (s *Styles) ForUrgency(u urgency.Urgency) lipgloss.Style {
	switch u {
	case urgency.Overdue:
		return s.Overdue
	case urgency.Soon:
		return s.Soon
	default:
		return s.Later
	}
}
