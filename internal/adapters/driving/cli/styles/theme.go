// Package styles provides the colour theme used for terminal output.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Theme defines the colour palette for terminal output.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles for settings tables.
type Styles struct {
	theme *Theme

	// Header style for table headers.
	Header lipgloss.Style

	// Key style for the key column.
	Key lipgloss.Style

	// Cell style for other cells.
	Cell lipgloss.Style

	// Muted style for defaults and type names.
	Muted lipgloss.Style

	// Border style for table borders.
	Border lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary).
			Padding(0, 1),

		Key: lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Padding(0, 1),

		Cell: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Padding(0, 1),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Padding(0, 1),

		Border: lipgloss.NewStyle().
			Foreground(theme.Border),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Table renders rows under headers. The first column is styled as a key and
// columns listed in muted are dimmed. A nil receiver renders without colour
// or borders, for output that is not a terminal.
func (s *Styles) Table(headers []string, rows [][]string, muted ...int) string {
	t := table.New().
		Headers(headers...).
		Rows(rows...)

	if s == nil {
		plain := lipgloss.NewStyle().PaddingRight(2)
		return t.
			Border(lipgloss.HiddenBorder()).
			BorderTop(false).
			BorderBottom(false).
			BorderLeft(false).
			BorderRight(false).
			BorderColumn(false).
			BorderHeader(false).
			StyleFunc(func(_, _ int) lipgloss.Style { return plain }).
			Render()
	}

	dim := make(map[int]bool, len(muted))
	for _, col := range muted {
		dim[col] = true
	}

	return t.
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return s.Header
			case col == 0:
				return s.Key
			case dim[col]:
				return s.Muted
			default:
				return s.Cell
			}
		}).
		Render()
}
