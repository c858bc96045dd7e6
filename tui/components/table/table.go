package table

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/grovetools/extender/tui/theme"
)

// Builder provides a fluent interface for creating themed tables
type Builder struct {
	table    *ltable.Table
	theme    *theme.Theme
	bordered bool
	styleFor func(row, col int) (lipgloss.Style, bool)
}

// NewBuilder creates a new table builder using the default theme
func NewBuilder() *Builder {
	return &Builder{
		table:    ltable.New(),
		theme:    theme.DefaultTheme,
		bordered: true,
	}
}

// WithTheme sets the theme
func (b *Builder) WithTheme(t *theme.Theme) *Builder {
	b.theme = t
	return b
}

// WithBorder enables or disables the border
func (b *Builder) WithBorder(bordered bool) *Builder {
	b.bordered = bordered
	return b
}

// WithHeaders sets the table headers
func (b *Builder) WithHeaders(headers ...string) *Builder {
	b.table = b.table.Headers(headers...)
	return b
}

// WithRows appends the table rows
func (b *Builder) WithRows(rows ...[]string) *Builder {
	for _, row := range rows {
		b.table = b.table.Row(row...)
	}
	return b
}

// WithWidth sets the total table width
func (b *Builder) WithWidth(width int) *Builder {
	b.table = b.table.Width(width)
	return b
}

// WithCellStyle overrides the style of individual data cells. fn returns
// false to keep the default style.
func (b *Builder) WithCellStyle(fn func(row, col int) (lipgloss.Style, bool)) *Builder {
	b.styleFor = fn
	return b
}

// Build creates the styled table
func (b *Builder) Build() *ltable.Table {
	t := b.theme
	if b.bordered {
		b.table = b.table.
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(t.Colors.Border))
	}

	b.table = b.table.StyleFunc(func(row, col int) lipgloss.Style {
		base := lipgloss.NewStyle().Padding(0, 1)
		if row == ltable.HeaderRow {
			return base.Bold(true).Foreground(t.Colors.Violet)
		}
		if b.styleFor != nil {
			if style, ok := b.styleFor(row, col); ok {
				return style.Padding(0, 1)
			}
		}
		return base
	})

	return b.table
}

// SimpleTable renders a basic table with headers and rows
func SimpleTable(headers []string, rows [][]string) string {
	return NewBuilder().
		WithHeaders(headers...).
		WithRows(rows...).
		Build().
		Render()
}
