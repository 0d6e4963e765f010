// Package table renders themed lipgloss tables for CLI output.
package table

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/grovetools/reqs/tui/theme"
)

// Builder provides a fluent interface for creating styled tables.
// When headers are set lipgloss styles them separately, so row 0 in the
// style function is the first data row.
type Builder struct {
	table    *ltable.Table
	theme    *theme.Theme
	bordered bool
	muted    map[int]bool
	width    int
}

// NewBuilder creates a bordered table builder using the default theme.
func NewBuilder() *Builder {
	return &Builder{
		table:    ltable.New(),
		theme:    theme.DefaultTheme,
		bordered: true,
		muted:    map[int]bool{},
	}
}

// WithTheme sets the theme.
func (b *Builder) WithTheme(t *theme.Theme) *Builder {
	b.theme = t
	return b
}

// WithBorder enables or disables the border.
func (b *Builder) WithBorder(bordered bool) *Builder {
	b.bordered = bordered
	return b
}

// WithMutedRow renders data row i in the muted style, e.g. inactive items.
func (b *Builder) WithMutedRow(i int) *Builder {
	b.muted[i] = true
	return b
}

// WithHeaders sets the table headers.
func (b *Builder) WithHeaders(headers ...string) *Builder {
	b.table = b.table.Headers(headers...)
	return b
}

// WithRows appends rows.
func (b *Builder) WithRows(rows ...[]string) *Builder {
	for _, row := range rows {
		b.table = b.table.Row(row...)
	}
	return b
}

// WithWidth sets the total table width; zero leaves it unconstrained.
func (b *Builder) WithWidth(width int) *Builder {
	b.width = width
	return b
}

// Build creates the styled table.
func (b *Builder) Build() *ltable.Table {
	t := b.theme
	if b.bordered {
		b.table = b.table.
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(t.Colors.Border))
	} else {
		b.table = b.table.Border(lipgloss.HiddenBorder())
	}
	if b.width > 0 {
		b.table = b.table.Width(b.width)
	}

	b.table = b.table.StyleFunc(func(row, col int) lipgloss.Style {
		if row == ltable.HeaderRow {
			return t.TableHeader.Padding(0, 1)
		}
		style := t.TableRow.Padding(0, 1)
		if b.muted[row] {
			style = style.Foreground(t.Colors.MutedText)
		}
		return style
	})
	return b.table
}

// SimpleTable renders headers and rows with the default styling.
func SimpleTable(headers []string, rows [][]string) string {
	return NewBuilder().WithHeaders(headers...).WithRows(rows...).Build().String()
}

// FieldTable renders label/value pairs without a border, labels muted.
func FieldTable(t *theme.Theme, fields [][2]string) string {
	b := NewBuilder().WithTheme(t).WithBorder(false)
	for _, f := range fields {
		b.WithRows([]string{t.Muted.Render(f[0] + ":"), f[1]})
	}
	return b.Build().String()
}
