// Package table renders themed lipgloss tables for fork lists and
// key/value summaries.
package table

import (
	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/grovetools/forksync/tui/theme"
)

// Options configures a table.
type Options struct {
	Bordered      bool
	AlternateRows bool
	HeaderStyle   lipgloss.Style
	RowStyle      lipgloss.Style
	// RowStyleFunc, when set, styles data row i (0-based) instead of RowStyle.
	RowStyleFunc func(row int) lipgloss.Style
	Theme        *theme.Theme
}

// DefaultOptions returns bordered options using the default theme.
func DefaultOptions() Options {
	t := theme.Default()
	return Options{
		Bordered:    true,
		HeaderStyle: t.TableHeader,
		RowStyle:    t.Normal,
		Theme:       t,
	}
}

// Builder provides a fluent interface for creating styled tables.
type Builder struct {
	table   *ltable.Table
	options Options
}

// NewBuilder creates a builder with DefaultOptions.
func NewBuilder() *Builder {
	return &Builder{
		table:   ltable.New(),
		options: DefaultOptions(),
	}
}

// WithTheme sets the theme and its header and row styles.
func (b *Builder) WithTheme(t *theme.Theme) *Builder {
	b.options.Theme = t
	b.options.HeaderStyle = t.TableHeader
	b.options.RowStyle = t.Normal
	return b
}

// WithBorder enables or disables the border.
func (b *Builder) WithBorder(bordered bool) *Builder {
	b.options.Bordered = bordered
	return b
}

// WithAlternateRows dims every other data row.
func (b *Builder) WithAlternateRows(alternate bool) *Builder {
	b.options.AlternateRows = alternate
	return b
}

// WithRowStyleFunc styles data rows individually.
func (b *Builder) WithRowStyleFunc(fn func(row int) lipgloss.Style) *Builder {
	b.options.RowStyleFunc = fn
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

// WithWidth sets the total table width.
func (b *Builder) WithWidth(width int) *Builder {
	b.table = b.table.Width(width)
	return b
}

// WithHeight sets the table height.
func (b *Builder) WithHeight(height int) *Builder {
	b.table = b.table.Height(height)
	return b
}

// Build applies the options and returns the table.
func (b *Builder) Build() *ltable.Table {
	opts := b.options
	if opts.Bordered {
		b.table = b.table.
			Border(lipgloss.RoundedBorder()).
			BorderStyle(opts.Theme.TableBorder)
	} else {
		b.table = b.table.Border(lipgloss.HiddenBorder())
	}

	// With Headers set, lipgloss passes ltable.HeaderRow for the header and
	// 0-based indices for data rows.
	b.table = b.table.StyleFunc(func(row, col int) lipgloss.Style {
		if row == ltable.HeaderRow {
			return opts.HeaderStyle.Padding(0, 1)
		}
		style := opts.RowStyle
		if opts.RowStyleFunc != nil {
			style = opts.RowStyleFunc(row)
		}
		if opts.AlternateRows && row%2 == 1 {
			style = style.Faint(true)
		}
		return style.Padding(0, 1)
	})

	return b.table
}

// SimpleTable renders headers and rows with the default options.
func SimpleTable(headers []string, rows [][]string) string {
	return NewBuilder().
		WithHeaders(headers...).
		WithRows(rows...).
		Build().
		String()
}

// KeyValueTable renders label/value pairs without a border.
func KeyValueTable(items [][2]string) string {
	t := theme.Default()
	b := NewBuilder().WithBorder(false)
	for _, item := range items {
		b.WithRows([]string{t.Muted.Render(item[0] + ":"), item[1]})
	}
	return b.Build().String()
}
