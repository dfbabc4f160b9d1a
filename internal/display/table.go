package display

import (
	"strings"
	"unicode/utf8"
)

// Table renders aligned text columns. Widths count runes, so cells such as
// "18.5°" line up.
type Table struct {
	headers []string
	rows    [][]string
	// highlight is the row drawn with Accent, -1 for none.
	highlight int
	dimmed    map[int]bool
}

// NewTable creates a table with the given column headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:   headers,
		highlight: -1,
		dimmed:    make(map[int]bool),
	}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(values []string) {
	t.rows = append(t.rows, values)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// SetHighlightRow marks the row at idx, typically today or the next prayer.
func (t *Table) SetHighlightRow(idx int) {
	t.highlight = idx
}

// DimRow renders the row at idx in gray, e.g. for prayers already passed.
func (t *Table) DimRow(idx int) {
	t.dimmed[idx] = true
}

// Render produces the table with a two-space indent.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("  " + Bold(formatRow(t.headers, widths)) + "\n")

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim("  "+strings.Join(sep, "  ")) + "\n")

	for i, row := range t.rows {
		line := formatRow(row, widths)
		switch {
		case i == t.highlight:
			line = Accent(line)
		case t.dimmed[i]:
			line = Gray(line)
		}
		sb.WriteString("  " + line + "\n")
	}

	return sb.String()
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = pad(cell, w)
	}
	return strings.Join(parts, "  ")
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
