package display

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var ansiCode = regexp.MustCompile("\033\\[[0-9;]*m")

// visibleWidth counts the runes of s that reach the screen.
func visibleWidth(s string) int {
	return utf8.RuneCountInString(ansiCode.ReplaceAllString(s, ""))
}

// Table renders an aligned text table. Cells may carry their own color codes.
type Table struct {
	headers []string
	rows    [][]string

	// highlight is the next prayer's row, -1 when none.
	highlight int
	// faded rows are prayers already completed.
	faded map[int]bool
}

// NewTable creates a table with the given column headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:   headers,
		highlight: -1,
		faded:     make(map[int]bool),
	}
}

// AddRow appends a row and returns its index.
func (t *Table) AddRow(values []string) int {
	t.rows = append(t.rows, values)
	return len(t.rows) - 1
}

// SetHighlightRow marks row idx as the next prayer.
func (t *Table) SetHighlightRow(idx int) {
	t.highlight = idx
}

// SetDimRow fades row idx. The highlighted row is never faded.
func (t *Table) SetDimRow(idx int) {
	t.faded[idx] = true
}

// Render lays out the table, indented by two spaces.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleWidth(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], visibleWidth(row[i]))
		}
	}

	var sb strings.Builder
	sb.WriteString("  " + Bold(formatRow(t.headers, widths)) + "\n")

	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim("  "+strings.Join(rules, "  ")) + "\n")

	for i, row := range t.rows {
		line := formatRow(row, widths)
		if i == t.highlight {
			line = Accent(line)
		} else if t.faded[i] {
			line = Dim(line)
		}
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}

// formatRow pads each cell to its column width by visible width.
func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = cell + strings.Repeat(" ", max(0, w-visibleWidth(cell)))
	}
	return strings.Join(parts, "  ")
}
