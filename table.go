package squill

import (
	"fmt"
	"io"
	"strings"
)

// Table provides basic result formatting without external dependencies
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
}

// NewTable creates a new table writer
func NewTable(w io.Writer) *Table {
	return &Table{
		writer: w,
		rows:   make([][]string, 0),
	}
}

// Header sets the table headers
func (t *Table) Header(headers []string) {
	t.headers = headers
}

// Row adds a single row
func (t *Table) Row(row []string) {
	t.rows = append(t.rows, row)
}

// Render outputs the formatted table
func (t *Table) Render() {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return
	}

	colWidths := t.calculateWidths()
	separator := t.buildSeparator(colWidths)

	fmt.Fprintln(t.writer, separator)

	if len(t.headers) > 0 {
		fmt.Fprintln(t.writer, t.formatRow(t.headers, colWidths))
		fmt.Fprintln(t.writer, separator)
	}

	for _, row := range t.rows {
		fmt.Fprintln(t.writer, t.formatRow(row, colWidths))
	}

	fmt.Fprintln(t.writer, separator)
}

// calculateWidths determines the width needed for each column
func (t *Table) calculateWidths() []int {
	numCols := len(t.headers)
	for _, row := range t.rows {
		if len(row) > numCols {
			numCols = len(row)
		}
	}

	widths := make([]int, numCols)

	for i, h := range t.headers {
		if len(h) > widths[i] {
			widths[i] = len(h)
		}
	}

	for _, row := range t.rows {
		for i, cell := range row {
			if i < numCols && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i := range widths {
		if widths[i] < 1 {
			widths[i] = 1
		}
	}

	return widths
}

// buildSeparator creates the horizontal line
func (t *Table) buildSeparator(widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat("-", w+2)
	}
	return "+" + strings.Join(parts, "+") + "+"
}

// formatRow formats a single row with proper padding
func (t *Table) formatRow(row []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		parts[i] = " " + cell + strings.Repeat(" ", w-len(cell)+1)
	}
	return "|" + strings.Join(parts, "|") + "|"
}

// Format renders the remaining rows of the iterator as an ASCII table.
// It consumes the iterator; callers still own Close.
func (r *Rows) Format(w io.Writer) error {
	t := NewTable(w)
	schema := r.Schema()
	headers := make([]string, len(schema.Fields()))
	for i, f := range schema.Fields() {
		headers[i] = f.Name
	}
	t.Header(headers)
	for r.Next() {
		row := r.Row()
		cells := make([]string, row.NumColumns())
		for i := range cells {
			v, err := row.Value(i)
			if err != nil {
				return err
			}
			if v.IsNull() {
				cells[i] = "NULL"
			} else {
				cells[i] = v.String()
			}
		}
		t.Row(cells)
	}
	if err := r.Err(); err != nil {
		return err
	}
	t.Render()
	return nil
}
