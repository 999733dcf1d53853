// Package tableio reads and writes the header-plus-rows tables exchanged with
// the operator: CSV and XLSX uploads in, CSV exports out.
package tableio

import "strings"

// Table is a header row plus string data rows.
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// New builds a Table. Header cells are trimmed; the first occurrence of a
// duplicated header wins lookups.
func New(header []string, rows [][]string) *Table {
	t := &Table{
		Header: make([]string, len(header)),
		Rows:   rows,
		index:  make(map[string]int, len(header)),
	}
	for i, col := range header {
		col = strings.TrimSpace(col)
		t.Header[i] = col
		if _, dup := t.index[col]; !dup {
			t.index[col] = i
		}
	}
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Has reports whether col is present in the header.
func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Missing returns the columns from cols that are absent, in order.
func (t *Table) Missing(cols ...string) []string {
	var missing []string
	for _, col := range cols {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

// Value returns the trimmed cell of row under col, or "" if the column is
// absent or the row is short.
func (t *Table) Value(row []string, col string) string {
	idx, ok := t.index[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
