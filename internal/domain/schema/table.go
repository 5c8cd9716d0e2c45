package schema

import (
	"sort"

	"github.com/leengari/sheetsql/internal/domain/data"
)

// Table is a named, ordered collection of rows sharing one column set.
// Column order is the order columns were first seen; every row carries
// every column (missing cells are nil).
type Table struct {
	Name    string
	Columns []string
	Rows    []data.Row
}

// NewTable creates an empty table with the given column order
func NewTable(name string, columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{
		Name:    name,
		Columns: cols,
		Rows:    []data.Row{},
	}
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether column is part of the table's column set
func (t *Table) HasColumn(column string) bool {
	return t.ColumnIndex(column) >= 0
}

// ColumnIndex returns the position of column, or -1
func (t *Table) ColumnIndex(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// AddColumn appends a column and sets it to nil on every existing row.
// Adding an existing column is a no-op.
func (t *Table) AddColumn(column string) {
	if t.HasColumn(column) {
		return
	}
	t.Columns = append(t.Columns, column)
	for _, row := range t.Rows {
		row.Set(column, nil)
	}
}

// EmptyRow returns a row with every column set to nil
func (t *Table) EmptyRow() data.Row {
	row := data.NewRow(make(map[string]interface{}, len(t.Columns)))
	for _, c := range t.Columns {
		row.Set(c, nil)
	}
	return row
}

// Append adds a row to the end of the table. Columns the row carries that
// the table lacks are added; columns the row lacks are filled with nil.
func (t *Table) Append(row data.Row) {
	for _, c := range orderedKeys(row, t.Columns) {
		t.AddColumn(c)
	}
	for _, c := range t.Columns {
		if _, ok := row.Get(c); !ok {
			row.Set(c, nil)
		}
	}
	t.Rows = append(t.Rows, row)
}

// Values returns the row's cells in column order
func (t *Table) Values(row data.Row) []interface{} {
	out := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = row.Data[c]
	}
	return out
}

// Copy returns a deep copy of the table
func (t *Table) Copy() *Table {
	cp := NewTable(t.Name, t.Columns)
	cp.Rows = make([]data.Row, len(t.Rows))
	for i, r := range t.Rows {
		cp.Rows[i] = r.Copy()
	}
	return cp
}

// AffectedRows builds the single-cell result reported for a mutation
func AffectedRows(n int64) *Table {
	t := NewTable("result", []string{"affected_rows"})
	t.Rows = append(t.Rows, data.NewRow(map[string]interface{}{"affected_rows": n}))
	return t
}

// orderedKeys returns the keys of row missing from known. Map iteration is
// unordered, so extra keys are returned sorted to keep column order stable.
func orderedKeys(row data.Row, known []string) []string {
	var extra []string
	for k := range row.Data {
		found := false
		for _, c := range known {
			if c == k {
				found = true
				break
			}
		}
		if !found {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}
