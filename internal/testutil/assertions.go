package testutil

import (
	"testing"

	"github.com/leengari/sheetsql/internal/domain/data"
	"github.com/leengari/sheetsql/internal/domain/schema"
)

// AssertRowCount checks if the table has the expected number of rows
func AssertRowCount(t *testing.T, table *schema.Table, expected int, context string) {
	t.Helper()
	if table.Len() != expected {
		t.Errorf("%s: expected %d rows, got %d", context, expected, table.Len())
	}
}

// AssertCell checks the string form of one cell
func AssertCell(t *testing.T, table *schema.Table, row int, column, expected, context string) {
	t.Helper()
	if row >= table.Len() {
		t.Fatalf("%s: row %d out of range (%d rows)", context, row, table.Len())
	}
	v, ok := table.Rows[row].Get(column)
	if !ok {
		t.Errorf("%s: expected column '%s' to exist in row %d", context, column, row)
		return
	}
	if got := data.Stringify(v); got != expected {
		t.Errorf("%s: row %d column %s: expected %q, got %q", context, row, column, expected, got)
	}
}

// Records renders every row as column -> string form, for whole-table comparisons
func Records(table *schema.Table) []map[string]string {
	out := make([]map[string]string, 0, table.Len())
	for _, r := range table.Rows {
		rec := make(map[string]string, len(table.Columns))
		for _, c := range table.Columns {
			rec[c] = data.Stringify(r.Data[c])
		}
		out = append(out, rec)
	}
	return out
}
