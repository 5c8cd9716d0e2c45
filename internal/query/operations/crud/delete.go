package crud

import (
	"github.com/leengari/sheetsql/internal/domain/data"
	"github.com/leengari/sheetsql/internal/domain/schema"
	"github.com/leengari/sheetsql/internal/parser/ast"
)

// Delete returns a copy of table without the rows matching the predicate.
// Remaining rows keep their relative order.
func Delete(table *schema.Table, stmt *ast.DeleteStatement) (*schema.Table, int64, error) {
	pred, err := Equals(table, stmt.Where)
	if err != nil {
		return nil, 0, err
	}

	next := table.Copy()

	var deleted int64
	kept := make([]data.Row, 0, len(next.Rows))
	for _, row := range next.Rows {
		if pred(row) {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	next.Rows = kept

	return next, deleted, nil
}
