package crud

import (
	"github.com/leengari/sheetsql/internal/domain/errors"
	"github.com/leengari/sheetsql/internal/domain/schema"
	"github.com/leengari/sheetsql/internal/parser/ast"
)

// Insert returns a copy of table with one row appended.
// Columns the statement names that the table lacks are added to the end of
// the column order; existing rows get nil for them.
func Insert(table *schema.Table, stmt *ast.InsertStatement) (*schema.Table, int64, error) {
	if len(stmt.Columns) != len(stmt.Values) {
		return nil, 0, errors.NewColumnValueCountMismatch(len(stmt.Columns), len(stmt.Values))
	}

	next := table.Copy()

	for _, col := range stmt.Columns {
		next.AddColumn(col)
	}

	row := next.EmptyRow()
	for i, col := range stmt.Columns {
		row.Set(col, stmt.Values[i])
	}
	next.Append(row)

	return next, 1, nil
}
