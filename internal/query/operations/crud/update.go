package crud

import (
	"github.com/leengari/sheetsql/internal/domain/schema"
	"github.com/leengari/sheetsql/internal/parser/ast"
)

// Update returns a copy of table with every assignment applied to the rows
// matching the predicate. Returns the number of rows matched.
// Assignment columns the table lacks are added only when something matched.
func Update(table *schema.Table, stmt *ast.UpdateStatement) (*schema.Table, int64, error) {
	pred, err := Equals(table, stmt.Where)
	if err != nil {
		return nil, 0, err
	}

	next := table.Copy()

	var matched []int
	for i, row := range next.Rows {
		if pred(row) {
			matched = append(matched, i)
		}
	}
	if len(matched) == 0 {
		return next, 0, nil
	}

	for _, a := range stmt.Assignments {
		next.AddColumn(a.Column)
	}
	for _, i := range matched {
		for _, a := range stmt.Assignments {
			next.Rows[i].Set(a.Column, a.Value)
		}
	}

	return next, int64(len(matched)), nil
}
