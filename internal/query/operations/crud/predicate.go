package crud

import (
	"github.com/leengari/sheetsql/internal/domain/data"
	"github.com/leengari/sheetsql/internal/domain/errors"
	"github.com/leengari/sheetsql/internal/domain/schema"
	"github.com/leengari/sheetsql/internal/parser/ast"
)

// PredicateFunc is a function that tests whether a row matches a condition
type PredicateFunc func(data.Row) bool

// Equals builds the row test for a column = value predicate.
// Cells are compared by their string form, so 5 matches '5' and NULL
// matches ''.
func Equals(table *schema.Table, where ast.Predicate) (PredicateFunc, error) {
	if !table.HasColumn(where.Column) {
		return nil, errors.NewUnknownColumn(table.Name, where.Column)
	}
	return func(r data.Row) bool {
		v, _ := r.Get(where.Column)
		return data.Stringify(v) == where.Value
	}, nil
}
