package crud

import (
	"log/slog"

	"github.com/leengari/sheetsql/internal/domain/errors"
	"github.com/leengari/sheetsql/internal/domain/schema"
	"github.com/leengari/sheetsql/internal/parser/ast"
)

// Apply runs a mutation against table. The input table is never modified;
// on success the returned table is the new state and affected is the
// number of rows inserted, updated or deleted.
func Apply(table *schema.Table, stmt ast.Mutation) (*schema.Table, int64, error) {
	var (
		next     *schema.Table
		affected int64
		err      error
	)

	switch s := stmt.(type) {
	case *ast.InsertStatement:
		next, affected, err = Insert(table, s)
	case *ast.UpdateStatement:
		next, affected, err = Update(table, s)
	case *ast.DeleteStatement:
		next, affected, err = Delete(table, s)
	default:
		return nil, 0, errors.NewUnsupportedStatement("unsupported mutation type: %T", stmt)
	}
	if err != nil {
		return nil, 0, err
	}

	slog.Debug("mutation applied",
		slog.String("table", table.Name),
		slog.String("kind", string(stmt.Kind())),
		slog.Int64("affected", affected),
	)
	return next, affected, nil
}
