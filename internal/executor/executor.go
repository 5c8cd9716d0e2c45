// Package executor runs statements against an in-memory table set and
// writes mutated tables back to their external sheets.
package executor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leengari/sheetsql/internal/domain/errors"
	"github.com/leengari/sheetsql/internal/domain/schema"
	"github.com/leengari/sheetsql/internal/parser"
	"github.com/leengari/sheetsql/internal/parser/ast"
	"github.com/leengari/sheetsql/internal/query/evaluator"
	"github.com/leengari/sheetsql/internal/query/operations/crud"
	"github.com/leengari/sheetsql/internal/storage"
	"github.com/leengari/sheetsql/internal/storage/writeback"
)

// Result is the outcome of one statement. Table is the query result or
// the one-cell affected_rows table for a mutation. Warning is set when a
// mutation applied in memory but the external write failed.
type Result struct {
	Table        *schema.Table
	Kind         ast.Kind
	RowsAffected int64
	Warning      error
	Message      string
}

// Executor is the tabular execution path
type Executor struct {
	evaluator *evaluator.Evaluator
	sync      *writeback.Synchronizer
	logger    *slog.Logger
}

// New creates an executor. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		evaluator: evaluator.New(logger),
		sync:      writeback.New(logger),
		logger:    logger,
	}
}

// Execute runs statement against set. Mutations replace the addressed
// table in set only on success; tables bound in handles are then pushed
// to their sheet.
func (e *Executor) Execute(ctx context.Context, set *schema.TableSet, handles *storage.Registry, statement string) (*Result, error) {
	if set == nil {
		return nil, errors.NewStoreUnavailable("tabular")
	}

	stmt, err := parser.Parse(statement)
	if err != nil {
		return nil, err
	}

	switch s := stmt.(type) {
	case *ast.SelectStatement:
		return e.executeSelect(ctx, set, s)
	case ast.Mutation:
		return e.executeMutation(ctx, set, handles, s)
	default:
		return nil, errors.NewUnsupportedStatement("unsupported statement type: %T", stmt)
	}
}

func (e *Executor) executeSelect(ctx context.Context, set *schema.TableSet, stmt *ast.SelectStatement) (*Result, error) {
	table, err := e.evaluator.Query(ctx, set, stmt.Query)
	if err != nil {
		return nil, err
	}
	return &Result{
		Table:   table,
		Kind:    ast.KindSelect,
		Message: fmt.Sprintf("Returned %d rows", table.Len()),
	}, nil
}

func (e *Executor) executeMutation(ctx context.Context, set *schema.TableSet, handles *storage.Registry, stmt ast.Mutation) (*Result, error) {
	canonical, ok := set.Resolve(stmt.TargetTable())
	if !ok {
		return nil, errors.NewUnknownTable(stmt.TargetTable())
	}
	current, _ := set.Get(canonical)

	next, affected, err := crud.Apply(current, stmt)
	if err != nil {
		return nil, err
	}
	if err := set.Replace(canonical, next); err != nil {
		return nil, err
	}

	res := &Result{
		Table:        schema.AffectedRows(affected),
		Kind:         stmt.Kind(),
		RowsAffected: affected,
		Message:      fmt.Sprintf("%s %d", stmt.Kind(), affected),
	}

	if h, ok := handles.Lookup(canonical); ok {
		if err := e.sync.Push(ctx, h, next); err != nil {
			res.Warning = errors.NewSynchronizationWarning(canonical, string(stmt.Kind()), err)
			e.logger.Warn("write-back failed",
				slog.String("table", canonical),
				slog.String("kind", string(stmt.Kind())),
				slog.Any("error", err),
			)
		}
	}

	return res, nil
}
