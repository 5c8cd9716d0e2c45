// Package evaluator runs read-only SQL over an in-memory table set by
// loading it into a throwaway SQLite database.
package evaluator

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/leengari/sheetsql/internal/domain/errors"
	"github.com/leengari/sheetsql/internal/domain/schema"
)

// Evaluator answers SELECT statements against a TableSet
type Evaluator struct {
	logger *slog.Logger
}

// New creates an evaluator. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{logger: logger}
}

// Query loads every addressable name in set as a relation and runs query
// verbatim. Evaluation failures come back as QueryEvaluationError carrying
// the driver message.
func (e *Evaluator) Query(ctx context.Context, set *schema.TableSet, query string) (*schema.Table, error) {
	db, err := openMemory()
	if err != nil {
		return nil, errors.NewQueryEvaluation(err)
	}
	defer db.Close()

	if err := e.load(ctx, db, set); err != nil {
		return nil, errors.NewQueryEvaluation(err)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewQueryEvaluation(err)
	}
	defer rows.Close()

	result, err := schema.FromRows("result", rows)
	if err != nil {
		return nil, errors.NewQueryEvaluation(err)
	}

	e.logger.Debug("query evaluated",
		slog.Int("relations", set.Len()),
		slog.Int("rows", result.Len()),
	)
	return result, nil
}

// openMemory opens a private in-memory database. A memory database lives
// per connection, so the pool is pinned to one.
func openMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// load creates one untyped relation per name. SQLite folds identifier
// case, so the first of several names differing only in case wins.
func (e *Evaluator) load(ctx context.Context, db *sql.DB, set *schema.TableSet) error {
	seen := make(map[string]string)
	for _, name := range set.Names() {
		table, _ := set.Get(name)
		if table == nil || len(table.Columns) == 0 {
			e.logger.Debug("skipping relation without columns", slog.String("name", name))
			continue
		}

		key := strings.ToLower(name)
		if prev, ok := seen[key]; ok {
			e.logger.Warn("skipping relation shadowed by case-insensitive name",
				slog.String("name", name),
				slog.String("kept", prev),
			)
			continue
		}
		seen[key] = name

		if err := createRelation(ctx, db, name, table); err != nil {
			return fmt.Errorf("failed to load %q: %w", name, err)
		}
	}
	return nil
}

func createRelation(ctx context.Context, db *sql.DB, name string, table *schema.Table) error {
	columns := uniqueColumns(table.Columns)

	quoted := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdent(c)
		params[i] = "?"
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(quoted, ", "))
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return err
	}
	if table.Len() == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(name), strings.Join(quoted, ", "), strings.Join(params, ", "))
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]interface{}, len(columns))
	for _, row := range table.Rows {
		for i, c := range columns {
			args[i] = row.Data[c]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// uniqueColumns drops columns whose name repeats an earlier one ignoring case
func uniqueColumns(columns []string) []string {
	seen := make(map[string]bool, len(columns))
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		k := strings.ToLower(c)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}

// quoteIdent wraps an identifier in double quotes, doubling embedded ones
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
