package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leengari/sheetsql/internal/dispatch"
	"github.com/leengari/sheetsql/internal/sqlgen"
)

// SchemaContext describes the relational schema and every loaded table
// for a SQL generator, one "Table:" block per table. A relational schema
// failure is logged and the sheet tables are still described.
func (e *Engine) SchemaContext(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var b strings.Builder
	if e.relational != nil && e.mode != dispatch.ModeTabular {
		tables, err := e.relational.Schema(ctx)
		if err != nil {
			if e.mode == dispatch.ModeRelational {
				return "", fmt.Errorf("describe relational schema: %w", err)
			}
			e.logger.Warn("failed to describe relational schema", slog.Any("error", err))
		}
		for _, t := range tables {
			fmt.Fprintf(&b, "Table: %s\n", t.Name)
			for _, c := range t.Columns {
				fmt.Fprintf(&b, "  - %s (%s)\n", c.Name, c.Type)
			}
		}
	}

	if e.mode != dispatch.ModeRelational {
		for _, name := range e.tables.Canonical() {
			t, _ := e.tables.Get(name)
			fmt.Fprintf(&b, "Table: %s\n", name)
			for _, c := range t.Columns {
				fmt.Fprintf(&b, "  - %s (%s)\n", c, columnType(t, c))
			}
		}
	}
	return b.String(), nil
}

// Ask generates SQL for question and executes it. The generated statement
// is returned even when execution fails.
func (e *Engine) Ask(ctx context.Context, gen sqlgen.Generator, question string) (string, *dispatch.Outcome, error) {
	schemaContext, err := e.SchemaContext(ctx)
	if err != nil {
		return "", nil, err
	}

	sql, err := sqlgen.Generate(ctx, gen, question, schemaContext)
	if err != nil {
		return "", nil, err
	}
	e.logger.Debug("generated sql", slog.String("question", question), slog.String("sql", sql))

	out, err := e.Execute(ctx, sql)
	return sql, out, err
}
