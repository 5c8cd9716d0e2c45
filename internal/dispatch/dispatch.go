// Package dispatch routes a statement to the relational or tabular
// executor according to the configured source mode.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/leengari/sheetsql/internal/domain/errors"
	"github.com/leengari/sheetsql/internal/domain/schema"
	"github.com/leengari/sheetsql/internal/executor"
	"github.com/leengari/sheetsql/internal/storage"
)

// RelationalExecutor runs a statement against a relational database
type RelationalExecutor interface {
	Execute(ctx context.Context, statement string) (*schema.Table, error)
}

// RelationalFunc adapts a function to RelationalExecutor
type RelationalFunc func(ctx context.Context, statement string) (*schema.Table, error)

func (f RelationalFunc) Execute(ctx context.Context, statement string) (*schema.Table, error) {
	return f(ctx, statement)
}

// TabularExecutor runs a statement against an in-memory table set
type TabularExecutor interface {
	Execute(ctx context.Context, set *schema.TableSet, handles *storage.Registry, statement string) (*executor.Result, error)
}

// Route names the executor that produced an outcome
type Route string

const (
	RouteRelational Route = "relational"
	RouteTabular    Route = "tabular"
)

// Request carries everything one dispatch needs. A nil Relational means no
// database is connected; a nil Tables means no sheets are loaded.
type Request struct {
	Mode       Mode
	Relational RelationalExecutor
	Tables     *schema.TableSet
	Handles    *storage.Registry
	Statement  string
}

// Outcome is the result of one dispatch. RelationalErr keeps the relational
// failure that triggered a fallback in ModeBoth, so callers can surface it.
type Outcome struct {
	Table         *schema.Table
	Route         Route
	Warning       error
	RelationalErr error
	Message       string
}

// Fallback reports whether the tabular path ran after a relational failure
func (o *Outcome) Fallback() bool {
	return o != nil && o.Route == RouteTabular && o.RelationalErr != nil
}

// Dispatcher selects the backing executor for each statement. It holds no
// table state; everything stateful arrives in the Request.
type Dispatcher struct {
	tabular TabularExecutor
	logger  *slog.Logger
}

// New creates a dispatcher. A nil tabular executor uses executor.New.
func New(tabular TabularExecutor, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if tabular == nil {
		tabular = executor.New(logger)
	}
	return &Dispatcher{tabular: tabular, logger: logger}
}

// Execute routes req.Statement. On failure the returned Outcome is still
// non-nil and records the route taken; its Table is nil.
func (d *Dispatcher) Execute(ctx context.Context, req Request) (*Outcome, error) {
	switch req.Mode {
	case ModeRelational:
		return d.relational(ctx, req)
	case ModeTabular:
		return d.tabularPath(ctx, req, nil)
	case ModeBoth:
		out, err := d.relational(ctx, req)
		if err == nil {
			return out, nil
		}
		d.logger.Info("relational execution failed, falling back to tabular",
			slog.Any("error", err),
		)
		return d.tabularPath(ctx, req, err)
	default:
		return nil, errors.NewInvalidSourceMode(string(req.Mode))
	}
}

func (d *Dispatcher) relational(ctx context.Context, req Request) (*Outcome, error) {
	out := &Outcome{Route: RouteRelational}
	if req.Relational == nil {
		return out, errors.NewStoreUnavailable("relational")
	}

	table, err := req.Relational.Execute(ctx, req.Statement)
	if err != nil {
		return out, err
	}
	out.Table = table
	return out, nil
}

func (d *Dispatcher) tabularPath(ctx context.Context, req Request, relErr error) (*Outcome, error) {
	out := &Outcome{Route: RouteTabular, RelationalErr: relErr}
	if req.Tables == nil {
		return out, errors.NewStoreUnavailable("tabular")
	}

	res, err := d.tabular.Execute(ctx, req.Tables, req.Handles, req.Statement)
	if err != nil {
		return out, err
	}
	out.Table = res.Table
	out.Warning = res.Warning
	out.Message = res.Message
	return out, nil
}
