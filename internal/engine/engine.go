// Package engine is the caller-side session: it owns the sheet-backed
// table set and its handles, routes statements through the dispatcher and
// reports lifecycle events to observers.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/leengari/sheetsql/internal/dispatch"
	"github.com/leengari/sheetsql/internal/domain/data"
	"github.com/leengari/sheetsql/internal/domain/errors"
	"github.com/leengari/sheetsql/internal/domain/schema"
	"github.com/leengari/sheetsql/internal/domain/transaction"
	"github.com/leengari/sheetsql/internal/parser"
	"github.com/leengari/sheetsql/internal/parser/ast"
	"github.com/leengari/sheetsql/internal/relational"
	"github.com/leengari/sheetsql/internal/storage"
	"github.com/leengari/sheetsql/internal/storage/writeback"
)

// attachLimit bounds concurrent sheet fetches
const attachLimit = 8

// RelationalStore is the live database a session may route to
type RelationalStore interface {
	Execute(ctx context.Context, statement string) (*schema.Table, error)
	Schema(ctx context.Context) ([]relational.TableSchema, error)
}

// Options configures a session
type Options struct {
	Mode       dispatch.Mode
	Relational RelationalStore // nil when no database is connected
	Logger     *slog.Logger
}

// Engine holds the state of one session. Execute and Reload are
// serialized; the engine is safe for use by concurrent callers.
type Engine struct {
	mu         sync.Mutex
	mode       dispatch.Mode
	relational RelationalStore
	tables     *schema.TableSet
	handles    *storage.Registry
	dispatcher *dispatch.Dispatcher
	sync       *writeback.Synchronizer
	logger     *slog.Logger

	obsMu     sync.RWMutex
	observers []Observer
}

// New creates a session with an empty table set. A zero Mode defaults to
// ModeTabular.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mode := opts.Mode
	if mode == "" {
		mode = dispatch.ModeTabular
	}
	return &Engine{
		mode:       mode,
		relational: opts.Relational,
		tables:     schema.NewTableSet(),
		handles:    storage.NewRegistry(),
		dispatcher: dispatch.New(nil, logger),
		sync:       writeback.New(logger),
		logger:     logger,
	}
}

// Mode returns the current source mode
func (e *Engine) Mode() dispatch.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// SetMode switches the source mode for later statements
func (e *Engine) SetMode(mode dispatch.Mode) error {
	m, err := dispatch.ParseMode(string(mode))
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = m
	return nil
}

// Register adds an in-memory table with no external copy
func (e *Engine) Register(t *schema.Table, aliases ...string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tables.Register(t, aliases...)
}

// Attach loads the sheet behind h and registers it under its raw name and
// its identifier-safe alias. Mutations of the table are pushed back to h.
func (e *Engine) Attach(ctx context.Context, h storage.Handle) error {
	table, err := e.sync.Load(ctx, h)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bind(h, table)
}

// AttachAll loads every handle with bounded parallelism, then registers
// them in the given order. Nothing is registered if any load fails.
func (e *Engine) AttachAll(ctx context.Context, handles []storage.Handle) error {
	tables := make([]*schema.Table, len(handles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(attachLimit)
	for i := range handles {
		h := handles[i]
		g.Go(func() error {
			t, err := e.sync.Load(gctx, h)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("attach sheets: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i, h := range handles {
		if err := e.bind(h, tables[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) bind(h storage.Handle, table *schema.Table) error {
	name := h.Name()
	if _, ok := e.handles.Lookup(name); ok {
		return fmt.Errorf("sheet %q is already attached", name)
	}

	var aliases []string
	if safe := schema.SafeName(name); safe != name {
		aliases = append(aliases, safe)
	}
	if err := e.tables.Register(table, aliases...); err != nil {
		return fmt.Errorf("register sheet %q: %w", name, err)
	}
	if err := e.handles.Register(name, h); err != nil {
		return err
	}

	e.notify(Event{Type: EventAttach, Data: map[string]interface{}{
		"table":   name,
		"aliases": aliases,
		"rows":    table.Len(),
	}})
	return nil
}

// Reload refetches every attached sheet and replaces its table. Either
// all tables are replaced or none are.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx := transaction.NewTransaction()
	defer tx.Close()

	names := e.handles.Tables()
	tables := make([]*schema.Table, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(attachLimit)
	for i, name := range names {
		h, _ := e.handles.Lookup(name)
		g.Go(func() error {
			t, err := e.sync.Load(gctx, h)
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("reload sheets: %w", err)
	}

	for i, name := range names {
		if err := e.tables.Replace(name, tables[i]); err != nil {
			return err
		}
		tx.Record(transaction.ChangeTypeReload, name, int64(tables[i].Len()))
	}

	e.notify(Event{Type: EventReload, TxID: tx.ID, Data: map[string]interface{}{
		"tables":   len(names),
		"duration": tx.Elapsed().String(),
	}})
	return nil
}

// Execute runs one statement through the dispatcher
func (e *Engine) Execute(ctx context.Context, statement string) (*dispatch.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tx := transaction.NewTransaction()
	defer tx.Close()

	e.notify(Event{Type: EventDispatchStart, TxID: tx.ID, Data: statement})

	req := dispatch.Request{
		Mode:      e.mode,
		Handles:   e.handles,
		Statement: statement,
	}
	if e.relational != nil {
		req.Relational = e.relational
	}
	if e.tables.Len() > 0 {
		req.Tables = e.tables
	}

	out, err := e.dispatcher.Execute(ctx, req)
	if out != nil {
		e.notify(Event{Type: EventRoute, TxID: tx.ID, Data: out.Route})
		if out.Fallback() {
			e.notify(Event{Type: EventFallback, TxID: tx.ID, Data: out.RelationalErr.Error()})
		}
		if out.Warning != nil {
			e.notify(Event{Type: EventSyncWarning, TxID: tx.ID, Data: out.Warning.Error()})
		}
		if err == nil && out.Route == dispatch.RouteTabular {
			e.record(tx, statement, out.Table)
		}
	}

	summary := map[string]interface{}{
		"duration": tx.Elapsed().String(),
		"changes":  tx.Changes,
	}
	if err != nil {
		summary["error"] = err.Error()
		summary["kind"] = errors.KindOf(err)
	}
	e.notify(Event{Type: EventDispatchEnd, TxID: tx.ID, Data: summary})

	return out, err
}

// record notes a tabular mutation on tx
func (e *Engine) record(tx *transaction.Transaction, statement string, result *schema.Table) {
	stmt, err := parser.Parse(statement)
	if err != nil {
		return
	}
	m, ok := stmt.(ast.Mutation)
	if !ok {
		return
	}
	var rows int64
	if result != nil && result.Len() == 1 {
		if v, ok := result.Rows[0].Get("affected_rows"); ok {
			rows, _ = v.(int64)
		}
	}
	canonical, _ := e.tables.Resolve(m.TargetTable())
	tx.Record(transaction.ChangeType(m.Kind()), canonical, rows)
}

// Tables returns every addressable table name
func (e *Engine) Tables() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tables.Names()
}

// Attached returns the names of tables bound to an external sheet
func (e *Engine) Attached() []string {
	return e.handles.Tables()
}

// Table returns a copy of the table addressed by name
func (e *Engine) Table(name string) (*schema.Table, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tables.Get(name)
	if !ok {
		return nil, false
	}
	return t.Copy(), true
}

// columnType infers a column's type from its non-blank cells. Mixed types
// report as string.
func columnType(t *schema.Table, column string) string {
	kind := ""
	for _, row := range t.Rows {
		v, _ := row.Get(column)
		if v == nil || v == "" {
			continue
		}
		if name := data.TypeName(v); kind == "" {
			kind = name
		} else if kind != name {
			return "string"
		}
	}
	if kind == "" {
		return "string"
	}
	return kind
}
