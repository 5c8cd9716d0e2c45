// Package writeback keeps external sheets in step with their in-memory
// tables by total overwrite.
package writeback

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leengari/sheetsql/internal/domain/schema"
	"github.com/leengari/sheetsql/internal/storage"
)

// Synchronizer pushes table state to handles and loads it back
type Synchronizer struct {
	logger *slog.Logger
}

// New creates a synchronizer. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synchronizer{logger: logger}
}

// Push replaces the sheet content with table. An empty table only clears
// the sheet; otherwise the sheet is cleared and rewritten with a header row
// and one string row per record. A failed rewrite leaves the sheet cleared
// and the returned error says so.
func (s *Synchronizer) Push(ctx context.Context, h storage.Handle, table *schema.Table) error {
	if err := h.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear sheet %s: %w", h.Name(), err)
	}

	if table.Len() == 0 {
		s.logger.Info("sheet cleared",
			slog.String("sheet", h.Name()),
		)
		return nil
	}

	grid := storage.ToGrid(table)
	if err := h.Update(ctx, grid); err != nil {
		s.logger.Error("sheet left cleared after failed write",
			slog.String("sheet", h.Name()),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to write sheet %s, external copy left cleared: %w", h.Name(), err)
	}

	s.logger.Info("sheet synchronized",
		slog.String("sheet", h.Name()),
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(table.Columns)),
	)
	return nil
}

// Load fetches the full sheet and builds a table named after the handle
func (s *Synchronizer) Load(ctx context.Context, h storage.Handle) (*schema.Table, error) {
	grid, err := h.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sheet %s: %w", h.Name(), err)
	}

	table, err := storage.FromGrid(h.Name(), grid)
	if err != nil {
		return nil, err
	}

	s.logger.Info("sheet loaded",
		slog.String("sheet", h.Name()),
		slog.Int("rows", table.Len()),
	)
	return table, nil
}
