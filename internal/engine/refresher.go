package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// reloadTimeout bounds one scheduled reload
const reloadTimeout = time.Minute

// Refresher reloads attached sheets on a cron schedule
type Refresher struct {
	cron   *cron.Cron
	engine *Engine
	logger *slog.Logger
}

// NewRefresher schedules e.Reload on spec, a standard five-field cron
// expression or a descriptor such as "@every 5m"
func NewRefresher(e *Engine, spec string, logger *slog.Logger) (*Refresher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Refresher{
		cron:   cron.New(),
		engine: e,
		logger: logger,
	}
	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	return r, nil
}

// Start begins the schedule in the background
func (r *Refresher) Start() {
	r.cron.Start()
	r.logger.Info("sheet refresher started", "entries", len(r.cron.Entries()))
}

// Stop halts the schedule and waits for a running reload to finish
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info("sheet refresher stopped")
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	defer cancel()

	if err := r.engine.Reload(ctx); err != nil {
		r.logger.Warn("scheduled reload failed", "error", err)
		return
	}
	r.logger.Debug("scheduled reload complete", "tables", len(r.engine.Attached()))
}
