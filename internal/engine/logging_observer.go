package engine

import (
	"context"
	"log/slog"
)

// LoggingObserver is a simple observer that logs all events using structured logging
type LoggingObserver struct {
	logger *slog.Logger
}

// NewLoggingObserver creates a new logging observer. A nil logger uses slog.Default().
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{logger: logger}
}

// OnEvent implements the Observer interface
// It logs each event with structured fields for easy filtering and analysis
func (lo *LoggingObserver) OnEvent(event Event) {
	level := slog.LevelDebug
	switch event.Type {
	case EventFallback, EventSyncWarning:
		level = slog.LevelWarn
	case EventDispatchEnd, EventAttach, EventReload:
		level = slog.LevelInfo
	}
	lo.logger.Log(context.Background(), level, "session_lifecycle",
		"event", event.Type,
		"tx_id", event.TxID,
		"timestamp", event.Timestamp,
		"data", event.Data,
	)
}
