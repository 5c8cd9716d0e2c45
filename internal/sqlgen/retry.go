package sqlgen

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Retrying wraps a Generator with capped retries and exponential backoff.
// Quota and rate-limit failures are reported at once.
type Retrying struct {
	Next       Generator
	MaxRetries int
	Backoff    time.Duration
	Logger     *slog.Logger
}

// NewRetrying wraps next with two retries starting at a one second backoff
func NewRetrying(next Generator, logger *slog.Logger) *Retrying {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retrying{Next: next, MaxRetries: 2, Backoff: time.Second, Logger: logger}
}

func (r *Retrying) Generate(ctx context.Context, question, schemaContext string) (string, error) {
	backoff := r.Backoff
	for attempt := 0; ; attempt++ {
		sql, err := r.Next.Generate(ctx, question, schemaContext)
		if err == nil {
			return sql, nil
		}
		if isQuotaError(err) {
			return ErrorPrefix + " quota or rate limit exceeded: " + err.Error(), nil
		}
		if attempt >= r.MaxRetries {
			return ErrorPrefix + " could not generate SQL: " + err.Error(), nil
		}

		r.Logger.Warn("sql generation failed, retrying",
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
			slog.Any("error", err),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("sql generation canceled: %w", ctx.Err())
		case <-timer.C:
		}
		backoff *= 2
	}
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(strings.ToLower(msg), "quota") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "ResourceExhausted")
}
