package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/civicid/sso-service/internal/application"
)

// SessionSweeper periodically flips expired-but-still-active sessions
// to inactive. Expiry is already enforced at validation time; the
// sweeper keeps the session table honest for listings and reporting.
type SessionSweeper struct {
	logger   *slog.Logger
	service  *application.Service
	interval time.Duration
}

// NewSessionSweeper constructs the sweep loop with a sane default interval.
func NewSessionSweeper(logger *slog.Logger, service *application.Service, interval time.Duration) *SessionSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionSweeper{
		logger:   logger,
		service:  service,
		interval: interval,
	}
}

// Run executes the periodic sweep loop until context cancellation.
func (w *SessionSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if err := w.sweepOnce(ctx); err != nil {
			w.logger.ErrorContext(ctx, "session sweep failed",
				"module", "worker.session_sweeper",
				"layer", "adapter",
				"operation", "sweep_expired_sessions",
				"outcome", "failure",
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *SessionSweeper) sweepOnce(ctx context.Context) error {
	count, err := w.service.SweepExpiredSessions(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		w.logger.InfoContext(ctx, "expired sessions swept",
			"module", "worker.session_sweeper",
			"layer", "adapter",
			"operation", "sweep_expired_sessions",
			"outcome", "success",
			"swept_count", count,
		)
	}
	return nil
}
