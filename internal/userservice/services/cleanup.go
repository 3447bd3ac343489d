package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/chatapp/internal/logging"
	"github.com/dmitrijs2005/chatapp/internal/userservice/repositories/repomanager"
)

// cleanupMaxAttempts bounds retries of a single sweep on transient store
// errors. Authentication flows themselves never retry; only this
// out-of-band maintenance path does.
const cleanupMaxAttempts = 3

// CleanupWorker periodically removes expired refresh-token records. It
// runs outside the request path so the latency-sensitive flows never pay
// for bulk deletion.
type CleanupWorker struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	interval time.Duration
	logger   logging.Logger
}

// NewCleanupWorker constructs a worker sweeping every interval.
func NewCleanupWorker(db *sql.DB, repos repomanager.RepositoryManager, interval time.Duration, logger logging.Logger) *CleanupWorker {
	return &CleanupWorker{
		db:       db,
		repos:    repos,
		interval: interval,
		logger:   logger.With("module", "token_cleanup"),
	}
}

// Run sweeps on every tick until ctx is cancelled. Intended to be started
// in its own goroutine by the app.
func (w *CleanupWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *CleanupWorker) sweep(ctx context.Context) {
	repo := w.repos.RefreshTokens(w.db)

	var lastErr error
	for attempt := 1; attempt <= cleanupMaxAttempts; attempt++ {
		n, err := repo.DeleteExpired(ctx, time.Now())
		if err == nil {
			if n > 0 {
				w.logger.Info(ctx, "expired refresh tokens removed", "count", n)
			}
			return
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}

	w.logger.Error(ctx, "expired-token cleanup failed", "error", lastErr.Error())
}
