package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/hebamio/midwife-api/internal/repository"
	"github.com/hebamio/midwife-api/pkg/logger"
)

// OutboxCleanupWorker periodically deletes outbox events that were
// published long enough ago that they are no longer useful for replay.
type OutboxCleanupWorker struct {
	repo            repository.OutboxRepository
	retentionDays   int
	cleanupInterval time.Duration
	logger          *logger.Logger
}

func NewOutboxCleanupWorker(repo repository.OutboxRepository, retentionDays int, cleanupInterval time.Duration, logger *logger.Logger) *OutboxCleanupWorker {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Hour
	}
	return &OutboxCleanupWorker{
		repo:            repo,
		retentionDays:   retentionDays,
		cleanupInterval: cleanupInterval,
		logger:          logger,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	w.logger.Info("starting outbox cleanup worker")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox cleanup worker shutting down")
			return
		case <-ticker.C:
			if err := w.cleanup(ctx); err != nil {
				w.logger.Error(err, "outbox cleanup failed")
			}
		}
	}
}

func (w *OutboxCleanupWorker) cleanup(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -w.retentionDays)

	rows, err := w.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete processed events: %w", err)
	}

	if rows > 0 {
		w.logger.Info("deleted processed outbox events", "rows", rows, "cutoff", cutoff)
	}
	return nil
}
