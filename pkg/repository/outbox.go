package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/hebamio/midwife-api/internal/model"
)

// OutboxRepository exposes only what the outbox worker needs.
type OutboxRepository interface {
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string) error
}
