package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hebamio/midwife-api/internal/model"
)

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	query := `
		INSERT INTO clients (
			id, midwife_id, first_name, last_name, email, phone,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	client.ID = uuid.New()
	client.CreatedAt = time.Now()
	client.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.MidwifeID,
		client.FirstName,
		client.LastName,
		client.Email,
		client.Phone,
		client.CreatedAt,
		client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

func (r *clientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	query := `
		SELECT id, midwife_id, first_name, last_name, email, phone,
			   created_at, updated_at, deleted_at
		FROM clients
		WHERE id = $1 AND deleted_at IS NULL
	`
	var client model.Client
	if err := r.db.GetContext(ctx, &client, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("client not found")
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, midwifeID uuid.UUID) ([]*model.Client, error) {
	query := `
		SELECT id, midwife_id, first_name, last_name, email, phone,
			   created_at, updated_at, deleted_at
		FROM clients
		WHERE midwife_id = $1 AND deleted_at IS NULL
		ORDER BY last_name, first_name
	`
	var clients []*model.Client
	if err := r.db.SelectContext(ctx, &clients, query, midwifeID); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

func (r *clientRepository) ListNames(ctx context.Context, midwifeID uuid.UUID) ([]*model.ClientName, error) {
	query := `
		SELECT id, first_name, last_name
		FROM clients
		WHERE midwife_id = $1 AND deleted_at IS NULL
		ORDER BY last_name, first_name
	`
	var names []*model.ClientName
	if err := r.db.SelectContext(ctx, &names, query, midwifeID); err != nil {
		return nil, fmt.Errorf("failed to list client names: %w", err)
	}
	return names, nil
}
