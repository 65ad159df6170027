package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hebamio/midwife-api/internal/model"
)

const leadColumns = `
	id, midwife_id, first_name, last_name, email, phone,
	service_code, due_date, message, status, client_id,
	created_at, updated_at, deleted_at
`

func (r *leadRepository) Create(ctx context.Context, lead *model.Lead, event *model.OutboxEvent) error {
	query := `
		INSERT INTO leads (
			id, midwife_id, first_name, last_name, email, phone,
			service_code, due_date, message, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			lead.ID,
			lead.MidwifeID,
			lead.FirstName,
			lead.LastName,
			lead.Email,
			lead.Phone,
			lead.ServiceCode,
			lead.DueDate,
			lead.Message,
			lead.Status,
			lead.CreatedAt,
			lead.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create lead: %w", err)
		}
		return insertOutboxTx(ctx, tx, event)
	})
}

func (r *leadRepository) Get(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND deleted_at IS NULL`

	var lead model.Lead
	if err := r.db.GetContext(ctx, &lead, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("lead not found")
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

func (r *leadRepository) List(ctx context.Context, midwifeID uuid.UUID, status model.LeadStatus) ([]*model.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE midwife_id = $1 AND deleted_at IS NULL`
	args := []interface{}{midwifeID}

	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}

	query += " ORDER BY created_at DESC"

	var leads []*model.Lead
	if err := r.db.SelectContext(ctx, &leads, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

func (r *leadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.LeadStatus) error {
	query := `
		UPDATE leads
		SET status = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update lead status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("lead not found")
	}
	return nil
}

// ConvertToClient creates the client record and marks the lead converted in
// one transaction.
func (r *leadRepository) ConvertToClient(ctx context.Context, leadID uuid.UUID, client *model.Client) error {
	client.ID = uuid.New()
	client.CreatedAt = time.Now()
	client.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		insertQuery := `
			INSERT INTO clients (
				id, midwife_id, first_name, last_name, email, phone,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err := tx.ExecContext(ctx, insertQuery,
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

		updateQuery := `
			UPDATE leads
			SET status = $1, client_id = $2, updated_at = $3
			WHERE id = $4 AND deleted_at IS NULL
		`
		result, err := tx.ExecContext(ctx, updateQuery,
			model.LeadStatusConverted, client.ID, time.Now(), leadID)
		if err != nil {
			return fmt.Errorf("failed to mark lead converted: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("lead not found")
		}
		return nil
	})
}
