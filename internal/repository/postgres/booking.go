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

func (r *phoneBookingRepository) Create(ctx context.Context, booking *model.PhoneBooking, event *model.OutboxEvent) error {
	query := `
		INSERT INTO phone_bookings (
			id, midwife_id, name, phone, preferred_at, topic, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			booking.ID,
			booking.MidwifeID,
			booking.Name,
			booking.Phone,
			booking.PreferredAt,
			booking.Topic,
			booking.Status,
			booking.CreatedAt,
			booking.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create phone booking: %w", err)
		}
		return insertOutboxTx(ctx, tx, event)
	})
}

func (r *phoneBookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.PhoneBooking, error) {
	query := `
		SELECT id, midwife_id, name, phone, preferred_at, topic, status,
			   created_at, updated_at, deleted_at
		FROM phone_bookings
		WHERE id = $1 AND deleted_at IS NULL
	`
	var booking model.PhoneBooking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("phone booking not found")
		}
		return nil, fmt.Errorf("failed to get phone booking: %w", err)
	}
	return &booking, nil
}

func (r *phoneBookingRepository) List(ctx context.Context, midwifeID uuid.UUID, status string) ([]*model.PhoneBooking, error) {
	query := `
		SELECT id, midwife_id, name, phone, preferred_at, topic, status,
			   created_at, updated_at, deleted_at
		FROM phone_bookings
		WHERE midwife_id = $1 AND deleted_at IS NULL
	`
	args := []interface{}{midwifeID}

	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}

	query += " ORDER BY created_at DESC"

	var bookings []*model.PhoneBooking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list phone bookings: %w", err)
	}
	return bookings, nil
}

func (r *phoneBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE phone_bookings
		SET status = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update phone booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("phone booking not found")
	}
	return nil
}
