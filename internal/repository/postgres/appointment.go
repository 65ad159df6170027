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

// Appointment dates travel as dd/mm/yyyy strings but are stored as DATE so
// range queries stay sane; to_date/to_char bridge the two.
const apptDateFormat = "DD/MM/YYYY"

const appointmentColumns = `
	id, midwife_id, client_id, service_code,
	to_char(appointment_date, '` + apptDateFormat + `') AS appointment_date,
	start_time, end_time, duration_minutes, status, notes, cancel_reason,
	created_at, updated_at, deleted_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error {
	query := `
		INSERT INTO appointments (
			id, midwife_id, client_id, service_code, appointment_date,
			start_time, end_time, duration_minutes, status, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, to_date($5, '` + apptDateFormat + `'), $6, $7, $8, $9, $10, $11, $12)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			appointment.ID,
			appointment.MidwifeID,
			appointment.ClientID,
			appointment.ServiceCode,
			appointment.AppointmentDate,
			appointment.StartTime,
			appointment.EndTime,
			appointment.DurationMinutes,
			appointment.Status,
			appointment.Notes,
			appointment.CreatedAt,
			appointment.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return insertOutboxTx(ctx, tx, event)
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 AND deleted_at IS NULL`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("appointment not found")
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error {
	query := `
		UPDATE appointments
		SET appointment_date = to_date($1, '` + apptDateFormat + `'),
			start_time = $2, end_time = $3, status = $4,
			notes = $5, cancel_reason = $6, updated_at = $7
		WHERE id = $8 AND deleted_at IS NULL
	`
	appointment.UpdatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			appointment.AppointmentDate,
			appointment.StartTime,
			appointment.EndTime,
			appointment.Status,
			appointment.Notes,
			appointment.CancelReason,
			appointment.UpdatedAt,
			appointment.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update appointment: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("appointment not found")
		}
		return insertOutboxTx(ctx, tx, event)
	})
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE deleted_at IS NULL`
	args := []interface{}{}
	argCount := 1

	if filters.MidwifeID != uuid.Nil {
		query += fmt.Sprintf(" AND midwife_id = $%d", argCount)
		args = append(args, filters.MidwifeID)
		argCount++
	}
	if filters.ClientID != uuid.Nil {
		query += fmt.Sprintf(" AND client_id = $%d", argCount)
		args = append(args, filters.ClientID)
		argCount++
	}
	if filters.ServiceCode != "" {
		query += fmt.Sprintf(" AND service_code = $%d", argCount)
		args = append(args, filters.ServiceCode)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if filters.FromDate != "" {
		query += fmt.Sprintf(" AND appointment_date >= to_date($%d, '%s')", argCount, apptDateFormat)
		args = append(args, filters.FromDate)
		argCount++
	}
	if filters.ToDate != "" {
		query += fmt.Sprintf(" AND appointment_date <= to_date($%d, '%s')", argCount, apptDateFormat)
		args = append(args, filters.ToDate)
		argCount++
	}

	query += " ORDER BY appointment_date ASC, start_time ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForDate(ctx context.Context, midwifeID uuid.UUID, dateKey string) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE midwife_id = $1
		AND appointment_date = to_date($2, '` + apptDateFormat + `')
		AND deleted_at IS NULL
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, midwifeID, dateKey); err != nil {
		return nil, fmt.Errorf("failed to list appointments for date: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListBetween(ctx context.Context, midwifeID uuid.UUID, fromKey, toKey string) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE midwife_id = $1
		AND appointment_date >= to_date($2, '` + apptDateFormat + `')
		AND appointment_date <= to_date($3, '` + apptDateFormat + `')
		AND deleted_at IS NULL
		ORDER BY appointment_date ASC, start_time ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, midwifeID, fromKey, toKey); err != nil {
		return nil, fmt.Errorf("failed to list appointments between dates: %w", err)
	}
	return appointments, nil
}
