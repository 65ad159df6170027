package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hebamio/midwife-api/internal/model"
)

// midwifeRow carries the JSONB columns alongside the model fields so a
// single scan covers the whole record.
type midwifeRow struct {
	model.Midwife
	TimetableJSON []byte `db:"timetable"`
	DurationsJSON []byte `db:"service_durations"`
}

func (row *midwifeRow) toModel() (*model.Midwife, error) {
	m := row.Midwife
	if len(row.TimetableJSON) > 0 {
		if err := json.Unmarshal(row.TimetableJSON, &m.Timetable); err != nil {
			return nil, fmt.Errorf("failed to decode timetable: %w", err)
		}
	}
	if len(row.DurationsJSON) > 0 {
		if err := json.Unmarshal(row.DurationsJSON, &m.Durations); err != nil {
			return nil, fmt.Errorf("failed to decode service durations: %w", err)
		}
	}
	return &m, nil
}

func (r *midwifeRepository) Create(ctx context.Context, midwife *model.Midwife) error {
	timetableJSON, err := json.Marshal(midwife.Timetable)
	if err != nil {
		return fmt.Errorf("failed to encode timetable: %w", err)
	}
	durationsJSON, err := json.Marshal(midwife.Durations)
	if err != nil {
		return fmt.Errorf("failed to encode service durations: %w", err)
	}

	query := `
		INSERT INTO midwives (
			id, user_id, first_name, last_name, email, phone,
			region, bio, timezone, timetable, service_durations,
			accepts_new, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	midwife.ID = uuid.New()
	midwife.CreatedAt = time.Now()
	midwife.UpdatedAt = time.Now()

	_, err = r.db.ExecContext(ctx, query,
		midwife.ID,
		midwife.UserID,
		midwife.FirstName,
		midwife.LastName,
		midwife.Email,
		midwife.Phone,
		midwife.Region,
		midwife.Bio,
		midwife.Timezone,
		timetableJSON,
		durationsJSON,
		midwife.AcceptsNew,
		midwife.CreatedAt,
		midwife.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create midwife: %w", err)
	}
	return nil
}

const midwifeColumns = `
	id, user_id, first_name, last_name, email, phone,
	region, bio, timezone, timetable, service_durations,
	accepts_new, created_at, updated_at, deleted_at
`

func (r *midwifeRepository) Get(ctx context.Context, id uuid.UUID) (*model.Midwife, error) {
	query := `SELECT ` + midwifeColumns + ` FROM midwives WHERE id = $1 AND deleted_at IS NULL`

	var row midwifeRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("midwife not found")
		}
		return nil, fmt.Errorf("failed to get midwife: %w", err)
	}
	return row.toModel()
}

func (r *midwifeRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Midwife, error) {
	query := `SELECT ` + midwifeColumns + ` FROM midwives WHERE user_id = $1 AND deleted_at IS NULL`

	var row midwifeRow
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("midwife not found")
		}
		return nil, fmt.Errorf("failed to get midwife by user: %w", err)
	}
	return row.toModel()
}

func (r *midwifeRepository) Update(ctx context.Context, midwife *model.Midwife) error {
	query := `
		UPDATE midwives
		SET first_name = $1, last_name = $2, phone = $3, region = $4,
			bio = $5, timezone = $6, accepts_new = $7, updated_at = $8
		WHERE id = $9 AND deleted_at IS NULL
	`
	midwife.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		midwife.FirstName,
		midwife.LastName,
		midwife.Phone,
		midwife.Region,
		midwife.Bio,
		midwife.Timezone,
		midwife.AcceptsNew,
		midwife.UpdatedAt,
		midwife.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update midwife: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("midwife not found")
	}
	return nil
}

func (r *midwifeRepository) UpdateTimetable(ctx context.Context, id uuid.UUID, timetable model.Timetable, durations model.ServiceDurations) error {
	timetableJSON, err := json.Marshal(timetable)
	if err != nil {
		return fmt.Errorf("failed to encode timetable: %w", err)
	}
	durationsJSON, err := json.Marshal(durations)
	if err != nil {
		return fmt.Errorf("failed to encode service durations: %w", err)
	}

	query := `
		UPDATE midwives
		SET timetable = $1, service_durations = $2, updated_at = $3
		WHERE id = $4 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, timetableJSON, durationsJSON, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update timetable: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("midwife not found")
	}
	return nil
}

func (r *midwifeRepository) List(ctx context.Context) ([]*model.Midwife, error) {
	query := `SELECT ` + midwifeColumns + ` FROM midwives WHERE deleted_at IS NULL ORDER BY last_name, first_name`

	var rows []*midwifeRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list midwives: %w", err)
	}

	midwives := make([]*model.Midwife, 0, len(rows))
	for _, row := range rows {
		m, err := row.toModel()
		if err != nil {
			return nil, err
		}
		midwives = append(midwives, m)
	}
	return midwives, nil
}
