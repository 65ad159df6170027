package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hebamio/midwife-api/internal/model"
	pkgrepo "github.com/hebamio/midwife-api/pkg/repository"
)

// All repository interfaces in one file
type (
	MidwifeRepository interface {
		Create(ctx context.Context, midwife *model.Midwife) error
		Get(ctx context.Context, id uuid.UUID) (*model.Midwife, error)
		GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Midwife, error)
		Update(ctx context.Context, midwife *model.Midwife) error
		UpdateTimetable(ctx context.Context, id uuid.UUID, timetable model.Timetable, durations model.ServiceDurations) error
		List(ctx context.Context) ([]*model.Midwife, error)
	}

	// AppointmentRepository persists appointments. Write methods that take
	// an event insert it into the outbox in the same transaction; a nil
	// event skips the outbox write.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment, event *model.OutboxEvent) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListForDate(ctx context.Context, midwifeID uuid.UUID, dateKey string) ([]*model.Appointment, error)
		ListBetween(ctx context.Context, midwifeID uuid.UUID, fromKey, toKey string) ([]*model.Appointment, error)
	}

	LeadRepository interface {
		Create(ctx context.Context, lead *model.Lead, event *model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.Lead, error)
		List(ctx context.Context, midwifeID uuid.UUID, status model.LeadStatus) ([]*model.Lead, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.LeadStatus) error
		ConvertToClient(ctx context.Context, leadID uuid.UUID, client *model.Client) error
	}

	ClientRepository interface {
		Create(ctx context.Context, client *model.Client) error
		Get(ctx context.Context, id uuid.UUID) (*model.Client, error)
		List(ctx context.Context, midwifeID uuid.UUID) ([]*model.Client, error)
		ListNames(ctx context.Context, midwifeID uuid.UUID) ([]*model.ClientName, error)
	}

	PhoneBookingRepository interface {
		Create(ctx context.Context, booking *model.PhoneBooking, event *model.OutboxEvent) error
		Get(ctx context.Context, id uuid.UUID) (*model.PhoneBooking, error)
		List(ctx context.Context, midwifeID uuid.UUID, status string) ([]*model.PhoneBooking, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	}

	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	}

	TokenRepository interface {
		StoreResetToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Time) error
		ValidateResetToken(ctx context.Context, token string) (uuid.UUID, error)
		InvalidateToken(ctx context.Context, token string) error
	}

	// OutboxRepository extends the worker-facing interface with the write
	// side used by the services.
	OutboxRepository interface {
		pkgrepo.OutboxRepository
		Create(ctx context.Context, event *model.OutboxEvent) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
