package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hebamio/midwife-api/internal/model"
	"github.com/hebamio/midwife-api/internal/schedule"
	"github.com/hebamio/midwife-api/internal/service/midwife"
	apperrors "github.com/hebamio/midwife-api/pkg/errors"
	"github.com/hebamio/midwife-api/pkg/logger"
	"github.com/hebamio/midwife-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("booking_service_test")

type mockPhoneRepo struct {
	bookings map[uuid.UUID]*model.PhoneBooking
	events   []*model.OutboxEvent
}

func (m *mockPhoneRepo) Create(ctx context.Context, b *model.PhoneBooking, event *model.OutboxEvent) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	m.bookings[b.ID] = b
	if event != nil {
		m.events = append(m.events, event)
	}
	return nil
}

func (m *mockPhoneRepo) Get(ctx context.Context, id uuid.UUID) (*model.PhoneBooking, error) {
	b, ok := m.bookings[id]
	if !ok {
		return nil, fmt.Errorf("phone booking not found")
	}
	return b, nil
}

func (m *mockPhoneRepo) List(ctx context.Context, midwifeID uuid.UUID, status string) ([]*model.PhoneBooking, error) {
	var out []*model.PhoneBooking
	for _, b := range m.bookings {
		if b.MidwifeID != midwifeID {
			continue
		}
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *mockPhoneRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	b, ok := m.bookings[id]
	if !ok {
		return fmt.Errorf("phone booking not found")
	}
	b.Status = status
	return nil
}

type mockApptRepo struct {
	appointments map[uuid.UUID]*model.Appointment
	events       []*model.OutboxEvent
}

func (m *mockApptRepo) Create(ctx context.Context, a *model.Appointment, event *model.OutboxEvent) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	m.appointments[a.ID] = a
	if event != nil {
		m.events = append(m.events, event)
	}
	return nil
}

func (m *mockApptRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, fmt.Errorf("appointment not found")
	}
	return a, nil
}

func (m *mockApptRepo) Update(ctx context.Context, a *model.Appointment, event *model.OutboxEvent) error {
	m.appointments[a.ID] = a
	return nil
}

func (m *mockApptRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func (m *mockApptRepo) ListForDate(ctx context.Context, midwifeID uuid.UUID, dateKey string) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range m.appointments {
		if a.MidwifeID == midwifeID && a.AppointmentDate == dateKey {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockApptRepo) ListBetween(ctx context.Context, midwifeID uuid.UUID, fromKey, toKey string) ([]*model.Appointment, error) {
	return nil, nil
}

type mockMidwifeRepo struct {
	midwives map[uuid.UUID]*model.Midwife
}

func (m *mockMidwifeRepo) Create(ctx context.Context, mw *model.Midwife) error { return nil }

func (m *mockMidwifeRepo) Get(ctx context.Context, id uuid.UUID) (*model.Midwife, error) {
	mw, ok := m.midwives[id]
	if !ok {
		return nil, fmt.Errorf("midwife not found")
	}
	return mw, nil
}

func (m *mockMidwifeRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Midwife, error) {
	return nil, fmt.Errorf("midwife not found")
}

func (m *mockMidwifeRepo) Update(ctx context.Context, mw *model.Midwife) error { return nil }

func (m *mockMidwifeRepo) UpdateTimetable(ctx context.Context, id uuid.UUID, tt model.Timetable, d model.ServiceDurations) error {
	return nil
}

func (m *mockMidwifeRepo) List(ctx context.Context) ([]*model.Midwife, error) { return nil, nil }

type mockClientRepo struct {
	clients map[uuid.UUID]*model.Client
}

func (m *mockClientRepo) Create(ctx context.Context, c *model.Client) error { return nil }

func (m *mockClientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, fmt.Errorf("client not found")
	}
	return c, nil
}

func (m *mockClientRepo) List(ctx context.Context, midwifeID uuid.UUID) ([]*model.Client, error) {
	return nil, nil
}

func (m *mockClientRepo) ListNames(ctx context.Context, midwifeID uuid.UUID) ([]*model.ClientName, error) {
	return nil, nil
}

type mockEmailService struct {
	confirmations int
}

func (m *mockEmailService) SendPasswordReset(ctx context.Context, email, token string) error {
	return nil
}

func (m *mockEmailService) SendBookingConfirmation(ctx context.Context, email, name, serviceCode, date, startTime string) error {
	m.confirmations++
	return nil
}

func (m *mockEmailService) SendCustom(ctx context.Context, to, subject, content string) error {
	return nil
}

type fixture struct {
	svc       *Service
	phoneRepo *mockPhoneRepo
	apptRepo  *mockApptRepo
	email     *mockEmailService
	midwifeID uuid.UUID
	clientID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	midwifeID := uuid.New()
	clientID := uuid.New()

	mw := &model.Midwife{
		Base:     model.Base{ID: midwifeID},
		Timezone: "UTC",
		Timetable: model.Timetable{
			"Monday": {
				"C2": {{StartTime: "09:00", EndTime: "12:00"}},
			},
		},
		Durations:  model.ServiceDurations{"C2": 60},
		AcceptsNew: true,
	}

	phoneRepo := &mockPhoneRepo{bookings: make(map[uuid.UUID]*model.PhoneBooking)}
	apptRepo := &mockApptRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
	clientRepo := &mockClientRepo{clients: map[uuid.UUID]*model.Client{
		clientID: {Base: model.Base{ID: clientID}, MidwifeID: midwifeID, FirstName: "Eva", LastName: "Lund", Email: "eva@example.com"},
	}}
	midwifeRepo := &mockMidwifeRepo{midwives: map[uuid.UUID]*model.Midwife{midwifeID: mw}}
	emailSvc := &mockEmailService{}

	midwifeSvc := midwife.NewService(midwifeRepo, time.Minute)
	svc := NewService(phoneRepo, apptRepo, clientRepo, midwifeSvc, emailSvc, testMetrics, logger.NewLogger(nil), 15)

	return &fixture{
		svc:       svc,
		phoneRepo: phoneRepo,
		apptRepo:  apptRepo,
		email:     emailSvc,
		midwifeID: midwifeID,
		clientID:  clientID,
	}
}

func nextMonday() string {
	d := time.Now().UTC().AddDate(0, 0, 1)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return schedule.DateKey(d)
}

func TestPrivateServiceOptions(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()

	options, err := f.svc.PrivateServiceOptions(context.Background(), f.midwifeID, "C2", date)
	require.NoError(t, err)
	assert.Equal(t, 60, options.DurationMinutes)
	// 09:00-12:00 window, 60 minutes on a 15-minute grid.
	assert.Equal(t, []string{
		"09:00", "09:15", "09:30", "09:45",
		"10:00", "10:15", "10:30", "10:45", "11:00",
	}, options.StartTimes)
}

func TestPrivateServiceOptionsExcludeOverlaps(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()

	f.apptRepo.appointments[uuid.New()] = &model.Appointment{
		Base:            model.Base{ID: uuid.New()},
		MidwifeID:       f.midwifeID,
		ServiceCode:     "C2",
		AppointmentDate: date,
		StartTime:       "10:00",
		EndTime:         "11:00",
		Status:          model.AppointmentStatusActive,
	}

	options, err := f.svc.PrivateServiceOptions(context.Background(), f.midwifeID, "C2", date)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "11:00"}, options.StartTimes)
}

func TestPrivateServiceOptionsUnknownService(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PrivateServiceOptions(context.Background(), f.midwifeID, "Z9", nextMonday())
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestCreatePrivateServiceBooking(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()

	appt, err := f.svc.CreatePrivateServiceBooking(context.Background(), f.midwifeID, &model.CreatePrivateServiceBookingRequest{
		ClientID:        f.clientID.String(),
		ServiceCode:     "C2",
		AppointmentDate: date,
		StartTime:       "09:15",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, appt.Status)
	assert.Equal(t, "10:15", appt.EndTime)
	assert.Equal(t, 60, appt.DurationMinutes)
	assert.Equal(t, 1, f.email.confirmations)
	require.Len(t, f.apptRepo.events, 1)
	assert.Equal(t, model.EventAppointmentCreated, f.apptRepo.events[0].EventType)
}

func TestCreatePrivateServiceBookingUnavailableStart(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()
	ctx := context.Background()

	_, err := f.svc.CreatePrivateServiceBooking(ctx, f.midwifeID, &model.CreatePrivateServiceBookingRequest{
		ClientID:        f.clientID.String(),
		ServiceCode:     "C2",
		AppointmentDate: date,
		StartTime:       "09:00",
	})
	require.NoError(t, err)

	// A second booking overlapping the first is refused.
	_, err = f.svc.CreatePrivateServiceBooking(ctx, f.midwifeID, &model.CreatePrivateServiceBookingRequest{
		ClientID:        f.clientID.String(),
		ServiceCode:     "C2",
		AppointmentDate: date,
		StartTime:       "09:30",
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestCreatePhoneBooking(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.CreatePhoneBooking(context.Background(), &model.CreatePhoneBookingRequest{
		MidwifeID:   f.midwifeID.String(),
		Name:        "Maria Holm",
		Phone:       "+4512345678",
		PreferredAt: "mornings",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PhoneBookingStatusOpen, booking.Status)
	require.Len(t, f.phoneRepo.events, 1)
	assert.Equal(t, model.EventPhoneBookingCreated, f.phoneRepo.events[0].EventType)
}

func TestClosePhoneBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	booking, err := f.svc.CreatePhoneBooking(ctx, &model.CreatePhoneBookingRequest{
		MidwifeID: f.midwifeID.String(),
		Name:      "Maria Holm",
		Phone:     "+4512345678",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.ClosePhoneBooking(ctx, booking.ID))

	open, err := f.svc.ListPhoneBookings(ctx, f.midwifeID, model.PhoneBookingStatusOpen)
	require.NoError(t, err)
	assert.Empty(t, open)
}
