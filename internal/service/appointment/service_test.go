package appointment

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
	"github.com/hebamio/midwife-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("appointment_service_test")

type mockAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
	events       []*model.OutboxEvent
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (m *mockAppointmentRepo) Create(ctx context.Context, a *model.Appointment, event *model.OutboxEvent) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	copied := *a
	m.appointments[a.ID] = &copied
	if event != nil {
		m.events = append(m.events, event)
	}
	return nil
}

func (m *mockAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, fmt.Errorf("appointment not found")
	}
	copied := *a
	return &copied, nil
}

func (m *mockAppointmentRepo) Update(ctx context.Context, a *model.Appointment, event *model.OutboxEvent) error {
	if _, ok := m.appointments[a.ID]; !ok {
		return fmt.Errorf("appointment not found")
	}
	copied := *a
	m.appointments[a.ID] = &copied
	if event != nil {
		m.events = append(m.events, event)
	}
	return nil
}

func (m *mockAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range m.appointments {
		if filters.MidwifeID != uuid.Nil && a.MidwifeID != filters.MidwifeID {
			continue
		}
		if filters.Status != "" && a.Status != filters.Status {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockAppointmentRepo) ListForDate(ctx context.Context, midwifeID uuid.UUID, dateKey string) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range m.appointments {
		if a.MidwifeID == midwifeID && a.AppointmentDate == dateKey {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockAppointmentRepo) ListBetween(ctx context.Context, midwifeID uuid.UUID, fromKey, toKey string) ([]*model.Appointment, error) {
	from, err := schedule.ParseDateKey(fromKey, time.UTC)
	if err != nil {
		return nil, err
	}
	to, err := schedule.ParseDateKey(toKey, time.UTC)
	if err != nil {
		return nil, err
	}
	var out []*model.Appointment
	for _, a := range m.appointments {
		if a.MidwifeID != midwifeID {
			continue
		}
		d, err := schedule.ParseDateKey(a.AppointmentDate, time.UTC)
		if err != nil {
			continue
		}
		if d.Before(from) || d.After(to) {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

type mockMidwifeRepo struct {
	midwives map[uuid.UUID]*model.Midwife
}

func (m *mockMidwifeRepo) Create(ctx context.Context, mw *model.Midwife) error {
	m.midwives[mw.ID] = mw
	return nil
}

func (m *mockMidwifeRepo) Get(ctx context.Context, id uuid.UUID) (*model.Midwife, error) {
	mw, ok := m.midwives[id]
	if !ok {
		return nil, fmt.Errorf("midwife not found")
	}
	return mw, nil
}

func (m *mockMidwifeRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Midwife, error) {
	for _, mw := range m.midwives {
		if mw.UserID == userID {
			return mw, nil
		}
	}
	return nil, fmt.Errorf("midwife not found")
}

func (m *mockMidwifeRepo) Update(ctx context.Context, mw *model.Midwife) error {
	m.midwives[mw.ID] = mw
	return nil
}

func (m *mockMidwifeRepo) UpdateTimetable(ctx context.Context, id uuid.UUID, tt model.Timetable, d model.ServiceDurations) error {
	mw, ok := m.midwives[id]
	if !ok {
		return fmt.Errorf("midwife not found")
	}
	mw.Timetable = tt
	mw.Durations = d
	return nil
}

func (m *mockMidwifeRepo) List(ctx context.Context) ([]*model.Midwife, error) {
	var out []*model.Midwife
	for _, mw := range m.midwives {
		out = append(out, mw)
	}
	return out, nil
}

type mockClientRepo struct {
	clients map[uuid.UUID]*model.Client
}

func (m *mockClientRepo) Create(ctx context.Context, c *model.Client) error {
	m.clients[c.ID] = c
	return nil
}

func (m *mockClientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, fmt.Errorf("client not found")
	}
	return c, nil
}

func (m *mockClientRepo) List(ctx context.Context, midwifeID uuid.UUID) ([]*model.Client, error) {
	var out []*model.Client
	for _, c := range m.clients {
		if c.MidwifeID == midwifeID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockClientRepo) ListNames(ctx context.Context, midwifeID uuid.UUID) ([]*model.ClientName, error) {
	var out []*model.ClientName
	for _, c := range m.clients {
		if c.MidwifeID == midwifeID {
			out = append(out, &model.ClientName{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName})
		}
	}
	return out, nil
}

type fixture struct {
	svc       *Service
	repo      *mockAppointmentRepo
	midwifeID uuid.UUID
	clientID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	midwifeID := uuid.New()
	clientID := uuid.New()

	mw := &model.Midwife{
		Base:      model.Base{ID: midwifeID},
		FirstName: "Anna",
		LastName:  "Berg",
		Timezone:  "UTC",
		Timetable: model.Timetable{
			"Monday": {
				"A1": {
					{StartTime: "09:00", EndTime: "09:50"},
					{StartTime: "10:00", EndTime: "10:50"},
				},
			},
		},
		Durations:  model.ServiceDurations{"A1": 50},
		AcceptsNew: true,
	}

	midwifeRepo := &mockMidwifeRepo{midwives: map[uuid.UUID]*model.Midwife{midwifeID: mw}}
	clientRepo := &mockClientRepo{clients: map[uuid.UUID]*model.Client{
		clientID: {Base: model.Base{ID: clientID}, MidwifeID: midwifeID, FirstName: "Eva", LastName: "Lund", Email: "eva@example.com"},
	}}
	repo := newMockAppointmentRepo()

	midwifeSvc := midwife.NewService(midwifeRepo, time.Minute)
	return &fixture{
		svc:       NewService(repo, clientRepo, midwifeSvc, testMetrics),
		repo:      repo,
		midwifeID: midwifeID,
		clientID:  clientID,
	}
}

// nextMonday returns the dd/mm/yyyy key of the next Monday strictly in the
// future, so date-floor checks never interfere.
func nextMonday() string {
	d := time.Now().UTC().AddDate(0, 0, 1)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return schedule.DateKey(d)
}

func createRequest(f *fixture, date, start, end string) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		MidwifeID:       f.midwifeID.String(),
		ClientID:        f.clientID.String(),
		ServiceCode:     "A1",
		AppointmentDate: date,
		StartTime:       start,
		EndTime:         end,
	}
}

func TestCreateAppointment(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()

	appt, err := f.svc.Create(context.Background(), createRequest(f, date, "09:00", "09:50"), model.AppointmentStatusActive)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusActive, appt.Status)
	assert.Equal(t, 50, appt.DurationMinutes)
	assert.NotEqual(t, uuid.Nil, appt.ID)
	require.Len(t, f.repo.events, 1)
	assert.Equal(t, model.EventAppointmentCreated, f.repo.events[0].EventType)
}

func TestCreateAppointmentRejectsUnknownSlot(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()

	_, err := f.svc.Create(context.Background(), createRequest(f, date, "09:30", "10:20"), model.AppointmentStatusActive)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestCreateAppointmentRejectsTakenSlot(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, createRequest(f, date, "09:00", "09:50"), model.AppointmentStatusActive)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, createRequest(f, date, "09:00", "09:50"), model.AppointmentStatusActive)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestCreateAppointmentAfterCancellation(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()
	ctx := context.Background()

	first, err := f.svc.Create(ctx, createRequest(f, date, "09:00", "09:50"), model.AppointmentStatusActive)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, first.ID, "client asked")
	require.NoError(t, err)

	// A cancelled booking frees its slot again.
	_, err = f.svc.Create(ctx, createRequest(f, date, "09:00", "09:50"), model.AppointmentStatusActive)
	require.NoError(t, err)
}

func TestCancelAlreadyCancelled(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()
	ctx := context.Background()

	appt, err := f.svc.Create(ctx, createRequest(f, date, "09:00", "09:50"), model.AppointmentStatusActive)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, appt.ID, "first")
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, appt.ID, "second")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestRescheduleOntoTakenSlot(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()
	ctx := context.Background()

	first, err := f.svc.Create(ctx, createRequest(f, date, "09:00", "09:50"), model.AppointmentStatusActive)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, createRequest(f, date, "10:00", "10:50"), model.AppointmentStatusActive)
	require.NoError(t, err)

	_, err = f.svc.Reschedule(ctx, first.ID, &model.RescheduleAppointmentRequest{
		AppointmentDate: date,
		StartTime:       "10:00",
		EndTime:         "10:50",
	})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestReschedule(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()
	ctx := context.Background()

	appt, err := f.svc.Create(ctx, createRequest(f, date, "09:00", "09:50"), model.AppointmentStatusActive)
	require.NoError(t, err)

	moved, err := f.svc.Reschedule(ctx, appt.ID, &model.RescheduleAppointmentRequest{
		AppointmentDate: date,
		StartTime:       "10:00",
		EndTime:         "10:50",
	})
	require.NoError(t, err)
	assert.Equal(t, "10:00", moved.StartTime)

	// The original slot is free again.
	free, err := f.svc.AvailableSlots(ctx, f.midwifeID, "A1", date)
	require.NoError(t, err)
	assert.Contains(t, free, model.Slot{StartTime: "09:00", EndTime: "09:50"})
}

func TestReactivate(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()
	ctx := context.Background()

	appt, err := f.svc.Create(ctx, createRequest(f, date, "09:00", "09:50"), model.AppointmentStatusActive)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, appt.ID, "postponed")
	require.NoError(t, err)

	restored, err := f.svc.Reactivate(ctx, appt.ID, &model.ReactivateAppointmentRequest{
		AppointmentDate: date,
		StartTime:       "10:00",
		EndTime:         "10:50",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusPending, restored.Status)
	assert.Nil(t, restored.CancelReason)
	assert.Equal(t, "10:00", restored.StartTime)
}

func TestReactivateRequiresCancelled(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()
	ctx := context.Background()

	appt, err := f.svc.Create(ctx, createRequest(f, date, "09:00", "09:50"), model.AppointmentStatusActive)
	require.NoError(t, err)

	_, err = f.svc.Reactivate(ctx, appt.ID, &model.ReactivateAppointmentRequest{
		AppointmentDate: date,
		StartTime:       "10:00",
		EndTime:         "10:50",
	})
	require.Error(t, err)
}

func TestBulkCancel(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()
	ctx := context.Background()

	first, err := f.svc.Create(ctx, createRequest(f, date, "09:00", "09:50"), model.AppointmentStatusActive)
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, createRequest(f, date, "10:00", "10:50"), model.AppointmentStatusActive)
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, second.ID, "already gone")
	require.NoError(t, err)
	missing := uuid.New()

	result, err := f.svc.BulkCancel(ctx, &model.BulkCancelRequest{
		AppointmentIDs: []uuid.UUID{first.ID, second.ID, missing},
		Reason:         "midwife unavailable",
	})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first.ID}, result.Cancelled)
	assert.Len(t, result.Skipped, 2)
	assert.Contains(t, result.Skipped, second.ID)
	assert.Contains(t, result.Skipped, missing)
}

func TestAvailableSlotsExcludesBooked(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, createRequest(f, date, "09:00", "09:50"), model.AppointmentStatusActive)
	require.NoError(t, err)

	free, err := f.svc.AvailableSlots(ctx, f.midwifeID, "A1", date)
	require.NoError(t, err)
	assert.Equal(t, []model.Slot{{StartTime: "10:00", EndTime: "10:50"}}, free)
}

func TestMonthlyView(t *testing.T) {
	f := newFixture(t)
	date := nextMonday()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, createRequest(f, date, "09:00", "09:50"), model.AppointmentStatusActive)
	require.NoError(t, err)

	day, err := schedule.ParseDateKey(date, time.UTC)
	require.NoError(t, err)

	view, err := f.svc.MonthlyView(ctx, f.midwifeID, "A1", day.Year(), day.Month())
	require.NoError(t, err)
	assert.Contains(t, view.ValidDates, date)
	for _, key := range view.ValidDates {
		d, err := schedule.ParseDateKey(key, time.UTC)
		require.NoError(t, err)
		assert.Equal(t, time.Monday, d.Weekday())
	}
	assert.Equal(t, []model.Slot{{StartTime: "10:00", EndTime: "10:50"}}, view.FreeSlots[date])
}

func TestMonthlyViewUnknownService(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.MonthlyView(context.Background(), f.midwifeID, "Z9", 2030, time.January)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}
