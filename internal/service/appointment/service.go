package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hebamio/midwife-api/internal/model"
	"github.com/hebamio/midwife-api/internal/repository"
	"github.com/hebamio/midwife-api/internal/schedule"
	"github.com/hebamio/midwife-api/internal/service/midwife"
	apperrors "github.com/hebamio/midwife-api/pkg/errors"
	"github.com/hebamio/midwife-api/pkg/metrics"
)

// MaxAdvanceBookingDays bounds how far ahead a slot can be booked.
const MaxAdvanceBookingDays = 90

// Service owns the appointment lifecycle. Slot validity always derives
// from the midwife's timetable; the stored appointments only say which
// slots are taken.
type Service struct {
	repo       repository.AppointmentRepository
	clientRepo repository.ClientRepository
	midwifeSvc *midwife.Service
	metrics    *metrics.Metrics
}

func NewService(
	repo repository.AppointmentRepository,
	clientRepo repository.ClientRepository,
	midwifeSvc *midwife.Service,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:       repo,
		clientRepo: clientRepo,
		midwifeSvc: midwifeSvc,
		metrics:    metrics,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest, status model.AppointmentStatus) (*model.Appointment, error) {
	midwifeID, err := uuid.Parse(req.MidwifeID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid midwife id", err)
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid client id", err)
	}

	mw, err := s.midwifeSvc.Get(ctx, midwifeID)
	if err != nil {
		return nil, err
	}
	if _, err := s.clientRepo.Get(ctx, clientID); err != nil {
		return nil, apperrors.NotFound("client", err)
	}

	if err := s.validateSlot(ctx, mw, req.ServiceCode, req.AppointmentDate, req.StartTime, req.EndTime, nil); err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		Base:            model.Base{ID: uuid.New()},
		MidwifeID:       midwifeID,
		ClientID:        clientID,
		ServiceCode:     req.ServiceCode,
		AppointmentDate: req.AppointmentDate,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationMinutes: mw.ServiceDuration(req.ServiceCode),
		Status:          status,
		Notes:           req.Notes,
	}

	event, err := newEvent(model.EventAppointmentCreated, appointment)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, appointment, event); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.metrics.BookingsCreated.WithLabelValues("timetable").Inc()
	return appointment, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}
	return appointment, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.BadRequest(fmt.Sprintf("invalid status %q", *req.Status), nil)
		}
		appointment.Status = *req.Status
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
	}
	if req.CancelReason != nil {
		appointment.CancelReason = req.CancelReason
	}

	if err := s.repo.Update(ctx, appointment, nil); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return appointment, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error) {
	appointment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.Conflict("appointment is already cancelled", nil)
	}

	appointment.Status = model.AppointmentStatusCancelled
	appointment.CancelReason = &reason

	event, err := newEvent(model.EventAppointmentCancelled, appointment)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, appointment, event); err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", err)
	}

	s.metrics.BookingsCancelled.Inc()
	return appointment, nil
}

// BulkCancel cancels every appointment it can and reports the rest, so one
// bad ID never aborts the batch.
func (s *Service) BulkCancel(ctx context.Context, req *model.BulkCancelRequest) (*model.BulkCancelResult, error) {
	result := &model.BulkCancelResult{
		Cancelled: make([]uuid.UUID, 0, len(req.AppointmentIDs)),
		Skipped:   make(map[uuid.UUID]string),
	}

	for _, id := range req.AppointmentIDs {
		if _, err := s.Cancel(ctx, id, req.Reason); err != nil {
			if appErr, ok := apperrors.AsAppError(err); ok {
				result.Skipped[id] = appErr.Message
			} else {
				result.Skipped[id] = "failed to cancel"
			}
			continue
		}
		result.Cancelled = append(result.Cancelled, id)
	}
	return result, nil
}

// Reschedule moves a non-cancelled appointment onto another free slot.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.Conflict("cannot reschedule a cancelled appointment", nil)
	}

	mw, err := s.midwifeSvc.Get(ctx, appointment.MidwifeID)
	if err != nil {
		return nil, err
	}
	if err := s.validateSlot(ctx, mw, appointment.ServiceCode, req.AppointmentDate, req.StartTime, req.EndTime, &appointment.ID); err != nil {
		return nil, err
	}

	appointment.AppointmentDate = req.AppointmentDate
	appointment.StartTime = req.StartTime
	appointment.EndTime = req.EndTime

	event, err := newEvent(model.EventAppointmentRescheduled, appointment)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, appointment, event); err != nil {
		return nil, fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	return appointment, nil
}

// Reactivate rebooks a cancelled appointment onto the requested slot,
// which may differ from the one it originally held. The appointment goes
// back to pending until the midwife confirms it again.
func (s *Service) Reactivate(ctx context.Context, id uuid.UUID, req *model.ReactivateAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status != model.AppointmentStatusCancelled {
		return nil, apperrors.Conflict("only cancelled appointments can be reactivated", nil)
	}

	mw, err := s.midwifeSvc.Get(ctx, appointment.MidwifeID)
	if err != nil {
		return nil, err
	}
	if err := s.validateSlot(ctx, mw, appointment.ServiceCode, req.AppointmentDate, req.StartTime, req.EndTime, &appointment.ID); err != nil {
		return nil, err
	}

	appointment.AppointmentDate = req.AppointmentDate
	appointment.StartTime = req.StartTime
	appointment.EndTime = req.EndTime
	appointment.Status = model.AppointmentStatusPending
	appointment.CancelReason = nil

	event, err := newEvent(model.EventAppointmentReactivated, appointment)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, appointment, event); err != nil {
		return nil, fmt.Errorf("failed to reactivate appointment: %w", err)
	}
	return appointment, nil
}

// AvailableSlots returns the free timetable slots for one date.
func (s *Service) AvailableSlots(ctx context.Context, midwifeID uuid.UUID, serviceCode, dateKey string) ([]model.Slot, error) {
	mw, err := s.midwifeSvc.Get(ctx, midwifeID)
	if err != nil {
		return nil, err
	}

	date, err := schedule.ParseDateKey(dateKey, mw.Location())
	if err != nil {
		return nil, apperrors.BadRequest("invalid date", err)
	}

	existing, err := s.repo.ListForDate(ctx, midwifeID, dateKey)
	if err != nil {
		s.metrics.SlotLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	free := schedule.AvailableSlots(mw.Timetable, serviceCode, date, toBookings(existing))
	s.metrics.SlotLookups.WithLabelValues("success").Inc()
	return free, nil
}

// MonthlyView computes the bookable dates of a month and the free slots
// remaining on each.
func (s *Service) MonthlyView(ctx context.Context, midwifeID uuid.UUID, serviceCode string, year int, month time.Month) (*model.MonthlyView, error) {
	mw, err := s.midwifeSvc.Get(ctx, midwifeID)
	if err != nil {
		return nil, err
	}
	if !mw.Timetable.HasService(serviceCode) {
		return nil, apperrors.NotFound("service", nil)
	}

	loc := mw.Location()
	today := time.Now().In(loc)
	validDates := schedule.ValidDates(mw.Timetable, serviceCode, year, month, today)

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)
	existing, err := s.repo.ListBetween(ctx, midwifeID, schedule.DateKey(first), schedule.DateKey(last))
	if err != nil {
		s.metrics.SlotLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	bookings := toBookings(existing)

	freeSlots := make(map[string][]model.Slot, len(validDates))
	for _, key := range validDates {
		date, err := schedule.ParseDateKey(key, loc)
		if err != nil {
			continue
		}
		freeSlots[key] = schedule.AvailableSlots(mw.Timetable, serviceCode, date, bookings)
	}

	s.metrics.SlotLookups.WithLabelValues("success").Inc()
	return &model.MonthlyView{
		MidwifeID:   midwifeID,
		ServiceCode: serviceCode,
		Year:        year,
		Month:       int(month),
		ValidDates:  validDates,
		FreeSlots:   freeSlots,
	}, nil
}

// validateSlot enforces the booking rules: the date must be bookable for
// the service, the requested times must be one of that weekday's timetable
// slots, and no non-cancelled appointment may hold or overlap it.
func (s *Service) validateSlot(ctx context.Context, mw *model.Midwife, serviceCode, dateKey, startTime, endTime string, excludeID *uuid.UUID) error {
	loc := mw.Location()
	date, err := schedule.ParseDateKey(dateKey, loc)
	if err != nil {
		return apperrors.BadRequest("invalid date", err)
	}

	today := time.Now().In(loc)
	floor := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
	if date.Before(floor) {
		return apperrors.BadRequest("date is in the past", nil)
	}
	if date.After(floor.AddDate(0, 0, MaxAdvanceBookingDays)) {
		return apperrors.BadRequest(fmt.Sprintf("date is more than %d days ahead", MaxAdvanceBookingDays), nil)
	}

	slots := mw.Timetable.ForDay(date.Weekday(), serviceCode)
	if len(slots) == 0 {
		return apperrors.BadRequest(fmt.Sprintf("service %s is not offered on %s", serviceCode, date.Weekday()), nil)
	}

	requested := model.Slot{StartTime: startTime, EndTime: endTime}
	found := false
	for _, slot := range slots {
		if slot == requested {
			found = true
			break
		}
	}
	if !found {
		return apperrors.BadRequest("requested times do not match a timetable slot", nil)
	}

	existing, err := s.repo.ListForDate(ctx, mw.ID, dateKey)
	if err != nil {
		return fmt.Errorf("failed to load bookings: %w", err)
	}
	for _, other := range existing {
		if other.Status == model.AppointmentStatusCancelled {
			continue
		}
		if excludeID != nil && other.ID == *excludeID {
			continue
		}
		overlaps, err := schedule.Overlaps(startTime, endTime, other.StartTime, other.EndTime)
		if err != nil {
			return apperrors.BadRequest("invalid times", err)
		}
		if overlaps {
			return apperrors.Conflict("slot is already booked", nil)
		}
	}
	return nil
}

func toBookings(appointments []*model.Appointment) []schedule.Booking {
	bookings := make([]schedule.Booking, 0, len(appointments))
	for _, a := range appointments {
		bookings = append(bookings, schedule.Booking{
			DateKey:   a.AppointmentDate,
			StartTime: a.StartTime,
			EndTime:   a.EndTime,
			Cancelled: a.Status == model.AppointmentStatusCancelled,
		})
	}
	return bookings
}

func newEvent(eventType string, appointment *model.Appointment) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(appointment)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event payload: %w", err)
	}
	return &model.OutboxEvent{EventType: eventType, Payload: payload}, nil
}
