package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hebamio/midwife-api/internal/email"
	"github.com/hebamio/midwife-api/internal/model"
	"github.com/hebamio/midwife-api/internal/repository"
	"github.com/hebamio/midwife-api/internal/schedule"
	"github.com/hebamio/midwife-api/internal/service/midwife"
	apperrors "github.com/hebamio/midwife-api/pkg/errors"
	"github.com/hebamio/midwife-api/pkg/logger"
	"github.com/hebamio/midwife-api/pkg/metrics"
)

// Service covers the public booking flows that do not consume a fixed
// timetable slot: phone callbacks and privately billed services booked at
// custom start times inside the timetable windows.
type Service struct {
	phoneRepo   repository.PhoneBookingRepository
	apptRepo    repository.AppointmentRepository
	clientRepo  repository.ClientRepository
	midwifeSvc  *midwife.Service
	emailSvc    email.Service
	metrics     *metrics.Metrics
	logger      *logger.Logger
	stepMinutes int
}

func NewService(
	phoneRepo repository.PhoneBookingRepository,
	apptRepo repository.AppointmentRepository,
	clientRepo repository.ClientRepository,
	midwifeSvc *midwife.Service,
	emailSvc email.Service,
	metrics *metrics.Metrics,
	logger *logger.Logger,
	stepMinutes int,
) *Service {
	if stepMinutes <= 0 {
		stepMinutes = schedule.DefaultStepMinutes
	}
	return &Service{
		phoneRepo:   phoneRepo,
		apptRepo:    apptRepo,
		clientRepo:  clientRepo,
		midwifeSvc:  midwifeSvc,
		emailSvc:    emailSvc,
		metrics:     metrics,
		logger:      logger,
		stepMinutes: stepMinutes,
	}
}

func (s *Service) CreatePhoneBooking(ctx context.Context, req *model.CreatePhoneBookingRequest) (*model.PhoneBooking, error) {
	midwifeID, err := uuid.Parse(req.MidwifeID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid midwife id", err)
	}
	if _, err := s.midwifeSvc.Get(ctx, midwifeID); err != nil {
		return nil, err
	}

	booking := &model.PhoneBooking{
		Base:        model.Base{ID: uuid.New()},
		MidwifeID:   midwifeID,
		Name:        req.Name,
		Phone:       req.Phone,
		PreferredAt: req.PreferredAt,
		Topic:       req.Topic,
		Status:      model.PhoneBookingStatusOpen,
	}

	payload, err := json.Marshal(booking)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event payload: %w", err)
	}
	event := &model.OutboxEvent{EventType: model.EventPhoneBookingCreated, Payload: payload}

	if err := s.phoneRepo.Create(ctx, booking, event); err != nil {
		return nil, fmt.Errorf("failed to create phone booking: %w", err)
	}

	s.metrics.BookingsCreated.WithLabelValues("phone").Inc()
	return booking, nil
}

func (s *Service) ListPhoneBookings(ctx context.Context, midwifeID uuid.UUID, status string) ([]*model.PhoneBooking, error) {
	bookings, err := s.phoneRepo.List(ctx, midwifeID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list phone bookings: %w", err)
	}
	return bookings, nil
}

func (s *Service) ClosePhoneBooking(ctx context.Context, id uuid.UUID) error {
	if _, err := s.phoneRepo.Get(ctx, id); err != nil {
		return apperrors.NotFound("phone booking", err)
	}
	if err := s.phoneRepo.UpdateStatus(ctx, id, model.PhoneBookingStatusClosed); err != nil {
		return fmt.Errorf("failed to close phone booking: %w", err)
	}
	return nil
}

// PrivateServiceOptions computes the bookable custom start times for a
// private service on a date: candidates on the step grid inside the
// timetable windows, minus any that would overlap an existing appointment.
func (s *Service) PrivateServiceOptions(ctx context.Context, midwifeID uuid.UUID, serviceCode, dateKey string) (*model.PrivateServiceOptions, error) {
	mw, err := s.midwifeSvc.Get(ctx, midwifeID)
	if err != nil {
		return nil, err
	}

	duration := mw.ServiceDuration(serviceCode)
	if duration <= 0 {
		return nil, apperrors.NotFound("service", nil)
	}

	loc := mw.Location()
	date, err := schedule.ParseDateKey(dateKey, loc)
	if err != nil {
		return nil, apperrors.BadRequest("invalid date", err)
	}

	today := time.Now().In(loc)
	floor := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, loc)
	if date.Before(floor) {
		return nil, apperrors.BadRequest("date is in the past", nil)
	}

	windows := slotWindows(mw.Timetable.ForDay(date.Weekday(), serviceCode))
	candidates := schedule.FilterStartTimes(windows, duration, s.stepMinutes)

	existing, err := s.apptRepo.ListForDate(ctx, midwifeID, dateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	starts := make([]string, 0, len(candidates))
	for _, start := range candidates {
		free, err := s.startIsFree(start, duration, existing)
		if err != nil {
			return nil, err
		}
		if free {
			starts = append(starts, start)
		}
	}

	return &model.PrivateServiceOptions{
		MidwifeID:       midwifeID,
		ServiceCode:     serviceCode,
		AppointmentDate: dateKey,
		DurationMinutes: duration,
		StartTimes:      starts,
	}, nil
}

// CreatePrivateServiceBooking books a private service at one of the
// computed custom start times. The resulting appointment starts pending
// until the midwife confirms it.
func (s *Service) CreatePrivateServiceBooking(ctx context.Context, midwifeID uuid.UUID, req *model.CreatePrivateServiceBookingRequest) (*model.Appointment, error) {
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid client id", err)
	}

	options, err := s.PrivateServiceOptions(ctx, midwifeID, req.ServiceCode, req.AppointmentDate)
	if err != nil {
		return nil, err
	}

	valid := false
	for _, start := range options.StartTimes {
		if start == req.StartTime {
			valid = true
			break
		}
	}
	if !valid {
		return nil, apperrors.Conflict("start time is not available", nil)
	}

	client, err := s.clientRepo.Get(ctx, clientID)
	if err != nil {
		return nil, apperrors.NotFound("client", err)
	}

	start, err := schedule.ParseClock(req.StartTime)
	if err != nil {
		return nil, apperrors.BadRequest("invalid start time", err)
	}

	appointment := &model.Appointment{
		Base:            model.Base{ID: uuid.New()},
		MidwifeID:       midwifeID,
		ClientID:        clientID,
		ServiceCode:     req.ServiceCode,
		AppointmentDate: req.AppointmentDate,
		StartTime:       req.StartTime,
		EndTime:         schedule.FormatClock(start + options.DurationMinutes),
		DurationMinutes: options.DurationMinutes,
		Status:          model.AppointmentStatusPending,
		Notes:           req.Notes,
	}

	payload, err := json.Marshal(appointment)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event payload: %w", err)
	}
	event := &model.OutboxEvent{EventType: model.EventAppointmentCreated, Payload: payload}

	if err := s.apptRepo.Create(ctx, appointment, event); err != nil {
		return nil, fmt.Errorf("failed to create private service booking: %w", err)
	}

	s.metrics.BookingsCreated.WithLabelValues("private").Inc()

	name := client.FirstName + " " + client.LastName
	if err := s.emailSvc.SendBookingConfirmation(ctx, client.Email, name, req.ServiceCode, req.AppointmentDate, req.StartTime); err != nil {
		s.logger.Error(err, "failed to send booking confirmation", "client_id", clientID.String())
	}

	return appointment, nil
}

func (s *Service) startIsFree(start string, duration int, existing []*model.Appointment) (bool, error) {
	startMin, err := schedule.ParseClock(start)
	if err != nil {
		return false, apperrors.BadRequest("invalid start time", err)
	}
	end := schedule.FormatClock(startMin + duration)

	for _, other := range existing {
		if other.Status == model.AppointmentStatusCancelled {
			continue
		}
		overlaps, err := schedule.Overlaps(start, end, other.StartTime, other.EndTime)
		if err != nil {
			return false, err
		}
		if overlaps {
			return false, nil
		}
	}
	return true, nil
}

func slotWindows(slots []model.Slot) []string {
	windows := make([]string, 0, len(slots))
	for _, slot := range slots {
		windows = append(windows, slot.StartTime+"-"+slot.EndTime)
	}
	return windows
}
