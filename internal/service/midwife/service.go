package midwife

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/hebamio/midwife-api/internal/model"
	"github.com/hebamio/midwife-api/internal/repository"
	apperrors "github.com/hebamio/midwife-api/pkg/errors"
)

// Service serves midwife profiles and timetables. Profiles back every
// availability computation, so reads go through a short-lived cache.
type Service struct {
	repo  repository.MidwifeRepository
	cache *cache.Cache
}

func NewService(repo repository.MidwifeRepository, cacheTTL time.Duration) *Service {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Service{
		repo:  repo,
		cache: cache.New(cacheTTL, 2*cacheTTL),
	}
}

func cacheKey(id uuid.UUID) string {
	return "midwife:" + id.String()
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Midwife, error) {
	if cached, ok := s.cache.Get(cacheKey(id)); ok {
		return cached.(*model.Midwife), nil
	}

	midwife, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("midwife", err)
	}

	s.cache.SetDefault(cacheKey(id), midwife)
	return midwife, nil
}

func (s *Service) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Midwife, error) {
	midwife, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFound("midwife", err)
	}
	return midwife, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Midwife, error) {
	midwives, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list midwives: %w", err)
	}
	return midwives, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateMidwifeRequest) (*model.Midwife, error) {
	midwife, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("midwife", err)
	}

	if req.FirstName != nil {
		midwife.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		midwife.LastName = *req.LastName
	}
	if req.Phone != nil {
		midwife.Phone = *req.Phone
	}
	if req.Region != nil {
		midwife.Region = *req.Region
	}
	if req.Bio != nil {
		midwife.Bio = *req.Bio
	}
	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			return nil, apperrors.BadRequest(fmt.Sprintf("unknown timezone %q", *req.Timezone), err)
		}
		midwife.Timezone = *req.Timezone
	}
	if req.AcceptsNew != nil {
		midwife.AcceptsNew = *req.AcceptsNew
	}

	if err := s.repo.Update(ctx, midwife); err != nil {
		return nil, fmt.Errorf("failed to update midwife: %w", err)
	}

	s.cache.Delete(cacheKey(id))
	return midwife, nil
}

// UpdateTimetable replaces the weekly timetable and service durations.
// Every service in the timetable must have a duration configured.
func (s *Service) UpdateTimetable(ctx context.Context, id uuid.UUID, timetable model.Timetable, durations model.ServiceDurations) error {
	if err := timetable.Validate(); err != nil {
		return apperrors.BadRequest("invalid timetable", err)
	}
	for _, services := range timetable {
		for code := range services {
			if durations[code] <= 0 {
				return apperrors.BadRequest(fmt.Sprintf("missing duration for service %s", code), nil)
			}
		}
	}

	if err := s.repo.UpdateTimetable(ctx, id, timetable, durations); err != nil {
		return fmt.Errorf("failed to update timetable: %w", err)
	}

	s.cache.Delete(cacheKey(id))
	return nil
}

// BookingPage assembles the public payload for a midwife's booking screen.
func (s *Service) BookingPage(ctx context.Context, id uuid.UUID) (*model.BookingPage, error) {
	midwife, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !midwife.AcceptsNew {
		return nil, apperrors.Forbidden("this midwife is not accepting new bookings")
	}

	return &model.BookingPage{
		MidwifeID: midwife.ID,
		Name:      midwife.FirstName + " " + midwife.LastName,
		Region:    midwife.Region,
		Bio:       midwife.Bio,
		Timetable: midwife.Timetable,
		Durations: midwife.Durations,
	}, nil
}
