package lead

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/hebamio/midwife-api/internal/model"
	"github.com/hebamio/midwife-api/internal/repository"
	"github.com/hebamio/midwife-api/internal/schedule"
	"github.com/hebamio/midwife-api/internal/service/midwife"
	apperrors "github.com/hebamio/midwife-api/pkg/errors"
)

// Service handles client requests from the public booking screen and their
// lifecycle up to conversion into a client.
type Service struct {
	repo       repository.LeadRepository
	clientRepo repository.ClientRepository
	midwifeSvc *midwife.Service
}

func NewService(repo repository.LeadRepository, clientRepo repository.ClientRepository, midwifeSvc *midwife.Service) *Service {
	return &Service{
		repo:       repo,
		clientRepo: clientRepo,
		midwifeSvc: midwifeSvc,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateLeadRequest) (*model.Lead, error) {
	midwifeID, err := uuid.Parse(req.MidwifeID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid midwife id", err)
	}

	mw, err := s.midwifeSvc.Get(ctx, midwifeID)
	if err != nil {
		return nil, err
	}
	if !mw.AcceptsNew {
		return nil, apperrors.Forbidden("this midwife is not accepting new clients")
	}
	if req.ServiceCode != "" && !mw.Timetable.HasService(req.ServiceCode) {
		return nil, apperrors.BadRequest(fmt.Sprintf("service %s is not offered", req.ServiceCode), nil)
	}

	lead := &model.Lead{
		Base:        model.Base{ID: uuid.New()},
		MidwifeID:   midwifeID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		ServiceCode: req.ServiceCode,
		Message:     req.Message,
		Status:      model.LeadStatusNew,
	}
	if req.DueDate != "" {
		if _, err := schedule.ParseDateKey(req.DueDate, nil); err != nil {
			return nil, apperrors.BadRequest("invalid due date", err)
		}
		due := req.DueDate
		lead.DueDate = &due
	}

	payload, err := json.Marshal(lead)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event payload: %w", err)
	}
	event := &model.OutboxEvent{EventType: model.EventLeadCreated, Payload: payload}

	if err := s.repo.Create(ctx, lead, event); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return lead, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	lead, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("lead", err)
	}
	return lead, nil
}

func (s *Service) List(ctx context.Context, midwifeID uuid.UUID, status model.LeadStatus) ([]*model.Lead, error) {
	if status != "" && !status.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid status %q", status), nil)
	}
	leads, err := s.repo.List(ctx, midwifeID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.LeadStatus) (*model.Lead, error) {
	if !status.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid status %q", status), nil)
	}
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.Status == model.LeadStatusConverted {
		return nil, apperrors.Conflict("lead is already converted", nil)
	}
	if status == model.LeadStatusConverted {
		return s.Convert(ctx, id)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update lead status: %w", err)
	}
	lead.Status = status
	return lead, nil
}

// Convert turns a lead into a client of its midwife.
func (s *Service) Convert(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.Status == model.LeadStatusConverted {
		return nil, apperrors.Conflict("lead is already converted", nil)
	}

	client := &model.Client{
		MidwifeID: lead.MidwifeID,
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Email:     lead.Email,
		Phone:     lead.Phone,
	}
	if err := s.repo.ConvertToClient(ctx, id, client); err != nil {
		return nil, fmt.Errorf("failed to convert lead: %w", err)
	}

	lead.Status = model.LeadStatusConverted
	lead.ClientID = &client.ID
	return lead, nil
}

// ClientNames serves the lightweight client picker on the booking forms.
func (s *Service) ClientNames(ctx context.Context, midwifeID uuid.UUID) ([]*model.ClientName, error) {
	names, err := s.clientRepo.ListNames(ctx, midwifeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list client names: %w", err)
	}
	return names, nil
}
