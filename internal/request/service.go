package request

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/request-management/internal"
	"github.com/frahmantamala/request-management/internal/auth"
	"github.com/frahmantamala/request-management/internal/core/events"
)

// Repository is the data access contract for requests. DecideStatus must
// be a single conditional update so two concurrent decisions cannot both
// observe pending.
type Repository interface {
	Create(req *Request) error
	GetByID(id string) (*Request, error)
	ListForParticipant(email string) ([]*Request, error)
	DecideStatus(id, fromStatus, toStatus string) (int64, error)
}

// Service owns the request lifecycle and the superior-only decision rule.
type Service struct {
	repo     Repository
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateRequest files a new request in pending state. The requestor
// snapshot comes from the verified identity, never from the payload.
func (s *Service) CreateRequest(actor *auth.User, dto CreateRequestDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("request validation failed", "error", err, "email", actor.Email)
		return nil, err
	}

	now := time.Now()
	req := &Request{
		ID:          uuid.NewString(),
		Title:       dto.Title,
		Description: dto.Description,
		Category:    dto.Category,
		Urgency:     dto.Urgency,
		Requestor: Participant{
			Email: actor.Email,
			Name:  actor.Name,
		},
		Superior: Participant{
			Email: dto.Superior.Email,
		},
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(req); err != nil {
		s.logger.Error("failed to create request", "error", err, "email", actor.Email)
		return nil, err
	}

	s.logger.Info("request created",
		"request_id", req.ID,
		"category", req.Category,
		"requestor", req.Requestor.Email,
		"superior", req.Superior.Email)

	if s.eventBus != nil {
		event := events.NewRequestCreatedEvent(req.ID, req.Title, req.Category,
			req.Requestor.Email, req.Requestor.Name, req.Superior.Email)
		s.eventBus.Publish(context.Background(), event)
	}

	return req, nil
}

// ListRequests returns every request the actor participates in, as filer
// or as decider.
func (s *Service) ListRequests(actor *auth.User) ([]*Request, error) {
	requests, err := s.repo.ListForParticipant(actor.Email)
	if err != nil {
		s.logger.Error("failed to list requests", "error", err, "email", actor.Email)
		return nil, err
	}
	return requests, nil
}

// DecideRequest transitions a pending request to approved or rejected.
// Authorization first (only the named superior), then a conditional
// update keyed on the pending status; zero rows affected means another
// decision won the race or the request was already decided.
func (s *Service) DecideRequest(actor *auth.User, requestID string, dto DecideRequestDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("decision validation failed", "error", err, "request_id", requestID)
		return nil, err
	}

	req, err := s.repo.GetByID(requestID)
	if err != nil {
		s.logger.Error("request not found for decision", "error", err, "request_id", requestID)
		return nil, err
	}

	if req.Superior.Email != actor.Email {
		s.logger.Warn("decision denied: actor is not the assigned superior",
			"request_id", requestID,
			"actor", actor.Email,
			"superior", req.Superior.Email)
		return nil, internal.ErrNotSuperior
	}

	rows, err := s.repo.DecideStatus(requestID, StatusPending, dto.Status)
	if err != nil {
		s.logger.Error("failed to update request status", "error", err, "request_id", requestID)
		return nil, err
	}
	if rows == 0 {
		s.logger.Warn("decision rejected: request no longer pending",
			"request_id", requestID,
			"current_status", req.Status)
		return nil, internal.ErrInvalidTransition
	}

	req.Status = dto.Status
	req.UpdatedAt = time.Now()

	s.logger.Info("request decided",
		"request_id", requestID,
		"status", dto.Status,
		"superior", actor.Email)

	if s.eventBus != nil {
		event := events.NewRequestDecidedEvent(req.ID, req.Title, req.Status,
			req.Requestor.Email, req.Superior.Email)
		s.eventBus.Publish(context.Background(), event)
	}

	return req, nil
}
