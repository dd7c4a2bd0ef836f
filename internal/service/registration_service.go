package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/events"
	"github.com/fieldops/field-console/internal/repository"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

// RegistrationService handles member registration requests and their review.
type RegistrationService struct {
	requests    repository.RegistrationRepository
	panchayaths repository.PanchayathRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// RegistrationInput describes a member's request.
type RegistrationInput struct {
	Username     string
	MobileNumber string
	PanchayathID *string
	Ward         string
}

// NewRegistrationService constructs the service.
func NewRegistrationService(requests repository.RegistrationRepository, panchayaths repository.PanchayathRepository, dispatcher events.Dispatcher, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{requests: requests, panchayaths: panchayaths, dispatcher: dispatcher, logger: orNop(logger)}
}

// Register files a pending request. A mobile number may only be registered once.
func (s *RegistrationService) Register(ctx context.Context, input RegistrationInput) (*domain.RegistrationRequest, error) {
	mobile, err := normalizeMobile(input.MobileNumber)
	if err != nil {
		return nil, err
	}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, apperrors.NewValidationError("username is required", nil)
	}
	if _, err := s.requests.GetByMobile(ctx, mobile); err == nil {
		return nil, apperrors.NewConflict("mobile number already registered", map[string]any{"mobile_number": mobile})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if input.PanchayathID != nil {
		if _, err := s.panchayaths.GetByID(ctx, *input.PanchayathID); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	req := &domain.RegistrationRequest{
		Username:     username,
		MobileNumber: mobile,
		PanchayathID: input.PanchayathID,
		Ward:         strings.TrimSpace(input.Ward),
		Status:       domain.RegistrationPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventRegistrationCreated, events.Subject("registration", req.ID), events.Actor{Kind: string(access.KindGuest)}, events.RegistrationPayload{
		MobileNumber: req.MobileNumber,
		Status:       string(req.Status),
	}))
	return req, nil
}

// ListRequests lists requests visible to p. Requests without a panchayath
// are only visible to unrestricted principals.
func (s *RegistrationService) ListRequests(ctx context.Context, p access.Principal, status *domain.RegistrationStatus) ([]domain.RegistrationRequest, error) {
	filter := repository.RegistrationFilter{Status: status}
	scopeID, restricted := access.QueryScope(p)
	if restricted {
		if scopeID == "" {
			return []domain.RegistrationRequest{}, nil
		}
		filter.PanchayathID = &scopeID
	}
	rows, err := s.requests.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return access.FilterByScope(p, rows, registrationPanchayath), nil
}

// Review approves or rejects a pending request.
func (s *RegistrationService) Review(ctx context.Context, actor access.Principal, id string, status domain.RegistrationStatus) (*domain.RegistrationRequest, error) {
	if status != domain.RegistrationApproved && status != domain.RegistrationRejected {
		return nil, apperrors.NewValidationError("status must be approved or rejected", map[string]any{"status": status})
	}
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := access.CheckScope(actor, registrationPanchayath(*req)); err != nil {
		return nil, err
	}
	if req.Status != domain.RegistrationPending {
		return nil, apperrors.NewConflict("request already reviewed", map[string]any{"status": req.Status})
	}

	req.Status = status
	req.ReviewedBy = actorRef(actor)
	if err := s.requests.UpdateStatus(ctx, req); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflict("request already reviewed", nil)
		}
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventRegistrationReview, events.Subject("registration", req.ID), actorOf(actor), events.RegistrationPayload{
		MobileNumber: req.MobileNumber,
		Status:       string(req.Status),
	}))
	return req, nil
}

func registrationPanchayath(r domain.RegistrationRequest) string {
	if r.PanchayathID == nil {
		return ""
	}
	return *r.PanchayathID
}
