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
	"github.com/fieldops/field-console/internal/hierarchy"
	"github.com/fieldops/field-console/internal/repository"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

// DirectoryService manages panchayaths and agents.
type DirectoryService struct {
	agents      repository.AgentRepository
	panchayaths repository.PanchayathRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// DirectoryDependencies bundles collaborators for the directory service.
type DirectoryDependencies struct {
	AgentRepo      repository.AgentRepository
	PanchayathRepo repository.PanchayathRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// PanchayathInput describes panchayath creation.
type PanchayathInput struct {
	Name     string
	District string
	State    string
}

// AgentInput describes agent creation.
type AgentInput struct {
	Name         string
	Role         domain.AgentRole
	PanchayathID string
	SuperiorID   *string
	Phone        string
	Ward         string
	IsCustomer   bool
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{
		agents:      deps.AgentRepo,
		panchayaths: deps.PanchayathRepo,
		dispatcher:  deps.Dispatcher,
		logger:      orNop(deps.Logger),
	}
}

// ListPanchayaths returns the panchayaths visible to p, ordered by name.
func (s *DirectoryService) ListPanchayaths(ctx context.Context, p access.Principal) ([]domain.Panchayath, error) {
	scopeID, restricted := access.QueryScope(p)
	if restricted && scopeID == "" {
		return []domain.Panchayath{}, nil
	}
	var only *string
	if restricted {
		only = &scopeID
	}
	rows, err := s.panchayaths.List(ctx, only)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return access.FilterByScope(p, rows, func(pc domain.Panchayath) string { return pc.ID }), nil
}

// CreatePanchayath adds a panchayath. Only principals that see every
// panchayath may create one.
func (s *DirectoryService) CreatePanchayath(ctx context.Context, actor access.Principal, input PanchayathInput) (*domain.Panchayath, error) {
	if !actor.Scope.All {
		return nil, apperrors.NewScopeViolation("creating a panchayath requires an unrestricted scope", map[string]any{"principal_id": actor.ID})
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("panchayath name is required", nil)
	}
	pc := &domain.Panchayath{Name: name, District: strings.TrimSpace(input.District), State: strings.TrimSpace(input.State)}
	if err := s.panchayaths.Create(ctx, pc); err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventPanchayathCreated, events.Subject("panchayath", pc.ID), actorOf(actor), map[string]string{"name": pc.Name}))
	return pc, nil
}

// ListAgents returns the agents visible to p, optionally narrowed by role.
func (s *DirectoryService) ListAgents(ctx context.Context, p access.Principal, role *domain.AgentRole) ([]domain.Agent, error) {
	scopeID, restricted := access.QueryScope(p)
	if restricted && scopeID == "" {
		return []domain.Agent{}, nil
	}
	filter := repository.AgentFilter{Role: role}
	if restricted {
		filter.PanchayathID = &scopeID
	}
	rows, err := s.agents.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return access.FilterByScope(p, rows, func(a domain.Agent) string { return a.PanchayathID }), nil
}

// GetAgent returns one agent. Agents outside the scope read as not found.
func (s *DirectoryService) GetAgent(ctx context.Context, p access.Principal, id string) (*domain.Agent, error) {
	agent, err := s.agents.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(access.FilterByScope(p, []domain.Agent{*agent}, func(a domain.Agent) string { return a.PanchayathID })) == 0 {
		return nil, apperrors.NewNotFound("agent", map[string]any{"id": id})
	}
	return agent, nil
}

// CreateAgent adds an agent after checking scope and the role ladder.
func (s *DirectoryService) CreateAgent(ctx context.Context, actor access.Principal, input AgentInput) (*domain.Agent, error) {
	if err := access.CheckScope(actor, input.PanchayathID); err != nil {
		return nil, err
	}
	agent := &domain.Agent{
		Name:         strings.TrimSpace(input.Name),
		Role:         input.Role,
		PanchayathID: input.PanchayathID,
		SuperiorID:   input.SuperiorID,
		Phone:        strings.TrimSpace(input.Phone),
		Ward:         strings.TrimSpace(input.Ward),
		IsCustomer:   input.IsCustomer,
	}
	if agent.Name == "" {
		return nil, apperrors.NewValidationError("agent name is required", nil)
	}
	if agent.Phone != "" {
		phone, err := normalizeMobile(agent.Phone)
		if err != nil {
			return nil, err
		}
		agent.Phone = phone
	}
	if _, err := s.panchayaths.GetByID(ctx, agent.PanchayathID); err != nil {
		return nil, apperrors.MapError(err)
	}

	var superior *domain.Agent
	if agent.SuperiorID != nil && *agent.SuperiorID != "" {
		found, err := s.agents.GetByID(ctx, *agent.SuperiorID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return nil, apperrors.MapError(err)
		default:
			superior = found
		}
	} else {
		agent.SuperiorID = nil
	}
	if err := hierarchy.ValidateSuperior(*agent, superior); err != nil {
		return nil, err
	}

	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventAgentCreated, events.Subject("agent", agent.ID), actorOf(actor), events.AgentCreatedPayload{
		Name:         agent.Name,
		Role:         string(agent.Role),
		PanchayathID: agent.PanchayathID,
		SuperiorID:   agent.SuperiorID,
	}))
	return agent, nil
}
