package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/hierarchy"
	"github.com/fieldops/field-console/internal/repository"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

// HierarchyService serves the scoped hierarchy view.
type HierarchyService struct {
	agents      repository.AgentRepository
	panchayaths repository.PanchayathRepository
	tracker     *RequestTracker
	logger      *zap.Logger
}

// HierarchyDependencies bundles collaborators for the hierarchy service.
type HierarchyDependencies struct {
	AgentRepo      repository.AgentRepository
	PanchayathRepo repository.PanchayathRepository
	Tracker        *RequestTracker
	Logger         *zap.Logger
}

// NewHierarchyService constructs the service.
func NewHierarchyService(deps HierarchyDependencies) *HierarchyService {
	tracker := deps.Tracker
	if tracker == nil {
		tracker = NewRequestTracker()
	}
	return &HierarchyService{
		agents:      deps.AgentRepo,
		panchayaths: deps.PanchayathRepo,
		tracker:     tracker,
		logger:      orNop(deps.Logger),
	}
}

// Summary computes counts, filtered list and tree over the agents visible to
// p. A request overtaken by a newer one from the same principal returns
// SUPERSEDED instead of its now stale result.
func (s *HierarchyService) Summary(ctx context.Context, p access.Principal, filters hierarchy.Filters) (hierarchy.Summary, error) {
	ticket := s.tracker.Begin(trackerKey(p, "hierarchy"))

	agents, panchayaths, err := s.scopedRows(ctx, p)
	if err != nil {
		_ = ticket.Finish()
		return hierarchy.Summary{}, err
	}
	summary := hierarchy.Summarize(agents, panchayaths, filters)
	if err := ticket.Finish(); err != nil {
		s.logger.Debug("hierarchy result discarded", zap.String("principal_id", p.ID))
		return hierarchy.Summary{}, err
	}
	return summary, nil
}

// SuperiorOptions lists candidate superiors for a new agent.
func (s *HierarchyService) SuperiorOptions(ctx context.Context, p access.Principal, panchayathID string, role domain.AgentRole) ([]domain.Agent, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unknown agent role", map[string]any{"role": role})
	}
	agents, _, err := s.scopedRows(ctx, p)
	if err != nil {
		return nil, err
	}
	return hierarchy.SuperiorOptions(agents, panchayathID, role), nil
}

// scopedRows loads agents and panchayaths, pushing the scope into the query
// and passing the rows through the scope filter again.
func (s *HierarchyService) scopedRows(ctx context.Context, p access.Principal) ([]domain.Agent, []domain.Panchayath, error) {
	scopeID, restricted := access.QueryScope(p)
	if restricted && scopeID == "" {
		return []domain.Agent{}, []domain.Panchayath{}, nil
	}

	agentFilter := repository.AgentFilter{}
	var onlyPanchayath *string
	if restricted {
		agentFilter.PanchayathID = &scopeID
		onlyPanchayath = &scopeID
	}
	agents, err := s.agents.List(ctx, agentFilter)
	if err != nil {
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}
	panchayaths, err := s.panchayaths.List(ctx, onlyPanchayath)
	if err != nil {
		return nil, nil, apperrors.NewStoreUnavailable(err)
	}
	agents = access.FilterByScope(p, agents, func(a domain.Agent) string { return a.PanchayathID })
	panchayaths = access.FilterByScope(p, panchayaths, func(pc domain.Panchayath) string { return pc.ID })
	return agents, panchayaths, nil
}

func trackerKey(p access.Principal, view string) string {
	id := p.ID
	if id == "" {
		id = "anonymous"
	}
	return string(p.Kind) + ":" + id + ":" + view
}
