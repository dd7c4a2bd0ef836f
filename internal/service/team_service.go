package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/auth"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/events"
	"github.com/fieldops/field-console/internal/repository"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

// TeamService manages management teams and their membership. Membership
// decides team-member-admin capabilities, so every change invalidates the
// capability cache.
type TeamService struct {
	teams         repository.TeamRepository
	agents        repository.AgentRepository
	perms         repository.PermissionRepository
	invalidator   CapabilityInvalidator
	dispatcher    events.Dispatcher
	guard         *InFlightGuard
	logger        *zap.Logger
	defaultGrants []string
	bcryptCost    int
}

// TeamDependencies bundles collaborators for the team service.
type TeamDependencies struct {
	TeamRepo       repository.TeamRepository
	AgentRepo      repository.AgentRepository
	PermissionRepo repository.PermissionRepository
	Invalidator    CapabilityInvalidator
	Dispatcher     events.Dispatcher
	Guard          *InFlightGuard
	Logger         *zap.Logger
	DefaultGrants  []string
	BcryptCost     int
}

// TeamInput describes team writes.
type TeamInput struct {
	Name        string
	Description string
	IsActive    *bool
	Password    *string
}

// TeamDetail is a team with its members and grants.
type TeamDetail struct {
	Team    domain.Team
	Members []domain.TeamMember
	Grants  []domain.TeamPermission
}

// NewTeamService constructs the service.
func NewTeamService(deps TeamDependencies) *TeamService {
	guard := deps.Guard
	if guard == nil {
		guard = NewInFlightGuard()
	}
	return &TeamService{
		teams:         deps.TeamRepo,
		agents:        deps.AgentRepo,
		perms:         deps.PermissionRepo,
		invalidator:   deps.Invalidator,
		dispatcher:    deps.Dispatcher,
		guard:         guard,
		logger:        orNop(deps.Logger),
		defaultGrants: deps.DefaultGrants,
		bcryptCost:    deps.BcryptCost,
	}
}

// ListTeams returns teams ordered by name.
func (s *TeamService) ListTeams(ctx context.Context, includeInactive bool) ([]domain.Team, error) {
	teams, err := s.teams.List(ctx, includeInactive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return teams, nil
}

// GetTeam returns a team with its grants and the members visible to actor.
func (s *TeamService) GetTeam(ctx context.Context, actor access.Principal, id string) (*TeamDetail, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	members, err := s.teams.ListMembers(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	grants, err := s.perms.ListTeamGrants(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	members = access.FilterByScope(actor, members, memberPanchayath)
	return &TeamDetail{Team: *team, Members: members, Grants: grants}, nil
}

// CreateTeam creates a team and applies the default grants. A default grant
// that cannot be applied is logged and skipped; it never fails creation. The
// returned names are the grants actually applied.
func (s *TeamService) CreateTeam(ctx context.Context, actor access.Principal, input TeamInput) (*domain.Team, []string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, nil, apperrors.NewValidationError("team name is required", nil)
	}
	release, err := s.guard.Acquire("team:create:" + strings.ToLower(name))
	if err != nil {
		return nil, nil, err
	}
	defer release()

	team := &domain.Team{Name: name, Description: strings.TrimSpace(input.Description), IsActive: true}
	if input.IsActive != nil {
		team.IsActive = *input.IsActive
	}
	if err := s.applyPassword(team, input.Password); err != nil {
		return nil, nil, err
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	applied := s.applyDefaultGrants(ctx, actor, team)
	if len(applied) > 0 {
		invalidate(ctx, s.invalidator)
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTeamCreated, events.Subject("team", team.ID), actorOf(actor), events.TeamPayload{
		Name:          team.Name,
		IsActive:      team.IsActive,
		DefaultGrants: applied,
	}))
	return team, applied, nil
}

// UpdateTeam changes team attributes.
func (s *TeamService) UpdateTeam(ctx context.Context, actor access.Principal, id string, input TeamInput) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		team.Name = name
	}
	if input.Description != "" {
		team.Description = strings.TrimSpace(input.Description)
	}
	activeChanged := input.IsActive != nil && *input.IsActive != team.IsActive
	if input.IsActive != nil {
		team.IsActive = *input.IsActive
	}
	if err := s.applyPassword(team, input.Password); err != nil {
		return nil, err
	}
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	if activeChanged {
		invalidate(ctx, s.invalidator)
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTeamUpdated, events.Subject("team", team.ID), actorOf(actor), events.TeamPayload{
		Name:     team.Name,
		IsActive: team.IsActive,
	}))
	return team, nil
}

// DeleteTeam removes a team with its memberships and grants.
func (s *TeamService) DeleteTeam(ctx context.Context, actor access.Principal, id string) error {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.teams.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	invalidate(ctx, s.invalidator)
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTeamDeleted, events.Subject("team", id), actorOf(actor), events.TeamPayload{
		Name:     team.Name,
		IsActive: team.IsActive,
	}))
	return nil
}

// AddMember adds an agent to a team.
func (s *TeamService) AddMember(ctx context.Context, actor access.Principal, teamID, agentID string) (*domain.TeamMember, error) {
	release, err := s.guard.Acquire("team:member:" + teamID + ":" + agentID)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return nil, apperrors.MapError(err)
	}
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := access.CheckScope(actor, agent.PanchayathID); err != nil {
		return nil, err
	}
	member := &domain.TeamMember{TeamID: teamID, AgentID: agentID, Agent: agent}
	if err := s.teams.AddMember(ctx, member); err != nil {
		mapped := apperrors.MapError(err)
		if apperrors.HasCode(mapped, apperrors.CodeConflict) {
			return nil, apperrors.NewConflict("agent already in team", map[string]any{"team_id": teamID, "agent_id": agentID})
		}
		return nil, mapped
	}
	invalidate(ctx, s.invalidator)
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTeamMemberAdded, events.Subject("team", teamID), actorOf(actor), events.TeamMemberPayload{
		TeamID:  teamID,
		AgentID: agentID,
	}))
	return member, nil
}

// RemoveMember removes an agent from a team.
func (s *TeamService) RemoveMember(ctx context.Context, actor access.Principal, teamID, agentID string) error {
	agent, err := s.agents.GetByID(ctx, agentID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := access.CheckScope(actor, agent.PanchayathID); err != nil {
		return err
	}
	if err := s.teams.RemoveMember(ctx, teamID, agentID); err != nil {
		return apperrors.MapError(err)
	}
	invalidate(ctx, s.invalidator)
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTeamMemberRemoved, events.Subject("team", teamID), actorOf(actor), events.TeamMemberPayload{
		TeamID:  teamID,
		AgentID: agentID,
	}))
	return nil
}

func memberPanchayath(m domain.TeamMember) string {
	if m.Agent == nil {
		return ""
	}
	return m.Agent.PanchayathID
}

func (s *TeamService) applyDefaultGrants(ctx context.Context, actor access.Principal, team *domain.Team) []string {
	applied := []string{}
	for _, name := range s.defaultGrants {
		perm, err := s.perms.GetByName(ctx, name)
		if err != nil {
			s.logger.Warn("default grant skipped", zap.String("team_id", team.ID), zap.String("permission", name), zap.Error(err))
			continue
		}
		if !perm.IsActive {
			s.logger.Warn("default grant skipped", zap.String("team_id", team.ID), zap.String("permission", name), zap.String("reason", "inactive"))
			continue
		}
		grant := &domain.TeamPermission{TeamID: team.ID, PermissionID: perm.ID, Permission: perm, GrantedBy: actorRef(actor)}
		if err := s.perms.GrantTeam(ctx, grant); err != nil {
			s.logger.Warn("default grant skipped", zap.String("team_id", team.ID), zap.String("permission", name), zap.Error(err))
			continue
		}
		applied = append(applied, perm.Name)
	}
	return applied
}

func (s *TeamService) applyPassword(team *domain.Team, password *string) error {
	if password == nil {
		return nil
	}
	if *password == "" {
		team.PasswordHash = nil
		return nil
	}
	if err := auth.CheckPassword(*password); err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"field": "password"})
	}
	hash, err := auth.HashPassword(*password, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	team.PasswordHash = &hash
	return nil
}
