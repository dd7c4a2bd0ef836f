package service

import (
	"context"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/repository"
)

var _ access.PermissionStore = (*PermissionStore)(nil)

// PermissionStore exposes the grant tables to the capability aggregator.
type PermissionStore struct {
	teams repository.TeamRepository
	perms repository.PermissionRepository
}

// NewPermissionStore builds the adapter.
func NewPermissionStore(teams repository.TeamRepository, perms repository.PermissionRepository) *PermissionStore {
	return &PermissionStore{teams: teams, perms: perms}
}

func (s *PermissionStore) TeamsForAgent(ctx context.Context, agentID string) ([]domain.Team, error) {
	return s.teams.ListForAgent(ctx, agentID)
}

func (s *PermissionStore) TeamGrants(ctx context.Context, teamID string) ([]domain.TeamPermission, error) {
	return s.perms.ListTeamGrants(ctx, teamID)
}

func (s *PermissionStore) UserGrants(ctx context.Context, adminUserID string) ([]domain.UserPermission, error) {
	return s.perms.ListUserGrants(ctx, adminUserID)
}
