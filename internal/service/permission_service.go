package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/events"
	"github.com/fieldops/field-console/internal/repository"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

var permissionNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,62}$`)

// PermissionService manages the permission catalogue and its grants. Every
// committed change invalidates cached capability resolutions before the
// outcome event is published.
type PermissionService struct {
	perms       repository.PermissionRepository
	teams       repository.TeamRepository
	admins      repository.AdminUserRepository
	invalidator CapabilityInvalidator
	dispatcher  events.Dispatcher
	guard       *InFlightGuard
	logger      *zap.Logger
}

// PermissionDependencies bundles collaborators for the permission service.
type PermissionDependencies struct {
	PermissionRepo repository.PermissionRepository
	TeamRepo       repository.TeamRepository
	AdminUserRepo  repository.AdminUserRepository
	Invalidator    CapabilityInvalidator
	Dispatcher     events.Dispatcher
	Guard          *InFlightGuard
	Logger         *zap.Logger
}

// PermissionInput describes catalogue writes.
type PermissionInput struct {
	Name        string
	Description string
	Category    string
	IsActive    *bool
}

// NewPermissionService constructs the service.
func NewPermissionService(deps PermissionDependencies) *PermissionService {
	guard := deps.Guard
	if guard == nil {
		guard = NewInFlightGuard()
	}
	return &PermissionService{
		perms:       deps.PermissionRepo,
		teams:       deps.TeamRepo,
		admins:      deps.AdminUserRepo,
		invalidator: deps.Invalidator,
		dispatcher:  deps.Dispatcher,
		guard:       guard,
		logger:      orNop(deps.Logger),
	}
}

// ListPermissions returns the catalogue ordered by category and name.
func (s *PermissionService) ListPermissions(ctx context.Context, includeInactive bool) ([]domain.Permission, error) {
	perms, err := s.perms.List(ctx, includeInactive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return perms, nil
}

// CreatePermission adds a catalogue entry.
func (s *PermissionService) CreatePermission(ctx context.Context, actor access.Principal, input PermissionInput) (*domain.Permission, error) {
	name := strings.TrimSpace(input.Name)
	if !permissionNamePattern.MatchString(name) {
		return nil, apperrors.NewValidationError("permission name must be lower snake case", map[string]any{"name": input.Name})
	}
	perm := &domain.Permission{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		IsActive:    true,
	}
	if input.IsActive != nil {
		perm.IsActive = *input.IsActive
	}
	if err := s.perms.Create(ctx, perm); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishPermissionChanged(ctx, actor, perm, false)
	return perm, nil
}

// UpdatePermission changes description, category or active flag. The name is
// the decision key and stays fixed.
func (s *PermissionService) UpdatePermission(ctx context.Context, actor access.Principal, id string, input PermissionInput) (*domain.Permission, error) {
	perm, err := s.perms.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if input.Name != "" && strings.TrimSpace(input.Name) != perm.Name {
		return nil, apperrors.NewValidationError("permission name cannot change", map[string]any{"name": perm.Name})
	}
	if input.Description != "" {
		perm.Description = strings.TrimSpace(input.Description)
	}
	if input.Category != "" {
		perm.Category = strings.TrimSpace(input.Category)
	}
	toggled := false
	if input.IsActive != nil && *input.IsActive != perm.IsActive {
		perm.IsActive = *input.IsActive
		toggled = true
	}
	if err := s.perms.Update(ctx, perm); err != nil {
		return nil, apperrors.MapError(err)
	}
	if toggled {
		invalidate(ctx, s.invalidator)
	}
	s.publishPermissionChanged(ctx, actor, perm, false)
	return perm, nil
}

// DeletePermission removes a catalogue entry together with its grants.
func (s *PermissionService) DeletePermission(ctx context.Context, actor access.Principal, id string) error {
	perm, err := s.perms.GetByID(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.perms.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	invalidate(ctx, s.invalidator)
	s.publishPermissionChanged(ctx, actor, perm, true)
	return nil
}

// ListTeamGrants returns the grants of a team.
func (s *PermissionService) ListTeamGrants(ctx context.Context, teamID string) ([]domain.TeamPermission, error) {
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return nil, apperrors.MapError(err)
	}
	grants, err := s.perms.ListTeamGrants(ctx, teamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return grants, nil
}

// GrantTeam grants an active permission to a team.
func (s *PermissionService) GrantTeam(ctx context.Context, actor access.Principal, teamID, permissionID string) (*domain.TeamPermission, error) {
	release, err := s.guard.Acquire("grant:team:" + teamID + ":" + permissionID)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return nil, danglingGrant(err, "team", teamID)
	}
	perm, err := s.grantablePermission(ctx, permissionID)
	if err != nil {
		return nil, err
	}
	existing, err := s.perms.ListTeamGrants(ctx, teamID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, g := range existing {
		if g.PermissionID == perm.ID {
			return nil, duplicateGrant("team", teamID, perm.Name)
		}
	}

	grant := &domain.TeamPermission{TeamID: teamID, PermissionID: perm.ID, Permission: perm, GrantedBy: actorRef(actor)}
	if err := s.perms.GrantTeam(ctx, grant); err != nil {
		return nil, grantWriteError(err, "team", teamID, perm.Name)
	}
	invalidate(ctx, s.invalidator)
	s.publishGrant(ctx, events.EventPermissionGranted, actor, "team", teamID, perm)
	return grant, nil
}

// RevokeTeam removes a team grant.
func (s *PermissionService) RevokeTeam(ctx context.Context, actor access.Principal, teamID, permissionID string) error {
	release, err := s.guard.Acquire("revoke:team:" + teamID + ":" + permissionID)
	if err != nil {
		return err
	}
	defer release()

	perm, err := s.perms.GetByID(ctx, permissionID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.perms.RevokeTeam(ctx, teamID, permissionID); err != nil {
		return apperrors.MapError(err)
	}
	invalidate(ctx, s.invalidator)
	s.publishGrant(ctx, events.EventPermissionRevoked, actor, "team", teamID, perm)
	return nil
}

// ListUserGrants returns the direct grants of an admin user.
func (s *PermissionService) ListUserGrants(ctx context.Context, adminUserID string) ([]domain.UserPermission, error) {
	if _, err := s.admins.GetByID(ctx, adminUserID); err != nil {
		return nil, apperrors.MapError(err)
	}
	grants, err := s.perms.ListUserGrants(ctx, adminUserID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return grants, nil
}

// GrantUser grants an active permission directly to an admin user.
func (s *PermissionService) GrantUser(ctx context.Context, actor access.Principal, adminUserID, permissionID string) (*domain.UserPermission, error) {
	release, err := s.guard.Acquire("grant:user:" + adminUserID + ":" + permissionID)
	if err != nil {
		return nil, err
	}
	defer release()

	if _, err := s.admins.GetByID(ctx, adminUserID); err != nil {
		return nil, danglingGrant(err, "admin_user", adminUserID)
	}
	perm, err := s.grantablePermission(ctx, permissionID)
	if err != nil {
		return nil, err
	}
	existing, err := s.perms.ListUserGrants(ctx, adminUserID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, g := range existing {
		if g.PermissionID == perm.ID {
			return nil, duplicateGrant("admin_user", adminUserID, perm.Name)
		}
	}

	grant := &domain.UserPermission{AdminUserID: adminUserID, PermissionID: perm.ID, Permission: perm, GrantedBy: actorRef(actor)}
	if err := s.perms.GrantUser(ctx, grant); err != nil {
		return nil, grantWriteError(err, "admin_user", adminUserID, perm.Name)
	}
	invalidate(ctx, s.invalidator)
	s.publishGrant(ctx, events.EventPermissionGranted, actor, "admin_user", adminUserID, perm)
	return grant, nil
}

// RevokeUser removes a direct admin grant.
func (s *PermissionService) RevokeUser(ctx context.Context, actor access.Principal, adminUserID, permissionID string) error {
	release, err := s.guard.Acquire("revoke:user:" + adminUserID + ":" + permissionID)
	if err != nil {
		return err
	}
	defer release()

	perm, err := s.perms.GetByID(ctx, permissionID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.perms.RevokeUser(ctx, adminUserID, permissionID); err != nil {
		return apperrors.MapError(err)
	}
	invalidate(ctx, s.invalidator)
	s.publishGrant(ctx, events.EventPermissionRevoked, actor, "admin_user", adminUserID, perm)
	return nil
}

func (s *PermissionService) grantablePermission(ctx context.Context, permissionID string) (*domain.Permission, error) {
	perm, err := s.perms.GetByID(ctx, permissionID)
	if err != nil {
		return nil, danglingGrant(err, "permission", permissionID)
	}
	if !perm.IsActive {
		return nil, apperrors.NewInvalidGrant("permission is inactive", map[string]any{"permission": perm.Name})
	}
	return perm, nil
}

func (s *PermissionService) publishGrant(ctx context.Context, eventType events.EventType, actor access.Principal, granteeType, granteeID string, perm *domain.Permission) {
	publish(ctx, s.dispatcher, s.logger, events.New(eventType, events.Subject(granteeType, granteeID), actorOf(actor), events.GrantPayload{
		GranteeType:    granteeType,
		GranteeID:      granteeID,
		PermissionID:   perm.ID,
		PermissionName: perm.Name,
	}))
}

func (s *PermissionService) publishPermissionChanged(ctx context.Context, actor access.Principal, perm *domain.Permission, deleted bool) {
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventPermissionChanged, events.Subject("permission", perm.ID), actorOf(actor), events.PermissionChangedPayload{
		Name:     perm.Name,
		IsActive: perm.IsActive,
		Deleted:  deleted,
	}))
}

// danglingGrant reports a grant that references a row that does not exist.
func danglingGrant(err error, resource, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewInvalidGrant(resource+" does not exist", map[string]any{resource + "_id": id})
	}
	return apperrors.MapError(err)
}

func duplicateGrant(granteeType, granteeID, permission string) error {
	return apperrors.NewInvalidGrant("permission already granted", map[string]any{
		"grantee_type": granteeType,
		"grantee_id":   granteeID,
		"permission":   permission,
	})
}

// grantWriteError folds a unique violation raced past the duplicate check
// into INVALID_GRANT.
func grantWriteError(err error, granteeType, granteeID, permission string) error {
	mapped := apperrors.MapError(err)
	if apperrors.HasCode(mapped, apperrors.CodeConflict) {
		return duplicateGrant(granteeType, granteeID, permission)
	}
	return mapped
}
