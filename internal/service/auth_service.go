package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/auth"
	"github.com/fieldops/field-console/internal/config"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/repository"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

// Session is an issued session token with the blob it carries.
type Session struct {
	Slot  domain.SessionSlot
	Token string
	Meta  domain.Token
	Data  access.SessionData
}

// AuthService coordinates the console login flows for the three session slots.
type AuthService struct {
	admins        repository.AdminUserRepository
	agents        repository.AgentRepository
	teams         repository.TeamRepository
	registrations repository.RegistrationRepository
	panchayaths   repository.PanchayathRepository
	revocations   auth.RevocationList
	tokenMgr      *auth.TokenManager
	bcryptCost    int
	logger        *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	AdminUserRepo    repository.AdminUserRepository
	AgentRepo        repository.AgentRepository
	TeamRepo         repository.TeamRepository
	RegistrationRepo repository.RegistrationRepository
	PanchayathRepo   repository.PanchayathRepository
	Revocations      auth.RevocationList
	Logger           *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		admins:        deps.AdminUserRepo,
		agents:        deps.AgentRepo,
		teams:         deps.TeamRepo,
		registrations: deps.RegistrationRepo,
		panchayaths:   deps.PanchayathRepo,
		revocations:   deps.Revocations,
		tokenMgr:      auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTLMinutes),
		bcryptCost:    cfg.Auth.BcryptCost,
		logger:        orNop(deps.Logger),
	}
}

// LoginAdmin authenticates a console administrator by username and password.
func (s *AuthService) LoginAdmin(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.admins.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !user.IsActive {
		return nil, apperrors.NewUnauthorized("account disabled")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(domain.SessionSlotAdmin, access.SessionData{
		ID:   user.ID,
		Name: user.Username,
		Role: string(user.Role),
	})
}

// LoginTeamMember signs in an agent who belongs to at least one active team.
// The session carries every team id and the first team's name.
func (s *AuthService) LoginTeamMember(ctx context.Context, mobile string) (*Session, error) {
	phone, err := normalizeMobile(mobile)
	if err != nil {
		return nil, err
	}
	agent, err := s.agents.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("no agent registered with this mobile number")
		}
		return nil, apperrors.MapError(err)
	}
	teams, err := s.teams.ListForAgent(ctx, agent.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	data := access.SessionData{
		ID:           "team_" + agent.ID,
		Name:         agent.Name,
		Role:         string(domain.AdminRoleTeamMemberAdmin),
		PanchayathID: agent.PanchayathID,
		AgentID:      agent.ID,
		Phone:        agent.Phone,
	}
	for _, team := range teams {
		if !team.IsActive {
			continue
		}
		if data.TeamName == "" {
			data.TeamName = team.Name
		}
		data.TeamIDs = append(data.TeamIDs, team.ID)
	}
	if len(data.TeamIDs) == 0 {
		return nil, apperrors.NewForbidden("agent is not a member of any active team")
	}
	return s.issue(domain.SessionSlotAdmin, data)
}

// LoginMember signs in a member whose registration request was approved.
func (s *AuthService) LoginMember(ctx context.Context, mobile string) (*Session, error) {
	phone, err := normalizeMobile(mobile)
	if err != nil {
		return nil, err
	}
	req, err := s.registrations.GetByMobile(ctx, phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("registration", map[string]any{"mobile_number": phone})
		}
		return nil, apperrors.MapError(err)
	}
	switch req.Status {
	case domain.RegistrationApproved:
	case domain.RegistrationPending:
		return nil, apperrors.NewDomainError(apperrors.CodeForbidden, "registration is awaiting approval", http.StatusForbidden, map[string]any{"status": req.Status})
	default:
		return nil, apperrors.NewDomainError(apperrors.CodeForbidden, "registration was rejected", http.StatusForbidden, map[string]any{"status": req.Status})
	}
	data := access.SessionData{ID: req.ID, Name: req.Username, Role: string(access.KindMember)}
	if req.PanchayathID != nil {
		data.PanchayathID = *req.PanchayathID
	}
	return s.issue(domain.SessionSlotMember, data)
}

// LoginGuest opens a read-only guest session bound to one panchayath.
func (s *AuthService) LoginGuest(ctx context.Context, name, panchayathID string) (*Session, error) {
	if _, err := s.panchayaths.GetByID(ctx, panchayathID); err != nil {
		return nil, apperrors.MapError(err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Guest"
	}
	return s.issue(domain.SessionSlotGuest, access.SessionData{
		ID:           "guest_" + uuid.NewString(),
		Name:         name,
		Role:         string(access.KindGuest),
		PanchayathID: panchayathID,
	})
}

// CreateAdminUser adds a console administrator. Only super admins may do so.
func (s *AuthService) CreateAdminUser(ctx context.Context, actor access.Principal, username, password string, role domain.AdminRole) (*domain.AdminUser, error) {
	if actor.Kind != access.KindSuperAdmin {
		return nil, apperrors.NewForbidden("super admin role required")
	}
	if role != domain.AdminRoleAdmin && role != domain.AdminRoleSuperAdmin {
		return nil, apperrors.NewValidationError("role must be admin or super_admin", map[string]any{"role": role})
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.NewValidationError("username required", nil)
	}
	if err := auth.CheckPassword(password); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.AdminUser{Username: username, PasswordHash: hash, Role: role, IsActive: true}
	if err := s.admins.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Logout revokes the presented tokens until they expire.
func (s *AuthService) Logout(ctx context.Context, tokens map[domain.SessionSlot]domain.Token) error {
	if s.revocations == nil {
		return nil
	}
	for slot, token := range tokens {
		if err := s.revocations.Revoke(ctx, token.ID, token.ExpiresAt); err != nil {
			s.logger.Warn("session revocation failed", zap.String("slot", string(slot)), zap.Error(err))
			return apperrors.NewStoreUnavailable(err)
		}
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(slot domain.SessionSlot, data access.SessionData) (*Session, error) {
	token, meta, err := s.tokenMgr.GenerateToken(slot, data)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{Slot: slot, Token: token, Meta: meta, Data: data}, nil
}
