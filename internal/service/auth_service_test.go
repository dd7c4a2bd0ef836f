package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/auth"
	"github.com/fieldops/field-console/internal/cache"
	"github.com/fieldops/field-console/internal/config"
	"github.com/fieldops/field-console/internal/domain"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

func newAuthFixture(t *testing.T) (*AuthService, *memStore, *cache.MemoryRevocations) {
	t.Helper()
	store := newMemStore()
	seedKodur(store)
	revocations := cache.NewMemoryRevocations(64, time.Hour)
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", SessionTTLMinutes: 30, BcryptCost: 4}}
	svc := NewAuthService(cfg, AuthDependencies{
		AdminUserRepo:    fakeAdminRepo{store},
		AgentRepo:        fakeAgentRepo{store},
		TeamRepo:         fakeTeamRepo{store},
		RegistrationRepo: fakeRegistrationRepo{store},
		PanchayathRepo:   fakePanchayathRepo{store},
		Revocations:      revocations,
	})
	return svc, store, revocations
}

func TestAuthService_LoginAdmin(t *testing.T) {
	svc, store, _ := newAuthFixture(t)
	hash, err := auth.HashPassword("correct horse", 4)
	require.NoError(t, err)
	store.admins["adm-1"] = &domain.AdminUser{ID: "adm-1", Username: "root", PasswordHash: hash, Role: domain.AdminRoleSuperAdmin, IsActive: true}

	_, err = svc.LoginAdmin(context.Background(), "root", "wrong")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
	_, err = svc.LoginAdmin(context.Background(), "nobody", "correct horse")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	session, err := svc.LoginAdmin(context.Background(), "root", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionSlotAdmin, session.Slot)

	claims, err := svc.TokenManager().ParseToken(session.Token)
	require.NoError(t, err)
	p := access.Resolve(access.SessionContext{Admin: &claims.Session})
	assert.Equal(t, access.KindSuperAdmin, p.Kind)
	assert.True(t, p.Scope.All)
}

func TestAuthService_LoginTeamMember(t *testing.T) {
	svc, store, _ := newAuthFixture(t)
	ctx := context.Background()
	store.agents["ag-ravi"] = &domain.Agent{ID: "ag-ravi", Name: "Ravi", Role: domain.AgentRolePro, PanchayathID: "p-kodur", Phone: "9876543210"}

	_, err := svc.LoginTeamMember(ctx, "98765")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.LoginTeamMember(ctx, "9876543210")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden), "agent without a team")

	store.teams["t-old"] = &domain.Team{ID: "t-old", Name: "Archive", IsActive: false}
	store.teams["t-ops"] = &domain.Team{ID: "t-ops", Name: "Field Ops", IsActive: true}
	store.members = append(store.members,
		domain.TeamMember{TeamID: "t-old", AgentID: "ag-ravi"},
		domain.TeamMember{TeamID: "t-ops", AgentID: "ag-ravi"},
	)

	session, err := svc.LoginTeamMember(ctx, " 9876543210 ")
	require.NoError(t, err)
	assert.Equal(t, "team_ag-ravi", session.Data.ID)
	assert.Equal(t, []string{"t-ops"}, session.Data.TeamIDs)
	assert.Equal(t, "Field Ops", session.Data.TeamName)

	p := access.Resolve(access.SessionContext{Admin: &session.Data})
	assert.Equal(t, access.KindTeamMemberAdmin, p.Kind)
	assert.Equal(t, "p-kodur", p.Scope.PanchayathID)
}

func TestAuthService_LoginMemberFollowsRegistrationStatus(t *testing.T) {
	svc, store, _ := newAuthFixture(t)
	ctx := context.Background()
	kodur := "p-kodur"
	store.regs["r1"] = &domain.RegistrationRequest{ID: "r1", Username: "Sita", MobileNumber: "9000000001", PanchayathID: &kodur, Status: domain.RegistrationPending}
	store.regs["r2"] = &domain.RegistrationRequest{ID: "r2", Username: "Gita", MobileNumber: "9000000002", Status: domain.RegistrationRejected}
	store.regs["r3"] = &domain.RegistrationRequest{ID: "r3", Username: "Mira", MobileNumber: "9000000003", PanchayathID: &kodur, Status: domain.RegistrationApproved}

	_, err := svc.LoginMember(ctx, "9000000001")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	_, err = svc.LoginMember(ctx, "9000000002")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	_, err = svc.LoginMember(ctx, "9000000009")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	session, err := svc.LoginMember(ctx, "9000000003")
	require.NoError(t, err)
	p := access.Resolve(access.SessionContext{Member: &session.Data})
	assert.Equal(t, access.KindMember, p.Kind)
	assert.Equal(t, "p-kodur", p.Scope.PanchayathID)
}

func TestAuthService_GuestAndLogout(t *testing.T) {
	svc, _, revocations := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.LoginGuest(ctx, "Visitor", "p-nowhere")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	session, err := svc.LoginGuest(ctx, "", "p-kodur")
	require.NoError(t, err)
	assert.Equal(t, "Guest", session.Data.Name)

	require.NoError(t, svc.Logout(ctx, map[domain.SessionSlot]domain.Token{domain.SessionSlotGuest: session.Meta}))
	revoked, err := revocations.IsRevoked(ctx, session.Meta.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestAuthService_CreateAdminUser(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()
	admin := access.Principal{Kind: access.KindAdmin, ID: "adm-2", Scope: access.Scope{All: true}}

	_, err := svc.CreateAdminUser(ctx, admin, "ops", "password1", domain.AdminRoleAdmin)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = svc.CreateAdminUser(ctx, superAdmin, "ops", "short", domain.AdminRoleAdmin)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.CreateAdminUser(ctx, superAdmin, "ops", "password1", domain.AdminRoleTeamMemberAdmin)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	user, err := svc.CreateAdminUser(ctx, superAdmin, "ops", "password1", domain.AdminRoleAdmin)
	require.NoError(t, err)
	assert.NoError(t, auth.ComparePassword(user.PasswordHash, "password1"))

	_, err = svc.CreateAdminUser(ctx, superAdmin, "ops", "password2", domain.AdminRoleAdmin)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}
