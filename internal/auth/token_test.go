package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/domain"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	session := access.SessionData{ID: "team_ag-1", Role: "team_member_admin", AgentID: "ag-1", PanchayathID: "p1", TeamIDs: []string{"t1"}}

	raw, meta, err := tm.GenerateToken(domain.SessionSlotAdmin, session)
	require.NoError(t, err)
	assert.NotEmpty(t, meta.ID)
	assert.Equal(t, domain.SessionSlotAdmin, meta.Slot)
	assert.WithinDuration(t, meta.IssuedAt.Add(30*time.Minute), meta.ExpiresAt, time.Second)

	claims, err := tm.ParseToken(raw)
	require.NoError(t, err)
	assert.Equal(t, session, claims.Session)
	assert.Equal(t, meta.ID, claims.Meta().ID)
	assert.Equal(t, domain.SessionSlotAdmin, claims.Slot)
}

func TestTokenManager_RejectsForeignSignature(t *testing.T) {
	raw, _, err := NewTokenManager("one", 5).GenerateToken(domain.SessionSlotGuest, access.SessionData{ID: "g"})
	require.NoError(t, err)

	_, err = NewTokenManager("two", 5).ParseToken(raw)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	tm := NewTokenManager("secret", 1)
	raw, _, err := tm.GenerateToken(domain.SessionSlotGuest, access.SessionData{ID: "g"})
	require.NoError(t, err)

	tm.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = tm.ParseToken(raw)
	assert.Error(t, err)
}

func TestPassword_HashAndCompare(t *testing.T) {
	hash, err := HashPassword("s3cret", 4)
	require.NoError(t, err)
	assert.NoError(t, ComparePassword(hash, "s3cret"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}

func TestCheckPassword(t *testing.T) {
	assert.NoError(t, CheckPassword("password1"))
	assert.ErrorIs(t, CheckPassword("short"), ErrWeakPassword)
	assert.ErrorIs(t, CheckPassword(strings.Repeat("x", 73)), ErrWeakPassword)
}
