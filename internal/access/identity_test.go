package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_NoSessionIsAnonymous(t *testing.T) {
	p := Resolve(SessionContext{})

	assert.Equal(t, KindGuest, p.Kind)
	assert.False(t, p.Authenticated())
	assert.True(t, p.Scope.Empty())
	assert.Zero(t, p.Capabilities.Len())
	assert.False(t, p.Capabilities.IsAll())
}

func TestResolve_AdminSlotWins(t *testing.T) {
	sc := SessionContext{
		Admin:  &SessionData{ID: "adm-1", Name: "root", Role: "super_admin"},
		Member: &SessionData{ID: "mem-1", Name: "Anu", PanchayathID: "p-kodur"},
		Guest:  &SessionData{ID: "guest-1", PanchayathID: "p-kodur"},
	}

	p := Resolve(sc)
	assert.Equal(t, KindSuperAdmin, p.Kind)
	assert.Equal(t, "adm-1", p.AdminUserID)
	assert.True(t, p.Scope.All)
}

func TestResolve_MemberBeatsGuest(t *testing.T) {
	sc := SessionContext{
		Member: &SessionData{ID: "mem-1", Name: "Anu", PanchayathID: "p-kodur"},
		Guest:  &SessionData{ID: "guest-1", PanchayathID: "p-other"},
	}

	p := Resolve(sc)
	assert.Equal(t, KindMember, p.Kind)
	assert.Equal(t, "p-kodur", p.Scope.PanchayathID)
	assert.False(t, p.Scope.All)
}

func TestResolve_UnknownRoleFallsThrough(t *testing.T) {
	sc := SessionContext{
		Admin: &SessionData{ID: "adm-1", Role: "owner"},
		Guest: &SessionData{ID: "guest-1", PanchayathID: "p-kodur"},
	}

	p := Resolve(sc)
	assert.Equal(t, KindGuest, p.Kind)
	assert.True(t, p.Authenticated())
	assert.Equal(t, "p-kodur", p.Scope.PanchayathID)
}

func TestResolve_TeamMemberAdmin(t *testing.T) {
	sc := SessionContext{Admin: &SessionData{
		ID:           "team_ag-ravi",
		Name:         "Ravi",
		Role:         "team_member_admin",
		AgentID:      "ag-ravi",
		TeamIDs:      []string{"t-ops"},
		TeamName:     "Field Ops",
		Phone:        "9876543210",
		PanchayathID: "p-kodur",
	}}

	p := Resolve(sc)
	require.Equal(t, KindTeamMemberAdmin, p.Kind)
	assert.Equal(t, "ag-ravi", p.AgentID)
	assert.Empty(t, p.AdminUserID)
	assert.Equal(t, []string{"t-ops"}, p.TeamIDs)
	assert.Equal(t, Scope{PanchayathID: "p-kodur"}, p.Scope)
	assert.False(t, p.Kind.IsAdmin())
}

func TestResolve_TeamMemberAdminWithoutAgentIsAbsent(t *testing.T) {
	p := Resolve(SessionContext{Admin: &SessionData{ID: "team_x", Role: "team_member_admin"}})
	assert.False(t, p.Authenticated())
}

func TestResolve_DoesNotAliasSession(t *testing.T) {
	data := &SessionData{ID: "team_a", Role: "team_member_admin", AgentID: "a", TeamIDs: []string{"t1"}}
	p := Resolve(SessionContext{Admin: data})

	p.TeamIDs[0] = "changed"
	assert.Equal(t, "t1", data.TeamIDs[0])
}

func TestWithCapabilitiesCopies(t *testing.T) {
	p := Principal{Kind: KindMember, ID: "m", TeamIDs: []string{"t"}}
	q := p.WithCapabilities(NewCapabilitySet("chat"))

	assert.True(t, q.Capabilities.Has("chat"))
	assert.False(t, p.Capabilities.Has("chat"))
	q.TeamIDs[0] = "x"
	assert.Equal(t, "t", p.TeamIDs[0])
}
