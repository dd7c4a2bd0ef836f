package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/field-console/internal/domain"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

func agentPanchayath(a domain.Agent) string { return a.PanchayathID }

func sampleAgents() []domain.Agent {
	return []domain.Agent{
		{ID: "a1", PanchayathID: "p-kodur"},
		{ID: "a2", PanchayathID: "p-other"},
		{ID: "a3", PanchayathID: "p-kodur"},
	}
}

func TestFilterByScope_Admin(t *testing.T) {
	admin := Principal{Kind: KindAdmin, ID: "adm", Scope: Scope{All: true}}
	rows := sampleAgents()

	assert.Equal(t, rows, FilterByScope(admin, rows, agentPanchayath))
}

func TestFilterByScope_Scoped(t *testing.T) {
	guest := Principal{Kind: KindGuest, ID: "g", Scope: Scope{PanchayathID: "p-kodur"}}

	got := FilterByScope(guest, sampleAgents(), agentPanchayath)
	require.Len(t, got, 2)
	for _, a := range got {
		assert.Equal(t, "p-kodur", a.PanchayathID)
	}
}

func TestFilterByScope_Idempotent(t *testing.T) {
	principals := []Principal{
		{Kind: KindAdmin, ID: "adm", Scope: Scope{All: true}},
		{Kind: KindGuest, ID: "g", Scope: Scope{PanchayathID: "p-kodur"}},
		{Kind: KindMember, ID: "m", Scope: Scope{PanchayathID: "p-missing"}},
		Anonymous(),
	}
	for _, p := range principals {
		once := FilterByScope(p, sampleAgents(), agentPanchayath)
		twice := FilterByScope(p, once, agentPanchayath)
		assert.Equal(t, once, twice, string(p.Kind))
	}
}

func TestFilterByScope_EmptyScopeSeesNothing(t *testing.T) {
	got := FilterByScope(Anonymous(), sampleAgents(), agentPanchayath)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	member := Principal{Kind: KindMember, ID: "m"}
	assert.Empty(t, FilterByScope(member, []domain.Agent{{ID: "x", PanchayathID: ""}}, agentPanchayath))
}

func TestQueryScope(t *testing.T) {
	id, restricted := QueryScope(Principal{Scope: Scope{All: true}})
	assert.False(t, restricted)
	assert.Empty(t, id)

	id, restricted = QueryScope(Principal{Scope: Scope{PanchayathID: "p-kodur"}})
	assert.True(t, restricted)
	assert.Equal(t, "p-kodur", id)
}

func TestCheckScope(t *testing.T) {
	admin := Principal{Kind: KindAdmin, Scope: Scope{All: true}}
	assert.NoError(t, CheckScope(admin, "anything"))

	tma := Principal{Kind: KindTeamMemberAdmin, ID: "team_a", Scope: Scope{PanchayathID: "p-kodur"}}
	assert.NoError(t, CheckScope(tma, "p-kodur"))

	err := CheckScope(tma, "p-other")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeScopeViolation))

	assert.Error(t, CheckScope(Principal{Kind: KindMember, ID: "m"}, ""))
}
