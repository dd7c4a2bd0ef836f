package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sectionIDs(sections []Section) []string {
	ids := make([]string, 0, len(sections))
	for _, s := range sections {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestCanAccess_AdminsAnyKey(t *testing.T) {
	for _, kind := range []Kind{KindAdmin, KindSuperAdmin} {
		p := Principal{Kind: kind, ID: "adm", Scope: Scope{All: true}}
		for _, c := range Registry {
			assert.True(t, CanAccess(p, string(c)))
		}
		assert.True(t, CanAccess(p, "not_registered"))
		assert.True(t, CanAccess(p, ""))
	}
}

func TestCanAccess_UnknownKeyFalse(t *testing.T) {
	p := Principal{Kind: KindTeamMemberAdmin, ID: "t", Capabilities: NewCapabilitySet("mystery", "chat")}

	assert.False(t, CanAccess(p, "mystery"))
	assert.True(t, CanAccess(p, "chat"))
	assert.False(t, CanAccess(p, ""))
}

func TestVisibleSections_RegistryOrder(t *testing.T) {
	p := Principal{
		Kind:         KindTeamMemberAdmin,
		ID:           "team_a",
		Capabilities: NewCapabilitySet("chat", "member_management", "hierarchy_view"),
	}

	got := VisibleSections(p, DefaultSections)
	assert.Equal(t, []string{"dashboard", "approvals", "users", "hierarchy", "notifications"}, sectionIDs(got))
}

func TestVisibleSections_Admin(t *testing.T) {
	p := Principal{Kind: KindSuperAdmin, ID: "adm", Capabilities: AllCapabilities()}

	assert.Len(t, VisibleSections(p, DefaultSections), len(DefaultSections))
}

func TestVisibleSections_BaselineOnlyForAuthenticated(t *testing.T) {
	assert.Empty(t, VisibleSections(Anonymous(), DefaultSections))

	guest := Principal{Kind: KindGuest, ID: "g", Scope: Scope{PanchayathID: "p"}}
	assert.Equal(t, []string{"dashboard"}, sectionIDs(VisibleSections(guest, DefaultSections)))
}

func TestVisibleSections_CustomRegistry(t *testing.T) {
	registry := []Section{
		{ID: "b", Capability: CapChat},
		{ID: "a", Capability: CapChat},
		{ID: "ghost", Capability: Capability("ghost")},
	}
	p := Principal{Kind: KindMember, ID: "m", Capabilities: NewCapabilitySet("chat", "ghost")}

	assert.Equal(t, []string{"b", "a"}, sectionIDs(VisibleSections(p, registry)))
}

func TestCapabilitySetUnion(t *testing.T) {
	a := NewCapabilitySet("chat", "chat", "")
	b := NewCapabilitySet("settings")

	u := a.Union(b)
	assert.Equal(t, []string{"chat", "settings"}, u.Keys())
	assert.Equal(t, 1, a.Len())
	assert.True(t, a.Union(AllCapabilities()).IsAll())
	assert.True(t, AllCapabilities().Has("anything"))
	assert.Empty(t, AllCapabilities().Keys())
}
