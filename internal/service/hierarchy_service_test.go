package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/hierarchy"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

func seedKodur(store *memStore) {
	store.panchayaths["p-kodur"] = &domain.Panchayath{ID: "p-kodur", Name: "Kodur"}
	store.panchayaths["p-vayal"] = &domain.Panchayath{ID: "p-vayal", Name: "Vayal"}
	sup := "k-coord"
	store.agents["k-coord"] = &domain.Agent{ID: "k-coord", Name: "Lakshmi", Role: domain.AgentRoleCoordinator, PanchayathID: "p-kodur", Phone: "9400011111"}
	store.agents["k-sup"] = &domain.Agent{ID: "k-sup", Name: "Biju", Role: domain.AgentRoleSupervisor, PanchayathID: "p-kodur", SuperiorID: &sup, Phone: "9400022222"}
	store.agents["k-pro"] = &domain.Agent{ID: "k-pro", Name: "Anil", Role: domain.AgentRolePro, PanchayathID: "p-kodur", Phone: "9876500001"}
	store.agents["v-coord"] = &domain.Agent{ID: "v-coord", Name: "Suresh", Role: domain.AgentRoleCoordinator, PanchayathID: "p-vayal", Phone: "9123498700"}
}

func newHierarchyFixture() (*HierarchyService, *memStore) {
	store := newMemStore()
	seedKodur(store)
	svc := NewHierarchyService(HierarchyDependencies{
		AgentRepo:      fakeAgentRepo{store},
		PanchayathRepo: fakePanchayathRepo{store},
	})
	return svc, store
}

func TestHierarchyService_GuestSeesOnlyOwnPanchayath(t *testing.T) {
	svc, _ := newHierarchyFixture()
	guest := access.Resolve(access.SessionContext{Guest: &access.SessionData{ID: "guest-1", PanchayathID: "p-kodur"}})

	summary, err := svc.Summary(context.Background(), guest, hierarchy.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Counts.Total)
	for _, a := range summary.Agents {
		assert.Equal(t, "p-kodur", a.PanchayathID)
	}
	require.Len(t, summary.Tree, 1)
	assert.Equal(t, "Kodur", summary.Tree[0].Panchayath.Name)

	// asking for another panchayath cannot widen the scope
	summary, err = svc.Summary(context.Background(), guest, hierarchy.Filters{PanchayathID: "p-vayal"})
	require.NoError(t, err)
	assert.Zero(t, summary.Counts.Total)
}

func TestHierarchyService_AdminSeesAll(t *testing.T) {
	svc, _ := newHierarchyFixture()

	summary, err := svc.Summary(context.Background(), superAdmin, hierarchy.Filters{Search: "987"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"k-pro", "v-coord"}, agentIDs(summary.Agents))
}

func TestHierarchyService_EmptyScopeSeesNothing(t *testing.T) {
	svc, _ := newHierarchyFixture()
	member := access.Resolve(access.SessionContext{Member: &access.SessionData{ID: "m-1"}})

	summary, err := svc.Summary(context.Background(), member, hierarchy.Filters{})
	require.NoError(t, err)
	assert.Zero(t, summary.Counts.Total)
	assert.Empty(t, summary.Tree)
}

func TestHierarchyService_StoreFailure(t *testing.T) {
	svc, store := newHierarchyFixture()
	store.failWith = errors.New("timeout")

	_, err := svc.Summary(context.Background(), superAdmin, hierarchy.Filters{})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStoreUnavailable))
}

func TestHierarchyService_SupersededRequestDiscarded(t *testing.T) {
	svc, _ := newHierarchyFixture()
	stale := svc.tracker.Begin(trackerKey(superAdmin, "hierarchy"))

	_, err := svc.Summary(context.Background(), superAdmin, hierarchy.Filters{})
	require.NoError(t, err)
	assert.True(t, apperrors.HasCode(stale.Finish(), apperrors.CodeSuperseded))
}

func TestHierarchyService_SuperiorOptions(t *testing.T) {
	svc, _ := newHierarchyFixture()

	opts, err := svc.SuperiorOptions(context.Background(), superAdmin, "p-kodur", domain.AgentRoleGroupLeader)
	require.NoError(t, err)
	assert.Equal(t, []string{"k-sup"}, agentIDs(opts))

	_, err = svc.SuperiorOptions(context.Background(), superAdmin, "p-kodur", "captain")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func agentIDs(agents []domain.Agent) []string {
	out := make([]string, 0, len(agents))
	for _, a := range agents {
		out = append(out, a.ID)
	}
	return out
}
