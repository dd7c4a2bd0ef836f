package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldops/field-console/internal/domain"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

func TestSuperiorOptions(t *testing.T) {
	agents, _ := fixture()

	opts := SuperiorOptions(agents, "p-kodur", domain.AgentRoleGroupLeader)
	assert.Equal(t, []string{"k-sup"}, ids(opts))

	assert.Empty(t, SuperiorOptions(agents, "p-kodur", domain.AgentRoleCoordinator))
	assert.Empty(t, SuperiorOptions(agents, "p-vayal", domain.AgentRoleGroupLeader))
}

func TestValidateSuperior(t *testing.T) {
	sup := domain.Agent{ID: "s", Role: domain.AgentRoleSupervisor, PanchayathID: "p"}

	ok := domain.Agent{Role: domain.AgentRoleGroupLeader, PanchayathID: "p", SuperiorID: ptr("s")}
	assert.NoError(t, ValidateSuperior(ok, &sup))

	noSuperior := domain.Agent{Role: domain.AgentRolePro, PanchayathID: "p"}
	assert.NoError(t, ValidateSuperior(noSuperior, nil))

	wrongRung := domain.Agent{Role: domain.AgentRolePro, PanchayathID: "p", SuperiorID: ptr("s")}
	assert.True(t, apperrors.HasCode(ValidateSuperior(wrongRung, &sup), apperrors.CodeValidation))

	otherPanchayath := domain.Agent{Role: domain.AgentRoleGroupLeader, PanchayathID: "q", SuperiorID: ptr("s")}
	assert.True(t, apperrors.HasCode(ValidateSuperior(otherPanchayath, &sup), apperrors.CodeValidation))

	missing := domain.Agent{Role: domain.AgentRoleGroupLeader, PanchayathID: "p", SuperiorID: ptr("gone")}
	assert.True(t, apperrors.HasCode(ValidateSuperior(missing, nil), apperrors.CodeNotFound))

	coordinator := domain.Agent{Role: domain.AgentRoleCoordinator, PanchayathID: "p", SuperiorID: ptr("s")}
	assert.Error(t, ValidateSuperior(coordinator, &sup))

	assert.Error(t, ValidateSuperior(domain.Agent{Role: "boss"}, nil))
}
