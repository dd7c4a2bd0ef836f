package hierarchy

import (
	"sort"

	"github.com/fieldops/field-console/internal/domain"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

// SuperiorOptions lists agents that may act as superior for a new agent of
// role in panchayathID, ordered by name. Coordinators have none.
func SuperiorOptions(agents []domain.Agent, panchayathID string, role domain.AgentRole) []domain.Agent {
	want, ok := role.Superior()
	if !ok {
		return []domain.Agent{}
	}
	out := []domain.Agent{}
	for _, a := range agents {
		if a.PanchayathID == panchayathID && a.Role == want {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ValidateSuperior checks the ladder invariant for agent. superior is the row
// agent.SuperiorID points at, or nil when it could not be found.
func ValidateSuperior(agent domain.Agent, superior *domain.Agent) error {
	if !agent.Role.Valid() {
		return apperrors.NewValidationError("unknown agent role", map[string]any{"role": agent.Role})
	}
	if agent.SuperiorID == nil || *agent.SuperiorID == "" {
		return nil
	}
	want, ok := agent.Role.Superior()
	if !ok {
		return apperrors.NewValidationError("coordinators cannot have a superior", nil)
	}
	if superior == nil {
		return apperrors.NewNotFound("superior agent", map[string]any{"superior_id": *agent.SuperiorID})
	}
	if superior.PanchayathID != agent.PanchayathID {
		return apperrors.NewValidationError("superior must belong to the same panchayath", map[string]any{
			"superior_id":   superior.ID,
			"panchayath_id": agent.PanchayathID,
		})
	}
	if superior.Role != want {
		return apperrors.NewValidationError("superior must be one level up", map[string]any{
			"superior_id":   superior.ID,
			"expected_role": want,
			"actual_role":   superior.Role,
		})
	}
	return nil
}
