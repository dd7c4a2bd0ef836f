package domain

import "time"

// AgentRole enumerates positions on the field hierarchy ladder.
type AgentRole string

const (
	AgentRoleCoordinator AgentRole = "coordinator"
	AgentRoleSupervisor  AgentRole = "supervisor"
	AgentRoleGroupLeader AgentRole = "group-leader"
	AgentRolePro         AgentRole = "pro"
)

// RoleLadder lists roles from the top of the hierarchy down.
var RoleLadder = []AgentRole{
	AgentRoleCoordinator,
	AgentRoleSupervisor,
	AgentRoleGroupLeader,
	AgentRolePro,
}

// Rank returns the ladder position (0 is the top) or -1 for unknown roles.
func (r AgentRole) Rank() int {
	for i, role := range RoleLadder {
		if role == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r is a ladder role.
func (r AgentRole) Valid() bool {
	return r.Rank() >= 0
}

// Superior returns the role directly above r. The second result is false for
// the top of the ladder and for unknown roles.
func (r AgentRole) Superior() (AgentRole, bool) {
	rank := r.Rank()
	if rank <= 0 {
		return "", false
	}
	return RoleLadder[rank-1], true
}

// Agent is a person record in the field hierarchy.
type Agent struct {
	ID           string
	Name         string
	Role         AgentRole
	PanchayathID string
	SuperiorID   *string
	Phone        string
	Ward         string
	IsCustomer   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
