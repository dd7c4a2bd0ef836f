package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgentRoleLadder(t *testing.T) {
	assert.Equal(t, 0, AgentRoleCoordinator.Rank())
	assert.Equal(t, 3, AgentRolePro.Rank())
	assert.Equal(t, -1, AgentRole("volunteer").Rank())
	assert.False(t, AgentRole("").Valid())

	sup, ok := AgentRolePro.Superior()
	assert.True(t, ok)
	assert.Equal(t, AgentRoleGroupLeader, sup)

	sup, ok = AgentRoleGroupLeader.Superior()
	assert.True(t, ok)
	assert.Equal(t, AgentRoleSupervisor, sup)

	_, ok = AgentRoleCoordinator.Superior()
	assert.False(t, ok)
	_, ok = AgentRole("volunteer").Superior()
	assert.False(t, ok)
}

func TestNoteCategoryValid(t *testing.T) {
	assert.True(t, NoteCategoryGroupLeader.Valid())
	assert.False(t, NoteCategory("group-leader").Valid())
}
