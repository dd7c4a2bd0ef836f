package domain

import "time"

// Team is a cross-cutting group of agents used for administrative delegation.
type Team struct {
	ID           string
	Name         string
	Description  string
	IsActive     bool
	PasswordHash *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TeamMember links an agent to a team.
type TeamMember struct {
	ID        string
	TeamID    string
	AgentID   string
	Agent     *Agent
	CreatedAt time.Time
}
