package dto

import "time"

// PermissionRequest payload for catalogue create and update.
type PermissionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	IsActive    *bool  `json:"is_active"`
}

// PermissionResponse describes a catalogue entry.
type PermissionResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// GrantRequest payload for team and user grants.
type GrantRequest struct {
	PermissionID string `json:"permission_id"`
}

// GrantResponse describes one team or user grant.
type GrantResponse struct {
	ID           string              `json:"id"`
	GranteeType  string              `json:"grantee_type"`
	GranteeID    string              `json:"grantee_id"`
	PermissionID string              `json:"permission_id"`
	Permission   *PermissionResponse `json:"permission,omitempty"`
	GrantedBy    *string             `json:"granted_by,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// TeamRequest payload for create and update. Password is optional and only
// stored hashed.
type TeamRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	IsActive    *bool   `json:"is_active"`
	Password    *string `json:"password"`
}

// TeamResponse describes a team.
type TeamResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	HasPassword bool      `json:"has_password"`
	CreatedAt   time.Time `json:"created_at"`
}

// TeamMemberRequest payload.
type TeamMemberRequest struct {
	AgentID string `json:"agent_id"`
}

// TeamMemberResponse describes a membership row.
type TeamMemberResponse struct {
	ID        string         `json:"id"`
	TeamID    string         `json:"team_id"`
	AgentID   string         `json:"agent_id"`
	Agent     *AgentResponse `json:"agent,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// TeamDetailResponse is a team with its members and grants.
type TeamDetailResponse struct {
	Team    TeamResponse         `json:"team"`
	Members []TeamMemberResponse `json:"members"`
	Grants  []GrantResponse      `json:"grants"`
}
