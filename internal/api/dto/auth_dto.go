package dto

import (
	"time"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/domain"
)

// AdminLoginRequest payload.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// MobileLoginRequest payload used by team member and member logins.
type MobileLoginRequest struct {
	MobileNumber string `json:"mobile_number"`
}

// GuestLoginRequest payload.
type GuestLoginRequest struct {
	Name         string `json:"name"`
	PanchayathID string `json:"panchayath_id"`
}

// RegisterRequest payload for member self-registration.
type RegisterRequest struct {
	Username     string  `json:"username"`
	MobileNumber string  `json:"mobile_number"`
	PanchayathID *string `json:"panchayath_id"`
	Ward         string  `json:"ward"`
}

// CreateAdminUserRequest payload.
type CreateAdminUserRequest struct {
	Username string           `json:"username"`
	Password string           `json:"password"`
	Role     domain.AdminRole `json:"role"`
}

// SessionResponse is returned by every login endpoint. The client stores
// Token in the slot named by Slot.
type SessionResponse struct {
	Slot      domain.SessionSlot `json:"slot"`
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	Session   access.SessionData `json:"session"`
}

// AdminUserResponse hides the password hash.
type AdminUserResponse struct {
	ID        string           `json:"id"`
	Username  string           `json:"username"`
	Role      domain.AdminRole `json:"role"`
	IsActive  bool             `json:"is_active"`
	CreatedAt time.Time        `json:"created_at"`
}

// PrincipalResponse describes the caller.
type PrincipalResponse struct {
	Kind          access.Kind  `json:"kind"`
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Authenticated bool         `json:"authenticated"`
	Scope         access.Scope `json:"scope"`
	AgentID       string       `json:"agent_id,omitempty"`
	TeamIDs       []string     `json:"team_ids,omitempty"`
	TeamName      string       `json:"team_name,omitempty"`
	Capabilities  []string     `json:"capabilities"`
	AllAccess     bool         `json:"all_access"`
}

// MeResponse is the profile of the caller plus the console sections it may open.
type MeResponse struct {
	Principal         PrincipalResponse `json:"principal"`
	Sections          []access.Section  `json:"sections"`
	ExplicitGrants    []string          `json:"explicit_grants"`
	GrantsUnavailable bool              `json:"grants_unavailable"`
}
