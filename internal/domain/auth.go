package domain

import "time"

// AdminRole enumerates roles that can occupy the admin session slot.
type AdminRole string

const (
	AdminRoleSuperAdmin      AdminRole = "super_admin"
	AdminRoleAdmin           AdminRole = "admin"
	AdminRoleTeamMemberAdmin AdminRole = "team_member_admin"
)

// SessionSlot names the storage slot a session token was issued for.
type SessionSlot string

const (
	SessionSlotAdmin  SessionSlot = "admin"
	SessionSlotMember SessionSlot = "member"
	SessionSlotGuest  SessionSlot = "guest"
)

// Token represents issued session token metadata.
type Token struct {
	ID        string
	SubjectID string
	Slot      SessionSlot
	ExpiresAt time.Time
	IssuedAt  time.Time
}
