package domain

import "time"

// Permission is a named, grantable capability. Name is the stable key used at
// decision time; IDs may be regenerated.
type Permission struct {
	ID          string
	Name        string
	Description string
	Category    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserPermission grants a permission directly to an admin user.
type UserPermission struct {
	ID           string
	AdminUserID  string
	PermissionID string
	Permission   *Permission
	GrantedBy    *string
	CreatedAt    time.Time
}

// TeamPermission grants a permission to every member of a team.
type TeamPermission struct {
	ID           string
	TeamID       string
	PermissionID string
	Permission   *Permission
	GrantedBy    *string
	CreatedAt    time.Time
}
