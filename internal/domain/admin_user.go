package domain

import "time"

// AdminUser is a console operator with a username and password.
type AdminUser struct {
	ID           string
	Username     string
	PasswordHash string
	Role         AdminRole
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
