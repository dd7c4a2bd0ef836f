package domain

import "time"

// Panchayath represents an organizational unit that owns agents.
type Panchayath struct {
	ID        string
	Name      string
	District  string
	State     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
