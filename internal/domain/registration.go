package domain

import "time"

// RegistrationStatus captures where a member registration request stands.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// RegistrationRequest is a member's request to join a panchayath.
type RegistrationRequest struct {
	ID           string
	Username     string
	MobileNumber string
	PanchayathID *string
	Ward         string
	Status       RegistrationStatus
	ReviewedBy   *string
	ReviewedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
