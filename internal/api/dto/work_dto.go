package dto

import (
	"time"

	"github.com/fieldops/field-console/internal/domain"
)

// NoteRequest payload for create and update.
type NoteRequest struct {
	PanchayathID string              `json:"panchayath_id"`
	AgentID      *string             `json:"agent_id"`
	Category     domain.NoteCategory `json:"category"`
	Body         string              `json:"body"`
}

// NoteResponse describes a note.
type NoteResponse struct {
	ID           string              `json:"id"`
	PanchayathID string              `json:"panchayath_id"`
	AgentID      *string             `json:"agent_id"`
	Category     domain.NoteCategory `json:"category"`
	Body         string              `json:"body"`
	CreatedBy    string              `json:"created_by"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// TaskRequest payload.
type TaskRequest struct {
	PanchayathID string              `json:"panchayath_id"`
	TeamID       *string             `json:"team_id"`
	AssigneeID   *string             `json:"assignee_id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Priority     domain.TaskPriority `json:"priority"`
	DueDate      *time.Time          `json:"due_date"`
}

// TaskStatusRequest payload.
type TaskStatusRequest struct {
	Status domain.TaskStatus `json:"status"`
}

// TaskResponse describes a task.
type TaskResponse struct {
	ID           string              `json:"id"`
	PanchayathID string              `json:"panchayath_id"`
	TeamID       *string             `json:"team_id"`
	AssigneeID   *string             `json:"assignee_id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Status       domain.TaskStatus   `json:"status"`
	Priority     domain.TaskPriority `json:"priority"`
	DueDate      *time.Time          `json:"due_date"`
	CreatedBy    string              `json:"created_by"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ReviewRequest payload for approving or rejecting a registration.
type ReviewRequest struct {
	Status domain.RegistrationStatus `json:"status"`
}

// RegistrationResponse describes a registration request.
type RegistrationResponse struct {
	ID           string                    `json:"id"`
	Username     string                    `json:"username"`
	MobileNumber string                    `json:"mobile_number"`
	PanchayathID *string                   `json:"panchayath_id"`
	Ward         string                    `json:"ward"`
	Status       domain.RegistrationStatus `json:"status"`
	ReviewedBy   *string                   `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time                `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
}
