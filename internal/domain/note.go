package domain

import "time"

// NoteCategory classifies panchayath notes.
type NoteCategory string

const (
	NoteCategoryPanchayath  NoteCategory = "panchayath"
	NoteCategoryCoordinator NoteCategory = "coordinator"
	NoteCategorySupervisor  NoteCategory = "supervisor"
	NoteCategoryGroupLeader NoteCategory = "group_leader"
	NoteCategoryPro         NoteCategory = "pro"
	NoteCategoryCustomer    NoteCategory = "customer"
)

// Valid reports whether c is a known category.
func (c NoteCategory) Valid() bool {
	switch c {
	case NoteCategoryPanchayath, NoteCategoryCoordinator, NoteCategorySupervisor,
		NoteCategoryGroupLeader, NoteCategoryPro, NoteCategoryCustomer:
		return true
	}
	return false
}

// Note is a free-text annotation owned by a panchayath.
type Note struct {
	ID           string
	PanchayathID string
	AgentID      *string
	Category     NoteCategory
	Body         string
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
