package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPermissionGranted   EventType = "permission_granted"
	EventPermissionRevoked   EventType = "permission_revoked"
	EventPermissionChanged   EventType = "permission_changed"
	EventTeamCreated         EventType = "team_created"
	EventTeamUpdated         EventType = "team_updated"
	EventTeamDeleted         EventType = "team_deleted"
	EventTeamMemberAdded     EventType = "team_member_added"
	EventTeamMemberRemoved   EventType = "team_member_removed"
	EventAgentCreated        EventType = "agent_created"
	EventPanchayathCreated   EventType = "panchayath_created"
	EventNoteCreated         EventType = "note_created"
	EventNoteUpdated         EventType = "note_updated"
	EventNoteDeleted         EventType = "note_deleted"
	EventTaskCreated         EventType = "task_created"
	EventTaskStatusChanged   EventType = "task_status_changed"
	EventRegistrationCreated EventType = "registration_created"
	EventRegistrationReview  EventType = "registration_reviewed"
)

// AllEventTypes lists every type the services publish.
var AllEventTypes = []EventType{
	EventPermissionGranted,
	EventPermissionRevoked,
	EventPermissionChanged,
	EventTeamCreated,
	EventTeamUpdated,
	EventTeamDeleted,
	EventTeamMemberAdded,
	EventTeamMemberRemoved,
	EventAgentCreated,
	EventPanchayathCreated,
	EventNoteCreated,
	EventNoteUpdated,
	EventNoteDeleted,
	EventTaskCreated,
	EventTaskStatusChanged,
	EventRegistrationCreated,
	EventRegistrationReview,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Event represents a domain event emitted by services. Subject is a
// "<resource>:<id>" reference to the row that changed.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Subject   string    `json:"subject"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, subject string, actor Actor, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// Subject formats a subject reference.
func Subject(resource, id string) string {
	return resource + ":" + id
}

// GrantPayload describes a team or admin grant change.
type GrantPayload struct {
	GranteeType    string `json:"grantee_type"`
	GranteeID      string `json:"grantee_id"`
	PermissionID   string `json:"permission_id"`
	PermissionName string `json:"permission_name"`
}

// PermissionChangedPayload describes a catalogue change.
type PermissionChangedPayload struct {
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
	Deleted  bool   `json:"deleted,omitempty"`
}

// TeamPayload describes a team change.
type TeamPayload struct {
	Name          string   `json:"name"`
	IsActive      bool     `json:"is_active"`
	DefaultGrants []string `json:"default_grants,omitempty"`
}

// TeamMemberPayload describes a membership change.
type TeamMemberPayload struct {
	TeamID  string `json:"team_id"`
	AgentID string `json:"agent_id"`
}

// AgentCreatedPayload payload.
type AgentCreatedPayload struct {
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	PanchayathID string  `json:"panchayath_id"`
	SuperiorID   *string `json:"superior_id,omitempty"`
}

// NotePayload payload.
type NotePayload struct {
	PanchayathID string `json:"panchayath_id"`
	Category     string `json:"category"`
	BodyPreview  string `json:"body_preview,omitempty"`
}

// TaskPayload payload.
type TaskPayload struct {
	PanchayathID string `json:"panchayath_id"`
	Title        string `json:"title,omitempty"`
	OldStatus    string `json:"old_status,omitempty"`
	NewStatus    string `json:"new_status"`
}

// RegistrationPayload payload.
type RegistrationPayload struct {
	MobileNumber string `json:"mobile_number"`
	Status       string `json:"status"`
}
