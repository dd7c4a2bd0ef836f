package domain

import (
	"encoding/json"
	"time"
)

// Activity is one row of the mutation audit trail.
type Activity struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Subject   string          `json:"subject"`
	ActorKind string          `json:"actor_kind"`
	ActorID   string          `json:"actor_id"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
