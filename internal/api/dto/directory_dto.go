package dto

import (
	"time"

	"github.com/fieldops/field-console/internal/domain"
)

// PanchayathRequest payload.
type PanchayathRequest struct {
	Name     string `json:"name"`
	District string `json:"district"`
	State    string `json:"state"`
}

// PanchayathResponse describes a panchayath.
type PanchayathResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	District  string    `json:"district"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// AgentRequest payload.
type AgentRequest struct {
	Name         string           `json:"name"`
	Role         domain.AgentRole `json:"role"`
	PanchayathID string           `json:"panchayath_id"`
	SuperiorID   *string          `json:"superior_id"`
	Phone        string           `json:"phone"`
	Ward         string           `json:"ward"`
	IsCustomer   bool             `json:"is_customer"`
}

// AgentResponse describes an agent.
type AgentResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Role         domain.AgentRole `json:"role"`
	PanchayathID string           `json:"panchayath_id"`
	SuperiorID   *string          `json:"superior_id"`
	Phone        string           `json:"phone"`
	Ward         string           `json:"ward"`
	IsCustomer   bool             `json:"is_customer"`
	CreatedAt    time.Time        `json:"created_at"`
}

// AgentNodeResponse is one node of the hierarchy forest.
type AgentNodeResponse struct {
	Agent    AgentResponse       `json:"agent"`
	Children []AgentNodeResponse `json:"children"`
}

// PanchayathTreeResponse groups the forest of one panchayath.
type PanchayathTreeResponse struct {
	Panchayath PanchayathResponse  `json:"panchayath"`
	Roots      []AgentNodeResponse `json:"roots"`
}

// HierarchySummaryResponse is the hierarchy screen payload.
type HierarchySummaryResponse struct {
	Total  int                      `json:"total"`
	ByRole map[domain.AgentRole]int `json:"by_role"`
	Agents []AgentResponse          `json:"agents"`
	Tree   []PanchayathTreeResponse `json:"tree"`
}
