package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-console/internal/api/dto"
	"github.com/fieldops/field-console/internal/auth"
	"github.com/fieldops/field-console/internal/service"
)

// TeamHandler exposes team and membership management.
type TeamHandler struct {
	teams *service.TeamService
}

// NewTeamHandler constructs handler.
func NewTeamHandler(teams *service.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// List handles GET /teams.
func (h *TeamHandler) List(c *fiber.Ctx) error {
	teams, err := h.teams.ListTeams(c.UserContext(), parseBoolQuery(c, "include_inactive", false))
	if err != nil {
		return err
	}
	resp := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		resp = append(resp, teamResponse(&teams[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Get handles GET /teams/:id.
func (h *TeamHandler) Get(c *fiber.Ctx) error {
	detail, err := h.teams.GetTeam(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	resp := dto.TeamDetailResponse{
		Team:    teamResponse(&detail.Team),
		Members: make([]dto.TeamMemberResponse, 0, len(detail.Members)),
		Grants:  make([]dto.GrantResponse, 0, len(detail.Grants)),
	}
	for i := range detail.Members {
		resp.Members = append(resp.Members, teamMemberResponse(&detail.Members[i]))
	}
	for i := range detail.Grants {
		resp.Grants = append(resp.Grants, teamGrantResponse(&detail.Grants[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Create handles POST /teams. The response lists the default grants that
// were applied.
func (h *TeamHandler) Create(c *fiber.Ctx) error {
	var req dto.TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	team, applied, err := h.teams.CreateTeam(c.UserContext(), auth.PrincipalFromContext(c), teamInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"team":           teamResponse(team),
			"default_grants": applied,
		},
	})
}

// Update handles PUT /teams/:id.
func (h *TeamHandler) Update(c *fiber.Ctx) error {
	var req dto.TeamRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	team, err := h.teams.UpdateTeam(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"), teamInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": teamResponse(team)})
}

// Delete handles DELETE /teams/:id.
func (h *TeamHandler) Delete(c *fiber.Ctx) error {
	if err := h.teams.DeleteTeam(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// AddMember handles POST /teams/:id/members.
func (h *TeamHandler) AddMember(c *fiber.Ctx) error {
	var req dto.TeamMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.AgentID == "" {
		return fiber.NewError(http.StatusBadRequest, "agent_id required")
	}
	member, err := h.teams.AddMember(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"), req.AgentID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": teamMemberResponse(member)})
}

// RemoveMember handles DELETE /teams/:id/members/:agentId.
func (h *TeamHandler) RemoveMember(c *fiber.Ctx) error {
	if err := h.teams.RemoveMember(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"), c.Params("agentId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func teamInput(req dto.TeamRequest) service.TeamInput {
	return service.TeamInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
		Password:    req.Password,
	}
}
