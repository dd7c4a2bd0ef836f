package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-console/internal/api/dto"
	"github.com/fieldops/field-console/internal/auth"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/service"
)

// DirectoryHandler exposes panchayath and agent endpoints.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// ListPanchayaths handles GET /panchayaths.
func (h *DirectoryHandler) ListPanchayaths(c *fiber.Ctx) error {
	rows, err := h.directory.ListPanchayaths(c.UserContext(), auth.PrincipalFromContext(c))
	if err != nil {
		return err
	}
	resp := make([]dto.PanchayathResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, panchayathResponse(&rows[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CreatePanchayath handles POST /panchayaths.
func (h *DirectoryHandler) CreatePanchayath(c *fiber.Ctx) error {
	var req dto.PanchayathRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	p, err := h.directory.CreatePanchayath(c.UserContext(), auth.PrincipalFromContext(c), service.PanchayathInput{
		Name:     req.Name,
		District: req.District,
		State:    req.State,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": panchayathResponse(p)})
}

// ListAgents handles GET /agents?role=.
func (h *DirectoryHandler) ListAgents(c *fiber.Ctx) error {
	var role *domain.AgentRole
	if val := c.Query("role"); val != "" {
		r := domain.AgentRole(val)
		role = &r
	}
	agents, err := h.directory.ListAgents(c.UserContext(), auth.PrincipalFromContext(c), role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": agentResponses(agents)})
}

// GetAgent handles GET /agents/:id.
func (h *DirectoryHandler) GetAgent(c *fiber.Ctx) error {
	agent, err := h.directory.GetAgent(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": agentResponse(agent)})
}

// CreateAgent handles POST /agents.
func (h *DirectoryHandler) CreateAgent(c *fiber.Ctx) error {
	var req dto.AgentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	agent, err := h.directory.CreateAgent(c.UserContext(), auth.PrincipalFromContext(c), service.AgentInput{
		Name:         req.Name,
		Role:         req.Role,
		PanchayathID: req.PanchayathID,
		SuperiorID:   req.SuperiorID,
		Phone:        req.Phone,
		Ward:         req.Ward,
		IsCustomer:   req.IsCustomer,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": agentResponse(agent)})
}
