package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-console/internal/auth"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/hierarchy"
	"github.com/fieldops/field-console/internal/service"
)

// HierarchyHandler serves the hierarchy screen.
type HierarchyHandler struct {
	hierarchyService *service.HierarchyService
}

// NewHierarchyHandler constructs handler.
func NewHierarchyHandler(hierarchyService *service.HierarchyService) *HierarchyHandler {
	return &HierarchyHandler{hierarchyService: hierarchyService}
}

// Summary handles GET /hierarchy?search=&panchayath_id=&role=.
func (h *HierarchyHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.hierarchyService.Summary(c.UserContext(), auth.PrincipalFromContext(c), hierarchy.Filters{
		Search:       c.Query("search"),
		PanchayathID: c.Query("panchayath_id"),
		Role:         c.Query("role"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summaryResponse(summary)})
}

// SuperiorOptions handles GET /hierarchy/superior-options?panchayath_id=&role=.
func (h *HierarchyHandler) SuperiorOptions(c *fiber.Ctx) error {
	panchayathID := c.Query("panchayath_id")
	role := domain.AgentRole(c.Query("role"))
	if panchayathID == "" || role == "" {
		return fiber.NewError(http.StatusBadRequest, "panchayath_id and role required")
	}
	agents, err := h.hierarchyService.SuperiorOptions(c.UserContext(), auth.PrincipalFromContext(c), panchayathID, role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": agentResponses(agents)})
}
