package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-console/internal/api/dto"
	"github.com/fieldops/field-console/internal/auth"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/service"
)

// RegistrationHandler exposes the approval queue.
type RegistrationHandler struct {
	registrations *service.RegistrationService
}

// NewRegistrationHandler constructs handler.
func NewRegistrationHandler(registrations *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

// List handles GET /registrations?status=.
func (h *RegistrationHandler) List(c *fiber.Ctx) error {
	var status *domain.RegistrationStatus
	if val := c.Query("status"); val != "" {
		s := domain.RegistrationStatus(val)
		status = &s
	}
	rows, err := h.registrations.ListRequests(c.UserContext(), auth.PrincipalFromContext(c), status)
	if err != nil {
		return err
	}
	resp := make([]dto.RegistrationResponse, 0, len(rows))
	for i := range rows {
		resp = append(resp, registrationResponse(&rows[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Review handles POST /registrations/:id/review.
func (h *RegistrationHandler) Review(c *fiber.Ctx) error {
	var req dto.ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	request, err := h.registrations.Review(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": registrationResponse(request)})
}
