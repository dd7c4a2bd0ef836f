package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-console/internal/api/dto"
	"github.com/fieldops/field-console/internal/auth"
	"github.com/fieldops/field-console/internal/service"
)

// AccessHandler reports who the caller is and what they may open.
type AccessHandler struct {
	accessService *service.AccessService
}

// NewAccessHandler constructs handler.
func NewAccessHandler(accessService *service.AccessService) *AccessHandler {
	return &AccessHandler{accessService: accessService}
}

// Me handles GET /me. Anonymous callers get an empty profile rather than 401
// so the console can render its login screen from the same call.
func (h *AccessHandler) Me(c *fiber.Ctx) error {
	profile := h.accessService.Profile(c.UserContext(), auth.PrincipalFromContext(c))
	return c.JSON(fiber.Map{
		"data": dto.MeResponse{
			Principal:         principalResponse(profile.Principal),
			Sections:          profile.Sections,
			ExplicitGrants:    profile.ExplicitGrants,
			GrantsUnavailable: profile.GrantsUnavailable,
		},
		"warnings": auth.Warnings(c),
	})
}
