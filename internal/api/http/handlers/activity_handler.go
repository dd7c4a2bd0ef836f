package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-console/internal/service"
)

// ActivityHandler exposes the mutation audit trail.
type ActivityHandler struct {
	notifications *service.NotificationService
}

// NewActivityHandler constructs handler.
func NewActivityHandler(notifications *service.NotificationService) *ActivityHandler {
	return &ActivityHandler{notifications: notifications}
}

// List handles GET /activity?subject=&limit=.
func (h *ActivityHandler) List(c *fiber.Ctx) error {
	rows, err := h.notifications.ListActivity(c.UserContext(), c.Query("subject"), parseIntQuery(c, "limit", 100))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}
