package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-console/internal/api/dto"
	"github.com/fieldops/field-console/internal/auth"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/repository"
	"github.com/fieldops/field-console/internal/service"
)

// NoteHandler exposes panchayath notes.
type NoteHandler struct {
	notes *service.NoteService
}

// NewNoteHandler constructs handler.
func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// List handles GET /notes?panchayath_id=&agent_id=&category=.
func (h *NoteHandler) List(c *fiber.Ctx) error {
	filter := repository.NoteFilter{
		PanchayathID: optionalQuery(c, "panchayath_id"),
		AgentID:      optionalQuery(c, "agent_id"),
	}
	if val := c.Query("category"); val != "" {
		category := domain.NoteCategory(val)
		filter.Category = &category
	}
	notes, err := h.notes.ListNotes(c.UserContext(), auth.PrincipalFromContext(c), filter)
	if err != nil {
		return err
	}
	resp := make([]dto.NoteResponse, 0, len(notes))
	for i := range notes {
		resp = append(resp, noteResponse(&notes[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Create handles POST /notes.
func (h *NoteHandler) Create(c *fiber.Ctx) error {
	var req dto.NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	note, err := h.notes.CreateNote(c.UserContext(), auth.PrincipalFromContext(c), noteInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": noteResponse(note)})
}

// Update handles PUT /notes/:id.
func (h *NoteHandler) Update(c *fiber.Ctx) error {
	var req dto.NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	note, err := h.notes.UpdateNote(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"), noteInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": noteResponse(note)})
}

// Delete handles DELETE /notes/:id.
func (h *NoteHandler) Delete(c *fiber.Ctx) error {
	if err := h.notes.DeleteNote(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func noteInput(req dto.NoteRequest) service.NoteInput {
	return service.NoteInput{
		PanchayathID: req.PanchayathID,
		AgentID:      req.AgentID,
		Category:     req.Category,
		Body:         req.Body,
	}
}
