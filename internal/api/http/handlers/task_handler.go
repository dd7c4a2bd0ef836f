package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-console/internal/api/dto"
	"github.com/fieldops/field-console/internal/auth"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/repository"
	"github.com/fieldops/field-console/internal/service"
)

// TaskHandler exposes field task endpoints.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler constructs handler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List handles GET /tasks?panchayath_id=&team_id=&assignee_id=&status=a,b&page=&page_size=.
func (h *TaskHandler) List(c *fiber.Ctx) error {
	filter := repository.TaskFilter{
		PanchayathID: optionalQuery(c, "panchayath_id"),
		TeamID:       optionalQuery(c, "team_id"),
		AssigneeID:   optionalQuery(c, "assignee_id"),
	}
	if val := c.Query("status"); val != "" {
		for _, s := range strings.Split(val, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filter.Statuses = append(filter.Statuses, domain.TaskStatus(s))
			}
		}
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	tasks, err := h.tasks.ListTasks(c.UserContext(), auth.PrincipalFromContext(c), filter)
	if err != nil {
		return err
	}
	resp := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, taskResponse(&tasks[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var req dto.TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	task, err := h.tasks.CreateTask(c.UserContext(), auth.PrincipalFromContext(c), service.TaskInput{
		PanchayathID: req.PanchayathID,
		TeamID:       req.TeamID,
		AssigneeID:   req.AssigneeID,
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": taskResponse(task)})
}

// UpdateStatus handles PATCH /tasks/:id/status.
func (h *TaskHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.TaskStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	task, err := h.tasks.UpdateStatus(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponse(task)})
}
