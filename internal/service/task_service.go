package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/events"
	"github.com/fieldops/field-console/internal/repository"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

// TaskService manages field tasks.
type TaskService struct {
	tasks      repository.TaskRepository
	agents     repository.AgentRepository
	teams      repository.TeamRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TaskDependencies bundles collaborators for the task service.
type TaskDependencies struct {
	TaskRepo   repository.TaskRepository
	AgentRepo  repository.AgentRepository
	TeamRepo   repository.TeamRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// TaskInput describes task creation.
type TaskInput struct {
	PanchayathID string
	TeamID       *string
	AssigneeID   *string
	Title        string
	Description  string
	Priority     domain.TaskPriority
	DueDate      *time.Time
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	return &TaskService{
		tasks:      deps.TaskRepo,
		agents:     deps.AgentRepo,
		teams:      deps.TeamRepo,
		dispatcher: deps.Dispatcher,
		logger:     orNop(deps.Logger),
	}
}

// ListTasks lists tasks visible to p.
func (s *TaskService) ListTasks(ctx context.Context, p access.Principal, filter repository.TaskFilter) ([]domain.Task, error) {
	scopeID, restricted := access.QueryScope(p)
	if restricted {
		if scopeID == "" || (filter.PanchayathID != nil && *filter.PanchayathID != scopeID) {
			return []domain.Task{}, nil
		}
		filter.PanchayathID = &scopeID
	}
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, apperrors.NewValidationError("unknown task status", map[string]any{"status": st})
		}
	}
	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return access.FilterByScope(p, tasks, func(t domain.Task) string { return t.PanchayathID }), nil
}

// CreateTask adds a task in a panchayath inside the actor's scope. An
// assignee must belong to the same panchayath.
func (s *TaskService) CreateTask(ctx context.Context, actor access.Principal, input TaskInput) (*domain.Task, error) {
	if err := access.CheckScope(actor, input.PanchayathID); err != nil {
		return nil, err
	}
	task := &domain.Task{
		PanchayathID: input.PanchayathID,
		TeamID:       input.TeamID,
		AssigneeID:   input.AssigneeID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Status:       domain.TaskStatusPending,
		Priority:     input.Priority,
		DueDate:      input.DueDate,
		CreatedBy:    actor.ID,
	}
	if task.Title == "" {
		return nil, apperrors.NewValidationError("task title is required", nil)
	}
	switch task.Priority {
	case "":
		task.Priority = domain.TaskPriorityMedium
	case domain.TaskPriorityLow, domain.TaskPriorityMedium, domain.TaskPriorityHigh:
	default:
		return nil, apperrors.NewValidationError("unknown task priority", map[string]any{"priority": task.Priority})
	}
	if task.TeamID != nil {
		if _, err := s.teams.GetByID(ctx, *task.TeamID); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	if task.AssigneeID != nil {
		assignee, err := s.agents.GetByID(ctx, *task.AssigneeID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if assignee.PanchayathID != task.PanchayathID {
			return nil, apperrors.NewValidationError("assignee belongs to another panchayath", map[string]any{"assignee_id": assignee.ID})
		}
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTaskCreated, events.Subject("task", task.ID), actorOf(actor), events.TaskPayload{
		PanchayathID: task.PanchayathID,
		Title:        task.Title,
		NewStatus:    string(task.Status),
	}))
	return task, nil
}

// UpdateStatus moves a task to a new status.
func (s *TaskService) UpdateStatus(ctx context.Context, actor access.Principal, id string, status domain.TaskStatus) (*domain.Task, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown task status", map[string]any{"status": status})
	}
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := access.CheckScope(actor, task.PanchayathID); err != nil {
		return nil, err
	}
	old := task.Status
	if old == status {
		return task, nil
	}
	task.Status = status
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventTaskStatusChanged, events.Subject("task", task.ID), actorOf(actor), events.TaskPayload{
		PanchayathID: task.PanchayathID,
		OldStatus:    string(old),
		NewStatus:    string(status),
	}))
	return task, nil
}
