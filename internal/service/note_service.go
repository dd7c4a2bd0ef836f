package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fieldops/field-console/internal/access"
	"github.com/fieldops/field-console/internal/domain"
	"github.com/fieldops/field-console/internal/events"
	"github.com/fieldops/field-console/internal/repository"
	apperrors "github.com/fieldops/field-console/pkg/util/errorutil"
)

// NoteService manages panchayath notes.
type NoteService struct {
	notes      repository.NoteRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NoteInput describes note writes.
type NoteInput struct {
	PanchayathID string
	AgentID      *string
	Category     domain.NoteCategory
	Body         string
}

// NewNoteService constructs the service.
func NewNoteService(notes repository.NoteRepository, dispatcher events.Dispatcher, logger *zap.Logger) *NoteService {
	return &NoteService{notes: notes, dispatcher: dispatcher, logger: orNop(logger)}
}

// ListNotes lists notes visible to p. A requested panchayath outside the
// scope yields an empty list.
func (s *NoteService) ListNotes(ctx context.Context, p access.Principal, filter repository.NoteFilter) ([]domain.Note, error) {
	scopeID, restricted := access.QueryScope(p)
	if restricted {
		if scopeID == "" || (filter.PanchayathID != nil && *filter.PanchayathID != scopeID) {
			return []domain.Note{}, nil
		}
		filter.PanchayathID = &scopeID
	}
	notes, err := s.notes.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return access.FilterByScope(p, notes, func(n domain.Note) string { return n.PanchayathID }), nil
}

// CreateNote adds a note to a panchayath inside the actor's scope.
func (s *NoteService) CreateNote(ctx context.Context, actor access.Principal, input NoteInput) (*domain.Note, error) {
	if err := access.CheckScope(actor, input.PanchayathID); err != nil {
		return nil, err
	}
	note := &domain.Note{
		PanchayathID: input.PanchayathID,
		AgentID:      input.AgentID,
		Category:     input.Category,
		Body:         strings.TrimSpace(input.Body),
		CreatedBy:    actor.ID,
	}
	if err := validateNote(note); err != nil {
		return nil, err
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishNote(ctx, events.EventNoteCreated, actor, note)
	return note, nil
}

// UpdateNote edits a note. Scope is checked against the stored row.
func (s *NoteService) UpdateNote(ctx context.Context, actor access.Principal, id string, input NoteInput) (*domain.Note, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := access.CheckScope(actor, note.PanchayathID); err != nil {
		return nil, err
	}
	if input.PanchayathID != "" && input.PanchayathID != note.PanchayathID {
		return nil, apperrors.NewValidationError("a note cannot move between panchayaths", nil)
	}
	if input.Category != "" {
		note.Category = input.Category
	}
	if input.Body != "" {
		note.Body = strings.TrimSpace(input.Body)
	}
	if input.AgentID != nil {
		note.AgentID = input.AgentID
	}
	if err := validateNote(note); err != nil {
		return nil, err
	}
	if err := s.notes.Update(ctx, note); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishNote(ctx, events.EventNoteUpdated, actor, note)
	return note, nil
}

// DeleteNote removes a note.
func (s *NoteService) DeleteNote(ctx context.Context, actor access.Principal, id string) error {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := access.CheckScope(actor, note.PanchayathID); err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	s.publishNote(ctx, events.EventNoteDeleted, actor, note)
	return nil
}

func (s *NoteService) publishNote(ctx context.Context, eventType events.EventType, actor access.Principal, note *domain.Note) {
	publish(ctx, s.dispatcher, s.logger, events.New(eventType, events.Subject("note", note.ID), actorOf(actor), events.NotePayload{
		PanchayathID: note.PanchayathID,
		Category:     string(note.Category),
		BodyPreview:  preview(note.Body),
	}))
}

func validateNote(note *domain.Note) error {
	if !note.Category.Valid() {
		return apperrors.NewValidationError("unknown note category", map[string]any{"category": note.Category})
	}
	if note.Body == "" {
		return apperrors.NewValidationError("note text is required", nil)
	}
	return nil
}
