package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/field-console/internal/domain"
)

// NoteRepository persists panchayath notes.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	Update(ctx context.Context, note *domain.Note) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Note, error)
	List(ctx context.Context, filter NoteFilter) ([]domain.Note, error)
}

// NoteFilter narrows note listing.
type NoteFilter struct {
	PanchayathID *string
	AgentID      *string
	Category     *domain.NoteCategory
}

type noteRepository struct {
	pool *pgxpool.Pool
}

// NewNoteRepository builds repository.
func NewNoteRepository(pool *pgxpool.Pool) NoteRepository {
	return &noteRepository{pool: pool}
}

const noteColumns = `id, panchayath_id, agent_id, category, note_text, created_by, created_at, updated_at`

func (r *noteRepository) Create(ctx context.Context, note *domain.Note) error {
	const query = `
        INSERT INTO panchayath_notes (panchayath_id, agent_id, category, note_text, created_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		note.PanchayathID,
		note.AgentID,
		note.Category,
		note.Body,
		note.CreatedBy,
	).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
}

func (r *noteRepository) Update(ctx context.Context, note *domain.Note) error {
	const query = `
        UPDATE panchayath_notes SET agent_id=$1, category=$2, note_text=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		note.AgentID,
		note.Category,
		note.Body,
		note.ID,
	).Scan(&note.UpdatedAt)
	return err
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM panchayath_notes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *noteRepository) GetByID(ctx context.Context, id string) (*domain.Note, error) {
	var note domain.Note
	if err := r.pool.QueryRow(ctx, `SELECT `+noteColumns+` FROM panchayath_notes WHERE id=$1`, id).Scan(
		&note.ID,
		&note.PanchayathID,
		&note.AgentID,
		&note.Category,
		&note.Body,
		&note.CreatedBy,
		&note.CreatedAt,
		&note.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &note, nil
}

func (r *noteRepository) List(ctx context.Context, filter NoteFilter) ([]domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM panchayath_notes`
	args := []any{}
	clauses := []string{}

	if filter.PanchayathID != nil {
		args = append(args, *filter.PanchayathID)
		clauses = append(clauses, fmt.Sprintf("panchayath_id=$%d", len(args)))
	}
	if filter.AgentID != nil {
		args = append(args, *filter.AgentID)
		clauses = append(clauses, fmt.Sprintf("agent_id=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Note{}
	for rows.Next() {
		var note domain.Note
		if err := rows.Scan(
			&note.ID,
			&note.PanchayathID,
			&note.AgentID,
			&note.Category,
			&note.Body,
			&note.CreatedBy,
			&note.CreatedAt,
			&note.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, note)
	}
	return result, rows.Err()
}
