package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/field-console/internal/domain"
)

// ActivityRepository stores audit entries for committed mutations.
type ActivityRepository interface {
	Create(ctx context.Context, entry *domain.Activity) error
	List(ctx context.Context, subject string, limit int) ([]domain.Activity, error)
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository builds repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Create(ctx context.Context, entry *domain.Activity) error {
	const query = `
        INSERT INTO activity_log (event_type, subject, actor_kind, actor_id, payload)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	payload := entry.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	return r.pool.QueryRow(ctx, query,
		entry.EventType,
		entry.Subject,
		entry.ActorKind,
		entry.ActorID,
		payload,
	).Scan(&entry.ID, &entry.CreatedAt)
}

// List returns the newest entries first. An empty subject lists everything.
func (r *activityRepository) List(ctx context.Context, subject string, limit int) ([]domain.Activity, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := `
        SELECT id, event_type, subject, actor_kind, actor_id, payload, created_at
        FROM activity_log`
	args := []any{}
	if subject != "" {
		query += " WHERE subject=$1"
		args = append(args, subject)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %d", limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Activity{}
	for rows.Next() {
		var entry domain.Activity
		if err := rows.Scan(
			&entry.ID,
			&entry.EventType,
			&entry.Subject,
			&entry.ActorKind,
			&entry.ActorID,
			&entry.Payload,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
