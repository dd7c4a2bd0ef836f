package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/field-console/internal/domain"
)

// PanchayathRepository manages panchayath persistence.
type PanchayathRepository interface {
	Create(ctx context.Context, p *domain.Panchayath) error
	Update(ctx context.Context, p *domain.Panchayath) error
	GetByID(ctx context.Context, id string) (*domain.Panchayath, error)
	List(ctx context.Context, onlyID *string) ([]domain.Panchayath, error)
}

type panchayathRepository struct {
	pool *pgxpool.Pool
}

// NewPanchayathRepository builds the repository.
func NewPanchayathRepository(pool *pgxpool.Pool) PanchayathRepository {
	return &panchayathRepository{pool: pool}
}

func (r *panchayathRepository) Create(ctx context.Context, p *domain.Panchayath) error {
	const query = `
        INSERT INTO panchayaths (name, district, state)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		p.Name,
		p.District,
		p.State,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *panchayathRepository) Update(ctx context.Context, p *domain.Panchayath) error {
	const query = `
        UPDATE panchayaths SET name=$1, district=$2, state=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		p.Name,
		p.District,
		p.State,
		p.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *panchayathRepository) GetByID(ctx context.Context, id string) (*domain.Panchayath, error) {
	const query = `
        SELECT id, name, district, state, created_at, updated_at
        FROM panchayaths WHERE id=$1`
	var p domain.Panchayath
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.District,
		&p.State,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns panchayaths ordered by name, restricted to onlyID when set.
func (r *panchayathRepository) List(ctx context.Context, onlyID *string) ([]domain.Panchayath, error) {
	query := `
        SELECT id, name, district, state, created_at, updated_at
        FROM panchayaths`
	args := []any{}
	if onlyID != nil {
		args = append(args, *onlyID)
		query += " WHERE id=$1"
	}
	query += " ORDER BY name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Panchayath{}
	for rows.Next() {
		var p domain.Panchayath
		if err := rows.Scan(&p.ID, &p.Name, &p.District, &p.State, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
