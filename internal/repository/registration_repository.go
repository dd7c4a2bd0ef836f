package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/field-console/internal/domain"
)

// RegistrationRepository manages member registration requests.
type RegistrationRepository interface {
	Create(ctx context.Context, req *domain.RegistrationRequest) error
	GetByID(ctx context.Context, id string) (*domain.RegistrationRequest, error)
	GetByMobile(ctx context.Context, mobile string) (*domain.RegistrationRequest, error)
	List(ctx context.Context, filter RegistrationFilter) ([]domain.RegistrationRequest, error)
	UpdateStatus(ctx context.Context, req *domain.RegistrationRequest) error
}

// RegistrationFilter narrows request listing.
type RegistrationFilter struct {
	Status       *domain.RegistrationStatus
	PanchayathID *string
}

type registrationRepository struct {
	pool *pgxpool.Pool
}

// NewRegistrationRepository constructs repository.
func NewRegistrationRepository(pool *pgxpool.Pool) RegistrationRepository {
	return &registrationRepository{pool: pool}
}

const registrationColumns = `id, username, mobile_number, panchayath_id, ward, status, reviewed_by, reviewed_at, created_at, updated_at`

func (r *registrationRepository) Create(ctx context.Context, req *domain.RegistrationRequest) error {
	const query = `
        INSERT INTO user_registration_requests (username, mobile_number, panchayath_id, ward, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		req.Username,
		req.MobileNumber,
		req.PanchayathID,
		req.Ward,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
}

func (r *registrationRepository) GetByID(ctx context.Context, id string) (*domain.RegistrationRequest, error) {
	return r.fetchSingle(ctx, `SELECT `+registrationColumns+` FROM user_registration_requests WHERE id=$1`, id)
}

func (r *registrationRepository) GetByMobile(ctx context.Context, mobile string) (*domain.RegistrationRequest, error) {
	return r.fetchSingle(ctx, `SELECT `+registrationColumns+` FROM user_registration_requests WHERE mobile_number=$1`, mobile)
}

func (r *registrationRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.RegistrationRequest, error) {
	var req domain.RegistrationRequest
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&req.ID,
		&req.Username,
		&req.MobileNumber,
		&req.PanchayathID,
		&req.Ward,
		&req.Status,
		&req.ReviewedBy,
		&req.ReviewedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *registrationRepository) List(ctx context.Context, filter RegistrationFilter) ([]domain.RegistrationRequest, error) {
	query := `SELECT ` + registrationColumns + ` FROM user_registration_requests`
	args := []any{}
	clauses := []string{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.PanchayathID != nil {
		args = append(args, *filter.PanchayathID)
		clauses = append(clauses, fmt.Sprintf("panchayath_id=$%d", len(args)))
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

	result := []domain.RegistrationRequest{}
	for rows.Next() {
		var req domain.RegistrationRequest
		if err := rows.Scan(
			&req.ID,
			&req.Username,
			&req.MobileNumber,
			&req.PanchayathID,
			&req.Ward,
			&req.Status,
			&req.ReviewedBy,
			&req.ReviewedAt,
			&req.CreatedAt,
			&req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}

// UpdateStatus records a review decision. Only pending requests move.
func (r *registrationRepository) UpdateStatus(ctx context.Context, req *domain.RegistrationRequest) error {
	const query = `
        UPDATE user_registration_requests SET status=$1, reviewed_by=$2, reviewed_at=NOW(), updated_at=NOW()
        WHERE id=$3 AND status='pending'
        RETURNING reviewed_at, updated_at`
	return r.pool.QueryRow(ctx, query, req.Status, req.ReviewedBy, req.ID).Scan(&req.ReviewedAt, &req.UpdatedAt)
}
