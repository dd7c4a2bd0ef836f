package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/field-console/internal/domain"
)

// AgentRepository handles persistence for field agents.
type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	Update(ctx context.Context, agent *domain.Agent) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Agent, error)
	List(ctx context.Context, filter AgentFilter) ([]domain.Agent, error)
}

// AgentFilter defines query params for agent listing. A zero Limit returns
// every row.
type AgentFilter struct {
	PanchayathID *string
	Role         *domain.AgentRole
	SuperiorID   *string
	Limit        int
	Offset       int
}

type agentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository instantiates the repository.
func NewAgentRepository(pool *pgxpool.Pool) AgentRepository {
	return &agentRepository{pool: pool}
}

const agentColumns = `id, name, role, panchayath_id, superior_id, phone, ward, is_customer, created_at, updated_at`

func (r *agentRepository) Create(ctx context.Context, agent *domain.Agent) error {
	const query = `
        INSERT INTO agents (name, role, panchayath_id, superior_id, phone, ward, is_customer)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		agent.Name,
		agent.Role,
		agent.PanchayathID,
		agent.SuperiorID,
		agent.Phone,
		agent.Ward,
		agent.IsCustomer,
	).Scan(&agent.ID, &agent.CreatedAt, &agent.UpdatedAt)
}

func (r *agentRepository) Update(ctx context.Context, agent *domain.Agent) error {
	const query = `
        UPDATE agents
        SET name=$1, role=$2, panchayath_id=$3, superior_id=$4, phone=$5, ward=$6, is_customer=$7, updated_at=NOW()
        WHERE id=$8`

	cmd, err := r.pool.Exec(ctx, query,
		agent.Name,
		agent.Role,
		agent.PanchayathID,
		agent.SuperiorID,
		agent.Phone,
		agent.Ward,
		agent.IsCustomer,
		agent.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM agents WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *agentRepository) GetByID(ctx context.Context, id string) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE id=$1`
	return scanAgent(r.pool.QueryRow(ctx, query, id))
}

func (r *agentRepository) GetByPhone(ctx context.Context, phone string) (*domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE phone=$1 ORDER BY created_at LIMIT 1`
	return scanAgent(r.pool.QueryRow(ctx, query, phone))
}

func (r *agentRepository) List(ctx context.Context, filter AgentFilter) ([]domain.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents`
	args := []any{}
	clauses := []string{}

	if filter.PanchayathID != nil {
		args = append(args, *filter.PanchayathID)
		clauses = append(clauses, fmt.Sprintf("panchayath_id=$%d", len(args)))
	}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.SuperiorID != nil {
		args = append(args, *filter.SuperiorID)
		clauses = append(clauses, fmt.Sprintf("superior_id=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY name, id"
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Agent{}
	for rows.Next() {
		agent, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *agent)
	}
	return result, rows.Err()
}

func scanAgent(row pgx.Row) (*domain.Agent, error) {
	var agent domain.Agent
	if err := row.Scan(
		&agent.ID,
		&agent.Name,
		&agent.Role,
		&agent.PanchayathID,
		&agent.SuperiorID,
		&agent.Phone,
		&agent.Ward,
		&agent.IsCustomer,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &agent, nil
}
