package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/field-console/internal/domain"
)

// TeamRepository manages persistence for management teams and membership.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	List(ctx context.Context, includeInactive bool) ([]domain.Team, error)
	ListForAgent(ctx context.Context, agentID string) ([]domain.Team, error)
	AddMember(ctx context.Context, member *domain.TeamMember) error
	RemoveMember(ctx context.Context, teamID, agentID string) error
	ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error)
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	const query = `
        INSERT INTO management_teams (name, description, is_active, password_hash)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		team.Name,
		team.Description,
		team.IsActive,
		team.PasswordHash,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	const query = `
        UPDATE management_teams SET name=$1, description=$2, is_active=$3, password_hash=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		team.Name,
		team.Description,
		team.IsActive,
		team.PasswordHash,
		team.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM management_teams WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	const query = `
        SELECT id, name, description, is_active, password_hash, created_at, updated_at
        FROM management_teams WHERE id=$1`
	var team domain.Team
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&team.IsActive,
		&team.PasswordHash,
		&team.CreatedAt,
		&team.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) List(ctx context.Context, includeInactive bool) ([]domain.Team, error) {
	query := `
        SELECT id, name, description, is_active, password_hash, created_at, updated_at
        FROM management_teams`
	if !includeInactive {
		query += " WHERE is_active=TRUE"
	}
	query += " ORDER BY name"
	return r.queryTeams(ctx, query)
}

// ListForAgent returns every team the agent belongs to, active or not.
func (r *teamRepository) ListForAgent(ctx context.Context, agentID string) ([]domain.Team, error) {
	const query = `
        SELECT t.id, t.name, t.description, t.is_active, t.password_hash, t.created_at, t.updated_at
        FROM management_teams t
        JOIN management_team_members m ON m.team_id = t.id
        WHERE m.agent_id=$1
        ORDER BY m.created_at, t.name`
	return r.queryTeams(ctx, query, agentID)
}

func (r *teamRepository) queryTeams(ctx context.Context, query string, args ...any) ([]domain.Team, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Team{}
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.Description, &team.IsActive, &team.PasswordHash, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, team)
	}
	return result, rows.Err()
}

func (r *teamRepository) AddMember(ctx context.Context, member *domain.TeamMember) error {
	const query = `
        INSERT INTO management_team_members (team_id, agent_id)
        VALUES ($1,$2)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, member.TeamID, member.AgentID).Scan(&member.ID, &member.CreatedAt)
}

func (r *teamRepository) RemoveMember(ctx context.Context, teamID, agentID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM management_team_members WHERE team_id=$1 AND agent_id=$2`, teamID, agentID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamRepository) ListMembers(ctx context.Context, teamID string) ([]domain.TeamMember, error) {
	const query = `
        SELECT m.id, m.team_id, m.agent_id, m.created_at,
               a.id, a.name, a.role, a.panchayath_id, a.superior_id, a.phone, a.ward, a.is_customer, a.created_at, a.updated_at
        FROM management_team_members m
        JOIN agents a ON a.id = m.agent_id
        WHERE m.team_id=$1
        ORDER BY a.name`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TeamMember{}
	for rows.Next() {
		var member domain.TeamMember
		var agent domain.Agent
		if err := rows.Scan(
			&member.ID,
			&member.TeamID,
			&member.AgentID,
			&member.CreatedAt,
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
		member.Agent = &agent
		result = append(result, member)
	}
	return result, rows.Err()
}
