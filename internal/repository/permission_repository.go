package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fieldops/field-console/internal/domain"
)

// PermissionRepository manages the permission catalogue and both grant tables.
type PermissionRepository interface {
	Create(ctx context.Context, perm *domain.Permission) error
	Update(ctx context.Context, perm *domain.Permission) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Permission, error)
	GetByName(ctx context.Context, name string) (*domain.Permission, error)
	List(ctx context.Context, includeInactive bool) ([]domain.Permission, error)

	GrantTeam(ctx context.Context, grant *domain.TeamPermission) error
	RevokeTeam(ctx context.Context, teamID, permissionID string) error
	ListTeamGrants(ctx context.Context, teamID string) ([]domain.TeamPermission, error)

	GrantUser(ctx context.Context, grant *domain.UserPermission) error
	RevokeUser(ctx context.Context, adminUserID, permissionID string) error
	ListUserGrants(ctx context.Context, adminUserID string) ([]domain.UserPermission, error)
}

type permissionRepository struct {
	pool *pgxpool.Pool
}

// NewPermissionRepository constructs repository.
func NewPermissionRepository(pool *pgxpool.Pool) PermissionRepository {
	return &permissionRepository{pool: pool}
}

const permissionColumns = `id, permission_name, description, category, is_active, created_at, updated_at`

func (r *permissionRepository) Create(ctx context.Context, perm *domain.Permission) error {
	const query = `
        INSERT INTO admin_permissions (permission_name, description, category, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		perm.Name,
		perm.Description,
		perm.Category,
		perm.IsActive,
	).Scan(&perm.ID, &perm.CreatedAt, &perm.UpdatedAt)
}

func (r *permissionRepository) Update(ctx context.Context, perm *domain.Permission) error {
	const query = `
        UPDATE admin_permissions SET permission_name=$1, description=$2, category=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		perm.Name,
		perm.Description,
		perm.Category,
		perm.IsActive,
		perm.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *permissionRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM admin_permissions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *permissionRepository) GetByID(ctx context.Context, id string) (*domain.Permission, error) {
	return scanPermission(r.pool.QueryRow(ctx, `SELECT `+permissionColumns+` FROM admin_permissions WHERE id=$1`, id))
}

func (r *permissionRepository) GetByName(ctx context.Context, name string) (*domain.Permission, error) {
	return scanPermission(r.pool.QueryRow(ctx, `SELECT `+permissionColumns+` FROM admin_permissions WHERE permission_name=$1`, name))
}

func (r *permissionRepository) List(ctx context.Context, includeInactive bool) ([]domain.Permission, error) {
	query := `SELECT ` + permissionColumns + ` FROM admin_permissions`
	if !includeInactive {
		query += " WHERE is_active=TRUE"
	}
	query += " ORDER BY category, permission_name"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Permission{}
	for rows.Next() {
		perm, err := scanPermission(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *perm)
	}
	return result, rows.Err()
}

func (r *permissionRepository) GrantTeam(ctx context.Context, grant *domain.TeamPermission) error {
	const query = `
        INSERT INTO team_permissions (team_id, permission_id, granted_by)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, grant.TeamID, grant.PermissionID, grant.GrantedBy).Scan(&grant.ID, &grant.CreatedAt)
}

func (r *permissionRepository) RevokeTeam(ctx context.Context, teamID, permissionID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM team_permissions WHERE team_id=$1 AND permission_id=$2`, teamID, permissionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListTeamGrants returns the team's grants with their permission, active or not.
func (r *permissionRepository) ListTeamGrants(ctx context.Context, teamID string) ([]domain.TeamPermission, error) {
	const query = `
        SELECT g.id, g.team_id, g.permission_id, g.granted_by, g.created_at,
               p.id, p.permission_name, p.description, p.category, p.is_active, p.created_at, p.updated_at
        FROM team_permissions g
        JOIN admin_permissions p ON p.id = g.permission_id
        WHERE g.team_id=$1
        ORDER BY p.permission_name`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TeamPermission{}
	for rows.Next() {
		var grant domain.TeamPermission
		var perm domain.Permission
		if err := rows.Scan(
			&grant.ID, &grant.TeamID, &grant.PermissionID, &grant.GrantedBy, &grant.CreatedAt,
			&perm.ID, &perm.Name, &perm.Description, &perm.Category, &perm.IsActive, &perm.CreatedAt, &perm.UpdatedAt,
		); err != nil {
			return nil, err
		}
		grant.Permission = &perm
		result = append(result, grant)
	}
	return result, rows.Err()
}

func (r *permissionRepository) GrantUser(ctx context.Context, grant *domain.UserPermission) error {
	const query = `
        INSERT INTO admin_role_permissions (admin_user_id, permission_id, granted_by)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, grant.AdminUserID, grant.PermissionID, grant.GrantedBy).Scan(&grant.ID, &grant.CreatedAt)
}

func (r *permissionRepository) RevokeUser(ctx context.Context, adminUserID, permissionID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM admin_role_permissions WHERE admin_user_id=$1 AND permission_id=$2`, adminUserID, permissionID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *permissionRepository) ListUserGrants(ctx context.Context, adminUserID string) ([]domain.UserPermission, error) {
	const query = `
        SELECT g.id, g.admin_user_id, g.permission_id, g.granted_by, g.created_at,
               p.id, p.permission_name, p.description, p.category, p.is_active, p.created_at, p.updated_at
        FROM admin_role_permissions g
        JOIN admin_permissions p ON p.id = g.permission_id
        WHERE g.admin_user_id=$1
        ORDER BY p.permission_name`
	rows, err := r.pool.Query(ctx, query, adminUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.UserPermission{}
	for rows.Next() {
		var grant domain.UserPermission
		var perm domain.Permission
		if err := rows.Scan(
			&grant.ID, &grant.AdminUserID, &grant.PermissionID, &grant.GrantedBy, &grant.CreatedAt,
			&perm.ID, &perm.Name, &perm.Description, &perm.Category, &perm.IsActive, &perm.CreatedAt, &perm.UpdatedAt,
		); err != nil {
			return nil, err
		}
		grant.Permission = &perm
		result = append(result, grant)
	}
	return result, rows.Err()
}

func scanPermission(row pgx.Row) (*domain.Permission, error) {
	var perm domain.Permission
	if err := row.Scan(
		&perm.ID,
		&perm.Name,
		&perm.Description,
		&perm.Category,
		&perm.IsActive,
		&perm.CreatedAt,
		&perm.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &perm, nil
}
