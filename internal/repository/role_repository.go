package repository

import (
	"context"
	"time"

	"staffing-hub/internal/database"
	"staffing-hub/internal/database/postgres"
	"staffing-hub/internal/domain/staffing"

	"github.com/google/uuid"
)

type RoleDeletion struct {
	RoleID    uuid.UUID
	Reason    string
	DeletedBy *uuid.UUID
	At        time.Time
}

type RoleRepository interface {
	Create(ctx context.Context, role staffing.Role) (staffing.Role, error)
	FindByID(ctx context.Context, id uuid.UUID) (staffing.Role, error)
	ListByProjectIDs(ctx context.Context, projectIDs []uuid.UUID) ([]staffing.Role, error)
	SoftDelete(ctx context.Context, d RoleDeletion) error
}

type PostgresRoleRepository struct {
	db database.DB
}

func NewPostgresRoleRepository(db database.DB) *PostgresRoleRepository {
	return &PostgresRoleRepository{db: db}
}

// Create inserts the role and its requirements in one transaction.
func (r *PostgresRoleRepository) Create(ctx context.Context, role staffing.Role) (staffing.Role, error) {
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO roles (id, project_id, title, description, required_experience_level, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			role.ID, role.ProjectID, role.Title, role.Description, role.RequiredExperienceLevel, role.CreatedAt,
		)
		if err != nil {
			return err
		}

		for _, req := range role.Requirements {
			_, err := tx.Exec(ctx,
				`INSERT INTO role_skill_requirements (role_id, skill_id, min_level, importance)
				 VALUES ($1, $2, $3, $4)`,
				role.ID, req.SkillID, req.MinLevel, req.Importance,
			)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := postgres.ConstraintViolation(err, postgres.CodeForeignKeyViolation); ok {
			return staffing.Role{}, ErrDanglingReference
		}
		return staffing.Role{}, err
	}

	return r.FindByID(ctx, role.ID)
}

const roleColumns = `id, project_id, title, description, required_experience_level, created_at, deleted_at, deletion_reason, deleted_by`

func (r *PostgresRoleRepository) FindByID(ctx context.Context, id uuid.UUID) (staffing.Role, error) {
	row := r.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	role, err := scanRole(row)
	if err != nil {
		if isNoRows(err) {
			return staffing.Role{}, ErrRoleNotFound
		}
		return staffing.Role{}, err
	}

	reqs, err := findRequirements(ctx, r.db, id)
	if err != nil {
		return staffing.Role{}, err
	}
	role.Requirements = reqs
	return role, nil
}

// ListByProjectIDs returns live roles only; requirements are not loaded.
func (r *PostgresRoleRepository) ListByProjectIDs(ctx context.Context, projectIDs []uuid.UUID) ([]staffing.Role, error) {
	out := make([]staffing.Role, 0)
	if len(projectIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+roleColumns+`
		 FROM roles
		 WHERE project_id = ANY($1) AND deleted_at IS NULL
		 ORDER BY created_at ASC`,
		projectIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SoftDelete marks a live role as deleted and keeps the reason. Deleting an
// unknown or already deleted role yields ErrRoleNotFound.
func (r *PostgresRoleRepository) SoftDelete(ctx context.Context, d RoleDeletion) error {
	affected, err := r.db.Exec(ctx,
		`UPDATE roles
		 SET deleted_at = $2, deletion_reason = $3, deleted_by = $4
		 WHERE id = $1 AND deleted_at IS NULL`,
		d.RoleID, d.At, d.Reason, d.DeletedBy,
	)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRoleNotFound
	}
	return nil
}

func scanRole(row database.Row) (staffing.Role, error) {
	var role staffing.Role
	if err := row.Scan(
		&role.ID,
		&role.ProjectID,
		&role.Title,
		&role.Description,
		&role.RequiredExperienceLevel,
		&role.CreatedAt,
		&role.DeletedAt,
		&role.DeletionReason,
		&role.DeletedBy,
	); err != nil {
		return staffing.Role{}, err
	}
	return role, nil
}
