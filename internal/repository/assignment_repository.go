package repository

import (
	"context"

	"staffing-hub/internal/database"
	"staffing-hub/internal/database/postgres"
	"staffing-hub/internal/domain/staffing"

	"github.com/google/uuid"
)

const oneActiveAssignmentIndex = "uq_assignments_one_active"

type AssignmentRepository interface {
	ListActiveByRoleIDs(ctx context.Context, roleIDs []uuid.UUID) ([]staffing.Assignment, error)
	Materialize(ctx context.Context, a staffing.Assignment, reassign bool) (staffing.Assignment, error)
}

type PostgresAssignmentRepository struct {
	db database.DB
}

func NewPostgresAssignmentRepository(db database.DB) *PostgresAssignmentRepository {
	return &PostgresAssignmentRepository{db: db}
}

func (r *PostgresAssignmentRepository) ListActiveByRoleIDs(ctx context.Context, roleIDs []uuid.UUID) ([]staffing.Assignment, error) {
	out := make([]staffing.Assignment, 0)
	if len(roleIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, role_id, employee_id, request_id, start_date, end_date, active
		 FROM assignments
		 WHERE role_id = ANY($1) AND active
		 ORDER BY start_date DESC`,
		roleIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a staffing.Assignment
		if err := rows.Scan(&a.ID, &a.RoleID, &a.EmployeeID, &a.RequestID, &a.StartDate, &a.EndDate, &a.Active); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Materialize creates a as the role's active assignment. The role row is
// locked for the duration so concurrent materializations serialize. With
// reassign the current active assignment is ended on a.StartDate; without it
// an occupied role yields ErrActiveAssignmentExists.
func (r *PostgresAssignmentRepository) Materialize(ctx context.Context, a staffing.Assignment, reassign bool) (staffing.Assignment, error) {
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		var locked uuid.UUID
		row := tx.QueryRow(ctx, `SELECT id FROM roles WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`, a.RoleID)
		if err := row.Scan(&locked); err != nil {
			if isNoRows(err) {
				return ErrRoleNotFound
			}
			return err
		}

		var occupied bool
		row = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM assignments WHERE role_id = $1 AND active)`, a.RoleID)
		if err := row.Scan(&occupied); err != nil {
			return err
		}
		if occupied {
			if !reassign {
				return ErrActiveAssignmentExists
			}
			if _, err := tx.Exec(ctx,
				`UPDATE assignments SET active = FALSE, end_date = $2 WHERE role_id = $1 AND active`,
				a.RoleID, a.StartDate,
			); err != nil {
				return err
			}
		}

		_, err := tx.Exec(ctx,
			`INSERT INTO assignments (id, role_id, employee_id, request_id, start_date, end_date, active)
			 VALUES ($1, $2, $3, $4, $5, NULL, TRUE)`,
			a.ID, a.RoleID, a.EmployeeID, a.RequestID, a.StartDate,
		)
		return err
	})
	if err != nil {
		if name, ok := postgres.ConstraintViolation(err, postgres.CodeUniqueViolation); ok {
			if name == oneActiveAssignmentIndex {
				return staffing.Assignment{}, ErrActiveAssignmentExists
			}
			return staffing.Assignment{}, ErrAlreadyMaterialized
		}
		if _, ok := postgres.ConstraintViolation(err, postgres.CodeForeignKeyViolation); ok {
			return staffing.Assignment{}, ErrDanglingReference
		}
		return staffing.Assignment{}, err
	}

	a.Active = true
	a.EndDate = nil
	return a, nil
}
