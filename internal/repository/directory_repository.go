package repository

import (
	"context"
	"time"

	"staffing-hub/internal/database"
	"staffing-hub/internal/domain/staffing"

	"github.com/google/uuid"
)

type EmployeeRepository interface {
	FindEmployeeByID(ctx context.Context, id uuid.UUID) (staffing.Employee, error)
}

type AdministratorRepository interface {
	FindAdministratorByID(ctx context.Context, id uuid.UUID) (staffing.Administrator, error)
	ListAdministrators(ctx context.Context) ([]staffing.Administrator, error)
}

type ProjectRepository interface {
	FindProjectByID(ctx context.Context, id uuid.UUID) (staffing.Project, error)
	FindProjectsByIDs(ctx context.Context, ids []uuid.UUID) ([]staffing.Project, error)
}

// PostgresDirectoryRepository serves the read-only lookups for employees,
// administrators and projects.
type PostgresDirectoryRepository struct {
	db database.DB
}

func NewPostgresDirectoryRepository(db database.DB) *PostgresDirectoryRepository {
	return &PostgresDirectoryRepository{db: db}
}

func (r *PostgresDirectoryRepository) FindEmployeeByID(ctx context.Context, id uuid.UUID) (staffing.Employee, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, full_name, email, status, availability_pct FROM employees WHERE id = $1`,
		id,
	)

	var e staffing.Employee
	var status string
	if err := row.Scan(&e.ID, &e.FullName, &e.Email, &status, &e.AvailabilityPct); err != nil {
		if isNoRows(err) {
			return staffing.Employee{}, ErrEmployeeNotFound
		}
		return staffing.Employee{}, err
	}
	e.Status = staffing.EmployeeStatus(status)
	return e, nil
}

func (r *PostgresDirectoryRepository) FindAdministratorByID(ctx context.Context, id uuid.UUID) (staffing.Administrator, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, full_name, department, access_level FROM administrators WHERE id = $1`,
		id,
	)

	var a staffing.Administrator
	if err := row.Scan(&a.ID, &a.FullName, &a.Department, &a.AccessLevel); err != nil {
		if isNoRows(err) {
			return staffing.Administrator{}, ErrAdministratorNotFound
		}
		return staffing.Administrator{}, err
	}
	return a, nil
}

func (r *PostgresDirectoryRepository) ListAdministrators(ctx context.Context) ([]staffing.Administrator, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, full_name, department, access_level FROM administrators ORDER BY full_name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]staffing.Administrator, 0)
	for rows.Next() {
		var a staffing.Administrator
		if err := rows.Scan(&a.ID, &a.FullName, &a.Department, &a.AccessLevel); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

const projectColumns = `id, name, status, start_date, estimated_end_date, manager_id`

func (r *PostgresDirectoryRepository) FindProjectByID(ctx context.Context, id uuid.UUID) (staffing.Project, error) {
	row := r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if err != nil {
		if isNoRows(err) {
			return staffing.Project{}, ErrProjectNotFound
		}
		return staffing.Project{}, err
	}
	return p, nil
}

func (r *PostgresDirectoryRepository) FindProjectsByIDs(ctx context.Context, ids []uuid.UUID) ([]staffing.Project, error) {
	out := make([]staffing.Project, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ANY($1) ORDER BY name ASC`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanProject(row database.Row) (staffing.Project, error) {
	var p staffing.Project
	var status string
	var start, end *time.Time
	if err := row.Scan(&p.ID, &p.Name, &status, &start, &end, &p.ManagerID); err != nil {
		return staffing.Project{}, err
	}
	p.Status = staffing.ProjectStatus(status)
	p.StartDate = start
	p.EstimatedEnd = end
	return p, nil
}
