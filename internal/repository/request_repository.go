package repository

import (
	"context"
	"fmt"
	"strings"

	"staffing-hub/internal/database"
	"staffing-hub/internal/database/postgres"
	"staffing-hub/internal/domain/request"

	"github.com/google/uuid"
)

// onePendingIndex enforces at most one PENDIENTE request per employee.
const onePendingIndex = "uq_assignment_requests_one_pending"

type RequestFilter struct {
	State           *request.State
	Requester       string
	Project         string
	EmployeeID      *uuid.UUID
	AdministratorID *uuid.UUID
	Limit           int
	Offset          int
}

// RequestView is a request joined with the names shown in admin listings.
type RequestView struct {
	request.Request
	EmployeeName      string
	RoleTitle         string
	ProjectID         uuid.UUID
	ProjectName       string
	AdministratorName string
}

type RequestRepository interface {
	HasPending(ctx context.Context, employeeID uuid.UUID) (bool, error)
	InsertPending(ctx context.Context, req request.Request) error
	FindByID(ctx context.Context, id uuid.UUID) (request.Request, error)
	ApplyResolution(ctx context.Context, req request.Request) (bool, error)
	List(ctx context.Context, f RequestFilter) ([]RequestView, error)
}

type PostgresRequestRepository struct {
	db database.DB
}

func NewPostgresRequestRepository(db database.DB) *PostgresRequestRepository {
	return &PostgresRequestRepository{db: db}
}

func (r *PostgresRequestRepository) HasPending(ctx context.Context, employeeID uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM assignment_requests WHERE employee_id = $1 AND state = 'PENDIENTE')`,
		employeeID,
	)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// InsertPending is the single atomic insert-if-none-pending write. The
// partial unique index rejects a second PENDIENTE row for the same employee
// no matter how many processes race.
func (r *PostgresRequestRepository) InsertPending(ctx context.Context, req request.Request) error {
	if req.State != request.StatePendiente {
		return fmt.Errorf("insert pending: request %s is %s", req.ID, req.State)
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO assignment_requests
			(id, employee_id, role_id, administrator_id, manager_id, justification, urgency, state, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		req.ID, req.EmployeeID, req.RoleID, req.AdministratorID, req.ManagerID,
		req.Justification, req.Urgency, string(req.State), req.CreatedAt,
	)
	if err != nil {
		if name, ok := postgres.ConstraintViolation(err, postgres.CodeUniqueViolation); ok && name == onePendingIndex {
			return ErrPendingRequestExists
		}
		if _, ok := postgres.ConstraintViolation(err, postgres.CodeForeignKeyViolation); ok {
			return ErrDanglingReference
		}
		return err
	}
	return nil
}

const requestColumns = `ar.id, ar.employee_id, ar.role_id, ar.administrator_id, ar.manager_id, ar.justification,
		ar.urgency, ar.state, ar.resolution_comments, ar.resolved_by, ar.created_at, ar.resolved_at`

func (r *PostgresRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (request.Request, error) {
	row := r.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM assignment_requests ar WHERE ar.id = $1`, id)
	req, err := scanRequest(row)
	if err != nil {
		if isNoRows(err) {
			return request.Request{}, ErrRequestNotFound
		}
		return request.Request{}, err
	}
	return req, nil
}

// ApplyResolution persists a resolved request with a compare-and-swap on
// state = PENDIENTE. It reports false when another writer resolved first.
func (r *PostgresRequestRepository) ApplyResolution(ctx context.Context, req request.Request) (bool, error) {
	affected, err := r.db.Exec(ctx,
		`UPDATE assignment_requests
		 SET state = $2, resolution_comments = $3, resolved_by = $4, resolved_at = $5
		 WHERE id = $1 AND state = 'PENDIENTE'`,
		req.ID, string(req.State), req.ResolutionComments, req.ResolvedBy, req.ResolvedAt,
	)
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *PostgresRequestRepository) List(ctx context.Context, f RequestFilter) ([]RequestView, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	where := make([]string, 0, 5)
	args := make([]any, 0, 7)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.State != nil {
		add("ar.state = $%d", string(*f.State))
	}
	if s := strings.TrimSpace(f.Requester); s != "" {
		add("strpos(lower(e.full_name), lower($%d)) > 0", s)
	}
	if s := strings.TrimSpace(f.Project); s != "" {
		add("strpos(lower(p.name), lower($%d)) > 0", s)
	}
	if f.EmployeeID != nil {
		add("ar.employee_id = $%d", *f.EmployeeID)
	}
	if f.AdministratorID != nil {
		add("ar.administrator_id = $%d", *f.AdministratorID)
	}

	q := `SELECT ` + requestColumns + `, e.full_name, ro.title, p.id, p.name, a.full_name
		 FROM assignment_requests ar
		 JOIN employees e ON e.id = ar.employee_id
		 JOIN roles ro ON ro.id = ar.role_id
		 JOIN projects p ON p.id = ro.project_id
		 JOIN administrators a ON a.id = ar.administrator_id`
	if len(where) > 0 {
		q += "\n\t\t WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	q += fmt.Sprintf("\n\t\t ORDER BY ar.created_at DESC, ar.id ASC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RequestView, 0)
	for rows.Next() {
		var v RequestView
		var state string
		if err := rows.Scan(
			&v.ID, &v.EmployeeID, &v.RoleID, &v.AdministratorID, &v.ManagerID, &v.Justification,
			&v.Urgency, &state, &v.ResolutionComments, &v.ResolvedBy, &v.CreatedAt, &v.ResolvedAt,
			&v.EmployeeName, &v.RoleTitle, &v.ProjectID, &v.ProjectName, &v.AdministratorName,
		); err != nil {
			return nil, err
		}
		v.State = request.State(state)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanRequest(row database.Row) (request.Request, error) {
	var req request.Request
	var state string
	if err := row.Scan(
		&req.ID, &req.EmployeeID, &req.RoleID, &req.AdministratorID, &req.ManagerID, &req.Justification,
		&req.Urgency, &state, &req.ResolutionComments, &req.ResolvedBy, &req.CreatedAt, &req.ResolvedAt,
	); err != nil {
		return request.Request{}, err
	}
	req.State = request.State(state)
	return req, nil
}
