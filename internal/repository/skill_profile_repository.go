package repository

import (
	"context"

	"staffing-hub/internal/database"
	"staffing-hub/internal/domain/staffing"

	"github.com/google/uuid"
)

// SkillProfileRepository reads role requirements and employee skill levels.
// Both are owned by other subsystems; this service never writes them.
type SkillProfileRepository interface {
	FindRequirementsByRoleID(ctx context.Context, roleID uuid.UUID) ([]staffing.RoleSkillRequirement, error)
	ListEligibleEmployees(ctx context.Context) ([]staffing.Employee, error)
	FindSkillsByEmployeeIDs(ctx context.Context, employeeIDs []uuid.UUID) (map[uuid.UUID][]staffing.EmployeeSkill, error)
	CountSkills(ctx context.Context, skillIDs []uuid.UUID) (int, error)
}

type PostgresSkillProfileRepository struct {
	db database.DB
}

func NewPostgresSkillProfileRepository(db database.DB) *PostgresSkillProfileRepository {
	return &PostgresSkillProfileRepository{db: db}
}

func (r *PostgresSkillProfileRepository) FindRequirementsByRoleID(ctx context.Context, roleID uuid.UUID) ([]staffing.RoleSkillRequirement, error) {
	return findRequirements(ctx, r.db, roleID)
}

func findRequirements(ctx context.Context, q database.Querier, roleID uuid.UUID) ([]staffing.RoleSkillRequirement, error) {
	rows, err := q.Query(ctx,
		`SELECT rsr.role_id, rsr.skill_id, s.name, rsr.min_level, rsr.importance
		 FROM role_skill_requirements rsr
		 JOIN skills s ON s.id = rsr.skill_id
		 WHERE rsr.role_id = $1
		 ORDER BY rsr.importance DESC, s.name ASC`,
		roleID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]staffing.RoleSkillRequirement, 0)
	for rows.Next() {
		var it staffing.RoleSkillRequirement
		if err := rows.Scan(&it.RoleID, &it.SkillID, &it.SkillName, &it.MinLevel, &it.Importance); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresSkillProfileRepository) ListEligibleEmployees(ctx context.Context) ([]staffing.Employee, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, full_name, email, status, availability_pct
		 FROM employees
		 WHERE status <> 'INACTIVO'
		   AND (status = 'BANCA' OR availability_pct > 0)
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]staffing.Employee, 0)
	for rows.Next() {
		var e staffing.Employee
		var status string
		if err := rows.Scan(&e.ID, &e.FullName, &e.Email, &status, &e.AvailabilityPct); err != nil {
			return nil, err
		}
		e.Status = staffing.EmployeeStatus(status)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresSkillProfileRepository) FindSkillsByEmployeeIDs(ctx context.Context, employeeIDs []uuid.UUID) (map[uuid.UUID][]staffing.EmployeeSkill, error) {
	out := make(map[uuid.UUID][]staffing.EmployeeSkill, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT es.employee_id, es.skill_id, s.name, es.level
		 FROM employee_skills es
		 JOIN skills s ON s.id = es.skill_id
		 WHERE es.employee_id = ANY($1)`,
		employeeIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var es staffing.EmployeeSkill
		if err := rows.Scan(&es.EmployeeID, &es.SkillID, &es.SkillName, &es.Level); err != nil {
			return nil, err
		}
		out[es.EmployeeID] = append(out[es.EmployeeID], es)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresSkillProfileRepository) CountSkills(ctx context.Context, skillIDs []uuid.UUID) (int, error) {
	if len(skillIDs) == 0 {
		return 0, nil
	}
	var n int
	row := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM skills WHERE id = ANY($1)`, skillIDs)
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
