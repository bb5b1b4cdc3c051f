package staffing

import (
	"time"

	"github.com/google/uuid"
)

type SkillCategory string

const (
	SkillCategoryTechnical SkillCategory = "TECHNICAL"
	SkillCategorySoft      SkillCategory = "SOFT"
)

type ProjectStatus string

const (
	ProjectPlaneacion ProjectStatus = "PLANEACION"
	ProjectActivo     ProjectStatus = "ACTIVO"
	ProjectFinalizado ProjectStatus = "FINALIZADO"
	ProjectPausado    ProjectStatus = "PAUSADO"
	ProjectCancelado  ProjectStatus = "CANCELADO"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlaneacion, ProjectActivo, ProjectFinalizado, ProjectPausado, ProjectCancelado:
		return true
	}
	return false
}

// Completed reports whether roles with an active assignment in a project of
// this status count as completed rather than assigned.
func (s ProjectStatus) Completed() bool {
	return s == ProjectFinalizado
}

type EmployeeStatus string

const (
	EmployeeBanca    EmployeeStatus = "BANCA"
	EmployeeAsignado EmployeeStatus = "ASIGNADO"
	EmployeeInactivo EmployeeStatus = "INACTIVO"
)

// Importance weights accepted on a role requirement.
const (
	ImportanceLow    = 1
	ImportanceMedium = 3
	ImportanceHigh   = 5
)

const (
	MinLevel = 1
	MaxLevel = 5
)

func ValidImportance(w int) bool {
	return w == ImportanceLow || w == ImportanceMedium || w == ImportanceHigh
}

func ValidLevel(l int) bool {
	return l >= MinLevel && l <= MaxLevel
}

type Skill struct {
	ID       uuid.UUID
	Name     string
	Category SkillCategory
}

type RoleSkillRequirement struct {
	RoleID     uuid.UUID
	SkillID    uuid.UUID
	SkillName  string
	MinLevel   int
	Importance int
}

type EmployeeSkill struct {
	EmployeeID uuid.UUID
	SkillID    uuid.UUID
	SkillName  string
	Level      int
}

type Employee struct {
	ID              uuid.UUID
	FullName        string
	Email           string
	Status          EmployeeStatus
	AvailabilityPct int
}

// Eligible reports whether the employee belongs in a ranking pool.
func (e Employee) Eligible() bool {
	if e.Status == EmployeeInactivo {
		return false
	}
	return e.Status == EmployeeBanca || e.AvailabilityPct > 0
}

type Project struct {
	ID           uuid.UUID
	Name         string
	Status       ProjectStatus
	StartDate    *time.Time
	EstimatedEnd *time.Time
	ManagerID    uuid.UUID
}

type Role struct {
	ID                      uuid.UUID
	ProjectID               uuid.UUID
	Title                   string
	Description             string
	RequiredExperienceLevel string
	Requirements            []RoleSkillRequirement
	CreatedAt               time.Time
	DeletedAt               *time.Time
	DeletionReason          *string
	DeletedBy               *uuid.UUID
}

func (r Role) Deleted() bool {
	return r.DeletedAt != nil
}

type Assignment struct {
	ID         uuid.UUID
	RoleID     uuid.UUID
	EmployeeID uuid.UUID
	RequestID  *uuid.UUID
	StartDate  time.Time
	EndDate    *time.Time
	Active     bool
}

type Administrator struct {
	ID          uuid.UUID
	FullName    string
	Department  string
	AccessLevel int
}
