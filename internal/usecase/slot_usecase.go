package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"staffing-hub/internal/domain/request"
	"staffing-hub/internal/domain/slot"
	"staffing-hub/internal/domain/staffing"
	"staffing-hub/internal/event"
	"staffing-hub/internal/metrics"
	"staffing-hub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type RoleSkillInput struct {
	SkillID    uuid.UUID
	MinLevel   int
	Importance int
}

type AddRoleInput struct {
	ProjectID               uuid.UUID
	Title                   string
	Description             string
	RequiredExperienceLevel string
	Skills                  []RoleSkillInput
	// ManagerID, when set, must own the project.
	ManagerID *uuid.UUID
}

type DeleteRoleInput struct {
	RoleID    uuid.UUID
	Reason    string
	DeletedBy *uuid.UUID
	// ManagerID, when set, must own the role's project.
	ManagerID *uuid.UUID
}

type SlotUsecase interface {
	AddRole(ctx context.Context, in AddRoleInput) (staffing.Role, error)
	DeleteRole(ctx context.Context, in DeleteRoleInput) error
	ClassifyRoles(ctx context.Context, projectIDs []uuid.UUID, managerID *uuid.UUID) (slot.Classification, error)
	MaterializeAssignment(ctx context.Context, requestID uuid.UUID, reassign bool) (staffing.Assignment, error)
}

type Slots struct {
	roles       repository.RoleRepository
	projects    repository.ProjectRepository
	assignments repository.AssignmentRepository
	requests    repository.RequestRepository
	profiles    repository.SkillProfileRepository
	cache       RankingCache
	events      event.Publisher
	log         zerolog.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

func NewSlotUsecase(
	roles repository.RoleRepository,
	projects repository.ProjectRepository,
	assignments repository.AssignmentRepository,
	requests repository.RequestRepository,
	profiles repository.SkillProfileRepository,
	cache RankingCache,
	events event.Publisher,
	logger zerolog.Logger,
) *Slots {
	if events == nil {
		events = event.Discard{}
	}
	return &Slots{
		roles:       roles,
		projects:    projects,
		assignments: assignments,
		requests:    requests,
		profiles:    profiles,
		cache:       cache,
		events:      events,
		log:         logger.With().Str("component", "slots").Logger(),
		now:         time.Now,
		newID:       uuid.New,
	}
}

func (u *Slots) AddRole(ctx context.Context, in AddRoleInput) (staffing.Role, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)

	var problems []string
	if in.ProjectID == uuid.Nil {
		problems = append(problems, "project_id is required")
	}
	if title == "" {
		problems = append(problems, "title is required")
	}
	if description == "" {
		problems = append(problems, "description is required")
	}
	seen := make(map[uuid.UUID]struct{}, len(in.Skills))
	skillIDs := make([]uuid.UUID, 0, len(in.Skills))
	for i, s := range in.Skills {
		if s.SkillID == uuid.Nil {
			problems = append(problems, fmt.Sprintf("skills[%d].skill_id is required", i))
			continue
		}
		if _, dup := seen[s.SkillID]; dup {
			problems = append(problems, fmt.Sprintf("skills[%d] repeats skill %s", i, s.SkillID))
			continue
		}
		seen[s.SkillID] = struct{}{}
		skillIDs = append(skillIDs, s.SkillID)
		if !staffing.ValidLevel(s.MinLevel) {
			problems = append(problems, fmt.Sprintf("skills[%d].min_level must be between %d and %d", i, staffing.MinLevel, staffing.MaxLevel))
		}
		if !staffing.ValidImportance(s.Importance) {
			problems = append(problems, fmt.Sprintf("skills[%d].importance must be 1, 3 or 5", i))
		}
	}
	if len(problems) > 0 {
		return staffing.Role{}, validationf("%s", strings.Join(problems, "; "))
	}

	project, err := u.projects.FindProjectByID(ctx, in.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return staffing.Role{}, ErrNotFound
		}
		u.log.Error().Err(err).Str("project_id", in.ProjectID.String()).Msg("load project")
		return staffing.Role{}, ErrInternal
	}
	if in.ManagerID != nil && *in.ManagerID != project.ManagerID {
		return staffing.Role{}, ErrForbidden
	}

	if len(skillIDs) > 0 {
		n, err := u.profiles.CountSkills(ctx, skillIDs)
		if err != nil {
			u.log.Error().Err(err).Msg("count skills")
			return staffing.Role{}, ErrInternal
		}
		if n != len(skillIDs) {
			return staffing.Role{}, unknownRef("skill")
		}
	}

	role := staffing.Role{
		ID:                      u.newID(),
		ProjectID:               project.ID,
		Title:                   title,
		Description:             description,
		RequiredExperienceLevel: strings.TrimSpace(in.RequiredExperienceLevel),
		CreatedAt:               u.now().UTC(),
		Requirements:            make([]staffing.RoleSkillRequirement, 0, len(in.Skills)),
	}
	for _, s := range in.Skills {
		role.Requirements = append(role.Requirements, staffing.RoleSkillRequirement{
			RoleID:     role.ID,
			SkillID:    s.SkillID,
			MinLevel:   s.MinLevel,
			Importance: s.Importance,
		})
	}

	created, err := u.roles.Create(ctx, role)
	if err != nil {
		if errors.Is(err, repository.ErrDanglingReference) {
			return staffing.Role{}, unknownRef("project or skill")
		}
		u.log.Error().Err(err).Str("project_id", project.ID.String()).Msg("create role")
		return staffing.Role{}, ErrInternal
	}

	metrics.RolesChanged.WithLabelValues("created").Inc()
	u.log.Info().
		Str("role_id", created.ID.String()).
		Str("project_id", created.ProjectID.String()).
		Int("requirements", len(created.Requirements)).
		Msg("role added")
	u.publish(ctx, event.KindRoleCreated, created.ID.String(), roleEventPayload{
		RoleID:    created.ID,
		ProjectID: created.ProjectID,
		Title:     created.Title,
	})
	return created, nil
}

// DeleteRole soft-deletes a live role. The reason is mandatory and kept.
func (u *Slots) DeleteRole(ctx context.Context, in DeleteRoleInput) error {
	reason := strings.TrimSpace(in.Reason)
	if in.RoleID == uuid.Nil {
		return validationf("role id is required")
	}
	if reason == "" {
		return validationf("reason is required")
	}
	if in.ManagerID != nil {
		if err := u.checkRoleOwner(ctx, in.RoleID, *in.ManagerID); err != nil {
			return err
		}
	}

	at := u.now().UTC()
	err := u.roles.SoftDelete(ctx, repository.RoleDeletion{
		RoleID:    in.RoleID,
		Reason:    reason,
		DeletedBy: in.DeletedBy,
		At:        at,
	})
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return ErrNotFound
		}
		u.log.Error().Err(err).Str("role_id", in.RoleID.String()).Msg("delete role")
		return ErrInternal
	}

	invalidateRanking(ctx, u.cache, in.RoleID)
	metrics.RolesChanged.WithLabelValues("deleted").Inc()
	u.log.Info().Str("role_id", in.RoleID.String()).Str("reason", reason).Msg("role deleted")
	u.publish(ctx, event.KindRoleDeleted, in.RoleID.String(), roleEventPayload{
		RoleID:    in.RoleID,
		Reason:    reason,
		DeletedBy: in.DeletedBy,
		DeletedAt: &at,
	})
	return nil
}

func (u *Slots) checkRoleOwner(ctx context.Context, roleID, managerID uuid.UUID) error {
	role, err := u.roles.FindByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return ErrNotFound
		}
		u.log.Error().Err(err).Str("role_id", roleID.String()).Msg("load role")
		return ErrInternal
	}
	if role.Deleted() {
		return ErrNotFound
	}
	project, err := u.projects.FindProjectByID(ctx, role.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return ErrNotFound
		}
		u.log.Error().Err(err).Str("project_id", role.ProjectID.String()).Msg("load project")
		return ErrInternal
	}
	if project.ManagerID != managerID {
		return ErrForbidden
	}
	return nil
}

// ClassifyRoles buckets the live roles of the given projects. Unknown project
// ids are ignored. With a manager set, every known project must be theirs.
func (u *Slots) ClassifyRoles(ctx context.Context, projectIDs []uuid.UUID, managerID *uuid.UUID) (slot.Classification, error) {
	ids := uniqueIDs(projectIDs)
	if len(ids) == 0 {
		return slot.Classify(slot.Snapshot{}), nil
	}

	projects, err := u.projects.FindProjectsByIDs(ctx, ids)
	if err != nil {
		u.log.Error().Err(err).Msg("load projects")
		return slot.Classification{}, ErrInternal
	}
	if managerID != nil {
		for _, p := range projects {
			if p.ManagerID != *managerID {
				return slot.Classification{}, ErrForbidden
			}
		}
	}
	roles, err := u.roles.ListByProjectIDs(ctx, ids)
	if err != nil {
		u.log.Error().Err(err).Msg("load roles")
		return slot.Classification{}, ErrInternal
	}
	roleIDs := make([]uuid.UUID, 0, len(roles))
	for _, r := range roles {
		roleIDs = append(roleIDs, r.ID)
	}
	assignments, err := u.assignments.ListActiveByRoleIDs(ctx, roleIDs)
	if err != nil {
		u.log.Error().Err(err).Msg("load assignments")
		return slot.Classification{}, ErrInternal
	}

	return slot.Classify(slot.Snapshot{
		Projects:    projects,
		Roles:       roles,
		Assignments: assignments,
	}), nil
}

// MaterializeAssignment turns an approved request into the role's active
// assignment. An occupied role is only overwritten when reassign is set.
func (u *Slots) MaterializeAssignment(ctx context.Context, requestID uuid.UUID, reassign bool) (staffing.Assignment, error) {
	if requestID == uuid.Nil {
		return staffing.Assignment{}, validationf("request id is required")
	}

	req, err := u.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return staffing.Assignment{}, ErrNotFound
		}
		u.log.Error().Err(err).Str("request_id", requestID.String()).Msg("load request")
		return staffing.Assignment{}, ErrInternal
	}
	if req.State != request.StateAprobada {
		return staffing.Assignment{}, fmt.Errorf("%w: request %s is %s, not %s", ErrInvalidTransition, req.ID, req.State, request.StateAprobada)
	}

	now := u.now().UTC()
	reqID := req.ID
	a := staffing.Assignment{
		ID:         u.newID(),
		RoleID:     req.RoleID,
		EmployeeID: req.EmployeeID,
		RequestID:  &reqID,
		StartDate:  time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Active:     true,
	}

	created, err := u.assignments.Materialize(ctx, a, reassign)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrActiveAssignmentExists):
			return staffing.Assignment{}, ErrRoleAlreadyFilled
		case errors.Is(err, repository.ErrAlreadyMaterialized):
			return staffing.Assignment{}, fmt.Errorf("%w: request %s already has an assignment", ErrInvalidTransition, req.ID)
		case errors.Is(err, repository.ErrRoleNotFound):
			return staffing.Assignment{}, unknownRef("role")
		case errors.Is(err, repository.ErrDanglingReference):
			return staffing.Assignment{}, unknownRef("role or employee")
		}
		u.log.Error().Err(err).Str("request_id", req.ID.String()).Msg("materialize assignment")
		return staffing.Assignment{}, ErrInternal
	}

	invalidateRanking(ctx, u.cache, created.RoleID)
	metrics.AssignmentsMaterialized.Inc()
	u.log.Info().
		Str("assignment_id", created.ID.String()).
		Str("request_id", req.ID.String()).
		Str("role_id", created.RoleID.String()).
		Str("employee_id", created.EmployeeID.String()).
		Bool("reassign", reassign).
		Msg("assignment materialized")
	u.publish(ctx, event.KindAssignmentMaterialized, created.RoleID.String(), assignmentEventPayload{
		AssignmentID: created.ID,
		RequestID:    req.ID,
		RoleID:       created.RoleID,
		EmployeeID:   created.EmployeeID,
		StartDate:    created.StartDate,
		Reassign:     reassign,
	})
	return created, nil
}

type roleEventPayload struct {
	RoleID    uuid.UUID  `json:"role_id"`
	ProjectID uuid.UUID  `json:"project_id"`
	Title     string     `json:"title,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	DeletedBy *uuid.UUID `json:"deleted_by,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

type assignmentEventPayload struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
	RequestID    uuid.UUID `json:"request_id"`
	RoleID       uuid.UUID `json:"role_id"`
	EmployeeID   uuid.UUID `json:"employee_id"`
	StartDate    time.Time `json:"start_date"`
	Reassign     bool      `json:"reassign"`
}

func (u *Slots) publish(ctx context.Context, kind event.Kind, key string, payload any) {
	if err := u.events.Publish(ctx, event.New(kind, key, payload)); err != nil {
		u.log.Warn().Err(err).Str("kind", string(kind)).Str("key", key).Msg("publish event")
	}
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
