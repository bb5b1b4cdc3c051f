package handler

import (
	"strings"

	"staffing-hub/internal/delivery/http/dto"
	"staffing-hub/internal/delivery/http/middleware"
	"staffing-hub/internal/pkg/jwt"
	"staffing-hub/internal/pkg/response"
	"staffing-hub/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type RoleHandler struct {
	uc usecase.SlotUsecase
}

type roleSkillBody struct {
	SkillID    uuid.UUID `json:"skill_id"`
	MinLevel   int       `json:"min_level"`
	Importance int       `json:"importance"`
}

type addRoleBody struct {
	Title                   string          `json:"title"`
	Description             string          `json:"description"`
	RequiredExperienceLevel string          `json:"required_experience_level"`
	Skills                  []roleSkillBody `json:"skills"`
}

type deleteRoleBody struct {
	Reason string `json:"reason"`
}

func NewRoleHandler(uc usecase.SlotUsecase) *RoleHandler {
	return &RoleHandler{uc: uc}
}

func (h *RoleHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	staff := middleware.RequireKind(jwt.ActorManager, jwt.ActorAdmin)
	r.Post("/projects/:id/roles", staff, h.Add)
	r.Get("/roles/classification", staff, h.Classify)
	r.Delete("/roles/:id", staff, h.Delete)
}

func (h *RoleHandler) Add(c fiber.Ctx) error {
	actorID, kind, ok := middleware.Actor(c)
	if !ok {
		return unauthorized()
	}

	projectID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(err, "project id must be a uuid")
	}

	var body addRoleBody
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(err, "malformed request body")
	}

	in := usecase.AddRoleInput{
		ProjectID:               projectID,
		Title:                   body.Title,
		Description:             body.Description,
		RequiredExperienceLevel: body.RequiredExperienceLevel,
		Skills:                  make([]usecase.RoleSkillInput, 0, len(body.Skills)),
	}
	for _, s := range body.Skills {
		in.Skills = append(in.Skills, usecase.RoleSkillInput{SkillID: s.SkillID, MinLevel: s.MinLevel, Importance: s.Importance})
	}
	if kind == jwt.ActorManager {
		in.ManagerID = &actorID
	}

	role, err := h.uc.AddRole(c.Context(), in)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewRoleResponse(role))
}

func (h *RoleHandler) Delete(c fiber.Ctx) error {
	actorID, kind, ok := middleware.Actor(c)
	if !ok {
		return unauthorized()
	}

	roleID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(err, "role id must be a uuid")
	}

	var body deleteRoleBody
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&body); err != nil {
			return badRequest(err, "malformed request body")
		}
	}

	in := usecase.DeleteRoleInput{
		RoleID:    roleID,
		Reason:    body.Reason,
		DeletedBy: &actorID,
	}
	if kind == jwt.ActorManager {
		in.ManagerID = &actorID
	}
	if err := h.uc.DeleteRole(c.Context(), in); err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}

// Classify buckets the roles of the listed projects. Managers may only
// classify projects they run.
func (h *RoleHandler) Classify(c fiber.Ctx) error {
	actorID, kind, ok := middleware.Actor(c)
	if !ok {
		return unauthorized()
	}

	ids, err := parseIDList(c.Query("project_ids"))
	if err != nil {
		return badRequest(err, "project_ids must be a comma separated list of uuids")
	}

	var manager *uuid.UUID
	if kind == jwt.ActorManager {
		manager = &actorID
	}
	out, err := h.uc.ClassifyRoles(c.Context(), ids, manager)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewClassificationResponse(out))
}

func parseIDList(raw string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
