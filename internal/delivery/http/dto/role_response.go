package dto

import (
	"time"

	"staffing-hub/internal/domain/slot"
	"staffing-hub/internal/domain/staffing"

	"github.com/google/uuid"
)

type RoleRequirementResponse struct {
	SkillID    uuid.UUID `json:"skill_id"`
	SkillName  string    `json:"skill_name"`
	MinLevel   int       `json:"min_level"`
	Importance int       `json:"importance"`
}

type RoleResponse struct {
	ID                      uuid.UUID                 `json:"id"`
	ProjectID               uuid.UUID                 `json:"project_id"`
	Title                   string                    `json:"title"`
	Description             string                    `json:"description"`
	RequiredExperienceLevel string                    `json:"required_experience_level"`
	Requirements            []RoleRequirementResponse `json:"requirements"`
	CreatedAt               time.Time                 `json:"created_at"`
}

type SlotEntryResponse struct {
	RoleID        uuid.UUID           `json:"role_id"`
	RoleTitle     string              `json:"role_title"`
	ProjectID     uuid.UUID           `json:"project_id"`
	ProjectName   string              `json:"project_name"`
	ProjectStatus string              `json:"project_status"`
	Assignment    *AssignmentResponse `json:"assignment"`
}

type ClassificationResponse struct {
	Pendientes  []SlotEntryResponse `json:"pendientes"`
	Asignados   []SlotEntryResponse `json:"asignados"`
	Completados []SlotEntryResponse `json:"completados"`
}

func NewRoleResponse(r staffing.Role) RoleResponse {
	out := RoleResponse{
		ID:                      r.ID,
		ProjectID:               r.ProjectID,
		Title:                   r.Title,
		Description:             r.Description,
		RequiredExperienceLevel: r.RequiredExperienceLevel,
		Requirements:            make([]RoleRequirementResponse, 0, len(r.Requirements)),
		CreatedAt:               r.CreatedAt,
	}
	for _, req := range r.Requirements {
		out.Requirements = append(out.Requirements, RoleRequirementResponse{
			SkillID:    req.SkillID,
			SkillName:  req.SkillName,
			MinLevel:   req.MinLevel,
			Importance: req.Importance,
		})
	}
	return out
}

func NewClassificationResponse(c slot.Classification) ClassificationResponse {
	return ClassificationResponse{
		Pendientes:  slotEntries(c.Pendientes),
		Asignados:   slotEntries(c.Asignados),
		Completados: slotEntries(c.Completados),
	}
}

func slotEntries(in []slot.Entry) []SlotEntryResponse {
	out := make([]SlotEntryResponse, 0, len(in))
	for _, e := range in {
		item := SlotEntryResponse{
			RoleID:        e.Role.ID,
			RoleTitle:     e.Role.Title,
			ProjectID:     e.Project.ID,
			ProjectName:   e.Project.Name,
			ProjectStatus: string(e.Project.Status),
		}
		if e.Assignment != nil {
			a := NewAssignmentResponse(*e.Assignment)
			item.Assignment = &a
		}
		out = append(out, item)
	}
	return out
}
