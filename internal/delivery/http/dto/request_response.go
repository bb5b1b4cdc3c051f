package dto

import (
	"time"

	"staffing-hub/internal/domain/request"
	"staffing-hub/internal/domain/staffing"
	"staffing-hub/internal/repository"

	"github.com/google/uuid"
)

type RequestResponse struct {
	ID                 uuid.UUID  `json:"id"`
	EmployeeID         uuid.UUID  `json:"employee_id"`
	RoleID             uuid.UUID  `json:"role_id"`
	AdministratorID    uuid.UUID  `json:"administrator_id"`
	ManagerID          *uuid.UUID `json:"manager_id"`
	Justification      string     `json:"justification"`
	Urgency            int        `json:"urgency"`
	State              string     `json:"state"`
	ResolutionComments *string    `json:"resolution_comments"`
	ResolvedBy         *uuid.UUID `json:"resolved_by"`
	CreatedAt          time.Time  `json:"created_at"`
	ResolvedAt         *time.Time `json:"resolved_at"`
}

type RequestListItemResponse struct {
	RequestResponse
	EmployeeName      string    `json:"employee_name"`
	RoleTitle         string    `json:"role_title"`
	ProjectID         uuid.UUID `json:"project_id"`
	ProjectName       string    `json:"project_name"`
	AdministratorName string    `json:"administrator_name"`
}

type AssignmentResponse struct {
	ID         uuid.UUID  `json:"id"`
	RoleID     uuid.UUID  `json:"role_id"`
	EmployeeID uuid.UUID  `json:"employee_id"`
	RequestID  *uuid.UUID `json:"request_id"`
	StartDate  string     `json:"start_date"`
	EndDate    *string    `json:"end_date"`
	Active     bool       `json:"active"`
}

// ResolveResponse carries the recorded resolution and, for approvals, the
// outcome of materializing the assignment. A failed materialization does not
// undo the approval.
type ResolveResponse struct {
	Request         RequestResponse     `json:"request"`
	Assignment      *AssignmentResponse `json:"assignment,omitempty"`
	AssignmentError *ErrorDetail        `json:"assignment_error,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type AdministratorResponse struct {
	ID          uuid.UUID `json:"id"`
	FullName    string    `json:"full_name"`
	Department  string    `json:"department"`
	AccessLevel int       `json:"access_level"`
}

type CanSubmitResponse struct {
	EmployeeID uuid.UUID `json:"employee_id"`
	CanSubmit  bool      `json:"can_submit"`
}

func NewRequestResponse(r request.Request) RequestResponse {
	return RequestResponse{
		ID:                 r.ID,
		EmployeeID:         r.EmployeeID,
		RoleID:             r.RoleID,
		AdministratorID:    r.AdministratorID,
		ManagerID:          r.ManagerID,
		Justification:      r.Justification,
		Urgency:            r.Urgency,
		State:              string(r.State),
		ResolutionComments: r.ResolutionComments,
		ResolvedBy:         r.ResolvedBy,
		CreatedAt:          r.CreatedAt,
		ResolvedAt:         r.ResolvedAt,
	}
}

func NewRequestListResponse(items []repository.RequestView) []RequestListItemResponse {
	out := make([]RequestListItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, RequestListItemResponse{
			RequestResponse:   NewRequestResponse(it.Request),
			EmployeeName:      it.EmployeeName,
			RoleTitle:         it.RoleTitle,
			ProjectID:         it.ProjectID,
			ProjectName:       it.ProjectName,
			AdministratorName: it.AdministratorName,
		})
	}
	return out
}

func NewAdministratorListResponse(admins []staffing.Administrator) []AdministratorResponse {
	out := make([]AdministratorResponse, 0, len(admins))
	for _, a := range admins {
		out = append(out, AdministratorResponse{
			ID:          a.ID,
			FullName:    a.FullName,
			Department:  a.Department,
			AccessLevel: a.AccessLevel,
		})
	}
	return out
}

const dateLayout = "2006-01-02"

func NewAssignmentResponse(a staffing.Assignment) AssignmentResponse {
	out := AssignmentResponse{
		ID:         a.ID,
		RoleID:     a.RoleID,
		EmployeeID: a.EmployeeID,
		RequestID:  a.RequestID,
		StartDate:  a.StartDate.Format(dateLayout),
		Active:     a.Active,
	}
	if a.EndDate != nil {
		end := a.EndDate.Format(dateLayout)
		out.EndDate = &end
	}
	return out
}
