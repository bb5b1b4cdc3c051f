package handler

import (
	"errors"
	"strconv"
	"strings"

	"staffing-hub/internal/delivery/http/dto"
	"staffing-hub/internal/delivery/http/middleware"
	"staffing-hub/internal/domain/request"
	"staffing-hub/internal/pkg/jwt"
	"staffing-hub/internal/pkg/response"
	"staffing-hub/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type RequestHandler struct {
	requests usecase.RequestUsecase
	slots    usecase.SlotUsecase
}

type createRequestBody struct {
	EmployeeID      *uuid.UUID `json:"employee_id"`
	RoleID          uuid.UUID  `json:"role_id"`
	AdministratorID uuid.UUID  `json:"administrator_id"`
	Justification   string     `json:"justification"`
	Urgency         int        `json:"urgency"`
}

type resolveRequestBody struct {
	Outcome  string `json:"outcome"`
	Comments string `json:"comments"`
	Reassign bool   `json:"reassign"`
}

type materializeBody struct {
	Reassign bool `json:"reassign"`
}

func NewRequestHandler(requests usecase.RequestUsecase, slots usecase.SlotUsecase) *RequestHandler {
	return &RequestHandler{requests: requests, slots: slots}
}

func (h *RequestHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	admin := middleware.RequireKind(jwt.ActorAdmin)

	grp := r.Group("/requests")
	grp.Post("/", middleware.RequireKind(jwt.ActorEmployee, jwt.ActorManager), h.Create)
	grp.Get("/", h.List)
	grp.Get("/:id", h.Get)
	grp.Post("/:id/resolve", admin, h.Resolve)
	grp.Post("/:id/assignment", admin, h.Materialize)

	r.Get("/employees/:id/can-submit", h.CanSubmit)
	r.Get("/administrators", h.Administrators)
}

// Create files a request. Employees nominate themselves; managers propose a
// candidate and are recorded as the originating manager.
func (h *RequestHandler) Create(c fiber.Ctx) error {
	actorID, kind, ok := middleware.Actor(c)
	if !ok {
		return unauthorized()
	}

	var body createRequestBody
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(err, "malformed request body")
	}

	in := usecase.CreateRequestInput{
		RoleID:          body.RoleID,
		AdministratorID: body.AdministratorID,
		Justification:   body.Justification,
		Urgency:         body.Urgency,
	}
	switch kind {
	case jwt.ActorEmployee:
		if body.EmployeeID != nil && *body.EmployeeID != actorID {
			return forbidden()
		}
		in.EmployeeID = actorID
	case jwt.ActorManager:
		if body.EmployeeID != nil {
			in.EmployeeID = *body.EmployeeID
		}
		manager := actorID
		in.ManagerID = &manager
	}

	created, err := h.requests.Create(c.Context(), in)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewRequestResponse(created))
}

func (h *RequestHandler) CanSubmit(c fiber.Ctx) error {
	actorID, kind, ok := middleware.Actor(c)
	if !ok {
		return unauthorized()
	}

	employeeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(err, "employee id must be a uuid")
	}
	if kind == jwt.ActorEmployee && employeeID != actorID {
		return forbidden()
	}

	can, err := h.requests.CanSubmit(c.Context(), employeeID)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.CanSubmitResponse{EmployeeID: employeeID, CanSubmit: can})
}

func (h *RequestHandler) Administrators(c fiber.Ctx) error {
	admins, err := h.requests.Administrators(c.Context())
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewAdministratorListResponse(admins))
}

func (h *RequestHandler) Get(c fiber.Ctx) error {
	actorID, kind, ok := middleware.Actor(c)
	if !ok {
		return unauthorized()
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(err, "request id must be a uuid")
	}

	req, err := h.requests.Get(c.Context(), id)
	if err != nil {
		return mapUsecaseError(err)
	}
	if kind == jwt.ActorEmployee && req.EmployeeID != actorID {
		return mapUsecaseError(usecase.ErrNotFound)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewRequestResponse(req))
}

// List serves the pending and history views. Employees only ever see their
// own requests.
func (h *RequestHandler) List(c fiber.Ctx) error {
	actorID, kind, ok := middleware.Actor(c)
	if !ok {
		return unauthorized()
	}

	limit, err := parseQueryIntStrict(c, "limit", 50)
	if err != nil {
		return badRequest(err, "limit must be an integer")
	}
	offset, err := parseQueryIntStrict(c, "offset", 0)
	if err != nil {
		return badRequest(err, "offset must be an integer")
	}

	params := usecase.ListRequestsParams{
		State:     c.Query("state"),
		Requester: c.Query("requester"),
		Project:   c.Query("project"),
		Limit:     limit,
		Offset:    offset,
	}
	if raw := strings.TrimSpace(c.Query("administrator_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(err, "administrator_id must be a uuid")
		}
		params.AdministratorID = &id
	}
	if kind == jwt.ActorEmployee {
		self := actorID
		params.EmployeeID = &self
	}

	items, err := h.requests.List(c.Context(), params)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewRequestListResponse(items))
}

// Resolve records the administrator's decision. An approval then tries to
// materialize the assignment; if that fails the approval stands and the
// failure is reported next to it.
func (h *RequestHandler) Resolve(c fiber.Ctx) error {
	actorID, _, ok := middleware.Actor(c)
	if !ok {
		return unauthorized()
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(err, "request id must be a uuid")
	}

	var body resolveRequestBody
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(err, "malformed request body")
	}
	outcome, err := request.ParseState(body.Outcome)
	if err != nil {
		return mapUsecaseError(err)
	}

	resolved, err := h.requests.Resolve(c.Context(), id, usecase.ResolveRequestInput{
		Outcome:    outcome,
		Comments:   body.Comments,
		ResolvedBy: &actorID,
	})
	if err != nil {
		return mapUsecaseError(err)
	}

	res := dto.ResolveResponse{Request: dto.NewRequestResponse(resolved)}
	if resolved.State == request.StateAprobada && h.slots != nil {
		a, err := h.slots.MaterializeAssignment(c.Context(), resolved.ID, body.Reassign)
		if err != nil {
			res.AssignmentError = assignmentErrorDetail(err)
		} else {
			ar := dto.NewAssignmentResponse(a)
			res.Assignment = &ar
		}
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, res)
}

func (h *RequestHandler) Materialize(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(err, "request id must be a uuid")
	}

	var body materializeBody
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&body); err != nil {
			return badRequest(err, "malformed request body")
		}
	}

	a, err := h.slots.MaterializeAssignment(c.Context(), id, body.Reassign)
	if err != nil {
		return mapUsecaseError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewAssignmentResponse(a))
}

func assignmentErrorDetail(err error) *dto.ErrorDetail {
	var appErr *middleware.AppError
	if errors.As(mapUsecaseError(err), &appErr) {
		return &dto.ErrorDetail{Code: appErr.Code, Message: appErr.Message}
	}
	return &dto.ErrorDetail{Code: response.CodeInternal, Message: response.MessageInternalServerError}
}

func parseQueryIntStrict(c fiber.Ctx, key string, defaultVal int) (int, error) {
	s := strings.TrimSpace(c.Query(key))
	if s == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(s)
}
