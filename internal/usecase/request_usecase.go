package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"staffing-hub/internal/domain/request"
	"staffing-hub/internal/domain/staffing"
	"staffing-hub/internal/event"
	"staffing-hub/internal/metrics"
	"staffing-hub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type CreateRequestInput struct {
	EmployeeID      uuid.UUID
	RoleID          uuid.UUID
	AdministratorID uuid.UUID
	ManagerID       *uuid.UUID
	Justification   string
	Urgency         int
}

type ResolveRequestInput struct {
	Outcome  request.State
	Comments string
	// ResolvedBy is the acting administrator. When set it must be the
	// administrator the request was addressed to.
	ResolvedBy *uuid.UUID
}

type ListRequestsParams struct {
	State           string
	Requester       string
	Project         string
	EmployeeID      *uuid.UUID
	AdministratorID *uuid.UUID
	Limit           int
	Offset          int
}

type RequestUsecase interface {
	CanSubmit(ctx context.Context, employeeID uuid.UUID) (bool, error)
	Create(ctx context.Context, in CreateRequestInput) (request.Request, error)
	Resolve(ctx context.Context, requestID uuid.UUID, in ResolveRequestInput) (request.Request, error)
	Get(ctx context.Context, requestID uuid.UUID) (request.Request, error)
	List(ctx context.Context, params ListRequestsParams) ([]repository.RequestView, error)
	Administrators(ctx context.Context) ([]staffing.Administrator, error)
}

type Requests struct {
	requests  repository.RequestRepository
	employees repository.EmployeeRepository
	admins    repository.AdministratorRepository
	roles     repository.RoleRepository
	gate      *Gatekeeper
	events    event.Publisher
	log       zerolog.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

func NewRequestUsecase(
	requests repository.RequestRepository,
	employees repository.EmployeeRepository,
	admins repository.AdministratorRepository,
	roles repository.RoleRepository,
	events event.Publisher,
	logger zerolog.Logger,
) *Requests {
	if events == nil {
		events = event.Discard{}
	}
	return &Requests{
		requests:  requests,
		employees: employees,
		admins:    admins,
		roles:     roles,
		gate:      NewGatekeeper(requests, logger),
		events:    events,
		log:       logger.With().Str("component", "requests").Logger(),
		now:       time.Now,
		newID:     uuid.New,
	}
}

// Administrators lists who a request can be addressed to.
func (u *Requests) Administrators(ctx context.Context) ([]staffing.Administrator, error) {
	admins, err := u.admins.ListAdministrators(ctx)
	if err != nil {
		u.log.Error().Err(err).Msg("list administrators")
		return nil, ErrInternal
	}
	return admins, nil
}

func (u *Requests) CanSubmit(ctx context.Context, employeeID uuid.UUID) (bool, error) {
	return u.gate.CanSubmit(ctx, employeeID)
}

// Create validates the draft, checks every reference and reserves the
// employee's single pending slot with the insert itself.
func (u *Requests) Create(ctx context.Context, in CreateRequestInput) (request.Request, error) {
	draft := request.Draft{
		EmployeeID:      in.EmployeeID,
		RoleID:          in.RoleID,
		AdministratorID: in.AdministratorID,
		ManagerID:       in.ManagerID,
		Justification:   in.Justification,
		Urgency:         in.Urgency,
	}
	if err := draft.Validate(); err != nil {
		metrics.RequestsCreated.WithLabelValues("invalid").Inc()
		return request.Request{}, err
	}

	if err := u.checkReferences(ctx, draft); err != nil {
		if errors.Is(err, ErrUnknownReference) {
			metrics.RequestsCreated.WithLabelValues("invalid").Inc()
		}
		return request.Request{}, err
	}

	req := request.New(u.newID(), draft, u.now())
	if err := u.gate.Reserve(ctx, req); err != nil {
		if errors.Is(err, ErrAlreadyPending) {
			metrics.RequestsCreated.WithLabelValues("already_pending").Inc()
			u.log.Info().
				Str("employee_id", req.EmployeeID.String()).
				Msg("request rejected, employee already has a pending request")
		} else {
			metrics.RequestsCreated.WithLabelValues("error").Inc()
		}
		return request.Request{}, err
	}

	metrics.RequestsCreated.WithLabelValues("created").Inc()
	u.log.Info().
		Str("request_id", req.ID.String()).
		Str("employee_id", req.EmployeeID.String()).
		Str("role_id", req.RoleID.String()).
		Str("administrator_id", req.AdministratorID.String()).
		Int("urgency", req.Urgency).
		Msg("request created")
	u.publish(ctx, event.KindRequestCreated, req)
	return req, nil
}

func (u *Requests) checkReferences(ctx context.Context, d request.Draft) error {
	if _, err := u.employees.FindEmployeeByID(ctx, d.EmployeeID); err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return unknownRef("employee")
		}
		u.log.Error().Err(err).Msg("load employee")
		return ErrInternal
	}

	role, err := u.roles.FindByID(ctx, d.RoleID)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return unknownRef("role")
		}
		u.log.Error().Err(err).Msg("load role")
		return ErrInternal
	}
	if role.Deleted() {
		return unknownRef("role")
	}

	if _, err := u.admins.FindAdministratorByID(ctx, d.AdministratorID); err != nil {
		if errors.Is(err, repository.ErrAdministratorNotFound) {
			return unknownRef("administrator")
		}
		u.log.Error().Err(err).Msg("load administrator")
		return ErrInternal
	}
	return nil
}

// Resolve moves a pending request to a terminal state. The write is a
// compare-and-swap on PENDIENTE; when two callers race, the loser gets
// ErrInvalidTransition and the request keeps the winner's outcome.
func (u *Requests) Resolve(ctx context.Context, requestID uuid.UUID, in ResolveRequestInput) (request.Request, error) {
	if requestID == uuid.Nil {
		return request.Request{}, validationf("request id is required")
	}

	current, err := u.Get(ctx, requestID)
	if err != nil {
		return request.Request{}, err
	}
	if current.State.Terminal() {
		return request.Request{}, ErrInvalidTransition
	}
	if in.ResolvedBy != nil && *in.ResolvedBy != current.AdministratorID {
		return request.Request{}, ErrForbidden
	}

	resolved, err := request.Resolve(current, request.Resolution{
		Outcome:    in.Outcome,
		Comments:   in.Comments,
		ResolvedBy: in.ResolvedBy,
		At:         u.now(),
	})
	if err != nil {
		return request.Request{}, err
	}

	applied, err := u.requests.ApplyResolution(ctx, resolved)
	if err != nil {
		u.log.Error().Err(err).Str("request_id", requestID.String()).Msg("apply resolution")
		return request.Request{}, ErrInternal
	}
	if !applied {
		latest, err := u.Get(ctx, requestID)
		if err != nil {
			return request.Request{}, err
		}
		u.log.Warn().
			Str("request_id", requestID.String()).
			Str("state", string(latest.State)).
			Msg("request resolved concurrently")
		return request.Request{}, ErrInvalidTransition
	}

	metrics.RequestsResolved.WithLabelValues(strings.ToLower(string(resolved.State))).Inc()
	u.log.Info().
		Str("request_id", resolved.ID.String()).
		Str("employee_id", resolved.EmployeeID.String()).
		Str("outcome", string(resolved.State)).
		Msg("request resolved")
	u.publish(ctx, event.KindRequestResolved, resolved)
	return resolved, nil
}

func (u *Requests) Get(ctx context.Context, requestID uuid.UUID) (request.Request, error) {
	req, err := u.requests.FindByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return request.Request{}, ErrNotFound
		}
		u.log.Error().Err(err).Str("request_id", requestID.String()).Msg("load request")
		return request.Request{}, ErrInternal
	}
	return req, nil
}

// List returns requests newest first. Urgency does not affect ordering.
func (u *Requests) List(ctx context.Context, params ListRequestsParams) ([]repository.RequestView, error) {
	if params.Limit < 0 || params.Offset < 0 {
		return nil, validationf("limit and offset must not be negative")
	}

	f := repository.RequestFilter{
		Requester:       params.Requester,
		Project:         params.Project,
		EmployeeID:      params.EmployeeID,
		AdministratorID: params.AdministratorID,
		Limit:           params.Limit,
		Offset:          params.Offset,
	}
	if strings.TrimSpace(params.State) != "" {
		st, err := request.ParseState(params.State)
		if err != nil {
			return nil, err
		}
		f.State = &st
	}

	items, err := u.requests.List(ctx, f)
	if err != nil {
		u.log.Error().Err(err).Msg("list requests")
		return nil, ErrInternal
	}
	return items, nil
}

type requestEventPayload struct {
	RequestID       uuid.UUID  `json:"request_id"`
	EmployeeID      uuid.UUID  `json:"employee_id"`
	RoleID          uuid.UUID  `json:"role_id"`
	AdministratorID uuid.UUID  `json:"administrator_id"`
	ManagerID       *uuid.UUID `json:"manager_id,omitempty"`
	State           string     `json:"state"`
	Urgency         int        `json:"urgency"`
	ResolvedBy      *uuid.UUID `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

func (u *Requests) publish(ctx context.Context, kind event.Kind, req request.Request) {
	payload := requestEventPayload{
		RequestID:       req.ID,
		EmployeeID:      req.EmployeeID,
		RoleID:          req.RoleID,
		AdministratorID: req.AdministratorID,
		ManagerID:       req.ManagerID,
		State:           string(req.State),
		Urgency:         req.Urgency,
		ResolvedBy:      req.ResolvedBy,
		ResolvedAt:      req.ResolvedAt,
	}
	if err := u.events.Publish(ctx, event.New(kind, req.EmployeeID.String(), payload)); err != nil {
		u.log.Warn().Err(err).Str("kind", string(kind)).Str("request_id", req.ID.String()).Msg("publish event")
	}
}
