package usecase

import (
	"context"
	"errors"

	"staffing-hub/internal/domain/request"
	"staffing-hub/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Gatekeeper guards the one-pending-request-per-employee rule. CanSubmit is a
// read for the UI; Reserve is the authoritative atomic write.
type Gatekeeper struct {
	requests repository.RequestRepository
	log      zerolog.Logger
}

func NewGatekeeper(requests repository.RequestRepository, logger zerolog.Logger) *Gatekeeper {
	return &Gatekeeper{
		requests: requests,
		log:      logger.With().Str("component", "gatekeeper").Logger(),
	}
}

func (g *Gatekeeper) CanSubmit(ctx context.Context, employeeID uuid.UUID) (bool, error) {
	if employeeID == uuid.Nil {
		return false, validationf("employee id is required")
	}
	pending, err := g.requests.HasPending(ctx, employeeID)
	if err != nil {
		g.log.Error().Err(err).Str("employee_id", employeeID.String()).Msg("check pending")
		return false, ErrInternal
	}
	return !pending, nil
}

// Reserve stores req as the employee's pending request if none exists. The
// check and the write are one statement, so of two concurrent reservations
// for the same employee exactly one succeeds and the other gets
// ErrAlreadyPending.
func (g *Gatekeeper) Reserve(ctx context.Context, req request.Request) error {
	err := g.requests.InsertPending(ctx, req)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrPendingRequestExists):
		return ErrAlreadyPending
	case errors.Is(err, repository.ErrDanglingReference):
		return unknownRef("employee, role or administrator")
	default:
		g.log.Error().Err(err).Str("employee_id", req.EmployeeID.String()).Msg("reserve pending request")
		return ErrInternal
	}
}
