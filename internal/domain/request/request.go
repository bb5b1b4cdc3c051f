// Package request models the lifecycle of an assignment request (solicitud).
//
// A request starts PENDIENTE and moves exactly once to APROBADA or RECHAZADA.
// Terminal states never transition again.
package request

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StatePendiente State = "PENDIENTE"
	StateAprobada  State = "APROBADA"
	StateRechazada State = "RECHAZADA"
)

func (s State) Valid() bool {
	switch s {
	case StatePendiente, StateAprobada, StateRechazada:
		return true
	}
	return false
}

func (s State) Terminal() bool {
	return s == StateAprobada || s == StateRechazada
}

func ParseState(raw string) (State, error) {
	s := State(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown state %q", ErrValidation, raw)
	}
	return s, nil
}

const (
	MinUrgency = 1
	MaxUrgency = 5
)

var (
	ErrValidation        = errors.New("validation error")
	ErrInvalidTransition = errors.New("invalid transition")
)

type Request struct {
	ID                 uuid.UUID
	EmployeeID         uuid.UUID
	RoleID             uuid.UUID
	AdministratorID    uuid.UUID
	ManagerID          *uuid.UUID
	Justification      string
	Urgency            int
	State              State
	ResolutionComments *string
	ResolvedBy         *uuid.UUID
	CreatedAt          time.Time
	ResolvedAt         *time.Time
}

type Draft struct {
	EmployeeID      uuid.UUID
	RoleID          uuid.UUID
	AdministratorID uuid.UUID
	ManagerID       *uuid.UUID
	Justification   string
	Urgency         int
}

// Validate checks the shape of a draft. Reference existence is checked by the
// caller against the stores.
func (d Draft) Validate() error {
	var problems []string
	if d.EmployeeID == uuid.Nil {
		problems = append(problems, "employee_id is required")
	}
	if d.RoleID == uuid.Nil {
		problems = append(problems, "role_id is required")
	}
	if d.AdministratorID == uuid.Nil {
		problems = append(problems, "administrator_id is required")
	}
	if strings.TrimSpace(d.Justification) == "" {
		problems = append(problems, "justification is required")
	}
	if d.Urgency < MinUrgency || d.Urgency > MaxUrgency {
		problems = append(problems, fmt.Sprintf("urgency must be between %d and %d", MinUrgency, MaxUrgency))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

// New builds a PENDIENTE request from a validated draft.
func New(id uuid.UUID, d Draft, now time.Time) Request {
	return Request{
		ID:              id,
		EmployeeID:      d.EmployeeID,
		RoleID:          d.RoleID,
		AdministratorID: d.AdministratorID,
		ManagerID:       d.ManagerID,
		Justification:   strings.TrimSpace(d.Justification),
		Urgency:         d.Urgency,
		State:           StatePendiente,
		CreatedAt:       now.UTC(),
	}
}

// Resolution is the outcome applied to a pending request.
type Resolution struct {
	Outcome    State
	Comments   string
	ResolvedBy *uuid.UUID
	At         time.Time
}

func (r Resolution) Validate() error {
	if !r.Outcome.Terminal() {
		return fmt.Errorf("%w: outcome must be %s or %s", ErrValidation, StateAprobada, StateRechazada)
	}
	return nil
}

// Resolve applies res to req and returns the updated copy. Comments are kept
// verbatim.
func Resolve(req Request, res Resolution) (Request, error) {
	if err := res.Validate(); err != nil {
		return req, err
	}
	if req.State != StatePendiente {
		return req, fmt.Errorf("%w: request %s is %s", ErrInvalidTransition, req.ID, req.State)
	}
	at := res.At.UTC()
	comments := res.Comments
	req.State = res.Outcome
	req.ResolutionComments = &comments
	req.ResolvedBy = res.ResolvedBy
	req.ResolvedAt = &at
	return req, nil
}
