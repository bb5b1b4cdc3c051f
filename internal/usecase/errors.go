package usecase

import (
	"errors"
	"fmt"

	"staffing-hub/internal/domain/request"
)

var (
	ErrValidation        = request.ErrValidation
	ErrAlreadyPending    = errors.New("employee already has a pending request")
	ErrNotFound          = errors.New("not found")
	ErrUnknownReference  = errors.New("unknown reference")
	ErrInvalidTransition = request.ErrInvalidTransition
	ErrRoleAlreadyFilled = errors.New("role already filled")
	ErrForbidden         = errors.New("forbidden")
	ErrInternal          = errors.New("internal error")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func unknownRef(what string) error {
	return fmt.Errorf("%w: %s does not exist", ErrUnknownReference, what)
}
