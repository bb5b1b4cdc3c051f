package handler

import (
	"errors"

	"staffing-hub/internal/delivery/http/middleware"
	"staffing-hub/internal/pkg/response"
	"staffing-hub/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// mapUsecaseError turns the usecase taxonomy into API errors. AlreadyPending
// and ValidationError deliberately get different statuses and codes.
func mapUsecaseError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrAlreadyPending):
		return middleware.NewAppError(fiber.StatusConflict, response.CodeAlreadyPending,
			"Employee already has a pending request", err)
	case errors.Is(err, usecase.ErrValidation):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, response.CodeValidation,
			"Validation failed", err).WithDetail(err.Error())
	case errors.Is(err, usecase.ErrInvalidTransition):
		return middleware.NewAppError(fiber.StatusConflict, response.CodeInvalidTransition,
			"Request is not in a state that allows this operation", err).WithDetail(err.Error())
	case errors.Is(err, usecase.ErrRoleAlreadyFilled):
		return middleware.NewAppError(fiber.StatusConflict, response.CodeRoleAlreadyFilled,
			"Role already has an active assignment", err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, response.CodeNotFound, "Not found", err)
	case errors.Is(err, usecase.ErrUnknownReference):
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, response.CodeUnknownReference,
			"Unknown reference", err).WithDetail(err.Error())
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, response.CodeForbidden, "Forbidden", err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.CodeInternal,
			response.MessageInternalServerError, err)
	}
}

func badRequest(err error, detail string) error {
	return middleware.NewAppError(fiber.StatusBadRequest, response.CodeBadRequest, "Bad request", err).WithDetail(detail)
}

func unauthorized() error {
	return middleware.NewAppError(fiber.StatusUnauthorized, response.CodeUnauthorized, "Unauthorized", nil)
}

func forbidden() error {
	return middleware.NewAppError(fiber.StatusForbidden, response.CodeForbidden, "Forbidden", nil)
}
