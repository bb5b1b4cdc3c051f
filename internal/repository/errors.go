package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	ErrEmployeeNotFound       = errors.New("employee not found")
	ErrAdministratorNotFound  = errors.New("administrator not found")
	ErrProjectNotFound        = errors.New("project not found")
	ErrRoleNotFound           = errors.New("role not found")
	ErrRequestNotFound        = errors.New("assignment request not found")
	ErrPendingRequestExists   = errors.New("pending request already exists for employee")
	ErrDanglingReference      = errors.New("referenced record does not exist")
	ErrActiveAssignmentExists = errors.New("role already has an active assignment")
	ErrAlreadyMaterialized    = errors.New("request already materialized")
)

func isNoRows(err error) bool {
	return err == sql.ErrNoRows || errors.Is(err, pgx.ErrNoRows)
}
