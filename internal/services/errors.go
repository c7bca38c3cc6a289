package services

import (
	"errors"
	"fmt"

	"todo-tracker/backend/internal/models"
)

var (
	ErrDuplicateUser      = errors.New("user already registered")
	ErrInvalidCredentials = errors.New("Username or Password does not match")
	ErrUserNotFound       = &NotFoundError{Message: "User does not exist"}
	ErrMissingCredentials = models.NewValidationError("", "Email and password are required")
)

// NotFoundError carries a client-facing message and matches models.ErrNotFound.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }
func (e *NotFoundError) Unwrap() error { return models.ErrNotFound }

type DuplicateUserError struct {
	Email string
}

func (e *DuplicateUserError) Error() string {
	return fmt.Sprintf("UserName %s, Already Registered", e.Email)
}

func (e *DuplicateUserError) Is(target error) bool { return target == ErrDuplicateUser }
func (e *DuplicateUserError) Unwrap() error        { return models.ErrDuplicateKey }

type Op string

const (
	OpCreate Op = "create"
	OpFetch  Op = "fetch"
	OpDelete Op = "delete"
	OpUpdate Op = "update"
)

func (op Op) prefix() string {
	switch op {
	case OpCreate:
		return "Failed to create ToDo"
	case OpFetch:
		return "Failed to fetch ToDo list"
	case OpDelete:
		return "Failed to delete ToDo"
	case OpUpdate:
		return "Failed to update ToDo"
	default:
		return "Failed to " + string(op) + " ToDo"
	}
}

// OpError wraps a task failure with the operation that produced it.
type OpError struct {
	Op  Op
	Err error
}

func (e *OpError) Error() string { return e.Op.prefix() + ": " + e.Err.Error() }
func (e *OpError) Unwrap() error { return e.Err }

func opError(op Op, err error) error {
	return &OpError{Op: op, Err: err}
}
