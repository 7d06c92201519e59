package models

import "errors"

// Errors shared between repositories, services and handlers.
// Handlers translate them into HTTP statuses, so wrap with %w when adding context.
var (
	ErrDatabaseUnavailable = errors.New("database not initialized")
	ErrUserExists          = errors.New("user already exists")
	ErrEmailExists         = errors.New("email already in use")
	ErrUserNotFound        = errors.New("user not found")
	ErrNoUpdateFields      = errors.New("no fields supplied to update")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDeviceExists        = errors.New("device already exists for this user")
	ErrNotAuthenticated    = errors.New("not authenticated")
)

// ValidationError describes request input that failed validation
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
