package services

import "errors"

// Sentinel errors returned by the service layer. Handlers translate them
// into HTTP statuses; wrap with fmt.Errorf("...: %w", Err...) to attach a
// caller-facing message.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)
