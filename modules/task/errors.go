package task

import "errors"

// Sentinel errors for task operations. They cross the service bus as plain
// strings, so the API layer matches on these messages when translating to
// HTTP status codes.
var (
	// ErrNotFound is returned when the requested task does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrValidation is returned when a request carries a missing or
	// malformed field. Wrap it with the field detail:
	// fmt.Errorf("%w: title is required", ErrValidation).
	ErrValidation = errors.New("validation failed")
)
