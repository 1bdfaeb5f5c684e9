package usecase

import "errors"

// Sentinel errors services wrap with fmt.Errorf("%w: ...") so the HTTP layer
// can map them to response statuses without inspecting message text.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
