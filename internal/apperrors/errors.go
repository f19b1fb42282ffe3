package apperrors

import "errors"

// Sentinel errors for the failure kinds the services surface. Handlers map
// them to HTTP status codes with errors.Is; anything else is a 500.
var (
	// ErrNotFound marks an entity that is missing or already soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrInvalidOperation marks an operation that is never valid for the
	// given operands, such as following yourself.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrInvalidArgument marks a missing or malformed input value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrForbidden marks an operation the caller is not allowed to perform,
	// such as editing someone else's post.
	ErrForbidden = errors.New("forbidden")
)
