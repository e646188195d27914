package domain

import "errors"

var (
	// ErrEmailRequired is returned when login is attempted without an email.
	ErrEmailRequired = errors.New("email is required")
	// ErrMissingFields is returned when a submission lacks the email or the answer index.
	ErrMissingFields = errors.New("email and answer index are required")
	// ErrForbidden is returned when a non-admin calls an admin-only operation.
	ErrForbidden = errors.New("admin access required")
)
