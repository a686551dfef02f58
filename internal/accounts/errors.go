package accounts

import "errors"

var (
	ErrMissingEmail    = errors.New("missing email")
	ErrMissingPassword = errors.New("missing password")

	// ErrDuplicateUser covers both the lookup hit and the unique-constraint
	// race on insert.
	ErrDuplicateUser = errors.New("user already exists")

	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
