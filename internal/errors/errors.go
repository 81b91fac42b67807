// Package errors defines sentinel errors shared across the application.
// Import as `apperrors` to avoid clashing with the standard library.
package errors

import "errors"

var (
	// ErrNoConnection means no database backend ever resolved.
	// Callers should fall back to a secondary data source.
	ErrNoConnection = errors.New("no database connection available")

	// ErrQueryFailed means a resolved backend rejected a statement.
	// The underlying driver error is attached via wrapping.
	ErrQueryFailed = errors.New("query execution failed")

	// ErrDuplicateAccount is returned when registering an email that
	// already has an account.
	ErrDuplicateAccount = errors.New("account already exists for this email")

	// ErrInvalidRole is returned for roles outside the two fixed values.
	ErrInvalidRole = errors.New("invalid role")

	// ErrNotFound is returned by stores when a record does not exist.
	ErrNotFound = errors.New("record not found")
)
