package storage

import "errors"

// Common storage errors
var (
	// ErrNotFound indicates that the requested record was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g. email already registered)
	ErrAlreadyExists = errors.New("already exists")

	// ErrAlreadyResolved indicates that a support ticket is already resolved
	ErrAlreadyResolved = errors.New("already resolved")

	// ErrTokenNotFound indicates that refresh token is not registered for the principal
	ErrTokenNotFound = errors.New("refresh token not found")
)
