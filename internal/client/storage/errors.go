package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no session is stored
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrPendingNotFound indicates that no registration waits for confirmation
	ErrPendingNotFound = errors.New("pending registration not found")
)
