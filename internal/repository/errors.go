package repository

import "errors"

// Shared storage errors. Implementations map driver-specific failures onto
// these so services can branch with errors.Is.
var (
	// ErrNotFound reports that the requested record does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry reports a unique-constraint violation.
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
)

// Per-resource aliases, kept for readable call sites.
var (
	ErrUserNotFound       = ErrNotFound
	ErrRoomNotFound       = ErrNotFound
	ErrMembershipNotFound = ErrNotFound
	ErrCodeFileNotFound   = ErrNotFound
)
