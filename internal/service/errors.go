package service

import "errors"

// Business errors surfaced to handlers. Validation and authorization are
// checked before any write; persistence failures collapse into
// ErrInternalServer after being logged at the call site.
var (
	ErrUnauthenticated      = errors.New("authentication required")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRegistrationFailed   = errors.New("registration failed: username or email already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrRoomNotFound         = errors.New("room not found")
	ErrNotAMember           = errors.New("not a member of this room")
	ErrOwnerCannotLeave     = errors.New("room owner cannot leave: delete the room instead")
	ErrRoomNameRequired     = errors.New("room name is required")
	ErrEmptyMessage         = errors.New("message content cannot be empty")
	ErrInternalServer       = errors.New("internal server error")
)
