package repository

import (
	"context"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
)

// MembershipRepository stores the join records gating room access.
type MembershipRepository interface {
	// Find returns the membership for (roomID, userID), or
	// ErrMembershipNotFound. Absence is an expected outcome, not a failure.
	Find(ctx context.Context, roomID, userID uint) (*domain.Membership, error)

	// ListByRoom returns every membership of a room, ordered by join time.
	ListByRoom(ctx context.Context, roomID uint) ([]domain.Membership, error)

	// Create inserts a membership. A second row for the same (room, user)
	// pair surfaces as ErrDuplicateEntry.
	Create(ctx context.Context, m *domain.Membership) error

	// Delete removes the membership for (roomID, userID).
	Delete(ctx context.Context, roomID, userID uint) error
}
