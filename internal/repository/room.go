package repository

import (
	"context"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
)

// RoomRepository stores and retrieves rooms.
type RoomRepository interface {
	// FindByID returns ErrRoomNotFound when no such room exists.
	FindByID(ctx context.Context, id uint) (*domain.Room, error)

	// Save creates the room when ID is zero, updates otherwise.
	Save(ctx context.Context, room *domain.Room) error

	// ListByMember returns the rooms the user holds a membership in,
	// ordered by room creation time descending.
	ListByMember(ctx context.Context, userID uint) ([]domain.Room, error)
}
