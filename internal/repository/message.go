package repository

import (
	"context"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
)

// MessageRepository stores the append-only chat log of each room.
type MessageRepository interface {
	// Create appends a message. The database assigns ID and CreatedAt.
	Create(ctx context.Context, msg *domain.Message) error

	// ListByRoom returns the room's messages ordered by creation time
	// ascending.
	ListByRoom(ctx context.Context, roomID uint) ([]domain.Message, error)
}
