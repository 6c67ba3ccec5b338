package repository

import (
	"context"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
)

// CodeFileRepository stores the shared code buffers of rooms.
type CodeFileRepository interface {
	// FindByRoomAndName returns ErrCodeFileNotFound when the file does not
	// exist yet.
	FindByRoomAndName(ctx context.Context, roomID uint, name string) (*domain.CodeFile, error)

	// Create inserts a new file. A second file with the same (room, name)
	// surfaces as ErrDuplicateEntry.
	Create(ctx context.Context, f *domain.CodeFile) error

	// UpdateContent overwrites content, language and the updated timestamp
	// of (roomID, name) in place and returns the stored row. No diffing,
	// no merge: last write wins.
	UpdateContent(ctx context.Context, roomID uint, name, content, language string) (*domain.CodeFile, error)
}
