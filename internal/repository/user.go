// Package repository declares the storage and notification boundaries of the
// server. Implementations live under internal/infra.
package repository

import (
	"context"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
)

// UserRepository stores and retrieves user accounts.
type UserRepository interface {
	// FindByUsername returns ErrUserNotFound when no such user exists.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByID returns ErrUserNotFound when no such user exists.
	FindByID(ctx context.Context, id uint) (*domain.User, error)

	// Save creates the user when ID is zero, updates otherwise. Unique
	// username/email conflicts surface as ErrDuplicateEntry.
	Save(ctx context.Context, user *domain.User) error
}
