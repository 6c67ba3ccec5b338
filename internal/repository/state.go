package repository

import (
	"context"
	"time"
)

// StateRepository holds the volatile per-room state kept in Redis: who is
// connected right now, when the room was last active, and the counters
// backing the HTTP rate limiter.
type StateRepository interface {
	// AddPresence records a connected user in the room's presence set.
	AddPresence(ctx context.Context, roomID, userID uint) error

	// RemovePresence removes a user from the room's presence set.
	RemovePresence(ctx context.Context, roomID, userID uint) error

	// PresentUserIDs returns the user IDs currently connected to the room.
	PresentUserIDs(ctx context.Context, roomID uint) ([]uint, error)

	// ClearPresence drops the room's presence set entirely.
	ClearPresence(ctx context.Context, roomID uint) error

	// TouchRoomActivity records "now" as the room's last activity.
	TouchRoomActivity(ctx context.Context, roomID uint) error

	// LastRoomActivity returns the recorded last activity, or the zero time
	// when none is recorded.
	LastRoomActivity(ctx context.Context, roomID uint) (time.Time, error)

	// ActiveRoomIDs returns the rooms with a recorded activity timestamp.
	ActiveRoomIDs(ctx context.Context) ([]uint, error)

	// ClearRoomActivity removes the room's activity record.
	ClearRoomActivity(ctx context.Context, roomID uint) error

	// CheckRateLimit increments the counter behind key and reports whether
	// the count within the window now exceeds limit.
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
