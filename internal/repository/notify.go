package repository

import (
	"context"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
)

// ChangePublisher pushes change notifications for a room onto its logical
// channels. Publish failures must not fail the write that triggered them;
// callers log and move on.
type ChangePublisher interface {
	PublishMessageInserted(ctx context.Context, msg domain.Message) error
	PublishCodeFileUpdated(ctx context.Context, f domain.CodeFile) error
	PublishRunCompleted(ctx context.Context, res domain.RunResult) error
}

// ChangeSubscriber opens a logical channel scoped to one room and one record
// kind. Events arrive in the order the transport delivers them; duplicate
// delivery is possible and consumers deduplicate by record ID.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context, roomID uint, kind domain.EventKind) (Subscription, error)
}

// Subscription is a live change feed. Unsubscribe is idempotent: it is always
// safe to call, including repeatedly and after the feed is already closed.
// Events is closed once the subscription ends.
type Subscription interface {
	Events() <-chan domain.ChangeEvent
	Unsubscribe()
}
