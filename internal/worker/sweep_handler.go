package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository"
)

// inactiveAfter is how long a room can stay idle before its volatile
// state is swept.
const inactiveAfter = 30 * time.Minute

// RoomSweepHandler drops presence state for rooms that have been idle
// past the threshold. Durable data is untouched.
type RoomSweepHandler struct {
	stateRepo repository.StateRepository
}

func NewRoomSweepHandler(stateRepo repository.StateRepository) *RoomSweepHandler {
	if stateRepo == nil {
		panic("StateRepository cannot be nil for RoomSweepHandler")
	}
	return &RoomSweepHandler{stateRepo: stateRepo}
}

// ProcessTask implements asynq.Handler.
func (h *RoomSweepHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())
	logCtx.Info("Processing room sweep task")

	roomIDs, err := h.stateRepo.ActiveRoomIDs(ctx)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list rooms with recorded activity")
		return err
	}
	if len(roomIDs) == 0 {
		logCtx.Debug("No rooms with recorded activity, nothing to sweep")
		return nil
	}

	swept := 0
	for _, roomID := range roomIDs {
		roomLog := logCtx.WithField("room_id", roomID)

		lastActive, err := h.stateRepo.LastRoomActivity(ctx, roomID)
		if err != nil {
			roomLog.WithError(err).Warn("Failed to read last activity, skipping room")
			continue
		}
		if !lastActive.IsZero() && time.Since(lastActive) < inactiveAfter {
			continue
		}

		present, err := h.stateRepo.PresentUserIDs(ctx, roomID)
		if err != nil {
			roomLog.WithError(err).Warn("Failed to read presence, skipping room")
			continue
		}
		if len(present) > 0 {
			// Connected clients keep a room alive regardless of the
			// activity timestamp.
			continue
		}

		if err := h.stateRepo.ClearPresence(ctx, roomID); err != nil {
			roomLog.WithError(err).Warn("Failed to clear presence for idle room")
			continue
		}
		if err := h.stateRepo.ClearRoomActivity(ctx, roomID); err != nil {
			roomLog.WithError(err).Warn("Failed to clear activity record for idle room")
		}
		swept++
	}

	logCtx.WithFields(logrus.Fields{"checked": len(roomIDs), "swept": swept}).
		Info("Room sweep task completed")
	return nil
}
