package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/tasks"
)

// RunService accepts "run code" requests and hands them to the queue. The
// run itself happens in the worker, isolated from the serving process, and
// only produces a simulated result.
type RunService struct {
	client *asynq.Client
}

func NewRunService(client *asynq.Client) *RunService {
	if client == nil {
		panic("asynq client cannot be nil for RunService")
	}
	return &RunService{client: client}
}

// EnqueueRun queues a simulated run of the room's main file and returns the
// run ID the result event will carry.
func (s *RunService) EnqueueRun(ctx context.Context, roomID, userID uint) (string, error) {
	if userID == 0 {
		return "", ErrUnauthenticated
	}
	runID := uuid.NewString()
	logCtx := logrus.WithFields(logrus.Fields{"room_id": roomID, "user_id": userID, "run_id": runID})

	task, err := tasks.NewCodeRunTask(tasks.CodeRunPayload{RunID: runID, RoomID: roomID, UserID: userID})
	if err != nil {
		logCtx.WithError(err).Error("Failed to build code run task")
		return "", ErrInternalServer
	}
	if _, err := s.client.EnqueueContext(ctx, task, asynq.Queue("default")); err != nil {
		logCtx.WithError(err).Error("Failed to enqueue code run task")
		return "", ErrInternalServer
	}

	logCtx.Info("Code run queued")
	return runID, nil
}
