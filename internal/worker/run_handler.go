package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/Divyagaur16/codehuddle-collabspace/internal/domain"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/repository"
	"github.com/Divyagaur16/codehuddle-collabspace/internal/tasks"
)

// CodeRunHandler executes simulated code runs. It never evaluates the
// code; it reads the room's main file, produces a summary of what would
// run and publishes the result on the room's run channel.
type CodeRunHandler struct {
	codeRepo  repository.CodeFileRepository
	publisher repository.ChangePublisher
}

func NewCodeRunHandler(codeRepo repository.CodeFileRepository, publisher repository.ChangePublisher) *CodeRunHandler {
	if codeRepo == nil {
		panic("CodeFileRepository cannot be nil for CodeRunHandler")
	}
	if publisher == nil {
		panic("ChangePublisher cannot be nil for CodeRunHandler")
	}
	return &CodeRunHandler{codeRepo: codeRepo, publisher: publisher}
}

// ProcessTask implements asynq.Handler.
func (h *CodeRunHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseCodeRunPayload(t)
	if err != nil {
		logrus.WithError(err).Error("Failed to unmarshal code run payload")
		return fmt.Errorf("parse payload: %v: %w", err, asynq.SkipRetry)
	}

	logCtx := logrus.WithFields(logrus.Fields{
		"run_id":  payload.RunID,
		"room_id": payload.RoomID,
		"user_id": payload.UserID,
	})
	logCtx.Info("Processing code run task")

	started := time.Now()
	result := domain.RunResult{
		RunID:  payload.RunID,
		RoomID: payload.RoomID,
		UserID: payload.UserID,
	}

	file, err := h.codeRepo.FindByRoomAndName(ctx, payload.RoomID, domain.MainFileName)
	if err != nil {
		logCtx.WithError(err).Warn("Code run failed: main file not available")
		result.Error = "main file not found"
	} else {
		result.Output = simulateRun(file)
	}
	result.DurationMS = time.Since(started).Milliseconds()

	if err := h.publisher.PublishRunCompleted(ctx, result); err != nil {
		logCtx.WithError(err).Error("Failed to publish run result")
		return fmt.Errorf("publish run %s: %w", payload.RunID, err)
	}

	logCtx.WithField("duration_ms", result.DurationMS).Info("Code run task processed successfully")
	return nil
}

func simulateRun(file *domain.CodeFile) string {
	lines := strings.Count(file.Content, "\n") + 1
	if strings.TrimSpace(file.Content) == "" {
		return fmt.Sprintf("[simulated] %s: nothing to run (file is empty)", file.Language)
	}
	return fmt.Sprintf("[simulated] %s: executed %q (%d lines, %d bytes)",
		file.Language, file.Name, lines, len(file.Content))
}
