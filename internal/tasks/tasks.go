// Package tasks defines the asynq task types and their payload codecs.
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// TypeCodeRunSimulate runs a room's main file in the simulated
	// executor. Real execution never happens in-process.
	TypeCodeRunSimulate = "coderun:simulate"

	// TypeRoomSweep is the periodic cleanup of volatile state for rooms
	// with no connected clients.
	TypeRoomSweep = "rooms:sweep_inactive"
)

// CodeRunPayload identifies one requested simulated run.
type CodeRunPayload struct {
	RunID  string `json:"run_id"`
	RoomID uint   `json:"room_id"`
	UserID uint   `json:"user_id"`
}

func NewCodeRunTask(p CodeRunPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal code run payload: %w", err)
	}
	return asynq.NewTask(TypeCodeRunSimulate, payload), nil
}

func ParseCodeRunPayload(t *asynq.Task) (CodeRunPayload, error) {
	var p CodeRunPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("unmarshal code run payload: %w", err)
	}
	return p, nil
}

func NewRoomSweepTask() *asynq.Task {
	return asynq.NewTask(TypeRoomSweep, nil)
}
