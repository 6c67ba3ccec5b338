package domain

// EventKind selects one change channel of a room.
type EventKind string

const (
	EventMessages EventKind = "messages"
	EventCode     EventKind = "code"
	EventRuns     EventKind = "runs"
)

// ChangeEvent is one change notification delivered through the subscription
// bridge. It always carries the full changed record, never a diff; exactly
// one of the payload pointers is set, matching Kind. Delivery is
// at-least-once, so consumers deduplicate by record ID.
type ChangeEvent struct {
	Kind      EventKind  `json:"kind"`
	RoomID    uint       `json:"room_id"`
	Message   *Message   `json:"message,omitempty"`
	CodeFile  *CodeFile  `json:"code_file,omitempty"`
	RunResult *RunResult `json:"run_result,omitempty"`
}

// RunResult is the outcome of a simulated code run. Runs never evaluate the
// file in-process; the worker produces this record and fans it out.
type RunResult struct {
	RunID      string `json:"run_id"`
	RoomID     uint   `json:"room_id"`
	UserID     uint   `json:"user_id"`
	Output     string `json:"output"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}
