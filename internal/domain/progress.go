package domain

import "time"

// Phase identifies which half of the pipeline an event belongs to.
type Phase string

const (
	PhaseCollection Phase = "collection"
	PhaseExtraction Phase = "extraction"
)

// EventKind is the status tag carried by every progress event.
type EventKind string

const (
	EventStarting EventKind = "starting"
	EventProgress EventKind = "progress"
	EventPartial  EventKind = "partial"
	EventResult   EventKind = "result"
	EventError    EventKind = "error"
)

// Terminal reports whether the kind ends a stream.
func (k EventKind) Terminal() bool {
	return k == EventResult || k == EventError
}

// ProgressEvent is one structured update pushed to a stream consumer.
// Timestamps are monotonically non-decreasing per run.
type ProgressEvent struct {
	RunID     string    `json:"run_id"`
	Phase     Phase     `json:"phase"`
	Status    EventKind `json:"status"`
	Message   string    `json:"message,omitempty"`
	Percent   float64   `json:"percent,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
