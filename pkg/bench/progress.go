package bench

import (
	"github.com/acidwave/acidwave-bench/pkg/results"
	"github.com/acidwave/acidwave-bench/pkg/validate"
)

type EventType string

const (
	EventRunStart     EventType = "run_start"
	EventTaskStart    EventType = "task_start"
	EventTaskStep     EventType = "task_step"
	EventTaskSkipped  EventType = "task_skipped"
	EventTaskComplete EventType = "task_complete"
	EventRunComplete  EventType = "run_complete"
)

type ProgressEvent struct {
	Type    EventType
	Message string
	// Task is set for task events. On EventTaskStart only the identity fields are filled.
	Task *results.Record
	// Validation is set for EventTaskStep
	Validation *validate.Result
	// Snapshot is the file the event refers to, if any
	Snapshot string
}

// ProgressCallback receives events one at a time, never concurrently
type ProgressCallback func(event ProgressEvent)

func NoopProgressCallback(ProgressEvent) {}
