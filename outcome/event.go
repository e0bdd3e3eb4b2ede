package outcome

import (
	"time"

	"github.com/google/uuid"
)

// EventKind identifies a step lifecycle event.
type EventKind string

const (
	EventGroupStarted  EventKind = "group_started"
	EventGroupFinished EventKind = "group_finished"
	EventStepStarted   EventKind = "step_started"
	EventStepFinished  EventKind = "step_finished"
	EventStepFailed    EventKind = "step_failed"
	EventStepSkipped   EventKind = "step_skipped"
)

// IsStart reports whether the event opens a record.
func (k EventKind) IsStart() bool {
	return k == EventGroupStarted || k == EventStepStarted
}

// IsTerminal reports whether the event closes the most recently opened record.
func (k EventKind) IsTerminal() bool {
	switch k {
	case EventGroupFinished, EventStepFinished, EventStepFailed, EventStepSkipped:
		return true
	default:
		return false
	}
}

// ScenarioInfo is the scenario metadata supplied by the host test runner.
type ScenarioInfo struct {
	ID        uuid.UUID
	Title     string
	StartedAt time.Time
}

// Event is a single step lifecycle notification.
type Event struct {
	Kind        EventKind
	Scenario    ScenarioInfo
	Description string
	Result      Result
	Err         error
	EvidenceRef string
	At          time.Time
}
