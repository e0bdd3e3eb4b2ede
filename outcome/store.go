package outcome

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the interface for finished outcome persistence operations.
type Store interface {
	// Save persists a finished outcome and its whole step tree.
	Save(ctx context.Context, o *TestOutcome) error

	// GetByID retrieves an outcome with its step tree.
	GetByID(ctx context.Context, id uuid.UUID) (*TestOutcome, error)

	// List retrieves a paginated list of outcome summaries, most recent first.
	List(ctx context.Context, limit, offset int) ([]*Summary, error)

	// Count returns the number of stored outcomes.
	Count(ctx context.Context) (int64, error)
}

// Summary is the top-level view of a stored outcome.
type Summary struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Result     Result    `json:"result"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	StepCount  int       `json:"step_count"`
}
