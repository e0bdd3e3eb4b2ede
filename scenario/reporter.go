package scenario

import (
	"context"
	"sync"

	"github.com/hairizuan-noorazman/steprunner/logger"
	"github.com/hairizuan-noorazman/steprunner/outcome"
)

// Reporter receives finished outcomes. Reporters shared by a Suite are called concurrently.
type Reporter interface {
	Report(ctx context.Context, o *outcome.TestOutcome) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(ctx context.Context, o *outcome.TestOutcome) error

// Report calls f.
func (f ReporterFunc) Report(ctx context.Context, o *outcome.TestOutcome) error {
	return f(ctx, o)
}

// LogReporter logs a one-line summary of every outcome.
type LogReporter struct {
	logger logger.Logger
}

// NewLogReporter creates a reporter writing to log.
func NewLogReporter(log logger.Logger) *LogReporter {
	return &LogReporter{logger: log}
}

// Report logs o at info level, or warn when it did not succeed.
func (r *LogReporter) Report(ctx context.Context, o *outcome.TestOutcome) error {
	counts := o.Counts()
	fields := map[string]interface{}{
		"scenario_id": o.ID.String(),
		"scenario":    o.Title,
		"result":      string(o.Result()),
		"duration_ms": o.Duration.Milliseconds(),
		"passed":      counts[outcome.ResultSuccess],
		"failed":      counts[outcome.ResultFailure],
		"skipped":     counts[outcome.ResultSkipped],
		"pending":     counts[outcome.ResultPending],
		"ignored":     counts[outcome.ResultIgnored],
	}
	if failed := o.FirstFailure(); failed != nil {
		fields["failed_step"] = failed.Description
		fields["error"] = failed.ErrorMessage
		if failed.EvidenceRef != "" {
			fields["evidence"] = failed.EvidenceRef
		}
	}

	if o.Result() == outcome.ResultFailure {
		r.logger.Warn(ctx, "scenario failed", fields)
		return nil
	}
	r.logger.Info(ctx, "scenario passed", fields)
	return nil
}

// StoreReporter persists every outcome.
type StoreReporter struct {
	store outcome.Store
}

// NewStoreReporter creates a reporter saving into store.
func NewStoreReporter(store outcome.Store) *StoreReporter {
	return &StoreReporter{store: store}
}

// Report saves o.
func (r *StoreReporter) Report(ctx context.Context, o *outcome.TestOutcome) error {
	return r.store.Save(ctx, o)
}

// Collector keeps every reported outcome in memory.
type Collector struct {
	mu       sync.Mutex
	outcomes []*outcome.TestOutcome
}

// Report appends o.
func (c *Collector) Report(ctx context.Context, o *outcome.TestOutcome) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, o)
	return nil
}

// Outcomes returns the outcomes reported so far.
func (c *Collector) Outcomes() []*outcome.TestOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*outcome.TestOutcome(nil), c.outcomes...)
}
