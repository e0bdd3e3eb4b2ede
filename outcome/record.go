package outcome

import (
	"time"

	"github.com/google/uuid"
)

// StepRecord is the recorded execution of one step or group of steps.
type StepRecord struct {
	ID           uuid.UUID
	Description  string
	Group        bool
	Result       Result
	Own          Result
	StartedAt    time.Time
	Duration     time.Duration
	ErrorMessage string
	Cause        error
	EvidenceRef  string
	Children     []*StepRecord
}

// OwnResult is the result of the step's own body, before results of steps
// recorded inside it are folded in.
func (r *StepRecord) OwnResult() Result {
	if r.Own != "" {
		return r.Own
	}
	return r.Result
}

// HasChildren reports whether other steps were recorded inside this one.
func (r *StepRecord) HasChildren() bool {
	return len(r.Children) > 0
}

// childResult aggregates the results of the direct children.
func (r *StepRecord) childResult() Result {
	results := make([]Result, 0, len(r.Children))
	for _, c := range r.Children {
		results = append(results, c.Result)
	}
	return Aggregate(results...)
}

// TestOutcome is the finished, ordered and nested record of one scenario.
type TestOutcome struct {
	ID        uuid.UUID
	Title     string
	StartedAt time.Time
	Duration  time.Duration
	Records   []*StepRecord
}

// Result aggregates the top-level records.
func (o *TestOutcome) Result() Result {
	results := make([]Result, 0, len(o.Records))
	for _, r := range o.Records {
		results = append(results, r.Result)
	}
	return Aggregate(results...)
}

// Steps returns every step record, groups excluded, in depth-first call order.
// A step that ran other steps precedes them.
func (o *TestOutcome) Steps() []*StepRecord {
	var steps []*StepRecord
	var walk func([]*StepRecord)
	walk = func(records []*StepRecord) {
		for _, r := range records {
			if !r.Group {
				steps = append(steps, r)
			}
			walk(r.Children)
		}
	}
	walk(o.Records)
	return steps
}

// Counts returns the number of steps per own result.
func (o *TestOutcome) Counts() map[Result]int {
	counts := make(map[Result]int)
	for _, s := range o.Steps() {
		counts[s.OwnResult()]++
	}
	return counts
}

// FirstFailure returns the first step whose own body failed, or nil.
func (o *TestOutcome) FirstFailure() *StepRecord {
	for _, s := range o.Steps() {
		if s.OwnResult() == ResultFailure {
			return s
		}
	}
	return nil
}
