package outcome

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrOutcomeNotFinished is returned when the outcome is requested before the scenario finished.
	ErrOutcomeNotFinished = errors.New("scenario has not finished")

	// ErrNoOpenRecord is returned when a terminal event arrives with no started record.
	ErrNoOpenRecord = errors.New("no open step record")
)

// Recorder builds the StepRecord tree of one scenario from lifecycle events.
// Events must arrive in call order from a single goroutine.
type Recorder struct {
	outcome  *TestOutcome
	open     []*StepRecord
	finished bool
	err      error
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// ScenarioStarted resets the recorder for a new scenario.
func (r *Recorder) ScenarioStarted(ctx context.Context, info ScenarioInfo) {
	id := info.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	r.outcome = &TestOutcome{
		ID:        id,
		Title:     info.Title,
		StartedAt: info.StartedAt,
	}
	r.open = nil
	r.finished = false
	r.err = nil
}

// StepEvent applies one lifecycle event to the tree.
func (r *Recorder) StepEvent(ctx context.Context, ev Event) {
	if r.outcome == nil {
		r.ScenarioStarted(ctx, ev.Scenario)
	}

	switch {
	case ev.Kind.IsStart():
		rec := &StepRecord{
			ID:          uuid.New(),
			Description: ev.Description,
			Group:       ev.Kind == EventGroupStarted,
			StartedAt:   ev.At,
		}
		if parent := r.top(); parent != nil {
			parent.Children = append(parent.Children, rec)
		} else {
			r.outcome.Records = append(r.outcome.Records, rec)
		}
		r.open = append(r.open, rec)

	case ev.Kind.IsTerminal():
		rec := r.top()
		if rec == nil {
			r.err = ErrNoOpenRecord
			return
		}
		r.open = r.open[:len(r.open)-1]
		r.close(rec, ev)
	}
}

func (r *Recorder) close(rec *StepRecord, ev Event) {
	if rec.Group {
		rec.Result = rec.childResult()
	} else {
		rec.Own = ev.Result
		rec.Result = ev.Result
		if rec.HasChildren() {
			rec.Result = Aggregate(ev.Result, rec.childResult())
		}
	}
	if !ev.At.IsZero() && !rec.StartedAt.IsZero() {
		rec.Duration = ev.At.Sub(rec.StartedAt)
	}
	if ev.EvidenceRef != "" {
		rec.EvidenceRef = ev.EvidenceRef
	}
	if ev.Err != nil {
		rec.Cause = ev.Err
		rec.ErrorMessage = ev.Err.Error()
	}
}

// ScenarioFinished closes any record left open and freezes the outcome.
func (r *Recorder) ScenarioFinished(ctx context.Context, info ScenarioInfo, at time.Time) {
	if r.outcome == nil {
		if info.StartedAt.IsZero() {
			info.StartedAt = at
		}
		r.ScenarioStarted(ctx, info)
	}
	for len(r.open) > 0 {
		rec := r.top()
		r.open = r.open[:len(r.open)-1]
		result := ResultSkipped
		if rec.Group {
			result = rec.childResult()
		}
		r.close(rec, Event{Result: result, At: at})
	}
	if !r.outcome.StartedAt.IsZero() {
		r.outcome.Duration = at.Sub(r.outcome.StartedAt)
	}
	r.finished = true
}

// Outcome returns the finished outcome.
func (r *Recorder) Outcome() (*TestOutcome, error) {
	if !r.finished {
		return nil, ErrOutcomeNotFinished
	}
	if r.err != nil {
		return r.outcome, r.err
	}
	return r.outcome, nil
}

func (r *Recorder) top() *StepRecord {
	if len(r.open) == 0 {
		return nil
	}
	return r.open[len(r.open)-1]
}
