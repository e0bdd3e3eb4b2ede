package step

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hairizuan-noorazman/steprunner/logger"
	"github.com/hairizuan-noorazman/steprunner/outcome"
	"github.com/hairizuan-noorazman/steprunner/session"
	"github.com/pkg/errors"
)

// Boundary says when evidence is requested.
type Boundary string

const (
	BoundaryStart  Boundary = "start"
	BoundaryFinish Boundary = "finish"
)

// EvidenceHook captures evidence, such as a screenshot, around a step whose body runs. The
// returned reference is attached to the step record.
type EvidenceHook interface {
	CaptureEvidence(ctx context.Context, boundary Boundary, ev outcome.Event, current *session.Proxy) (string, error)
}

// Interceptor turns step library calls into lifecycle events and enforces the fail-fast
// policy. One Interceptor may serve many scenarios; all per-run state lives in Context.
type Interceptor struct {
	listeners *Listeners
	evidence  EvidenceHook
	logger    logger.Logger
	now       func() time.Time
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithListeners makes every scenario notify the listeners registered in ls.
func WithListeners(ls *Listeners) Option {
	return func(in *Interceptor) {
		in.listeners = ls
	}
}

// WithEvidenceHook sets the hook asked for evidence around executed steps.
func WithEvidenceHook(h EvidenceHook) Option {
	return func(in *Interceptor) {
		in.evidence = h
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(in *Interceptor) {
		in.now = now
	}
}

// NewInterceptor creates an interceptor.
func NewInterceptor(log logger.Logger, opts ...Option) *Interceptor {
	in := &Interceptor{
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Begin starts a new scenario run in the RUNNING state. sessions may be nil for scenarios
// that never touch a browser.
func (in *Interceptor) Begin(ctx context.Context, title string, sessions *session.Manager) *Context {
	recorder := outcome.NewRecorder()
	shared := in.listeners.Snapshot()
	listeners := make([]Listener, 0, len(shared)+1)
	listeners = append(listeners, recorder)
	listeners = append(listeners, shared...)

	ec := &Context{
		ctx: ctx,
		info: outcome.ScenarioInfo{
			ID:        uuid.New(),
			Title:     title,
			StartedAt: in.now(),
		},
		interceptor: in,
		sessions:    sessions,
		recorder:    recorder,
		listeners:   listeners,
		state:       Running,
	}
	if sessions != nil {
		sessions.ResumeCalls()
	}
	for _, l := range listeners {
		l.ScenarioStarted(ctx, ec.info)
	}
	return ec
}

// Invoke runs body according to tag. Helpers run untouched and their error is returned.
// Groups return body errors not already recorded for one of their steps. Steps always
// return nil: their failure is recorded and surfaced by Context.Done.
func (in *Interceptor) Invoke(ec *Context, tag Tag, body func() error) error {
	switch tag.Kind {
	case KindGroup:
		return in.runGroup(ec, tag, body)
	case KindStep:
		in.runStep(ec, tag, body)
		return nil
	default:
		if body == nil {
			return nil
		}
		return body()
	}
}

func (in *Interceptor) runGroup(ec *Context, tag Tag, body func() error) (err error) {
	ec.emit(outcome.Event{Kind: outcome.EventGroupStarted, Description: tag.Description})
	ec.groups = append(ec.groups, tag.Description)

	closed := false
	closeGroup := func() {
		if closed {
			return
		}
		closed = true
		ec.groups = ec.groups[:len(ec.groups)-1]
		ec.emit(outcome.Event{Kind: outcome.EventGroupFinished, Description: tag.Description})
	}
	// A panicking body still closes the group before the panic continues.
	defer closeGroup()

	if body != nil {
		err = body()
	}
	closeGroup()

	if err != nil && ec.attributed(err) {
		return nil
	}
	return err
}

func (in *Interceptor) runStep(ec *Context, tag Tag, body func() error) {
	ec.emit(outcome.Event{Kind: outcome.EventStepStarted, Description: tag.Description})

	skip := func(result outcome.Result) {
		ec.emit(outcome.Event{Kind: outcome.EventStepSkipped, Description: tag.Description, Result: result})
	}
	switch {
	case tag.Mode == ModePending:
		skip(outcome.ResultPending)
		return
	case tag.Mode == ModeIgnored:
		skip(outcome.ResultIgnored)
		return
	case ec.state == Failed:
		skip(outcome.ResultSkipped)
		return
	}

	startRef := in.capture(ec, BoundaryStart, outcome.Event{Kind: outcome.EventStepStarted, Description: tag.Description})

	err := in.call(tag.Description, body)
	if err == nil {
		ev := outcome.Event{Kind: outcome.EventStepFinished, Description: tag.Description, Result: outcome.ResultSuccess}
		ev.EvidenceRef = firstNonEmpty(in.capture(ec, BoundaryFinish, ev), startRef)
		ec.emit(ev)
		return
	}

	ev := outcome.Event{Kind: outcome.EventStepFailed, Description: tag.Description, Result: outcome.ResultFailure, Err: err}
	// Evidence is taken before browser calls are suspended.
	ev.EvidenceRef = firstNonEmpty(in.capture(ec, BoundaryFinish, ev), startRef)
	ec.fail(tag.Description, err)
	ec.emit(ev)
}

// call runs body, converting a panic into an error.
func (in *Interceptor) call(description string, body func() error) (err error) {
	if body == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = recovered(description, r)
		}
	}()
	return body()
}

func (in *Interceptor) capture(ec *Context, boundary Boundary, ev outcome.Event) string {
	if in.evidence == nil {
		return ""
	}
	current := ec.currentSession()
	if current == nil {
		return ""
	}
	ev.Scenario = ec.info
	ref, err := in.evidence.CaptureEvidence(ec.ctx, boundary, ev, current)
	if err != nil {
		in.logger.Warn(ec.ctx, "failed to capture evidence", map[string]interface{}{
			"scenario": ec.info.Title,
			"step":     ev.Description,
			"boundary": string(boundary),
			"error":    err.Error(),
		})
		return ""
	}
	return ref
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func isError(err error, target error) bool {
	if errors.Is(err, target) {
		return true
	}
	var f *Failure
	if errors.As(target, &f) {
		return errors.Is(err, f.Cause)
	}
	return false
}
