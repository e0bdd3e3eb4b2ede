package step

import (
	"context"

	"github.com/hairizuan-noorazman/steprunner/outcome"
	"github.com/hairizuan-noorazman/steprunner/session"
)

// State is the execution state of a scenario run.
type State int

const (
	// Running means no step has failed yet.
	Running State = iota
	// Failed means a step failed; every later step is skipped.
	Failed
)

// String returns the state name.
func (s State) String() string {
	if s == Failed {
		return "FAILED"
	}
	return "RUNNING"
}

// Context is the execution context of one scenario run. It carries the execution state, the
// open groups, the scenario's sessions and its recorder. A Context belongs to the goroutine
// running the scenario.
type Context struct {
	ctx         context.Context
	info        outcome.ScenarioInfo
	interceptor *Interceptor
	sessions    *session.Manager
	recorder    *outcome.Recorder
	listeners   []Listener

	state    State
	groups   []string
	failure  *Failure
	reported bool
	finished bool
}

// Ctx returns the context.Context the scenario runs under.
func (ec *Context) Ctx() context.Context {
	return ec.ctx
}

// Scenario returns the scenario metadata.
func (ec *Context) Scenario() outcome.ScenarioInfo {
	return ec.info
}

// State returns the current execution state.
func (ec *Context) State() State {
	return ec.state
}

// Sessions returns the scenario's session manager, or nil when it runs without a browser.
func (ec *Context) Sessions() *session.Manager {
	return ec.sessions
}

// OpenGroups returns the descriptions of the groups currently open, outermost first.
func (ec *Context) OpenGroups() []string {
	return append([]string(nil), ec.groups...)
}

// Failure returns the first step failure, or nil.
func (ec *Context) Failure() *Failure {
	return ec.failure
}

// Step runs body as a reported step.
func (ec *Context) Step(description string, body func() error) {
	ec.interceptor.Invoke(ec, Step(description), body)
}

// Group runs body as a reported group of steps. Errors returned by body that were not
// already recorded for one of its steps are returned.
func (ec *Context) Group(description string, body func() error) error {
	return ec.interceptor.Invoke(ec, Group(description), body)
}

// Pending records a step that is not implemented yet.
func (ec *Context) Pending(description string) {
	ec.interceptor.Invoke(ec, Step(description).Pending(), nil)
}

// Ignored records a step that is deliberately disabled.
func (ec *Context) Ignored(description string) {
	ec.interceptor.Invoke(ec, Step(description).Ignored(), nil)
}

// Done finishes the scenario: listeners are notified, then the first step failure, if any, is
// returned. The failure is returned only once; later calls return nil.
func (ec *Context) Done() error {
	if !ec.finished {
		ec.finished = true
		at := ec.interceptor.now()
		for _, l := range ec.listeners {
			l.ScenarioFinished(ec.ctx, ec.info, at)
		}
	}
	if ec.failure != nil && !ec.reported {
		ec.reported = true
		return ec.failure
	}
	return nil
}

// Outcome returns the recorded outcome once Done has been called.
func (ec *Context) Outcome() (*outcome.TestOutcome, error) {
	return ec.recorder.Outcome()
}

func (ec *Context) emit(ev outcome.Event) {
	ev.Scenario = ec.info
	if ev.At.IsZero() {
		ev.At = ec.interceptor.now()
	}
	for _, l := range ec.listeners {
		l.StepEvent(ec.ctx, ev)
	}
}

func (ec *Context) fail(description string, cause error) {
	ec.state = Failed
	if ec.failure == nil {
		ec.failure = &Failure{Description: description, Cause: cause}
	}
	if ec.sessions != nil {
		ec.sessions.SuspendCalls()
	}
}

// currentSession returns the current session without creating one.
func (ec *Context) currentSession() *session.Proxy {
	if ec.sessions == nil {
		return nil
	}
	p, ok := ec.sessions.Current()
	if !ok {
		return nil
	}
	return p
}

// attributed reports whether err is the failure already recorded for a step.
func (ec *Context) attributed(err error) bool {
	return ec.failure != nil && isError(err, ec.failure)
}
