// Package scenario runs scenarios end to end: each run gets its own session manager and
// execution context, and its outcome is handed to the configured reporters.
package scenario

import (
	"context"

	"github.com/hairizuan-noorazman/steprunner/logger"
	"github.com/hairizuan-noorazman/steprunner/outcome"
	"github.com/hairizuan-noorazman/steprunner/session"
	"github.com/hairizuan-noorazman/steprunner/step"
	"github.com/pkg/errors"
)

// Scenario is a titled test body.
type Scenario struct {
	Title string
	Body  func(ec *step.Context) error
}

// Harness runs scenarios one at a time on the calling goroutine. A Harness holds no per-run
// state and may be shared by the goroutines of a Suite.
type Harness struct {
	factory     session.Factory
	interceptor *step.Interceptor
	sessionOpts []session.Option
	reporters   []Reporter
	logger      logger.Logger
}

// Option configures a Harness.
type Option func(*Harness)

// WithSessionOptions applies opts to the session manager of every run.
func WithSessionOptions(opts ...session.Option) Option {
	return func(h *Harness) {
		h.sessionOpts = append(h.sessionOpts, opts...)
	}
}

// WithReporters adds reporters receiving every finished outcome.
func WithReporters(rs ...Reporter) Option {
	return func(h *Harness) {
		h.reporters = append(h.reporters, rs...)
	}
}

// NewHarness creates a harness.
func NewHarness(factory session.Factory, interceptor *step.Interceptor, log logger.Logger, opts ...Option) *Harness {
	h := &Harness{
		factory:     factory,
		interceptor: interceptor,
		logger:      log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes sc and returns its outcome. The error is the first step failure, or the error
// the body returned outside any step. Every session opened by the run is closed before Run
// returns.
func (h *Harness) Run(ctx context.Context, sc Scenario) (*outcome.TestOutcome, error) {
	log := h.logger.WithField("scenario", sc.Title)
	sessions := session.NewManager(h.factory, log, h.sessionOpts...)
	defer sessions.CloseAll()

	ec := h.interceptor.Begin(ctx, sc.Title, sessions)
	bodyErr := runBody(ec, sc.Body)
	failure := ec.Done()

	out, err := ec.Outcome()
	if err != nil {
		return nil, err
	}
	h.report(ctx, out)

	if failure != nil {
		return out, failure
	}
	if bodyErr != nil {
		log.Error(ctx, "scenario body failed outside a step", map[string]interface{}{
			"error": bodyErr.Error(),
		})
	}
	return out, bodyErr
}

func runBody(ec *step.Context, body func(*step.Context) error) (err error) {
	if body == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic in scenario %q: %v", ec.Scenario().Title, r)
		}
	}()
	return body(ec)
}

func (h *Harness) report(ctx context.Context, out *outcome.TestOutcome) {
	for _, r := range h.reporters {
		if err := r.Report(ctx, out); err != nil {
			h.logger.Error(ctx, "failed to report outcome", map[string]interface{}{
				"scenario_id": out.ID.String(),
				"scenario":    out.Title,
				"error":       err.Error(),
			})
		}
	}
}
