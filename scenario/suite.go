package scenario

import (
	"context"

	"github.com/hairizuan-noorazman/steprunner/logger"
	"github.com/hairizuan-noorazman/steprunner/outcome"
	"golang.org/x/sync/errgroup"
)

// RunResult is the result of one scenario of a suite.
type RunResult struct {
	Title   string
	Outcome *outcome.TestOutcome
	Err     error
}

// Passed reports whether the scenario ran to completion without a failure.
func (r RunResult) Passed() bool {
	return r.Err == nil && r.Outcome != nil && r.Outcome.Result() != outcome.ResultFailure
}

// Suite runs scenarios concurrently on a bounded number of goroutines. Each scenario runs on
// one goroutine with its own sessions and execution context.
type Suite struct {
	harness     *Harness
	concurrency int
	logger      logger.Logger
}

// NewSuite creates a suite running at most concurrency scenarios at a time.
func NewSuite(h *Harness, concurrency int, log logger.Logger) *Suite {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Suite{
		harness:     h,
		concurrency: concurrency,
		logger:      log,
	}
}

// Run runs every scenario and returns their results in input order. A failing scenario does
// not stop the others. Scenarios not started before ctx is cancelled get ctx's error.
func (s *Suite) Run(ctx context.Context, scenarios []Scenario) ([]RunResult, error) {
	s.logger.Info(ctx, "starting suite", map[string]interface{}{
		"scenarios":   len(scenarios),
		"concurrency": s.concurrency,
	})

	results := make([]RunResult, len(scenarios))
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			results[i].Title = sc.Title
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			// Failures stay in the result so the other scenarios keep running.
			results[i].Outcome, results[i].Err = s.harness.Run(ctx, sc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	passed := 0
	for _, r := range results {
		if r.Passed() {
			passed++
		}
	}
	s.logger.Info(ctx, "suite finished", map[string]interface{}{
		"scenarios": len(scenarios),
		"passed":    passed,
		"failed":    len(scenarios) - passed,
	})
	return results, ctx.Err()
}
