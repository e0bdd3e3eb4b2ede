package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hairizuan-noorazman/steprunner/logger"
	"github.com/hairizuan-noorazman/steprunner/outcome"
	"github.com/hairizuan-noorazman/steprunner/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuite_RunsScenariosInIsolation(t *testing.T) {
	b := &browsers{}
	h := newTestHarness(b)
	suite := NewSuite(h, 4, logger.NewTestLogger())

	var scenarios []Scenario
	for i := 0; i < 10; i++ {
		url := fmt.Sprintf("https://example.test/%d", i)
		body := visit(url)
		if i%3 == 0 {
			body = func(ec *step.Context) error {
				ec.Step("broken", func() error { return errors.New("boom") })
				ec.Step("after", func() error { return nil })
				return nil
			}
		}
		scenarios = append(scenarios, Scenario{Title: fmt.Sprintf("scenario %d", i), Body: body})
	}

	results, err := suite.Run(context.Background(), scenarios)
	require.NoError(t, err)
	require.Len(t, results, 10)

	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("scenario %d", i), r.Title)
		require.NotNil(t, r.Outcome)
		if i%3 == 0 {
			assert.False(t, r.Passed(), r.Title)
			assert.Equal(t, []outcome.Result{outcome.ResultFailure, outcome.ResultSkipped}, []outcome.Result{
				r.Outcome.Records[0].Result,
				r.Outcome.Records[1].Result,
			})
			continue
		}
		// A failure elsewhere never leaks into this scenario.
		assert.True(t, r.Passed(), r.Title)
		assert.Equal(t, outcome.ResultSuccess, r.Outcome.Result())
	}

	for _, handle := range b.created() {
		assert.Len(t, handle.Visited, 1)
		assert.Equal(t, 1, handle.Quits)
	}
	assert.Len(t, b.created(), 6)
}

func TestSuite_BoundsConcurrency(t *testing.T) {
	var running, peak int32
	body := func(ec *step.Context) error {
		ec.Step("work", func() error {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		})
		return nil
	}

	scenarios := make([]Scenario, 12)
	for i := range scenarios {
		scenarios[i] = Scenario{Title: fmt.Sprintf("s%d", i), Body: body}
	}

	suite := NewSuite(newTestHarness(&browsers{}), 3, logger.NewTestLogger())
	results, err := suite.Run(context.Background(), scenarios)

	require.NoError(t, err)
	assert.Len(t, results, 12)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&peak), int32(1))
}

func TestSuite_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := int32(0)
	count := func(ec *step.Context) error {
		atomic.AddInt32(&ran, 1)
		return nil
	}
	scenarios := []Scenario{
		{Title: "a", Body: count},
		{Title: "b", Body: count},
	}

	suite := NewSuite(newTestHarness(&browsers{}), 0, logger.NewTestLogger())
	results, err := suite.Run(ctx, scenarios)

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Nil(t, r.Outcome)
		assert.False(t, r.Passed())
	}
	assert.Zero(t, atomic.LoadInt32(&ran))
}
