package outcome

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventClock struct {
	now time.Time
}

func (c *eventClock) event(kind EventKind, desc string, result Result) Event {
	c.now = c.now.Add(10 * time.Millisecond)
	return Event{Kind: kind, Description: desc, Result: result, At: c.now}
}

func TestRecorder_FlatScenario(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := &eventClock{now: start}
	rec := NewRecorder()

	rec.ScenarioStarted(ctx, ScenarioInfo{Title: "checkout", StartedAt: start})
	rec.StepEvent(ctx, clock.event(EventStepStarted, "login", ""))
	rec.StepEvent(ctx, clock.event(EventStepFinished, "login", ResultSuccess))
	rec.StepEvent(ctx, clock.event(EventStepStarted, "click submit", ""))
	failed := clock.event(EventStepFailed, "click submit", ResultFailure)
	failed.Err = errors.New("button not found")
	failed.EvidenceRef = "evidence/1.png"
	rec.StepEvent(ctx, failed)
	rec.StepEvent(ctx, clock.event(EventStepStarted, "view result", ""))
	rec.StepEvent(ctx, clock.event(EventStepSkipped, "view result", ResultSkipped))

	_, err := rec.Outcome()
	assert.ErrorIs(t, err, ErrOutcomeNotFinished)

	rec.ScenarioFinished(ctx, ScenarioInfo{}, clock.now)
	out, err := rec.Outcome()
	require.NoError(t, err)

	require.Len(t, out.Records, 3)
	assert.Equal(t, "checkout", out.Title)
	assert.Equal(t, ResultSuccess, out.Records[0].Result)
	assert.Equal(t, 10*time.Millisecond, out.Records[0].Duration)
	assert.Equal(t, ResultFailure, out.Records[1].Result)
	assert.Equal(t, "button not found", out.Records[1].ErrorMessage)
	assert.Equal(t, "evidence/1.png", out.Records[1].EvidenceRef)
	assert.Equal(t, ResultSkipped, out.Records[2].Result)
	assert.Equal(t, ResultFailure, out.Result())
	assert.Equal(t, 60*time.Millisecond, out.Duration)
	assert.Equal(t, out.Records[1], out.FirstFailure())
	assert.Equal(t, map[Result]int{ResultSuccess: 1, ResultFailure: 1, ResultSkipped: 1}, out.Counts())
}

func TestRecorder_NestedGroups(t *testing.T) {
	ctx := context.Background()
	clock := &eventClock{now: time.Now()}
	rec := NewRecorder()

	rec.ScenarioStarted(ctx, ScenarioInfo{Title: "groups", StartedAt: clock.now})
	rec.StepEvent(ctx, clock.event(EventGroupStarted, "sign up", ""))
	rec.StepEvent(ctx, clock.event(EventStepStarted, "fill form", ""))
	rec.StepEvent(ctx, clock.event(EventStepFinished, "fill form", ResultSuccess))
	rec.StepEvent(ctx, clock.event(EventGroupStarted, "verify email", ""))
	rec.StepEvent(ctx, clock.event(EventStepStarted, "open inbox", ""))
	rec.StepEvent(ctx, clock.event(EventStepSkipped, "open inbox", ResultPending))
	rec.StepEvent(ctx, clock.event(EventGroupFinished, "verify email", ""))
	rec.StepEvent(ctx, clock.event(EventGroupFinished, "sign up", ""))
	rec.StepEvent(ctx, clock.event(EventGroupStarted, "empty", ""))
	rec.StepEvent(ctx, clock.event(EventGroupFinished, "empty", ""))
	rec.ScenarioFinished(ctx, ScenarioInfo{}, clock.now)

	out, err := rec.Outcome()
	require.NoError(t, err)
	require.Len(t, out.Records, 2)

	signUp := out.Records[0]
	assert.True(t, signUp.Group)
	require.Len(t, signUp.Children, 2)
	assert.Equal(t, ResultPending, signUp.Children[1].Result)
	assert.Equal(t, ResultPending, signUp.Result)
	assert.Equal(t, "open inbox", signUp.Children[1].Children[0].Description)

	empty := out.Records[1]
	assert.True(t, empty.Group)
	assert.Empty(t, empty.Children)
	assert.Equal(t, ResultSuccess, empty.Result)

	assert.Equal(t, ResultPending, out.Result())
	assert.Len(t, out.Steps(), 2)
}

func TestRecorder_StepWithNestedStepsTakesWorstResult(t *testing.T) {
	ctx := context.Background()
	clock := &eventClock{now: time.Now()}
	rec := NewRecorder()

	rec.StepEvent(ctx, clock.event(EventStepStarted, "outer", ""))
	rec.StepEvent(ctx, clock.event(EventStepStarted, "inner", ""))
	rec.StepEvent(ctx, clock.event(EventStepFailed, "inner", ResultFailure))
	rec.StepEvent(ctx, clock.event(EventStepFinished, "outer", ResultSuccess))
	rec.ScenarioFinished(ctx, ScenarioInfo{}, clock.now)

	out, err := rec.Outcome()
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, ResultFailure, out.Records[0].Result)
	assert.Equal(t, ResultSuccess, out.Records[0].OwnResult())
	assert.Equal(t, out.Records[0].Children[0], out.FirstFailure())
	assert.Equal(t, map[Result]int{ResultSuccess: 1, ResultFailure: 1}, out.Counts())
}

func TestRecorder_OuterStepFailsAfterPassingInnerStep(t *testing.T) {
	ctx := context.Background()
	clock := &eventClock{now: time.Now()}
	rec := NewRecorder()

	rec.StepEvent(ctx, clock.event(EventStepStarted, "outer", ""))
	rec.StepEvent(ctx, clock.event(EventStepStarted, "inner", ""))
	rec.StepEvent(ctx, clock.event(EventStepFinished, "inner", ResultSuccess))
	failed := clock.event(EventStepFailed, "outer", ResultFailure)
	failed.Err = errors.New("outer broke")
	rec.StepEvent(ctx, failed)
	rec.ScenarioFinished(ctx, ScenarioInfo{}, clock.now)

	out, err := rec.Outcome()
	require.NoError(t, err)
	require.Len(t, out.Records, 1)

	outer := out.Records[0]
	assert.Equal(t, ResultFailure, out.Result())
	assert.Equal(t, ResultFailure, outer.Result)
	assert.Equal(t, []*StepRecord{outer, outer.Children[0]}, out.Steps())
	assert.Equal(t, map[Result]int{ResultSuccess: 1, ResultFailure: 1}, out.Counts())
	require.NotNil(t, out.FirstFailure())
	assert.Equal(t, "outer", out.FirstFailure().Description)
	assert.Equal(t, "outer broke", out.FirstFailure().ErrorMessage)
}

func TestRecorder_ScenarioFinishedClosesOpenRecords(t *testing.T) {
	ctx := context.Background()
	clock := &eventClock{now: time.Now()}
	rec := NewRecorder()

	rec.ScenarioStarted(ctx, ScenarioInfo{Title: "aborted", StartedAt: clock.now})
	rec.StepEvent(ctx, clock.event(EventGroupStarted, "group", ""))
	rec.StepEvent(ctx, clock.event(EventStepStarted, "dangling", ""))
	rec.ScenarioFinished(ctx, ScenarioInfo{}, clock.now)

	out, err := rec.Outcome()
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, ResultSkipped, out.Records[0].Children[0].Result)
	assert.Equal(t, ResultSkipped, out.Records[0].Result)
}

func TestRecorder_TerminalWithoutStart(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder()

	rec.ScenarioStarted(ctx, ScenarioInfo{Title: "broken"})
	rec.StepEvent(ctx, Event{Kind: EventStepFinished, Result: ResultSuccess})
	rec.ScenarioFinished(ctx, ScenarioInfo{}, time.Now())

	_, err := rec.Outcome()
	assert.ErrorIs(t, err, ErrNoOpenRecord)
}
