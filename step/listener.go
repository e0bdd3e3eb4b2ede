package step

import (
	"context"
	"sync"
	"time"

	"github.com/hairizuan-noorazman/steprunner/logger"
	"github.com/hairizuan-noorazman/steprunner/outcome"
)

// Listener receives the lifecycle events of scenarios. Events of one scenario arrive in call
// order on the scenario's goroutine; a listener registered in a shared Listeners list may
// receive events of several scenarios concurrently.
type Listener interface {
	ScenarioStarted(ctx context.Context, info outcome.ScenarioInfo)
	StepEvent(ctx context.Context, ev outcome.Event)
	ScenarioFinished(ctx context.Context, info outcome.ScenarioInfo, at time.Time)
}

// Listeners is a list of listeners shared by every scenario of a process. Registration is
// rare, so writers copy the list and readers take a snapshot without holding the lock.
type Listeners struct {
	mu   sync.Mutex
	list []Listener
}

// NewListeners creates an empty listener list.
func NewListeners() *Listeners {
	return &Listeners{}
}

// Register adds l to the list.
func (ls *Listeners) Register(l Listener) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	next := make([]Listener, len(ls.list), len(ls.list)+1)
	copy(next, ls.list)
	ls.list = append(next, l)
}

// Unregister removes l from the list.
func (ls *Listeners) Unregister(l Listener) {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	next := make([]Listener, 0, len(ls.list))
	for _, existing := range ls.list {
		if existing != l {
			next = append(next, existing)
		}
	}
	ls.list = next
}

// Snapshot returns the listeners registered right now.
func (ls *Listeners) Snapshot() []Listener {
	if ls == nil {
		return nil
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.list
}

// LoggingListener logs every lifecycle event.
type LoggingListener struct {
	logger logger.Logger
}

// NewLoggingListener creates a listener writing to log.
func NewLoggingListener(log logger.Logger) *LoggingListener {
	return &LoggingListener{logger: log}
}

// ScenarioStarted logs the scenario start.
func (l *LoggingListener) ScenarioStarted(ctx context.Context, info outcome.ScenarioInfo) {
	l.logger.Info(ctx, "scenario started", map[string]interface{}{
		"scenario_id": info.ID.String(),
		"scenario":    info.Title,
	})
}

// StepEvent logs terminal events at info level, or warn for failures.
func (l *LoggingListener) StepEvent(ctx context.Context, ev outcome.Event) {
	fields := map[string]interface{}{
		"scenario_id": ev.Scenario.ID.String(),
		"scenario":    ev.Scenario.Title,
		"step":        ev.Description,
		"event":       string(ev.Kind),
	}
	if ev.Kind.IsStart() {
		l.logger.Debug(ctx, "step started", fields)
		return
	}
	if ev.Result != "" {
		fields["result"] = string(ev.Result)
	}
	if ev.EvidenceRef != "" {
		fields["evidence"] = ev.EvidenceRef
	}
	if ev.Err != nil {
		fields["error"] = ev.Err.Error()
		l.logger.Warn(ctx, "step failed", fields)
		return
	}
	l.logger.Info(ctx, "step finished", fields)
}

// ScenarioFinished logs the scenario end.
func (l *LoggingListener) ScenarioFinished(ctx context.Context, info outcome.ScenarioInfo, at time.Time) {
	l.logger.Info(ctx, "scenario finished", map[string]interface{}{
		"scenario_id": info.ID.String(),
		"scenario":    info.Title,
		"duration_ms": at.Sub(info.StartedAt).Milliseconds(),
	})
}
