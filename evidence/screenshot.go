package evidence

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hairizuan-noorazman/steprunner/logger"
	"github.com/hairizuan-noorazman/steprunner/outcome"
	"github.com/hairizuan-noorazman/steprunner/session"
	"github.com/hairizuan-noorazman/steprunner/step"
)

// Mode decides which steps get a screenshot.
type Mode string

const (
	ModeNone      Mode = "none"
	ModeFailures  Mode = "failures"
	ModeEveryStep Mode = "every-step"
)

// ParseMode parses a configured capture mode. The empty string means ModeFailures.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeNone:
		return ModeNone, nil
	case ModeFailures, "":
		return ModeFailures, nil
	case ModeEveryStep:
		return ModeEveryStep, nil
	default:
		return "", fmt.Errorf("unknown evidence mode %q (want none, failures or every-step)", s)
	}
}

// ScreenshotHook takes a screenshot of the current session when a step finishes and stores it.
type ScreenshotHook struct {
	store  Store
	mode   Mode
	logger logger.Logger
}

var _ step.EvidenceHook = (*ScreenshotHook)(nil)

// NewScreenshotHook creates a hook writing to store.
func NewScreenshotHook(store Store, mode Mode, log logger.Logger) *ScreenshotHook {
	return &ScreenshotHook{
		store:  store,
		mode:   mode,
		logger: log,
	}
}

// CaptureEvidence stores a screenshot and returns its key. It returns an empty key when the
// mode does not ask for one or when the session cannot take screenshots.
func (h *ScreenshotHook) CaptureEvidence(ctx context.Context, boundary step.Boundary, ev outcome.Event, current *session.Proxy) (string, error) {
	if !h.wants(boundary, ev) {
		return "", nil
	}

	img, err := current.CaptureEvidence()
	if err != nil {
		return "", fmt.Errorf("failed to take screenshot: %w", err)
	}
	if len(img) == 0 {
		return "", nil
	}

	key := Key(ev.Scenario.ID, boundary)
	if err := h.store.Put(ctx, key, bytes.NewReader(img)); err != nil {
		return "", fmt.Errorf("failed to store screenshot: %w", err)
	}

	h.logger.Debug(ctx, "screenshot stored", map[string]interface{}{
		"scenario_id": ev.Scenario.ID.String(),
		"step":        ev.Description,
		"session":     current.Name(),
		"key":         key,
		"size":        len(img),
	})
	return key, nil
}

func (h *ScreenshotHook) wants(boundary step.Boundary, ev outcome.Event) bool {
	if boundary != step.BoundaryFinish {
		return false
	}
	switch h.mode {
	case ModeEveryStep:
		return true
	case ModeFailures:
		return ev.Kind == outcome.EventStepFailed
	default:
		return false
	}
}

// Key returns a fresh key for a screenshot of scenarioID.
func Key(scenarioID uuid.UUID, boundary step.Boundary) string {
	return fmt.Sprintf("%s/%s-%s.png", scenarioID, boundary, uuid.New())
}
