package evidence

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/hairizuan-noorazman/steprunner/logger"
	"github.com/hairizuan-noorazman/steprunner/outcome"
	"github.com/hairizuan-noorazman/steprunner/session"
	"github.com/hairizuan-noorazman/steprunner/step"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeSessions(t *testing.T) (*session.Manager, *session.FakeHandle) {
	t.Helper()
	fake := session.NewFakeHandle()
	factory := session.NewStaticFactory(map[string]func() (session.Handle, error){
		session.TypeChromium: func() (session.Handle, error) { return fake, nil },
	})
	return session.NewManager(factory, logger.NewTestLogger()), fake
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "", want: ModeFailures},
		{in: "none", want: ModeNone},
		{in: " Failures ", want: ModeFailures},
		{in: "every-step", want: ModeEveryStep},
		{in: "always", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScreenshotHook_Modes(t *testing.T) {
	passed := outcome.Event{Kind: outcome.EventStepFinished, Description: "ok"}
	failed := outcome.Event{Kind: outcome.EventStepFailed, Description: "bad"}

	tests := []struct {
		name     string
		mode     Mode
		boundary step.Boundary
		ev       outcome.Event
		want     bool
	}{
		{"none ignores failures", ModeNone, step.BoundaryFinish, failed, false},
		{"failures on failure", ModeFailures, step.BoundaryFinish, failed, true},
		{"failures skips passing steps", ModeFailures, step.BoundaryFinish, passed, false},
		{"every step on success", ModeEveryStep, step.BoundaryFinish, passed, true},
		{"never at start", ModeEveryStep, step.BoundaryStart, passed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store, err := NewLocalStore(t.TempDir())
			require.NoError(t, err)
			sessions, _ := fakeSessions(t)
			browser, err := sessions.Get("chromium")
			require.NoError(t, err)
			require.NoError(t, browser.Get("https://example.test"))

			tt.ev.Scenario = outcome.ScenarioInfo{ID: uuid.New(), Title: "modes"}
			hook := NewScreenshotHook(store, tt.mode, logger.NewTestLogger())

			key, err := hook.CaptureEvidence(ctx, tt.boundary, tt.ev, browser)
			require.NoError(t, err)
			if !tt.want {
				assert.Empty(t, key)
				return
			}
			assert.True(t, strings.HasPrefix(key, tt.ev.Scenario.ID.String()+"/finish-"))
			exists, err := store.Exists(ctx, key)
			require.NoError(t, err)
			assert.True(t, exists)
		})
	}
}

func TestScreenshotHook_NoBrowserYet(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	sessions, fake := fakeSessions(t)
	browser, err := sessions.Get("chromium")
	require.NoError(t, err)

	hook := NewScreenshotHook(store, ModeEveryStep, logger.NewTestLogger())
	key, err := hook.CaptureEvidence(context.Background(), step.BoundaryFinish, outcome.Event{Kind: outcome.EventStepFinished}, browser)

	require.NoError(t, err)
	assert.Empty(t, key)
	assert.False(t, browser.IsInstantiated())
	assert.Zero(t, fake.Shots)
}

type brokenStore struct {
	Store
}

func (brokenStore) Put(ctx context.Context, key string, r io.Reader) error {
	return errors.New("bucket gone")
}

func TestScreenshotHook_InterceptorAttachesKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	sessions, fake := fakeSessions(t)
	browser, err := sessions.Get("chromium")
	require.NoError(t, err)

	hook := NewScreenshotHook(store, ModeFailures, logger.NewTestLogger())
	in := step.NewInterceptor(logger.NewTestLogger(), step.WithEvidenceHook(hook))
	ec := in.Begin(ctx, "checkout", sessions)

	ec.Step("open shop", func() error { return browser.Get("https://shop.test") })
	ec.Step("pay", func() error { return errors.New("card declined") })
	ec.Step("receipt", func() error { return nil })
	require.Error(t, ec.Done())

	out, err := ec.Outcome()
	require.NoError(t, err)
	assert.Empty(t, out.Records[0].EvidenceRef)
	require.NotEmpty(t, out.Records[1].EvidenceRef)
	assert.Empty(t, out.Records[2].EvidenceRef)
	assert.Equal(t, 1, fake.Shots)

	rc, err := store.Open(ctx, out.Records[1].EvidenceRef)
	require.NoError(t, err)
	defer rc.Close()
	img, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, fake.Image, img)
}

func TestScreenshotHook_StoreFailureKeepsResult(t *testing.T) {
	ctx := context.Background()
	sessions, _ := fakeSessions(t)
	browser, err := sessions.Get("chromium")
	require.NoError(t, err)

	log := logger.NewTestLogger()
	hook := NewScreenshotHook(brokenStore{}, ModeEveryStep, log)
	in := step.NewInterceptor(log, step.WithEvidenceHook(hook))
	ec := in.Begin(ctx, "broken store", sessions)

	ec.Step("open", func() error { return browser.Get("https://example.test") })
	require.NoError(t, ec.Done())

	out, err := ec.Outcome()
	require.NoError(t, err)
	assert.Equal(t, outcome.ResultSuccess, out.Records[0].Result)
	assert.Empty(t, out.Records[0].EvidenceRef)
	require.Len(t, log.EntriesAt("warn"), 1)
	assert.Contains(t, log.EntriesAt("warn")[0].Fields["error"], "bucket gone")
}
