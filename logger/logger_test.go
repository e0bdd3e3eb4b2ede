package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestLogger_DerivedLoggersShareEntries(t *testing.T) {
	log := NewTestLogger()
	child := log.WithField("scenario", "checkout")

	child.Warn(context.Background(), "close failed", map[string]interface{}{"session": "chromium"})
	log.Info(context.Background(), "done", nil)

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "warn", entries[0].Level)
	assert.Equal(t, "checkout", entries[0].Fields["scenario"])
	assert.Equal(t, "chromium", entries[0].Fields["session"])
	assert.Len(t, log.EntriesAt("warn"), 1)

	log.Reset()
	assert.Empty(t, log.Entries())
}

func TestLogrusLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogrusLoggerWithOutput("debug", "json", &buf)

	log.WithField("scenario", "login").Info(context.Background(), "step finished", map[string]interface{}{
		"result": "SUCCESS",
	})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "step finished", line["msg"])
	assert.Equal(t, "login", line["scenario"])
	assert.Equal(t, "SUCCESS", line["result"])
}

func TestLogrusLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogrusLoggerWithOutput("not-a-level", "text", &buf)

	log.Debug(context.Background(), "hidden", nil)
	assert.Empty(t, buf.String())

	log.Info(context.Background(), "visible", nil)
	assert.Contains(t, buf.String(), "visible")
}
