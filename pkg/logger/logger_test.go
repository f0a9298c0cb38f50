package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownSettings(t *testing.T) {
	_, err := New(Config{Level: "loud", Format: "json"})
	assert.Error(t, err)

	_, err = New(Config{Level: "info", Format: "yaml"})
	assert.Error(t, err)
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "INFO", Format: "json", Output: &buf})
	require.NoError(t, err)

	log.Named("geofence").WithEntity("uav-1").Info("entered area", String("area", "alpha"))
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "geofence", entry["logger"])
	assert.Equal(t, "entered area", entry["msg"])
	assert.Equal(t, "uav-1", entry["entity_id"])
	assert.Equal(t, "alpha", entry["area"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "warn", Format: "json", Output: &buf})
	require.NoError(t, err)

	log.Info("dropped")
	log.Debug("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestNop(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.Named("x").WithError(assert.AnError).Error("ignored")
	})
}
