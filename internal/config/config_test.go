package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Engine.GracePeriodMinutes)
	assert.Equal(t, 30*time.Minute, cfg.Engine.GracePeriod())
	assert.Equal(t, 2*time.Hour, cfg.Engine.FollowupOffset())
	assert.Equal(t, 15*time.Minute, cfg.Engine.SnoozeOffset())
	assert.Equal(t, 23, cfg.Engine.NightCutoffHour)
	assert.Equal(t, 8, cfg.Engine.MorningHour)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
engine:
  grace_period_minutes: 45
  snooze_minutes: 10
storage:
  path: /tmp/test-reminders.db
log:
  level: debug
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Engine.GracePeriodMinutes)
	assert.Equal(t, 10, cfg.Engine.SnoozeMinutes)
	assert.Equal(t, 2, cfg.Engine.FollowupOffsetHours, "unset values keep defaults")
	assert.Equal(t, "/tmp/test-reminders.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
engine:
  morning_hour: 13
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
