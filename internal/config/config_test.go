package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/username/attendance-tracker/internal/attendance"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: sqlite
  path: /tmp/attendance.db
phases:
  - name: Term 1
    start: "2026-01-05"
    end: "2026-03-27"
rules:
  target_percent: 80
  warning_percent: 60
reminder:
  daily_time: "08:15"
  weekdays: [mon, wed, fri]
log:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.GetBackend())
	assert.Equal(t, "/tmp/attendance.db", cfg.Storage.GetPath())
	assert.Equal(t, []attendance.Phase{{Name: "Term 1", Start: "2026-01-05", End: "2026-03-27"}}, cfg.GetPhases())
	assert.Equal(t, attendance.Rules{TargetPercent: 80, WarningPercent: 60}, cfg.GetRules())

	h, m := cfg.Reminder.GetDailyTime()
	assert.Equal(t, 8, h)
	assert.Equal(t, 15, m)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday, time.Friday}, cfg.Reminder.GetWeekdays())
	assert.Equal(t, zapcore.DebugLevel, cfg.Log.GetLevel())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.Storage.GetBackend())
	assert.Equal(t, attendance.DefaultPhases(), cfg.GetPhases())
	assert.Equal(t, attendance.DefaultRules(), cfg.GetRules())

	h, m := cfg.Reminder.GetDailyTime()
	assert.Equal(t, 9, h)
	assert.Equal(t, 30, m)
	assert.Len(t, cfg.Reminder.GetWeekdays(), 6)
	assert.Equal(t, time.Minute, cfg.Reminder.GetCheckInterval())
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ATTENDANCE_STORAGE_BACKEND", "sqlite")
	t.Setenv("ATTENDANCE_LOG_FILE", "$HOME/attendance.log")
	t.Setenv("HOME", "/home/asha")

	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Storage.GetBackend())
	assert.Equal(t, "/home/asha/attendance.log", cfg.Log.File)
}

func TestLoad_RejectsZeroWarning(t *testing.T) {
	t.Setenv("ATTENDANCE_RULES_WARNING_PERCENT", "0")

	_, err := Load(writeConfig(t, "{}\n"))
	assert.Error(t, err)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, true},
		{"zero target", func(c *Config) { c.Rules.TargetPercent = 0 }, true},
		{"zero warning", func(c *Config) { c.Rules.WarningPercent = 0 }, true},
		{"negative warning", func(c *Config) { c.Rules.WarningPercent = -5 }, true},
		{"warning above target", func(c *Config) { c.Rules.WarningPercent = 90 }, true},
		{"bad daily time", func(c *Config) { c.Reminder.DailyTime = "25:00" }, true},
		{"bad weekday", func(c *Config) { c.Reminder.Weekdays = []string{"funday"} }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"phase missing name", func(c *Config) {
			c.Phases = []attendance.Phase{{Start: "2026-01-01", End: "2026-01-31"}}
		}, true},
		{"phase bad date", func(c *Config) {
			c.Phases = []attendance.Phase{{Name: "X", Start: "2026-1-1", End: "2026-01-31"}}
		}, true},
		{"phase reversed", func(c *Config) {
			c.Phases = []attendance.Phase{{Name: "X", Start: "2026-02-01", End: "2026-01-31"}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, "{}\n"))
			require.NoError(t, err)
			tt.modify(cfg)
			err = cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetDailyTime_Fallback(t *testing.T) {
	tests := []struct {
		value    string
		wantHour int
		wantMin  int
	}{
		{"", 9, 30},
		{"7:05", 7, 5},
		{"07:05", 7, 5},
		{"23:59", 23, 59},
		{"noon", 9, 30},
	}

	for _, tt := range tests {
		c := ReminderConfig{DailyTime: tt.value}
		h, m := c.GetDailyTime()
		if h != tt.wantHour || m != tt.wantMin {
			t.Errorf("GetDailyTime(%q) = %d:%d, want %d:%d", tt.value, h, m, tt.wantHour, tt.wantMin)
		}
	}
}

func TestStorageGetPath_Default(t *testing.T) {
	t.Setenv("HOME", "/home/asha")

	file := StorageConfig{}
	assert.Equal(t, filepath.Join("/home/asha", ".attendance-tracker", "data"), file.GetPath())

	sqlite := StorageConfig{Backend: "sqlite"}
	assert.Equal(t, filepath.Join("/home/asha", ".attendance-tracker", "attendance.db"), sqlite.GetPath())
}
