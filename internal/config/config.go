package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/username/attendance-tracker/internal/attendance"
	"github.com/username/attendance-tracker/internal/storage"
)

const (
	envPrefix = "ATTENDANCE"
	appDir    = ".attendance-tracker"
)

// Config represents application configuration
type Config struct {
	Storage  StorageConfig      `mapstructure:"storage"`
	Phases   []attendance.Phase `mapstructure:"phases" validate:"dive"`
	Rules    RulesConfig        `mapstructure:"rules"`
	Reminder ReminderConfig     `mapstructure:"reminder"`
	Log      LogConfig          `mapstructure:"log"`
}

// StorageConfig selects where the attendance record lives
type StorageConfig struct {
	Backend      string `mapstructure:"backend" validate:"omitempty,oneof=file sqlite memory"`
	Path         string `mapstructure:"path"`
	HolidaysFile string `mapstructure:"holidays_file"` // imported with `holiday import` when no file argument is given
}

// RulesConfig represents attendance thresholds in percent
type RulesConfig struct {
	TargetPercent  float64 `mapstructure:"target_percent" validate:"gt=0,lte=100"`
	WarningPercent float64 `mapstructure:"warning_percent" validate:"gt=0,lte=100"`
}

// ReminderConfig represents the daily reminder daemon configuration
type ReminderConfig struct {
	DailyTime     string   `mapstructure:"daily_time"` // HH:MM, local time
	Weekdays      []string `mapstructure:"weekdays"`
	CheckInterval string   `mapstructure:"check_interval"`
	SystemTray    bool     `mapstructure:"system_tray"` // Windows only
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

var validate = validator.New()

// Load loads configuration from file, .env and ATTENDANCE_* environment variables.
// A missing config file is not an error unless configPath is set explicitly.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/" + appDir)
		v.AddConfigPath("/etc/attendance-tracker")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// every key needs a default so AutomaticEnv can override it on Unmarshal
	v.SetDefault("storage.backend", storage.BackendFile)
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.holidays_file", "")
	v.SetDefault("reminder.system_tray", false)
	v.SetDefault("log.file", "")
	v.SetDefault("rules.target_percent", attendance.DefaultTargetPercent)
	v.SetDefault("rules.warning_percent", attendance.DefaultWarningPercent)
	v.SetDefault("reminder.daily_time", "09:30")
	v.SetDefault("reminder.weekdays", []string{"mon", "tue", "wed", "thu", "fri", "sat"})
	v.SetDefault("reminder.check_interval", "1m")
	v.SetDefault("log.level", "info")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	for _, phase := range c.Phases {
		if err := phase.Validate(); err != nil {
			return err
		}
	}

	if c.Rules.WarningPercent > c.Rules.TargetPercent {
		return fmt.Errorf("rules.warning_percent must not exceed rules.target_percent")
	}

	if c.Reminder.DailyTime != "" {
		if _, _, err := parseClock(c.Reminder.DailyTime); err != nil {
			return fmt.Errorf("reminder.daily_time: %w", err)
		}
	}
	for _, day := range c.Reminder.Weekdays {
		if _, ok := weekdayNames[strings.ToLower(day)]; !ok {
			return fmt.Errorf("reminder.weekdays: unknown weekday '%s'", day)
		}
	}

	if c.Log.Level != "" {
		if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}

	return nil
}

// GetPhases returns the configured phase table, or the built-in one
func (c *Config) GetPhases() []attendance.Phase {
	if len(c.Phases) == 0 {
		return attendance.DefaultPhases()
	}
	return attendance.ClonePhases(c.Phases)
}

// GetRules returns the attendance thresholds
func (c *Config) GetRules() attendance.Rules {
	return attendance.Rules{
		TargetPercent:  c.Rules.TargetPercent,
		WarningPercent: c.Rules.WarningPercent,
	}
}

// GetBackend returns the storage backend type. Default: file
func (c *StorageConfig) GetBackend() string {
	if c.Backend == "" {
		return storage.BackendFile
	}
	return c.Backend
}

// GetPath returns the storage location: a directory for the file backend,
// a database file for sqlite. Defaults live under ~/.attendance-tracker.
func (c *StorageConfig) GetPath() string {
	if c.Path != "" {
		return c.Path
	}

	base := appDir
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, appDir)
	}

	if c.GetBackend() == storage.BackendSQLite {
		return filepath.Join(base, "attendance.db")
	}
	return filepath.Join(base, "data")
}

// GetDailyTime returns the configured reminder time.
// Returns hour and minute (0-23, 0-59). Default: 09:30
func (c *ReminderConfig) GetDailyTime() (hour, minute int) {
	h, m, err := parseClock(c.DailyTime)
	if err != nil {
		return 9, 30
	}
	return h, m
}

// GetWeekdays returns the days the reminder fires on. Default: Monday to Saturday
func (c *ReminderConfig) GetWeekdays() []time.Weekday {
	var days []time.Weekday
	for _, name := range c.Weekdays {
		if day, ok := weekdayNames[strings.ToLower(name)]; ok {
			days = append(days, day)
		}
	}
	if len(days) == 0 {
		return []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday,
			time.Thursday, time.Friday, time.Saturday,
		}
	}
	return days
}

// GetCheckInterval returns how often the daemon checks the clock
func (c *ReminderConfig) GetCheckInterval() time.Duration {
	if c.CheckInterval == "" {
		return time.Minute
	}
	duration, err := time.ParseDuration(c.CheckInterval)
	if err != nil || duration <= 0 {
		return time.Minute
	}
	return duration
}

// GetLevel returns the log level. Default: info
func (c *LogConfig) GetLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// ExpandEnvVars expands environment variables in config paths
func (c *Config) ExpandEnvVars() {
	c.Storage.Path = os.ExpandEnv(c.Storage.Path)
	c.Storage.HolidaysFile = os.ExpandEnv(c.Storage.HolidaysFile)
	c.Log.File = os.ExpandEnv(c.Log.File)
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

func parseClock(value string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, fmt.Errorf("expected HH:MM, got '%s'", value)
	}
	return t.Hour(), t.Minute(), nil
}
