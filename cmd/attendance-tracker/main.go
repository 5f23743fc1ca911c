package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/username/attendance-tracker/internal/attendance"
	"github.com/username/attendance-tracker/internal/config"
	"github.com/username/attendance-tracker/internal/storage"
	"github.com/username/attendance-tracker/internal/store"
	"github.com/username/attendance-tracker/pkg/dateutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	configPath string
	logger     = zap.NewNop()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "attendance-tracker",
		Short:         "Project attendance tracker",
		Long:          "Track daily attendance against review phases and see how many days you still need or can skip",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.GetLevel())
				if err != nil {
					initLogger(zapcore.WarnLevel)
				}
			} else {
				initLogger(zapcore.WarnLevel)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(markCmd())
	rootCmd.AddCommand(holidayCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(profileCmd())
	rootCmd.AddCommand(resetCmd())
	rootCmd.AddCommand(remindCmd())

	return rootCmd
}

// app holds the components every command needs
type app struct {
	cfg        *config.Config
	backend    storage.Backend
	repo       *store.Repository
	calculator *attendance.Calculator
}

func initializeApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	backend, err := storage.Open(cfg.Storage.GetBackend(), cfg.Storage.GetPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	phases := cfg.GetPhases()

	return &app{
		cfg:        cfg,
		backend:    backend,
		repo:       store.NewRepository(backend, phases, logger),
		calculator: attendance.NewCalculator(phases, cfg.GetRules()),
	}, nil
}

func (a *app) Close() {
	if err := a.backend.Close(); err != nil {
		logger.Warn("Failed to close storage", zap.Error(err))
	}
}

// resolveDate turns user input into a canonical date.
// Empty input means today; "yesterday" and "tomorrow" are relative to it.
func resolveDate(value string) (string, error) {
	switch strings.ToLower(value) {
	case "", "today":
		return dateutil.Today(), nil
	case "yesterday":
		return dateutil.AddDays(dateutil.Today(), -1)
	case "tomorrow":
		return dateutil.AddDays(dateutil.Today(), 1)
	}
	date, err := dateutil.ParseDate(value)
	if err != nil {
		return "", fmt.Errorf("invalid date: %w", err)
	}
	return date, nil
}

func initLogger(level zapcore.Level) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level zapcore.Level) (*zap.Logger, error) {
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100,  // MB
		MaxBackups: 3,    // Keep max 3 old log files
		MaxAge:     28,   // days
		Compress:   true, // Compress old logs with gzip
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		level,
	)

	return zap.New(core), nil
}
