package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/username/attendance-tracker/internal/attendance"
	"github.com/username/attendance-tracker/internal/store"
	"github.com/username/attendance-tracker/pkg/dateutil"
	"go.uber.org/zap"
)

// Options configures the reminder schedule
type Options struct {
	DailyHour     int // 0-23, local time
	DailyMinute   int // 0-59
	Weekdays      []time.Weekday
	CheckInterval time.Duration
	SystemTray    bool
}

// Daemon sends a daily attendance reminder
type Daemon struct {
	repo          *store.Repository
	calculator    *attendance.Calculator
	notifier      Notifier
	dailyHour     int
	dailyMinute   int
	weekdays      map[time.Weekday]bool
	checkInterval time.Duration
	systemTray    bool
	location      *time.Location
	now           func() time.Time
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	trayApp       *TrayApp
	lastRunDate   string     // last date a scheduled reminder was handled
	mu            sync.Mutex // protects lastRunDate and running
	running       bool
}

// NewDaemon creates a reminder daemon
func NewDaemon(repo *store.Repository, calculator *attendance.Calculator, notifier Notifier, opts Options, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	if opts.CheckInterval <= 0 {
		opts.CheckInterval = time.Minute
	}
	weekdays := make(map[time.Weekday]bool, len(opts.Weekdays))
	for _, day := range opts.Weekdays {
		weekdays[day] = true
	}

	return &Daemon{
		repo:          repo,
		calculator:    calculator,
		notifier:      notifier,
		dailyHour:     opts.DailyHour,
		dailyMinute:   opts.DailyMinute,
		weekdays:      weekdays,
		checkInterval: opts.CheckInterval,
		systemTray:    opts.SystemTray,
		location:      time.Local,
		now:           time.Now,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start runs the daemon until Stop, SIGINT or SIGTERM.
// With the system tray enabled it blocks in the tray loop instead.
func (d *Daemon) Start() error {
	if d.systemTray {
		d.logger.Info("Initializing system tray")
		trayApp, err := NewTrayApp(d, d.logger)
		if err != nil {
			d.logger.Warn("Failed to initialize system tray", zap.Error(err))
			return d.Run(d.ctx)
		}
		d.trayApp = trayApp
		d.notifier = MultiNotifier(d.notifier, trayApp)
		d.trayApp.Run()
		return nil
	}

	d.logger.Info("Running without system tray")
	return d.Run(d.ctx)
}

// Run checks the clock every interval and sends the reminder when due
func (d *Daemon) Run(ctx context.Context) error {
	d.logger.Info("Reminder daemon started",
		zap.Int("daily_hour", d.dailyHour),
		zap.Int("daily_minute", d.dailyMinute),
		zap.Duration("check_interval", d.checkInterval))

	nextRun := d.NextRun(d.now())
	d.logger.Info("Next reminder scheduled",
		zap.Time("next_run", nextRun),
		zap.Duration("wait_duration", nextRun.Sub(d.now())))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	ticker := time.NewTicker(d.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Daemon stopped")
			d.stopTray()
			return nil

		case <-d.ctx.Done():
			d.logger.Info("Daemon stopped")
			d.stopTray()
			return nil

		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			d.stopTray()
			d.Stop()
			return nil

		case <-ticker.C:
			d.tick(ctx, d.now())
		}
	}
}

// tick sends the scheduled reminder once the trigger time has passed
func (d *Daemon) tick(ctx context.Context, now time.Time) {
	if !d.shouldRunAt(now) {
		return
	}

	if _, err := d.runReminder(ctx, now, false); err != nil {
		d.logger.Error("Reminder failed", zap.Error(err))
		return
	}

	nextRun := d.NextRun(now)
	d.logger.Info("Next reminder scheduled",
		zap.Time("next_run", nextRun),
		zap.Duration("wait_duration", nextRun.Sub(now)))
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

func (d *Daemon) stopTray() {
	if d.trayApp != nil {
		d.trayApp.Stop()
	}
}

// RemindNow sends a reminder immediately, even if today is already marked
func (d *Daemon) RemindNow(ctx context.Context) (*Notification, error) {
	d.logger.Info("Manual reminder triggered")
	return d.runReminder(ctx, d.now(), true)
}

// runReminder builds and sends the reminder for now.
// Scheduled runs happen at most once per day and skip days already marked
// present or declared holidays. It returns nil if nothing was sent.
func (d *Daemon) runReminder(ctx context.Context, now time.Time, force bool) (*Notification, error) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		d.logger.Warn("Reminder already running, skipping concurrent execution")
		return nil, fmt.Errorf("reminder already in progress")
	}
	today := dateutil.TodayAt(now.In(d.location))
	if !force && d.lastRunDate == today {
		d.mu.Unlock()
		d.logger.Debug("Already reminded today, skipping", zap.String("date", today))
		return nil, nil
	}
	d.running = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running = false
		d.mu.Unlock()
	}()

	record := d.repo.Load(ctx)
	result := d.calculator.Calculate(record, today)

	notification, due := BuildReminder(record, result, today, now)
	if !due && !force {
		d.logger.Info("No reminder needed",
			zap.String("date", today),
			zap.Bool("attended", record.IsAttended(today)),
			zap.Bool("holiday", record.IsHoliday(today)))
		d.markRun(today)
		return nil, nil
	}

	if err := d.notifier.Notify(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to send reminder: %w", err)
	}

	if !force {
		d.markRun(today)
	}

	return &notification, nil
}

func (d *Daemon) markRun(date string) {
	d.mu.Lock()
	d.lastRunDate = date
	d.mu.Unlock()
}

// MarkPresentToday marks today as attended (tray menu action)
func (d *Daemon) MarkPresentToday(ctx context.Context) (*attendance.PhaseStats, error) {
	today := dateutil.TodayAt(d.now().In(d.location))

	record, err := d.repo.MarkPresent(ctx, today)
	if err != nil {
		return nil, err
	}

	return d.calculator.Calculate(record, today).Current, nil
}

// Status returns a short summary of the current phase
func (d *Daemon) Status(ctx context.Context) string {
	today := dateutil.TodayAt(d.now().In(d.location))
	record := d.repo.Load(ctx)
	result := d.calculator.Calculate(record, today)

	if result.Current == nil {
		return "No phases configured"
	}
	return fmt.Sprintf("%s\n%s\nToday: %s",
		result.Current.Name, phaseSummary(*result.Current), todayState(record, today))
}

// NextRun returns the next reminder trigger strictly after now
func (d *Daemon) NextRun(now time.Time) time.Time {
	local := now.In(d.location)
	candidate := time.Date(local.Year(), local.Month(), local.Day(),
		d.dailyHour, d.dailyMinute, 0, 0, d.location)

	if !candidate.After(local) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	for i := 0; i < 7 && !d.weekdays[candidate.Weekday()]; i++ {
		candidate = candidate.AddDate(0, 0, 1)
	}

	return candidate
}

// shouldRunAt reports whether now is on a reminder weekday at or after the
// trigger time. Ticks coarser than a minute can step over the trigger minute,
// so the first tick past it fires and lastRunDate suppresses the rest of the day.
func (d *Daemon) shouldRunAt(now time.Time) bool {
	local := now.In(d.location)
	if !d.weekdays[local.Weekday()] {
		return false
	}
	return local.Hour()*60+local.Minute() >= d.dailyHour*60+d.dailyMinute
}
