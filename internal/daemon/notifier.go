package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/username/attendance-tracker/internal/attendance"
	"go.uber.org/zap"
)

// ReminderTitle is the title of every attendance reminder
const ReminderTitle = "Attendance Reminder"

// Notification is a single reminder message
type Notification struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Body  string    `json:"body"`
	At    time.Time `json:"at"`
}

// Notifier delivers notifications to the user
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier that logs each notification
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notification
func (ln *LogNotifier) Notify(ctx context.Context, n Notification) error {
	ln.logger.Info("Notification",
		zap.String("id", n.ID),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
		zap.Time("at", n.At))
	return nil
}

// multiNotifier sends to every notifier and returns the first error
type multiNotifier []Notifier

// MultiNotifier combines notifiers
func MultiNotifier(notifiers ...Notifier) Notifier {
	return multiNotifier(notifiers)
}

func (mn multiNotifier) Notify(ctx context.Context, n Notification) error {
	var firstErr error
	for _, notifier := range mn {
		if err := notifier.Notify(ctx, n); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// BuildReminder builds the reminder for today.
// due is false if today is already marked present or is a holiday.
func BuildReminder(record *attendance.Record, result *attendance.Result, today string, now time.Time) (Notification, bool) {
	due := !record.IsAttended(today) && !record.IsHoliday(today)

	body := fmt.Sprintf("It's %s! Time to mark your attendance.", now.Format("3:04 PM"))
	if result != nil && result.Current != nil {
		body += "\n" + result.Current.Name + ": " + phaseSummary(*result.Current)
	}

	return Notification{
		ID:    uuid.NewString(),
		Title: ReminderTitle,
		Body:  body,
		At:    now,
	}, due
}

func phaseSummary(stats attendance.PhaseStats) string {
	if stats.IsFuture {
		return stats.Label()
	}
	summary := fmt.Sprintf("%.1f%% (%d/%d)", stats.Percent, stats.AttendedCount, stats.ConductedDays)
	if stats.Needed > 0 {
		return summary + fmt.Sprintf(", attend %d more day(s) to reach the target", stats.Needed)
	}
	return summary + fmt.Sprintf(", you can skip %d day(s)", stats.CanSkip)
}

func todayState(record *attendance.Record, today string) string {
	switch {
	case record.IsAttended(today):
		return "present"
	case record.IsHoliday(today):
		return "holiday"
	default:
		return "not marked"
	}
}
