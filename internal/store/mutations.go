package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/username/attendance-tracker/internal/attendance"
	"github.com/username/attendance-tracker/internal/storage"
	"github.com/username/attendance-tracker/pkg/dateutil"
	"go.uber.org/zap"
)

// update loads the record, applies fn and saves the result if fn reports a change.
// Unlike Load, it refuses to overwrite a record it could not read.
func (r *Repository) update(ctx context.Context, fn func(*attendance.Record) bool) (*attendance.Record, error) {
	record, err := r.loadAndHeal(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		record = r.newDefaultRecord()
	}

	if fn(record) {
		if err := r.Save(ctx, record); err != nil {
			return nil, err
		}
	}

	return record, nil
}

// ToggleAttendance flips the attended state of date.
// It returns the updated record and whether date is now attended.
func (r *Repository) ToggleAttendance(ctx context.Context, date string) (*attendance.Record, bool, error) {
	if err := dateutil.ValidateDate(date); err != nil {
		return nil, false, err
	}

	var attended bool
	record, err := r.update(ctx, func(rec *attendance.Record) bool {
		attended = rec.ToggleAttendance(date)
		return true
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to toggle attendance: %w", err)
	}

	r.logger.Info("Attendance toggled",
		zap.String("date", date),
		zap.Bool("attended", attended))

	return record, attended, nil
}

// MarkPresent adds date to the attended set if absent
func (r *Repository) MarkPresent(ctx context.Context, date string) (*attendance.Record, error) {
	if err := dateutil.ValidateDate(date); err != nil {
		return nil, err
	}

	record, err := r.update(ctx, func(rec *attendance.Record) bool {
		return rec.MarkAttended(date) > 0
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark attendance: %w", err)
	}

	r.logger.Info("Marked present", zap.String("date", date))

	return record, nil
}

// MarkAttendanceRange marks every date in [start, end] as attended.
// Returns the number of newly marked dates.
func (r *Repository) MarkAttendanceRange(ctx context.Context, start, end string) (*attendance.Record, int, error) {
	dates, err := rangeOf(start, end)
	if err != nil {
		return nil, 0, err
	}

	var added int
	record, err := r.update(ctx, func(rec *attendance.Record) bool {
		added = rec.MarkAttended(dates...)
		return added > 0
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to mark attendance range: %w", err)
	}

	r.logger.Info("Attendance range marked",
		zap.String("start", start),
		zap.String("end", end),
		zap.Int("added", added))

	return record, added, nil
}

// AddHoliday adds date to the holiday set if absent
func (r *Repository) AddHoliday(ctx context.Context, date string) (*attendance.Record, error) {
	record, _, err := r.ImportHolidays(ctx, []string{date})
	return record, err
}

// AddHolidayRange adds every date in [start, end] to the holiday set.
// Returns the number of new holidays.
func (r *Repository) AddHolidayRange(ctx context.Context, start, end string) (*attendance.Record, int, error) {
	dates, err := rangeOf(start, end)
	if err != nil {
		return nil, 0, err
	}
	return r.ImportHolidays(ctx, dates)
}

// ImportHolidays adds a list of dates to the holiday set.
// Every date is validated before anything is written.
func (r *Repository) ImportHolidays(ctx context.Context, dates []string) (*attendance.Record, int, error) {
	for _, date := range dates {
		if err := dateutil.ValidateDate(date); err != nil {
			return nil, 0, err
		}
	}

	var added int
	record, err := r.update(ctx, func(rec *attendance.Record) bool {
		added = rec.AddHolidays(dates...)
		return added > 0
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to add holidays: %w", err)
	}

	r.logger.Info("Holidays added",
		zap.Int("requested", len(dates)),
		zap.Int("added", added))

	return record, added, nil
}

// RemoveHoliday removes date from the holiday set.
// Returns false if date was not a holiday.
func (r *Repository) RemoveHoliday(ctx context.Context, date string) (*attendance.Record, bool, error) {
	if err := dateutil.ValidateDate(date); err != nil {
		return nil, false, err
	}

	var removed bool
	record, err := r.update(ctx, func(rec *attendance.Record) bool {
		removed = rec.RemoveHoliday(date)
		return removed
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to remove holiday: %w", err)
	}

	r.logger.Info("Holiday removed",
		zap.String("date", date),
		zap.Bool("removed", removed))

	return record, removed, nil
}

// UpdateProfile replaces the free-form profile fields, keeping the user name
func (r *Repository) UpdateProfile(ctx context.Context, projectTitle, guideName, cabinNo string) (*attendance.Record, error) {
	record, err := r.update(ctx, func(rec *attendance.Record) bool {
		rec.ProjectTitle = projectTitle
		rec.GuideName = guideName
		rec.CabinNo = cabinNo
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	r.logger.Info("Profile updated", zap.String("project", projectTitle))

	return record, nil
}

func rangeOf(start, end string) ([]string, error) {
	if err := dateutil.ValidateDate(start); err != nil {
		return nil, err
	}
	if err := dateutil.ValidateDate(end); err != nil {
		return nil, err
	}
	return dateutil.EnumerateDates(start, end), nil
}
