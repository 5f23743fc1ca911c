package dateutil

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the canonical calendar-date layout (YYYY-MM-DD).
// Dates in this layout are zero-padded, so string order equals date order.
const DateLayout = "2006-01-02"

// MaxRangeDays caps the number of days EnumerateDates produces in one call
const MaxRangeDays = 1000

// ErrInvalidDate is returned for strings that are not canonical YYYY-MM-DD dates
var ErrInvalidDate = errors.New("invalid date")

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// ToDate converts a canonical date string to UTC midnight
func ToDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, dateStr)
	}
	// must round-trip exactly
	if t.Format(DateLayout) != dateStr {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, dateStr)
	}
	return t, nil
}

// FormatDate formats the calendar day of t as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ValidateDate checks that dateStr is a canonical YYYY-MM-DD date
func ValidateDate(dateStr string) error {
	_, err := ToDate(dateStr)
	return err
}

// IsValidDate returns true if dateStr is a canonical YYYY-MM-DD date
func IsValidDate(dateStr string) bool {
	return ValidateDate(dateStr) == nil
}

// AddDays shifts a canonical date by n calendar days
func AddDays(dateStr string, n int) (string, error) {
	t, err := ToDate(dateStr)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

// Weekday returns the weekday of a canonical date
func Weekday(dateStr string) (time.Weekday, error) {
	t, err := ToDate(dateStr)
	if err != nil {
		return time.Sunday, err
	}
	return t.Weekday(), nil
}

// IsSunday returns true if the date is a Sunday
func IsSunday(date time.Time) bool {
	return date.Weekday() == time.Sunday
}

// EnumerateDates returns every calendar day from start to end inclusive.
// Unparsable bounds or start > end yield an empty slice; the result is
// truncated at MaxRangeDays.
func EnumerateDates(start, end string) []string {
	from, err := ToDate(start)
	if err != nil {
		return []string{}
	}
	if !IsValidDate(end) || start > end {
		return []string{}
	}

	dates := []string{}
	for d := from; len(dates) < MaxRangeDays; d = d.AddDate(0, 0, 1) {
		dateStr := FormatDate(d)
		if dateStr > end {
			break
		}
		dates = append(dates, dateStr)
	}

	return dates
}

// ParseDate parses date string in various formats and returns the canonical form
func ParseDate(dateStr string) (string, error) {
	formats := []string{
		DateLayout,
		"02.01.2006",
		"02-01-2006",
		"2006/01/02",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z07:00",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return FormatDate(t), nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidDate, dateStr)
}

// MonthRange returns the first and last day of the given month
func MonthRange(year int, month time.Month) (string, string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return FormatDate(first), FormatDate(last)
}

// Today returns today's local calendar date as YYYY-MM-DD
func Today() string {
	return TodayAt(time.Now())
}

// TodayAt returns the local calendar date of now as YYYY-MM-DD
func TodayAt(now time.Time) string {
	return FormatDate(StartOfDay(now))
}
