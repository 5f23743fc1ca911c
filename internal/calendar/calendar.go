package calendar

import (
	"time"

	"github.com/username/attendance-tracker/pkg/dateutil"
)

// DayType represents the type of day
type DayType int

const (
	DayTypeWorkday DayType = iota + 1
	DayTypeSunday
	DayTypeHoliday
)

// String returns a short label for the day type
func (t DayType) String() string {
	switch t {
	case DayTypeWorkday:
		return "workday"
	case DayTypeSunday:
		return "sunday"
	case DayTypeHoliday:
		return "holiday"
	default:
		return "unknown"
	}
}

// DayInfo represents information about a specific day
type DayInfo struct {
	Date      string
	Weekday   time.Weekday
	Type      DayType
	IsWorkday bool
	Note      string
}

// MonthInfo represents calendar information for a month
type MonthInfo struct {
	Year     int
	Month    time.Month
	WorkDays int
	Sundays  int
	Holidays int
	Days     []DayInfo
}

// Calendar interface for checking working days
type Calendar interface {
	// IsWorkday checks if the given YYYY-MM-DD date is a working day
	IsWorkday(date string) bool

	// GetDayInfo returns detailed info for a specific day
	GetDayInfo(date string) (*DayInfo, error)

	// GetMonthInfo returns calendar info for the entire month
	GetMonthInfo(year int, month time.Month) (*MonthInfo, error)
}

// HolidayCalendar is a six-day-week calendar: every day except Sunday is a
// working day unless it is listed as a holiday.
type HolidayCalendar struct {
	holidays map[string]string // date -> note
}

// NewHolidayCalendar creates a calendar from a list of holiday dates
func NewHolidayCalendar(holidays []string) *HolidayCalendar {
	hc := &HolidayCalendar{
		holidays: make(map[string]string, len(holidays)),
	}
	for _, h := range holidays {
		hc.holidays[h] = ""
	}
	return hc
}

// AddHoliday marks date as a holiday with an optional note
func (hc *HolidayCalendar) AddHoliday(date, note string) {
	hc.holidays[date] = note
}

// IsHoliday returns true if date is a listed holiday
func (hc *HolidayCalendar) IsHoliday(date string) bool {
	_, ok := hc.holidays[date]
	return ok
}

// IsWorkday checks if the given date is a working day.
// Unparsable dates are never working days.
func (hc *HolidayCalendar) IsWorkday(date string) bool {
	day, err := dateutil.ToDate(date)
	if err != nil {
		return false
	}
	return !dateutil.IsSunday(day) && !hc.IsHoliday(date)
}

// GetDayInfo returns detailed info for a specific day
func (hc *HolidayCalendar) GetDayInfo(date string) (*DayInfo, error) {
	weekday, err := dateutil.Weekday(date)
	if err != nil {
		return nil, err
	}

	info := &DayInfo{
		Date:    date,
		Weekday: weekday,
		Type:    DayTypeWorkday,
	}

	// Sunday wins over holiday so that month statistics don't double count
	switch note, holiday := hc.holidays[date]; {
	case weekday == time.Sunday:
		info.Type = DayTypeSunday
		info.Note = note
	case holiday:
		info.Type = DayTypeHoliday
		info.Note = note
	default:
		info.IsWorkday = true
	}

	return info, nil
}

// GetMonthInfo returns calendar info for the entire month
func (hc *HolidayCalendar) GetMonthInfo(year int, month time.Month) (*MonthInfo, error) {
	first, last := dateutil.MonthRange(year, month)

	monthInfo := &MonthInfo{
		Year:  year,
		Month: month,
		Days:  []DayInfo{},
	}

	for _, date := range dateutil.EnumerateDates(first, last) {
		day, err := hc.GetDayInfo(date)
		if err != nil {
			return nil, err
		}
		monthInfo.Days = append(monthInfo.Days, *day)

		switch day.Type {
		case DayTypeWorkday:
			monthInfo.WorkDays++
		case DayTypeSunday:
			monthInfo.Sundays++
		case DayTypeHoliday:
			monthInfo.Holidays++
		}
	}

	return monthInfo, nil
}
