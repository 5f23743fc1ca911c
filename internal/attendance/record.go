package attendance

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Profile holds the free-form onboarding details of the student
type Profile struct {
	UserName     string `json:"userName" validate:"required"`
	ProjectTitle string `json:"projectTitle"`
	GuideName    string `json:"guideName"`
	CabinNo      string `json:"cabinNo"`
}

// Validate validates the profile
func (p Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

// Phase is a named, date-bounded academic period
type Phase struct {
	Name  string `json:"name" mapstructure:"name" validate:"required"`
	Start string `json:"start" mapstructure:"start" validate:"required,datetime=2006-01-02"`
	End   string `json:"end" mapstructure:"end" validate:"required,datetime=2006-01-02"`
}

// Validate validates the phase bounds
func (p Phase) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid phase %q: %w", p.Name, err)
	}
	if p.Start > p.End {
		return fmt.Errorf("invalid phase %q: start %s is after end %s", p.Name, p.Start, p.End)
	}
	return nil
}

// Contains returns true if date falls within [Start, End]
func (p Phase) Contains(date string) bool {
	return date >= p.Start && date <= p.End
}

// Record is the persisted attendance document
type Record struct {
	Profile
	StartDate     string   `json:"startDate,omitempty"`
	Phases        []Phase  `json:"phases"`
	AttendedDates []string `json:"attendedDates"`
	Holidays      []string `json:"holidays"`
}

// DefaultPhases returns a fresh copy of the built-in phase table
func DefaultPhases() []Phase {
	return []Phase{
		{Name: "Review I", Start: "2025-12-06", End: "2025-12-12"},
		{Name: "Review II", Start: "2025-12-13", End: "2026-02-02"},
		{Name: "Final Review", Start: "2026-02-03", End: "2026-04-27"},
	}
}

// NewRecord creates an empty record for the profile
func NewRecord(profile Profile, phases []Phase) *Record {
	record := &Record{
		Profile:       profile,
		Phases:        ClonePhases(phases),
		AttendedDates: []string{},
		Holidays:      []string{},
	}
	if len(record.Phases) > 0 {
		record.StartDate = record.Phases[0].Start
	}
	return record
}

// ClonePhases copies a phase slice
func ClonePhases(phases []Phase) []Phase {
	out := make([]Phase, len(phases))
	copy(out, phases)
	return out
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Phases = ClonePhases(r.Phases)
	out.AttendedDates = append([]string{}, r.AttendedDates...)
	out.Holidays = append([]string{}, r.Holidays...)
	return &out
}

// IsAttended returns true if date is marked present
func (r *Record) IsAttended(date string) bool {
	return contains(r.AttendedDates, date)
}

// IsHoliday returns true if date is a holiday
func (r *Record) IsHoliday(date string) bool {
	return contains(r.Holidays, date)
}

// ToggleAttendance adds date to the attended set, or removes it if present.
// It returns true if the date is attended after the call.
func (r *Record) ToggleAttendance(date string) bool {
	if idx := indexOf(r.AttendedDates, date); idx >= 0 {
		r.AttendedDates = append(r.AttendedDates[:idx], r.AttendedDates[idx+1:]...)
		return false
	}
	r.AttendedDates = append(r.AttendedDates, date)
	return true
}

// MarkAttended adds dates to the attended set and returns how many were new
func (r *Record) MarkAttended(dates ...string) int {
	var added int
	r.AttendedDates, added = addUnique(r.AttendedDates, dates)
	return added
}

// AddHolidays adds dates to the holiday set and returns how many were new
func (r *Record) AddHolidays(dates ...string) int {
	var added int
	r.Holidays, added = addUnique(r.Holidays, dates)
	return added
}

// RemoveHoliday removes date from the holiday set; returns false if absent
func (r *Record) RemoveHoliday(date string) bool {
	idx := indexOf(r.Holidays, date)
	if idx < 0 {
		return false
	}
	r.Holidays = append(r.Holidays[:idx], r.Holidays[idx+1:]...)
	return true
}

func addUnique(set []string, dates []string) ([]string, int) {
	seen := make(map[string]struct{}, len(set)+len(dates))
	for _, d := range set {
		seen[d] = struct{}{}
	}

	added := 0
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		set = append(set, d)
		added++
	}
	return set, added
}

func indexOf(list []string, value string) int {
	for i, v := range list {
		if v == value {
			return i
		}
	}
	return -1
}

func contains(list []string, value string) bool {
	return indexOf(list, value) >= 0
}

func toSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, v := range list {
		set[v] = struct{}{}
	}
	return set
}
