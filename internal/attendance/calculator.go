package attendance

import (
	"math"

	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/pkg/dateutil"
)

const (
	DefaultTargetPercent  = 75.0
	DefaultWarningPercent = 50.0
)

// Status is the compliance state of a phase
type Status string

const (
	StatusFuture   Status = "Future"
	StatusSafe     Status = "Safe"
	StatusShortage Status = "Shortage"
)

// Color is a presentation hint derived from the attendance percentage
type Color string

const (
	ColorRed    Color = "red"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorGrey   Color = "grey"
)

// Hex returns the theme colour for c
func (c Color) Hex() string {
	switch c {
	case ColorRed:
		return "#CF6679"
	case ColorYellow:
		return "#FFC107"
	case ColorGreen:
		return "#4CAF50"
	default:
		return "grey"
	}
}

// Rules holds the attendance thresholds in percent
type Rules struct {
	TargetPercent  float64
	WarningPercent float64
}

// DefaultRules returns the 75% / 50% thresholds
func DefaultRules() Rules {
	return Rules{
		TargetPercent:  DefaultTargetPercent,
		WarningPercent: DefaultWarningPercent,
	}
}

// PhaseStats is the derived attendance summary of one phase
type PhaseStats struct {
	Name             string  `json:"name"`
	Start            string  `json:"start"`
	End              string  `json:"end"`
	TotalWorkingDays int     `json:"total"`
	ConductedDays    int     `json:"conducted"`
	AttendedCount    int     `json:"attended"`
	Percent          float64 `json:"percent"`
	Status           Status  `json:"status"`
	Color            Color   `json:"color"`
	ColorHex         string  `json:"colorHex"`
	IsCurrent        bool    `json:"isCurrent"`
	IsFuture         bool    `json:"isFuture"`
	IsPast           bool    `json:"isPast"`
	MinRequired      int     `json:"minRequired"`
	MinRequired50    int     `json:"minRequired50"`
	Needed           int     `json:"needed"`
	Needed50         int     `json:"needed50"`
	CanSkip          int     `json:"canSkip"`
}

// Label returns the display status, e.g. "Starts 2025-12-13" for future phases
func (s PhaseStats) Label() string {
	if s.Status == StatusFuture {
		return "Starts " + s.Start
	}
	return string(s.Status)
}

// Result is the output of a calculation
type Result struct {
	Phases  []PhaseStats `json:"phases"`
	Current *PhaseStats  `json:"current"`
}

// Overall aggregates attended and conducted days across all phases
func (r *Result) Overall() (attended, conducted int, percent float64) {
	for _, p := range r.Phases {
		attended += p.AttendedCount
		conducted += p.ConductedDays
	}
	return attended, conducted, percentOf(attended, conducted)
}

// Calculator derives phase statistics from a record.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	defaults []Phase
	rules    Rules
}

// NewCalculator creates a calculator with positional default phases and thresholds.
// Thresholds that are not positive fall back to 75% and 50%.
func NewCalculator(defaults []Phase, rules Rules) *Calculator {
	if len(defaults) == 0 {
		defaults = DefaultPhases()
	}
	if rules.TargetPercent <= 0 {
		rules.TargetPercent = DefaultTargetPercent
	}
	if rules.WarningPercent <= 0 {
		rules.WarningPercent = DefaultWarningPercent
	}
	return &Calculator{
		defaults: ClonePhases(defaults),
		rules:    rules,
	}
}

// Calculate computes the statistics with the built-in phases and thresholds
func Calculate(record *Record, today string) *Result {
	return NewCalculator(nil, DefaultRules()).Calculate(record, today)
}

// Calculate computes per-phase statistics as of today (YYYY-MM-DD).
// The record is not modified; malformed phases are repaired on a copy.
func (c *Calculator) Calculate(record *Record, today string) *Result {
	if record == nil {
		record = &Record{}
	}

	phases := record.Phases
	if len(phases) == 0 {
		phases = c.defaults
	}

	var cal calendar.Calendar = calendar.NewHolidayCalendar(record.Holidays)
	attended := toSet(record.AttendedDates)

	result := &Result{
		Phases: make([]PhaseStats, 0, len(phases)),
	}

	for i, phase := range phases {
		phase = c.repair(i, phase)
		result.Phases = append(result.Phases, c.phaseStats(phase, cal, attended, today))
	}

	for i := range result.Phases {
		if result.Phases[i].IsCurrent {
			result.Current = &result.Phases[i]
			break
		}
	}
	if result.Current == nil && len(result.Phases) > 0 {
		result.Current = &result.Phases[0]
	}

	return result
}

// repair substitutes the positional default for missing or malformed bounds
func (c *Calculator) repair(index int, phase Phase) Phase {
	if dateutil.IsValidDate(phase.Start) && dateutil.IsValidDate(phase.End) {
		return phase
	}

	def := c.defaults[0]
	if index < len(c.defaults) {
		def = c.defaults[index]
	}

	phase.Start = def.Start
	phase.End = def.End
	if phase.Name == "" {
		phase.Name = def.Name
	}
	return phase
}

func (c *Calculator) phaseStats(phase Phase, cal calendar.Calendar, attended map[string]struct{}, today string) PhaseStats {
	stats := PhaseStats{
		Name:  phase.Name,
		Start: phase.Start,
		End:   phase.End,
	}

	for _, date := range dateutil.EnumerateDates(phase.Start, phase.End) {
		if cal.IsWorkday(date) {
			stats.TotalWorkingDays++
			if date <= today {
				stats.ConductedDays++
			}
		}
		// attendance on Sundays and holidays still counts
		if _, ok := attended[date]; ok {
			stats.AttendedCount++
		}
	}

	stats.Percent = percentOf(stats.AttendedCount, stats.ConductedDays)

	stats.MinRequired = ceilPercent(stats.TotalWorkingDays, c.rules.TargetPercent)
	stats.MinRequired50 = ceilPercent(stats.TotalWorkingDays, c.rules.WarningPercent)

	maxAbsence := stats.TotalWorkingDays - stats.MinRequired
	currentAbsence := stats.ConductedDays - stats.AttendedCount
	stats.CanSkip = max(0, maxAbsence-currentAbsence)
	if stats.TotalWorkingDays == 0 {
		// nothing to skip, even if present on a Sunday or holiday
		stats.CanSkip = 0
	}

	stats.Needed = max(0, stats.MinRequired-stats.AttendedCount)
	stats.Needed50 = max(0, stats.MinRequired50-stats.AttendedCount)

	stats.IsFuture = today < phase.Start
	stats.IsPast = today > phase.End
	stats.IsCurrent = !stats.IsFuture && !stats.IsPast

	stats.Color = c.colorFor(stats.Percent)
	switch {
	case stats.IsFuture:
		stats.Status = StatusFuture
		stats.Color = ColorGrey
	case stats.Needed <= 0:
		stats.Status = StatusSafe
	default:
		stats.Status = StatusShortage
	}
	stats.ColorHex = stats.Color.Hex()

	return stats
}

func (c *Calculator) colorFor(percent float64) Color {
	switch {
	case percent >= c.rules.TargetPercent:
		return ColorGreen
	case percent >= c.rules.WarningPercent:
		return ColorYellow
	default:
		return ColorRed
	}
}

// percentOf returns part/whole*100 rounded half-up to one decimal, 0 for an empty whole
func percentOf(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}

func ceilPercent(total int, percent float64) int {
	return int(math.Ceil(float64(total) * percent / 100))
}
