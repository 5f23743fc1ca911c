package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/username/attendance-tracker/internal/attendance"
	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/pkg/dateutil"
)

// statusReport is the --json form of `status`
type statusReport struct {
	Date    string                  `json:"date"`
	Profile attendance.Profile      `json:"profile"`
	Today   string                  `json:"today"`
	Current *attendance.PhaseStats  `json:"current"`
	Phases  []attendance.PhaseStats `json:"phases"`
	Overall overallStats            `json:"overall"`
}

type overallStats struct {
	Attended  int     `json:"attended"`
	Conducted int     `json:"conducted"`
	Percent   float64 `json:"percent"`
}

func statusCmd() *cobra.Command {
	var dateStr string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show attendance per phase",
		Long:  "Show the current phase, every phase's attendance and how many days are needed or can be skipped",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today, err := resolveDate(dateStr)
			if err != nil {
				return err
			}

			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			record := a.repo.Load(cmd.Context())
			result := a.calculator.Calculate(record, today)

			attended, conducted, percent := result.Overall()
			report := statusReport{
				Date:    today,
				Profile: record.Profile,
				Today:   dayState(record, today),
				Current: result.Current,
				Phases:  result.Phases,
				Overall: overallStats{Attended: attended, Conducted: conducted, Percent: percent},
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			printStatus(out, report)
			return nil
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "Evaluate as of this date (default: today)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")

	return cmd
}

func printStatus(out io.Writer, report statusReport) {
	fmt.Fprintf(out, "📊 Attendance for %s (as of %s)\n", report.Profile.UserName, report.Date)
	if report.Profile.ProjectTitle != "" {
		fmt.Fprintf(out, "   Project: %s\n", report.Profile.ProjectTitle)
	}
	if report.Profile.GuideName != "" || report.Profile.CabinNo != "" {
		fmt.Fprintf(out, "   Guide: %s   Cabin: %s\n", report.Profile.GuideName, report.Profile.CabinNo)
	}

	if current := report.Current; current != nil {
		fmt.Fprintf(out, "\nCurrent phase: %s (%s .. %s)\n", current.Name, current.Start, current.End)
		fmt.Fprintln(out, "═══════════════════════════════════════════════════════")
		fmt.Fprintf(out, "  Attendance:   %.1f%% (%d/%d conducted, %d working days total)\n",
			current.Percent, current.AttendedCount, current.ConductedDays, current.TotalWorkingDays)
		fmt.Fprintf(out, "  Status:       %s [%s %s]\n", current.Label(), current.Color, current.ColorHex)
		fmt.Fprintf(out, "  Needed:       %d more day(s) for the target, %d for the warning line\n",
			current.Needed, current.Needed50)
		fmt.Fprintf(out, "  Can skip:     %d day(s)\n", current.CanSkip)
	}
	fmt.Fprintf(out, "  Today:        %s\n", report.Today)

	fmt.Fprintln(out, "\n📅 Phases:")
	fmt.Fprintln(out, "  Phase            | Dates                    | Att/Cond | Percent | Status")
	fmt.Fprintln(out, "------------------+--------------------------+----------+---------+----------------")
	for _, p := range report.Phases {
		marker := " "
		if p.IsCurrent {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %-16s | %s .. %s | %3d/%-4d | %6.1f%% | %s\n",
			marker, p.Name, p.Start, p.End, p.AttendedCount, p.ConductedDays, p.Percent, p.Label())
	}

	fmt.Fprintf(out, "\nOverall: %.1f%% (%d/%d)\n",
		report.Overall.Percent, report.Overall.Attended, report.Overall.Conducted)
}

func dayState(record *attendance.Record, date string) string {
	switch {
	case record.IsAttended(date):
		return "present"
	case record.IsHoliday(date):
		return "holiday"
	}
	if weekday, err := dateutil.Weekday(date); err == nil && weekday == time.Sunday {
		return "sunday"
	}
	return "not marked"
}

func calendarCmd() *cobra.Command {
	var monthStr string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month with attendance markers",
		Long:  "Show a month grid: P = present, H = holiday, S = Sunday, - = absent working day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, month, err := resolveMonth(monthStr)
			if err != nil {
				return err
			}

			a, err := initializeApp()
			if err != nil {
				return err
			}
			defer a.Close()

			record := a.repo.Load(cmd.Context())
			cal := calendar.NewHolidayCalendar(record.Holidays)
			return printMonth(cmd.OutOrStdout(), cal, record, year, month, dateutil.Today())
		},
	}

	cmd.Flags().StringVar(&monthStr, "month", "", "Month to show, YYYY-MM (default: current month)")

	return cmd
}

func resolveMonth(value string) (int, time.Month, error) {
	if value == "" {
		now := time.Now()
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month '%s', expected YYYY-MM", value)
	}
	return t.Year(), t.Month(), nil
}

func printMonth(out io.Writer, cal calendar.Calendar, record *attendance.Record, year int, month time.Month, today string) error {
	info, err := cal.GetMonthInfo(year, month)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s %d\n", month, year)
	fmt.Fprintln(out, " Mo  Tu  We  Th  Fr  Sa  Su")

	var line strings.Builder
	// Monday-first offset of the 1st
	offset := (int(info.Days[0].Weekday) + 6) % 7
	line.WriteString(strings.Repeat("    ", offset))

	attended := 0
	for _, day := range info.Days {
		fmt.Fprintf(&line, "%s%s ", day.Date[8:], dayMarker(record, day, today))
		if record.IsAttended(day.Date) {
			attended++
		}
		if day.Weekday == time.Sunday {
			fmt.Fprintln(out, strings.TrimRight(line.String(), " "))
			line.Reset()
		}
	}
	if line.Len() > 0 {
		fmt.Fprintln(out, strings.TrimRight(line.String(), " "))
	}

	fmt.Fprintf(out, "\nWorking days: %d   Sundays: %d   Holidays: %d   Present: %d\n",
		info.WorkDays, info.Sundays, info.Holidays, attended)
	return nil
}

func dayMarker(record *attendance.Record, day calendar.DayInfo, today string) string {
	switch {
	case record.IsAttended(day.Date):
		return "P"
	case day.Type == calendar.DayTypeHoliday:
		return "H"
	case day.Type == calendar.DayTypeSunday:
		return "S"
	case day.Date <= today:
		return "-"
	default:
		return " "
	}
}

// currentSummary describes the current phase after a change
func currentSummary(a *app, record *attendance.Record, date string) string {
	result := a.calculator.Calculate(record, date)
	if result.Current == nil {
		return ""
	}
	c := result.Current
	return fmt.Sprintf("%s: %.1f%% (%d/%d), %s", c.Name, c.Percent, c.AttendedCount, c.ConductedDays, c.Label())
}
