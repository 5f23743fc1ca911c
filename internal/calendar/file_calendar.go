package calendar

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/username/attendance-tracker/pkg/dateutil"
	"go.uber.org/zap"
)

// Holiday is a single holiday entry read from a holiday file
type Holiday struct {
	Date string
	Note string
}

// FileCalendar implements Calendar using a local holiday list file
type FileCalendar struct {
	*HolidayCalendar
	filePath string
	logger   *zap.Logger
	entries  []Holiday
}

// NewFileCalendar creates a new FileCalendar instance
func NewFileCalendar(filePath string, logger *zap.Logger) *FileCalendar {
	return &FileCalendar{
		HolidayCalendar: NewHolidayCalendar(nil),
		filePath:        filePath,
		logger:          logger,
	}
}

// Load loads holiday data from file.
//
// Format, one entry per line:
//
//	YYYY-MM-DD [note]
//	YYYY-MM-DD..YYYY-MM-DD [note]
//
// Blank lines and lines starting with '#' are ignored. Malformed lines are
// logged and skipped.
func (fc *FileCalendar) Load() error {
	file, err := os.Open(fc.filePath)
	if err != nil {
		return fmt.Errorf("failed to open holiday file: %w", err)
	}
	defer file.Close()

	seen := make(map[string]bool)
	scanner := bufio.NewScanner(file)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// date spec and note may be separated by any run of spaces or tabs
		spec := strings.Fields(line)[0]
		dates, err := parseDateSpec(spec)
		if err != nil {
			fc.logger.Warn("Invalid holiday line",
				zap.Int("line", lineNo),
				zap.String("text", line),
				zap.Error(err))
			continue
		}

		note := strings.TrimSpace(strings.TrimPrefix(line, spec))

		for _, date := range dates {
			fc.AddHoliday(date, note)
			if seen[date] {
				continue
			}
			seen[date] = true
			fc.entries = append(fc.entries, Holiday{Date: date, Note: note})
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading holiday file: %w", err)
	}

	fc.logger.Info("Holiday file loaded",
		zap.String("file", fc.filePath),
		zap.Int("holidays", len(fc.entries)))

	return nil
}

// Holidays returns the loaded entries in file order
func (fc *FileCalendar) Holidays() []Holiday {
	return fc.entries
}

// Dates returns the loaded holiday dates in file order
func (fc *FileCalendar) Dates() []string {
	dates := make([]string, 0, len(fc.entries))
	for _, h := range fc.entries {
		dates = append(dates, h.Date)
	}
	return dates
}

func parseDateSpec(spec string) ([]string, error) {
	start, end, isRange := strings.Cut(spec, "..")
	if !isRange {
		end = start
	}

	if err := dateutil.ValidateDate(start); err != nil {
		return nil, err
	}
	if err := dateutil.ValidateDate(end); err != nil {
		return nil, err
	}
	if start > end {
		return nil, fmt.Errorf("range start %s is after end %s", start, end)
	}

	return dateutil.EnumerateDates(start, end), nil
}
