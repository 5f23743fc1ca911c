package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/attendance-tracker/internal/attendance"
	"github.com/username/attendance-tracker/internal/calendar"
	"github.com/username/attendance-tracker/pkg/dateutil"
)

func setupConfig(t *testing.T, backend string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "store")
	if backend == "sqlite" {
		path = filepath.Join(dir, "attendance.db")
	}

	content := "storage:\n  backend: " + backend + "\n  path: " + path + "\nlog:\n  file: " + filepath.Join(dir, "test.log") + "\n"
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath
}

func run(t *testing.T, cfgPath string, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"-c", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_Workflow(t *testing.T) {
	for _, backend := range []string{"file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			cfg := setupConfig(t, backend)

			out, err := run(t, cfg, "", "init", "--name", "Asha", "--project", "Crop Yield")
			require.NoError(t, err)
			assert.Contains(t, out, "Welcome, Asha")
			assert.Contains(t, out, "Review II")

			_, err = run(t, cfg, "", "init", "--name", "Asha")
			assert.Error(t, err, "second init needs --force")

			_, err = run(t, cfg, "", "mark", "--from", "2025-12-15", "--to", "2025-12-18")
			require.NoError(t, err)

			out, err = run(t, cfg, "", "mark", "2025-12-18")
			require.NoError(t, err)
			assert.Contains(t, out, "2025-12-18 unmarked")

			_, err = run(t, cfg, "", "holiday", "add", "2025-12-20", "--to", "2025-12-22")
			require.NoError(t, err)

			out, err = run(t, cfg, "", "status", "--date", "2025-12-20", "--json")
			require.NoError(t, err)

			var report statusReport
			require.NoError(t, json.Unmarshal([]byte(out), &report))
			assert.Equal(t, "Crop Yield", report.Profile.ProjectTitle)
			assert.Equal(t, "holiday", report.Today)
			require.NotNil(t, report.Current)
			assert.Equal(t, "Review II", report.Current.Name)
			assert.Equal(t, 3, report.Current.AttendedCount)
			// Dec 13-20 minus Dec 14 (Sunday) and Dec 20 (holiday)
			assert.Equal(t, 6, report.Current.ConductedDays)
			// 3/6 = 50%: on the warning line
			assert.Equal(t, attendance.ColorYellow, report.Current.Color)
			assert.Equal(t, "#FFC107", report.Current.ColorHex)
			assert.Contains(t, out, `"colorHex": "#FFC107"`)
		})
	}
}

func TestCLI_StatusText(t *testing.T) {
	cfg := setupConfig(t, "file")

	_, err := run(t, cfg, "", "init", "--name", "Asha")
	require.NoError(t, err)
	_, err = run(t, cfg, "", "mark", "2025-12-06")
	require.NoError(t, err)
	_, err = run(t, cfg, "", "mark", "2025-12-08")
	require.NoError(t, err)

	out, err := run(t, cfg, "", "status", "--date", "2025-12-08")
	require.NoError(t, err)
	assert.Contains(t, out, "Current phase: Review I")
	assert.Contains(t, out, "100.0%")
	assert.Contains(t, out, "[green #4CAF50]")
	assert.Contains(t, out, "Starts 2025-12-13")
}

func TestResolveDate(t *testing.T) {
	today := dateutil.Today()
	yesterday, err := dateutil.AddDays(today, -1)
	require.NoError(t, err)
	tomorrow, err := dateutil.AddDays(today, 1)
	require.NoError(t, err)

	tests := []struct {
		value   string
		want    string
		wantErr bool
	}{
		{"", today, false},
		{"today", today, false},
		{"Yesterday", yesterday, false},
		{"tomorrow", tomorrow, false},
		{"2025-12-08", "2025-12-08", false},
		{"2025-12-8", "", true},
		{"someday", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := resolveDate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCLI_InvalidDate(t *testing.T) {
	cfg := setupConfig(t, "file")

	_, err := run(t, cfg, "", "mark", "not-a-date")
	assert.Error(t, err)

	_, err = run(t, cfg, "", "mark", "--from", "2025-12-01")
	assert.Error(t, err)
}

func TestCLI_HolidayImport(t *testing.T) {
	cfg := setupConfig(t, "file")
	file := filepath.Join(t.TempDir(), "holidays.txt")
	require.NoError(t, os.WriteFile(file, []byte("# winter\n2025-12-25 Christmas\n2025-12-31..2026-01-01 New Year\nbogus\n"), 0o644))

	out, err := run(t, cfg, "", "holiday", "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 new holiday(s)")

	out, err = run(t, cfg, "", "holiday", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-12-25  Thu")
	assert.Contains(t, out, "3 holiday(s)")

	out, err = run(t, cfg, "", "holiday", "remove", "2025-12-25")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed holiday 2025-12-25")
}

func TestCLI_Calendar(t *testing.T) {
	cfg := setupConfig(t, "file")

	_, err := run(t, cfg, "", "mark", "2025-12-01")
	require.NoError(t, err)
	_, err = run(t, cfg, "", "holiday", "add", "2025-12-25")
	require.NoError(t, err)

	out, err := run(t, cfg, "", "calendar", "--month", "2025-12")
	require.NoError(t, err)
	assert.Contains(t, out, "December 2025")
	assert.Contains(t, out, "01P")
	assert.Contains(t, out, "25H")
	assert.Contains(t, out, "07S")
	assert.Contains(t, out, "Working days: 26")

	_, err = run(t, cfg, "", "calendar", "--month", "12-2025")
	assert.Error(t, err)
}

func TestCLI_ProfileAndReset(t *testing.T) {
	cfg := setupConfig(t, "file")

	_, err := run(t, cfg, "", "init", "--name", "Asha", "--guide", "Dr. Rao")
	require.NoError(t, err)

	out, err := run(t, cfg, "", "profile", "--cabin", "B-12")
	require.NoError(t, err)
	assert.Contains(t, out, "Guide:   Dr. Rao")
	assert.Contains(t, out, "Cabin:   B-12")

	out, err = run(t, cfg, "no\n", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Aborted")

	_, err = run(t, cfg, "", "reset", "--yes")
	require.NoError(t, err)

	out, err = run(t, cfg, "", "profile")
	require.NoError(t, err)
	assert.Contains(t, out, "Name:    User")
}

func TestCLI_RemindTest(t *testing.T) {
	cfg := setupConfig(t, "file")

	out, err := run(t, cfg, "", "remind", "--test")
	require.NoError(t, err)
	assert.Contains(t, out, "Attendance Reminder")
	assert.Contains(t, out, "Time to mark your attendance")
}

func TestDayMarker(t *testing.T) {
	record := attendance.NewRecord(attendance.Profile{UserName: "Asha"}, nil)
	record.MarkAttended("2025-12-07")

	var out bytes.Buffer
	cal := calendar.NewHolidayCalendar(record.Holidays)
	require.NoError(t, printMonth(&out, cal, record, 2025, 12, "2025-12-10"))

	// attendance on a Sunday wins over the Sunday marker
	assert.Contains(t, out.String(), "07P")
	assert.Contains(t, out.String(), "09-")
	assert.Contains(t, out.String(), "11  ")
}
