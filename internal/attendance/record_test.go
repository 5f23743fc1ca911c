package attendance

import (
	"encoding/json"
	"testing"
)

func TestRecord_ToggleAttendance(t *testing.T) {
	r := NewRecord(Profile{UserName: "Asha"}, DefaultPhases())

	if got := r.ToggleAttendance("2025-12-08"); !got {
		t.Errorf("ToggleAttendance() = %v, want true", got)
	}
	if !r.IsAttended("2025-12-08") {
		t.Error("expected 2025-12-08 to be attended")
	}
	if got := r.ToggleAttendance("2025-12-08"); got {
		t.Errorf("second ToggleAttendance() = %v, want false", got)
	}
	if len(r.AttendedDates) != 0 {
		t.Errorf("AttendedDates = %v, want empty", r.AttendedDates)
	}
}

func TestRecord_SetsStayUnique(t *testing.T) {
	r := NewRecord(Profile{UserName: "Asha"}, nil)

	if added := r.MarkAttended("2025-12-08", "2025-12-09", "2025-12-08"); added != 2 {
		t.Errorf("MarkAttended() = %d, want 2", added)
	}
	if added := r.AddHolidays("2025-12-25", "2025-12-25"); added != 1 {
		t.Errorf("AddHolidays() = %d, want 1", added)
	}
	if added := r.AddHolidays("2025-12-25"); added != 0 {
		t.Errorf("AddHolidays() again = %d, want 0", added)
	}
	if !r.RemoveHoliday("2025-12-25") || r.RemoveHoliday("2025-12-25") {
		t.Error("RemoveHoliday should succeed once")
	}
}

func TestRecord_Clone(t *testing.T) {
	r := NewRecord(Profile{UserName: "Asha"}, DefaultPhases())
	r.MarkAttended("2025-12-08")

	c := r.Clone()
	c.MarkAttended("2025-12-09")
	c.Phases[0].Name = "Changed"

	if len(r.AttendedDates) != 1 || r.Phases[0].Name != "Review I" {
		t.Errorf("Clone shares state with the original: %+v", r)
	}
}

func TestRecord_JSONKeys(t *testing.T) {
	r := NewRecord(Profile{UserName: "Asha", ProjectTitle: "Crop Yield", GuideName: "Dr. Rao", CabinNo: "B-12"}, DefaultPhases())

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{"userName", "projectTitle", "guideName", "cabinNo", "startDate", "phases", "attendedDates", "holidays"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}

func TestPhase_Validate(t *testing.T) {
	tests := []struct {
		name    string
		phase   Phase
		wantErr bool
	}{
		{"valid", Phase{Name: "Review I", Start: "2025-12-06", End: "2025-12-12"}, false},
		{"single day", Phase{Name: "Viva", Start: "2026-04-27", End: "2026-04-27"}, false},
		{"missing name", Phase{Start: "2025-12-06", End: "2025-12-12"}, true},
		{"unpadded date", Phase{Name: "X", Start: "2025-12-6", End: "2025-12-12"}, true},
		{"reversed", Phase{Name: "X", Start: "2025-12-12", End: "2025-12-06"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.phase.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProfile_Validate(t *testing.T) {
	if err := (Profile{}).Validate(); err == nil {
		t.Error("expected error for empty user name")
	}
	if err := (Profile{UserName: "Asha"}).Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
