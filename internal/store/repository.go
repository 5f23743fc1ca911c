package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/username/attendance-tracker/internal/attendance"
	"github.com/username/attendance-tracker/internal/storage"
	"go.uber.org/zap"
)

const (
	// RecordKey holds the whole attendance document
	RecordKey = "attendance_data"
	// UserNameKey holds the display name; its presence means onboarding is done
	UserNameKey = "userName"

	defaultUserName = "User"
)

// Repository loads and saves the attendance record as a single document
type Repository struct {
	backend  storage.Backend
	defaults []attendance.Phase
	logger   *zap.Logger
}

// NewRepository creates a repository on top of a storage backend.
// defaults is the phase table used for fresh and healed records.
func NewRepository(backend storage.Backend, defaults []attendance.Phase, logger *zap.Logger) *Repository {
	if len(defaults) == 0 {
		defaults = attendance.DefaultPhases()
	}
	return &Repository{
		backend:  backend,
		defaults: attendance.ClonePhases(defaults),
		logger:   logger,
	}
}

// Read returns the stored record exactly as persisted, without healing.
// It returns storage.ErrNotFound if no record exists.
func (r *Repository) Read(ctx context.Context) (*attendance.Record, error) {
	data, err := r.backend.Get(ctx, RecordKey)
	if err != nil {
		return nil, err
	}

	var record attendance.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse attendance record: %w", err)
	}

	return &record, nil
}

// Load returns the current record and never fails.
//
// Side effect: a stored record with missing fields is healed with defaults
// and written back before it is returned. The healed document is only
// written when its encoding differs from what is stored, so repeated loads
// leave the stored bytes unchanged. If nothing is stored, or storage is
// unreadable, a fresh default record is returned without being persisted.
func (r *Repository) Load(ctx context.Context) *attendance.Record {
	record, err := r.loadAndHeal(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("Failed to load attendance record, using defaults",
				zap.Error(err))
		}
		return r.newDefaultRecord()
	}
	return record
}

// Save persists the full record, replacing any prior value
func (r *Repository) Save(ctx context.Context, record *attendance.Record) error {
	data, err := encode(record)
	if err != nil {
		return err
	}

	if err := r.backend.Set(ctx, RecordKey, data); err != nil {
		return fmt.Errorf("failed to save attendance record: %w", err)
	}

	r.logger.Debug("Attendance record saved",
		zap.Int("attended", len(record.AttendedDates)),
		zap.Int("holidays", len(record.Holidays)))

	return nil
}

// Initialize writes a fresh record for the profile, overwriting any previous one
func (r *Repository) Initialize(ctx context.Context, profile attendance.Profile) (*attendance.Record, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	record := attendance.NewRecord(profile, r.defaults)
	if err := r.Save(ctx, record); err != nil {
		return nil, err
	}
	if err := r.backend.Set(ctx, UserNameKey, []byte(profile.UserName)); err != nil {
		return nil, fmt.Errorf("failed to save user name: %w", err)
	}

	r.logger.Info("Attendance record initialized",
		zap.String("user", profile.UserName),
		zap.Int("phases", len(record.Phases)))

	return record, nil
}

// UserName returns the onboarded display name, or "" before onboarding
func (r *Repository) UserName(ctx context.Context) (string, error) {
	data, err := r.backend.Get(ctx, UserNameKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read user name: %w", err)
	}
	return string(data), nil
}

// IsOnboarded reports whether onboarding has been completed
func (r *Repository) IsOnboarded(ctx context.Context) (bool, error) {
	name, err := r.UserName(ctx)
	if err != nil {
		return false, err
	}
	return name != "", nil
}

// Reset deletes the attendance record and the user name.
// Other keys in the backend are left alone.
func (r *Repository) Reset(ctx context.Context) error {
	for _, key := range []string{RecordKey, UserNameKey} {
		if err := r.backend.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to reset storage: %w", err)
		}
	}
	r.logger.Info("Attendance data reset")
	return nil
}

// loadAndHeal reads the stored record, fills missing fields and persists
// the healed version when it differs from the stored bytes
func (r *Repository) loadAndHeal(ctx context.Context) (*attendance.Record, error) {
	stored, err := r.backend.Get(ctx, RecordKey)
	if err != nil {
		return nil, err
	}

	var record attendance.Record
	if err := json.Unmarshal(stored, &record); err != nil {
		return nil, fmt.Errorf("failed to parse attendance record: %w", err)
	}

	r.heal(&record)

	healed, err := encode(&record)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(healed, stored) {
		if err := r.backend.Set(ctx, RecordKey, healed); err != nil {
			return nil, fmt.Errorf("failed to save healed record: %w", err)
		}
		r.logger.Info("Attendance record healed",
			zap.Int("phases", len(record.Phases)))
	}

	return &record, nil
}

// heal fills missing collections and removes duplicate dates
func (r *Repository) heal(record *attendance.Record) {
	if len(record.Phases) == 0 {
		record.Phases = attendance.ClonePhases(r.defaults)
	}

	attended := []string{}
	record.AttendedDates = appendUnique(attended, record.AttendedDates)

	holidays := []string{}
	record.Holidays = appendUnique(holidays, record.Holidays)
}

func (r *Repository) newDefaultRecord() *attendance.Record {
	return attendance.NewRecord(attendance.Profile{UserName: defaultUserName}, r.defaults)
}

func appendUnique(dst, src []string) []string {
	seen := make(map[string]bool, len(dst)+len(src))
	for _, v := range dst {
		seen[v] = true
	}
	for _, v := range src {
		if seen[v] {
			continue
		}
		seen[v] = true
		dst = append(dst, v)
	}
	return dst
}

func encode(record *attendance.Record) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attendance record: %w", err)
	}
	return data, nil
}
