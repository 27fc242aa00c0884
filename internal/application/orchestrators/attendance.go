package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"itgportal/internal/adapters/cache"
	"itgportal/internal/domain/attendance"
	"itgportal/internal/domain/civildate"
	"itgportal/internal/domain/client"
)

// ErrEmptyBatch is returned when a batch carries no entries.
var ErrEmptyBatch = errors.New("attendance batch must contain at least one entry")

// AttendanceStoreForOrchestrator defines the store interface needed by attendance orchestrators.
type AttendanceStoreForOrchestrator interface {
	Upsert(ctx context.Context, value attendance.Record) (attendance.Record, error)
}

// ClientLookup resolves a client by ID.
type ClientLookup interface {
	GetByID(ctx context.Context, id string) (client.Client, error)
}

// --- Record Attendance ---

// RecordAttendanceInput carries one client's attendance for one day.
type RecordAttendanceInput struct {
	ClientID string
	Date     string
	Present  bool
	Notes    string
}

// RecordAttendanceDeps holds dependencies for RecordAttendance.
type RecordAttendanceDeps struct {
	AttendanceStore AttendanceStoreForOrchestrator
	ClientStore     ClientLookup
	Cache           SummaryInvalidator
	GenerateID      func() string
	Now             func() time.Time
}

// ExecuteRecordAttendance stores a Grace client's attendance for one day.
// PRE: ClientID names a grace-program client; Date is YYYY-MM-DD
// POST: Exactly one record exists for (ClientID, Date)
func ExecuteRecordAttendance(ctx context.Context, input RecordAttendanceInput, deps RecordAttendanceDeps) (attendance.Record, error) {
	c, err := deps.ClientStore.GetByID(ctx, input.ClientID)
	if err != nil {
		return attendance.Record{}, err
	}
	if !c.TracksAttendance() {
		return attendance.Record{}, client.ErrNotGrace
	}

	rec := attendance.Record{
		ID:         deps.GenerateID(),
		ClientID:   input.ClientID,
		Date:       input.Date,
		Present:    input.Present,
		Notes:      input.Notes,
		RecordedAt: deps.Now(),
	}
	if err := rec.Validate(); err != nil {
		return attendance.Record{}, err
	}

	stored, err := deps.AttendanceStore.Upsert(ctx, rec)
	if err != nil {
		return attendance.Record{}, err
	}
	invalidateYears(ctx, deps.Cache, cache.ScopeAttendance, rec.ClientID, rec.Date, rec.Date)

	slog.Info("attendance_event", "event", "attendance_recorded", "client_id", rec.ClientID, "date", rec.Date, "present", rec.Present)
	return stored, nil
}

// --- Record Attendance Batch ---

// AttendanceEntry is one client's line in a daily roll call.
type AttendanceEntry struct {
	ClientID string
	Present  bool
	Notes    string
}

// RecordAttendanceBatchInput carries a full roll call for one day.
type RecordAttendanceBatchInput struct {
	Date    string
	Entries []AttendanceEntry
}

// ExecuteRecordAttendanceBatch records a roll call. Every entry is checked
// before anything is written, so a bad entry leaves the day untouched.
// PRE: Date is YYYY-MM-DD; at least one entry
// POST: One record per entry; a validation error writes none, a store error
// mid-batch keeps the entries already written (each with its cache dropped)
func ExecuteRecordAttendanceBatch(ctx context.Context, input RecordAttendanceBatchInput, deps RecordAttendanceDeps) ([]attendance.Record, error) {
	if len(input.Entries) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := civildate.Validate(input.Date); err != nil {
		return nil, err
	}

	now := deps.Now()
	pending := make([]attendance.Record, 0, len(input.Entries))
	for _, e := range input.Entries {
		c, err := deps.ClientStore.GetByID(ctx, e.ClientID)
		if err != nil {
			return nil, err
		}
		if !c.TracksAttendance() {
			return nil, fmt.Errorf("client %s: %w", e.ClientID, client.ErrNotGrace)
		}
		rec := attendance.Record{
			ID:         deps.GenerateID(),
			ClientID:   e.ClientID,
			Date:       input.Date,
			Present:    e.Present,
			Notes:      e.Notes,
			RecordedAt: now,
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("client %s: %w", e.ClientID, err)
		}
		pending = append(pending, rec)
	}

	stored := make([]attendance.Record, 0, len(pending))
	for _, rec := range pending {
		out, err := deps.AttendanceStore.Upsert(ctx, rec)
		if err != nil {
			return nil, fmt.Errorf("client %s: %w", rec.ClientID, err)
		}
		invalidateYears(ctx, deps.Cache, cache.ScopeAttendance, rec.ClientID, rec.Date, rec.Date)
		stored = append(stored, out)
	}

	slog.Info("attendance_event", "event", "attendance_batch_recorded", "date", input.Date, "entries", len(stored))
	return stored, nil
}
