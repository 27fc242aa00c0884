package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"itgportal/internal/adapters/cache"
	"itgportal/internal/domain/availability"
	"itgportal/internal/domain/civildate"
	"itgportal/internal/domain/coach"
)

// MaxRangeDays caps a single bulk availability write.
const MaxRangeDays = 366

// ErrRangeTooLong is returned when a bulk range exceeds MaxRangeDays.
var ErrRangeTooLong = errors.New("date range cannot exceed 366 days")

// AvailabilityStoreForOrchestrator defines the store interface needed by availability orchestrators.
type AvailabilityStoreForOrchestrator interface {
	Upsert(ctx context.Context, value availability.Record) (availability.Record, error)
	UpsertRange(ctx context.Context, values []availability.Record) error
	Delete(ctx context.Context, coachID, date string) error
	DeleteRange(ctx context.Context, coachID, startDate, endDate string) (int, error)
}

// CoachLookup resolves a coach by ID.
type CoachLookup interface {
	GetByID(ctx context.Context, id string) (coach.Coach, error)
}

// SummaryInvalidator drops cached yearly summaries after a write.
type SummaryInvalidator interface {
	Invalidate(ctx context.Context, scope cache.Scope, entityID string, years ...int) error
}

// --- Set Availability (one day) ---

// SetAvailabilityInput carries input for setting one day's status.
type SetAvailabilityInput struct {
	CoachID string
	Date    string
	Status  string
	Reason  string
}

// SetAvailabilityDeps holds dependencies for SetAvailability.
type SetAvailabilityDeps struct {
	AvailabilityStore AvailabilityStoreForOrchestrator
	CoachStore        CoachLookup
	Cache             SummaryInvalidator
	GenerateID        func() string
	Now               func() time.Time
}

// SetAvailabilityResult reports what was stored. Cleared is true when the day
// went back to the default available status and its record was removed.
type SetAvailabilityResult struct {
	Record  availability.Record
	Cleared bool
}

// ExecuteSetAvailability stores one coach's status for one day.
// PRE: CoachID names an existing coach; Date is YYYY-MM-DD; Status is in the closed enum
// POST: At most one record exists for (CoachID, Date); available removes it
func ExecuteSetAvailability(ctx context.Context, input SetAvailabilityInput, deps SetAvailabilityDeps) (SetAvailabilityResult, error) {
	if _, err := deps.CoachStore.GetByID(ctx, input.CoachID); err != nil {
		return SetAvailabilityResult{}, err
	}

	now := deps.Now()
	rec := availability.Record{
		ID:        deps.GenerateID(),
		CoachID:   input.CoachID,
		Date:      input.Date,
		Status:    input.Status,
		Reason:    input.Reason,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := rec.Validate(); err != nil {
		return SetAvailabilityResult{}, err
	}

	stored, cleared, err := writeDay(ctx, deps.AvailabilityStore, rec)
	if err != nil {
		return SetAvailabilityResult{}, err
	}
	invalidateYears(ctx, deps.Cache, cache.ScopeAvailability, rec.CoachID, rec.Date, rec.Date)

	slog.Info("availability_event", "event", "availability_set", "coach_id", rec.CoachID, "date", rec.Date, "status", rec.Status, "cleared", cleared)
	return SetAvailabilityResult{Record: stored, Cleared: cleared}, nil
}

func writeDay(ctx context.Context, store AvailabilityStoreForOrchestrator, rec availability.Record) (availability.Record, bool, error) {
	if rec.Status == availability.StatusAvailable {
		if err := store.Delete(ctx, rec.CoachID, rec.Date); err != nil {
			return availability.Record{}, false, err
		}
		return rec, true, nil
	}
	stored, err := store.Upsert(ctx, rec)
	return stored, false, err
}

// --- Set Availability Range ---

// SetAvailabilityRangeInput carries input for a bulk write.
type SetAvailabilityRangeInput struct {
	CoachID   string
	StartDate string
	EndDate   string
	Status    string
	Reason    string
}

// SetAvailabilityRangeDeps holds dependencies for SetAvailabilityRange.
// Notify is optional; when set it runs after a time-off range is written.
type SetAvailabilityRangeDeps struct {
	AvailabilityStore AvailabilityStoreForOrchestrator
	CoachStore        CoachLookup
	Cache             SummaryInvalidator
	Notify            func(ctx context.Context, input NotifyTimeOffInput) error
	GenerateID        func() string
	Now               func() time.Time
}

// SetAvailabilityRangeResult reports how many days were written.
// NoticeQueued means delivery failed and the notice waits in the outbox.
type SetAvailabilityRangeResult struct {
	Days         int
	Notified     bool
	NoticeQueued bool
}

// ExecuteSetAvailabilityRange writes one status and reason to every day of an inclusive range.
// PRE: StartDate <= EndDate, span <= MaxRangeDays, coach exists
// POST: Each day holds the status (or no record for available); summary cache invalidated
// for every covered year once a write was attempted, even if it failed
func ExecuteSetAvailabilityRange(ctx context.Context, input SetAvailabilityRangeInput, deps SetAvailabilityRangeDeps) (SetAvailabilityRangeResult, error) {
	dates, err := civildate.GenerateDateRange(input.StartDate, input.EndDate)
	if err != nil {
		return SetAvailabilityRangeResult{}, err
	}
	if len(dates) > MaxRangeDays {
		return SetAvailabilityRangeResult{}, ErrRangeTooLong
	}

	c, err := deps.CoachStore.GetByID(ctx, input.CoachID)
	if err != nil {
		return SetAvailabilityRangeResult{}, err
	}

	now := deps.Now()
	template := availability.Record{CoachID: input.CoachID, Date: input.StartDate, Status: input.Status, Reason: input.Reason}
	if err := template.Validate(); err != nil {
		return SetAvailabilityRangeResult{}, err
	}

	if input.Status == availability.StatusAvailable {
		_, err = deps.AvailabilityStore.DeleteRange(ctx, input.CoachID, input.StartDate, input.EndDate)
	} else {
		recs := make([]availability.Record, len(dates))
		for i, d := range dates {
			rec := template
			rec.ID = deps.GenerateID()
			rec.Date = d
			rec.CreatedAt = now
			rec.UpdatedAt = now
			recs[i] = rec
		}
		err = deps.AvailabilityStore.UpsertRange(ctx, recs)
	}
	// A store without transactions may have written part of the range.
	invalidateYears(ctx, deps.Cache, cache.ScopeAvailability, input.CoachID, input.StartDate, input.EndDate)
	if err != nil {
		return SetAvailabilityRangeResult{}, fmt.Errorf("write range %s..%s: %w", input.StartDate, input.EndDate, err)
	}

	result := SetAvailabilityRangeResult{Days: len(dates)}
	slog.Info("availability_event", "event", "availability_range_set", "coach_id", input.CoachID, "start", input.StartDate, "end", input.EndDate, "status", input.Status, "days", result.Days)

	if deps.Notify != nil && availability.IsTimeOff(input.Status) {
		err := deps.Notify(ctx, NotifyTimeOffInput{
			Coach:     c,
			StartDate: input.StartDate,
			EndDate:   input.EndDate,
			Status:    input.Status,
			Reason:    input.Reason,
			Days:      result.Days,
		})
		switch {
		case errors.Is(err, ErrNoticeQueued):
			result.NoticeQueued = true
		case err != nil:
			slog.Warn("availability_event", "event", "time_off_notify_failed", "coach_id", input.CoachID, "error", err)
		default:
			result.Notified = true
		}
	}
	return result, nil
}

// --- Clear Availability Range ---

// ClearAvailabilityRangeInput carries input for removing a range.
type ClearAvailabilityRangeInput struct {
	CoachID   string
	StartDate string
	EndDate   string
}

// ClearAvailabilityRangeDeps holds dependencies for ClearAvailabilityRange.
type ClearAvailabilityRangeDeps struct {
	AvailabilityStore AvailabilityStoreForOrchestrator
	CoachStore        CoachLookup
	Cache             SummaryInvalidator
}

// ExecuteClearAvailabilityRange removes a coach's records in an inclusive range,
// returning every day in it to available.
// PRE: StartDate <= EndDate, coach exists
// POST: Returns the number of records removed
func ExecuteClearAvailabilityRange(ctx context.Context, input ClearAvailabilityRangeInput, deps ClearAvailabilityRangeDeps) (int, error) {
	if _, err := civildate.DaysDifference(input.StartDate, input.EndDate); err != nil {
		return 0, err
	}
	if input.StartDate > input.EndDate {
		return 0, fmt.Errorf("%w: %s > %s", civildate.ErrInvalidRange, input.StartDate, input.EndDate)
	}
	if _, err := deps.CoachStore.GetByID(ctx, input.CoachID); err != nil {
		return 0, err
	}

	n, err := deps.AvailabilityStore.DeleteRange(ctx, input.CoachID, input.StartDate, input.EndDate)
	if err != nil {
		return 0, err
	}
	invalidateYears(ctx, deps.Cache, cache.ScopeAvailability, input.CoachID, input.StartDate, input.EndDate)

	slog.Info("availability_event", "event", "availability_range_cleared", "coach_id", input.CoachID, "start", input.StartDate, "end", input.EndDate, "removed", n)
	return n, nil
}

// yearsBetween lists every calendar year touched by [start, end].
// PRE: start and end are valid civil dates, start <= end
func yearsBetween(start, end string) []int {
	first, _ := strconv.Atoi(start[:4])
	last, _ := strconv.Atoi(end[:4])
	years := make([]int, 0, last-first+1)
	for y := first; y <= last; y++ {
		years = append(years, y)
	}
	return years
}

// invalidateYears drops cached summaries; cache failures are logged, not returned,
// since the entries expire on their own.
func invalidateYears(ctx context.Context, c SummaryInvalidator, scope cache.Scope, entityID, start, end string) {
	if c == nil {
		return
	}
	if err := c.Invalidate(ctx, scope, entityID, yearsBetween(start, end)...); err != nil {
		slog.Warn("summary_cache_invalidate_failed", "scope", scope, "entity_id", entityID, "error", err)
	}
}
