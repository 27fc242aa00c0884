package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"itgportal/internal/adapters/cache"
	"itgportal/internal/adapters/storage"
	"itgportal/internal/domain/availability"
	"itgportal/internal/domain/civildate"
)

func setDeps(store *mockAvailabilityStore, inv *mockInvalidator) SetAvailabilityDeps {
	return SetAvailabilityDeps{
		AvailabilityStore: store,
		CoachStore:        newMockCoachStore(testCoach),
		Cache:             inv,
		GenerateID:        seqIDs(),
		Now:               fixedNow,
	}
}

// TestExecuteSetAvailability_StoresDay verifies a time-off day is stored and the year invalidated.
func TestExecuteSetAvailability_StoresDay(t *testing.T) {
	store := newMockAvailabilityStore()
	inv := &mockInvalidator{}

	res, err := ExecuteSetAvailability(context.Background(), SetAvailabilityInput{
		CoachID: "coach-1", Date: "2024-03-01", Status: "vacation", Reason: "Trip",
	}, setDeps(store, inv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Cleared {
		t.Error("vacation should not clear")
	}
	if res.Record.ID != "id-1" || !res.Record.CreatedAt.Equal(fixedTime) {
		t.Errorf("record = %+v", res.Record)
	}
	if got := store.dates("coach-1"); !reflect.DeepEqual(got, []string{"2024-03-01"}) {
		t.Errorf("stored dates = %v", got)
	}
	if len(inv.calls) != 1 || inv.calls[0].scope != cache.ScopeAvailability || !reflect.DeepEqual(inv.calls[0].years, []int{2024}) {
		t.Errorf("invalidations = %+v", inv.calls)
	}
}

// TestExecuteSetAvailability_AvailableClears verifies that setting available removes the record.
func TestExecuteSetAvailability_AvailableClears(t *testing.T) {
	store := newMockAvailabilityStore()
	store.records[availKey("coach-1", "2024-03-01")] = availability.Record{ID: "old", CoachID: "coach-1", Date: "2024-03-01", Status: "off"}

	res, err := ExecuteSetAvailability(context.Background(), SetAvailabilityInput{
		CoachID: "coach-1", Date: "2024-03-01", Status: "available",
	}, setDeps(store, &mockInvalidator{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Cleared {
		t.Error("expected Cleared")
	}
	if len(store.records) != 0 {
		t.Errorf("records left: %v", store.records)
	}
}

// TestExecuteSetAvailability_Errors covers validation and lookup failures.
func TestExecuteSetAvailability_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   SetAvailabilityInput
		wantErr error
	}{
		{"unknown coach", SetAvailabilityInput{CoachID: "ghost", Date: "2024-03-01", Status: "off"}, storage.ErrNotFound},
		{"bad date", SetAvailabilityInput{CoachID: "coach-1", Date: "03/01/2024", Status: "off"}, civildate.ErrInvalidDateFormat},
		{"bad status", SetAvailabilityInput{CoachID: "coach-1", Date: "2024-03-01", Status: "busy"}, availability.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockAvailabilityStore()
			_, err := ExecuteSetAvailability(context.Background(), tt.input, setDeps(store, &mockInvalidator{}))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if len(store.records) != 0 {
				t.Error("nothing should be written on error")
			}
		})
	}
}

// TestExecuteSetAvailability_CacheFailureIgnored verifies cache errors do not fail the write.
func TestExecuteSetAvailability_CacheFailureIgnored(t *testing.T) {
	store := newMockAvailabilityStore()
	inv := &mockInvalidator{err: errors.New("redis down")}
	if _, err := ExecuteSetAvailability(context.Background(), SetAvailabilityInput{
		CoachID: "coach-1", Date: "2024-03-01", Status: "sick",
	}, setDeps(store, inv)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func rangeDeps(store *mockAvailabilityStore, inv *mockInvalidator, notified *[]NotifyTimeOffInput) SetAvailabilityRangeDeps {
	return SetAvailabilityRangeDeps{
		AvailabilityStore: store,
		CoachStore:        newMockCoachStore(testCoach),
		Cache:             inv,
		Notify: func(_ context.Context, in NotifyTimeOffInput) error {
			*notified = append(*notified, in)
			return nil
		},
		GenerateID: seqIDs(),
		Now:        fixedNow,
	}
}

// TestExecuteSetAvailabilityRange_AcrossYears verifies every day is written and both years invalidated.
func TestExecuteSetAvailabilityRange_AcrossYears(t *testing.T) {
	store := newMockAvailabilityStore()
	inv := &mockInvalidator{}
	var notified []NotifyTimeOffInput

	res, err := ExecuteSetAvailabilityRange(context.Background(), SetAvailabilityRangeInput{
		CoachID: "coach-1", StartDate: "2024-12-30", EndDate: "2025-01-02", Status: "vacation", Reason: "Holidays",
	}, rangeDeps(store, inv, &notified))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Days != 4 || !res.Notified {
		t.Errorf("result = %+v", res)
	}
	want := []string{"2024-12-30", "2024-12-31", "2025-01-01", "2025-01-02"}
	if got := store.dates("coach-1"); !reflect.DeepEqual(got, want) {
		t.Errorf("dates = %v, want %v", got, want)
	}
	if len(inv.calls) != 1 || !reflect.DeepEqual(inv.calls[0].years, []int{2024, 2025}) {
		t.Errorf("invalidations = %+v", inv.calls)
	}
	if len(notified) != 1 || notified[0].Days != 4 || notified[0].Coach.Name != "Alice Mercer" {
		t.Errorf("notified = %+v", notified)
	}
}

// TestExecuteSetAvailabilityRange_AvailableNoNotify verifies available clears without notifying.
func TestExecuteSetAvailabilityRange_AvailableNoNotify(t *testing.T) {
	store := newMockAvailabilityStore()
	for _, d := range []string{"2024-03-01", "2024-03-02", "2024-03-05"} {
		store.records[availKey("coach-1", d)] = availability.Record{CoachID: "coach-1", Date: d, Status: "off"}
	}
	var notified []NotifyTimeOffInput

	res, err := ExecuteSetAvailabilityRange(context.Background(), SetAvailabilityRangeInput{
		CoachID: "coach-1", StartDate: "2024-03-01", EndDate: "2024-03-03", Status: "available",
	}, rangeDeps(store, &mockInvalidator{}, &notified))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Days != 3 || res.Notified {
		t.Errorf("result = %+v", res)
	}
	if got := store.dates("coach-1"); !reflect.DeepEqual(got, []string{"2024-03-05"}) {
		t.Errorf("dates = %v", got)
	}
	if len(notified) != 0 {
		t.Error("available must not notify")
	}
}

// TestExecuteSetAvailabilityRange_NotifyFailure verifies a failed notification does not fail the write.
func TestExecuteSetAvailabilityRange_NotifyFailure(t *testing.T) {
	store := newMockAvailabilityStore()
	var notified []NotifyTimeOffInput
	deps := rangeDeps(store, &mockInvalidator{}, &notified)
	deps.Notify = func(context.Context, NotifyTimeOffInput) error { return errors.New("smtp down") }

	res, err := ExecuteSetAvailabilityRange(context.Background(), SetAvailabilityRangeInput{
		CoachID: "coach-1", StartDate: "2024-03-01", EndDate: "2024-03-01", Status: "sick",
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Notified || res.Days != 1 {
		t.Errorf("result = %+v", res)
	}
}

// TestExecuteSetAvailabilityRange_NoticeQueued reports a queued notice separately from a delivered one.
func TestExecuteSetAvailabilityRange_NoticeQueued(t *testing.T) {
	store := newMockAvailabilityStore()
	var notified []NotifyTimeOffInput
	deps := rangeDeps(store, &mockInvalidator{}, &notified)
	deps.Notify = func(context.Context, NotifyTimeOffInput) error {
		return fmt.Errorf("%w: %w", ErrNoticeQueued, errors.New("smtp down"))
	}

	res, err := ExecuteSetAvailabilityRange(context.Background(), SetAvailabilityRangeInput{
		CoachID: "coach-1", StartDate: "2024-03-01", EndDate: "2024-03-02", Status: "vacation",
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Notified || !res.NoticeQueued || res.Days != 2 {
		t.Errorf("result = %+v", res)
	}
}

// TestExecuteSetAvailabilityRange_Errors covers range and validation failures.
func TestExecuteSetAvailabilityRange_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   SetAvailabilityRangeInput
		wantErr error
	}{
		{"reversed", SetAvailabilityRangeInput{CoachID: "coach-1", StartDate: "2024-03-05", EndDate: "2024-03-01", Status: "off"}, civildate.ErrInvalidRange},
		{"bad start", SetAvailabilityRangeInput{CoachID: "coach-1", StartDate: "2024-3-5", EndDate: "2024-03-06", Status: "off"}, civildate.ErrInvalidDateFormat},
		{"too long", SetAvailabilityRangeInput{CoachID: "coach-1", StartDate: "2024-01-01", EndDate: "2025-01-01", Status: "off"}, ErrRangeTooLong},
		{"unknown coach", SetAvailabilityRangeInput{CoachID: "ghost", StartDate: "2024-03-01", EndDate: "2024-03-02", Status: "off"}, storage.ErrNotFound},
		{"bad status", SetAvailabilityRangeInput{CoachID: "coach-1", StartDate: "2024-03-01", EndDate: "2024-03-02", Status: "away"}, availability.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockAvailabilityStore()
			var notified []NotifyTimeOffInput
			_, err := ExecuteSetAvailabilityRange(context.Background(), tt.input, rangeDeps(store, &mockInvalidator{}, &notified))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if len(store.records) != 0 {
				t.Error("nothing should be written on error")
			}
		})
	}
}

// TestExecuteSetAvailabilityRange_FullLeapYear verifies a 366-day range is accepted.
func TestExecuteSetAvailabilityRange_FullLeapYear(t *testing.T) {
	store := newMockAvailabilityStore()
	var notified []NotifyTimeOffInput
	res, err := ExecuteSetAvailabilityRange(context.Background(), SetAvailabilityRangeInput{
		CoachID: "coach-1", StartDate: "2024-01-01", EndDate: "2024-12-31", Status: "off",
	}, rangeDeps(store, &mockInvalidator{}, &notified))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Days != 366 || len(store.records) != 366 {
		t.Errorf("days = %d, stored = %d", res.Days, len(store.records))
	}
}

// TestExecuteSetAvailabilityRange_StoreFailure reports the failing date and still
// drops cached summaries for the days already written.
func TestExecuteSetAvailabilityRange_StoreFailure(t *testing.T) {
	store := newMockAvailabilityStore()
	store.failOn = "2025-01-01"
	inv := &mockInvalidator{}
	var notified []NotifyTimeOffInput
	_, err := ExecuteSetAvailabilityRange(context.Background(), SetAvailabilityRangeInput{
		CoachID: "coach-1", StartDate: "2024-12-30", EndDate: "2025-01-02", Status: "off",
	}, rangeDeps(store, inv, &notified))
	if err == nil || err.Error() != "write range 2024-12-30..2025-01-02: 2025-01-01: write failed" {
		t.Errorf("err = %v", err)
	}
	if got := store.dates("coach-1"); !reflect.DeepEqual(got, []string{"2024-12-30", "2024-12-31"}) {
		t.Errorf("partially written = %v", got)
	}
	if len(inv.calls) != 1 || !reflect.DeepEqual(inv.calls[0].years, []int{2024, 2025}) {
		t.Errorf("invalidations = %+v, want 2024 and 2025 dropped", inv.calls)
	}
	if len(notified) != 0 {
		t.Error("failed write must not notify")
	}
}

// TestExecuteClearAvailabilityRange verifies removal counts and validation.
func TestExecuteClearAvailabilityRange(t *testing.T) {
	store := newMockAvailabilityStore()
	for _, d := range []string{"2024-02-28", "2024-03-01", "2024-03-02", "2024-03-10"} {
		store.records[availKey("coach-1", d)] = availability.Record{CoachID: "coach-1", Date: d, Status: "off"}
	}
	inv := &mockInvalidator{}
	deps := ClearAvailabilityRangeDeps{AvailabilityStore: store, CoachStore: newMockCoachStore(testCoach), Cache: inv}

	n, err := ExecuteClearAvailabilityRange(context.Background(), ClearAvailabilityRangeInput{
		CoachID: "coach-1", StartDate: "2024-03-01", EndDate: "2024-03-05",
	}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("removed = %d, want 2", n)
	}
	if got := store.dates("coach-1"); !reflect.DeepEqual(got, []string{"2024-02-28", "2024-03-10"}) {
		t.Errorf("dates = %v", got)
	}
	if len(inv.calls) != 1 {
		t.Errorf("invalidations = %d", len(inv.calls))
	}

	if _, err := ExecuteClearAvailabilityRange(context.Background(), ClearAvailabilityRangeInput{
		CoachID: "coach-1", StartDate: "2024-03-05", EndDate: "2024-03-01",
	}, deps); !errors.Is(err, civildate.ErrInvalidRange) {
		t.Errorf("reversed err = %v", err)
	}
	if _, err := ExecuteClearAvailabilityRange(context.Background(), ClearAvailabilityRangeInput{
		CoachID: "ghost", StartDate: "2024-03-01", EndDate: "2024-03-05",
	}, deps); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("unknown coach err = %v", err)
	}
}

// TestYearsBetween lists touched years.
func TestYearsBetween(t *testing.T) {
	if got := yearsBetween("2023-11-01", "2025-02-01"); !reflect.DeepEqual(got, []int{2023, 2024, 2025}) {
		t.Errorf("yearsBetween = %v", got)
	}
	if got := yearsBetween("2024-01-01", "2024-01-01"); !reflect.DeepEqual(got, []int{2024}) {
		t.Errorf("yearsBetween = %v", got)
	}
}
