package projections

import (
	"context"
	"fmt"
	"sort"

	"itgportal/internal/adapters/cache"
	"itgportal/internal/adapters/storage"
	"itgportal/internal/adapters/storage/availability"
	"itgportal/internal/adapters/storage/client"
	"itgportal/internal/adapters/storage/coach"
	domainAttendance "itgportal/internal/domain/attendance"
	domainAvailability "itgportal/internal/domain/availability"
	domainClient "itgportal/internal/domain/client"
	domainCoach "itgportal/internal/domain/coach"
	"itgportal/internal/domain/summary"
)

// mockCoachStore implements CoachStore for testing.
type mockCoachStore struct {
	coaches []domainCoach.Coach
}

// GetByID implements CoachStore for testing.
// PRE: id is non-empty
// POST: Returns the stored coach or storage.ErrNotFound
func (m *mockCoachStore) GetByID(_ context.Context, id string) (domainCoach.Coach, error) {
	for _, c := range m.coaches {
		if c.ID == id {
			return c, nil
		}
	}
	return domainCoach.Coach{}, fmt.Errorf("coach %s: %w", id, storage.ErrNotFound)
}

// List implements CoachStore for testing.
func (m *mockCoachStore) List(_ context.Context, filter coach.ListFilter) ([]domainCoach.Coach, error) {
	var out []domainCoach.Coach
	for _, c := range m.coaches {
		if filter.ActiveOnly && !c.Active {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// mockClientStore implements ClientStore for testing.
type mockClientStore struct {
	clients []domainClient.Client
}

// GetByID implements ClientStore for testing.
// PRE: id is non-empty
// POST: Returns the stored client or storage.ErrNotFound
func (m *mockClientStore) GetByID(_ context.Context, id string) (domainClient.Client, error) {
	for _, c := range m.clients {
		if c.ID == id {
			return c, nil
		}
	}
	return domainClient.Client{}, fmt.Errorf("client %s: %w", id, storage.ErrNotFound)
}

// List implements ClientStore for testing.
func (m *mockClientStore) List(_ context.Context, filter client.ListFilter) ([]domainClient.Client, error) {
	var out []domainClient.Client
	for _, c := range m.clients {
		if filter.Program != "" && c.Program != filter.Program {
			continue
		}
		if filter.CoachID != "" && c.CoachID != filter.CoachID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// mockAvailabilityStore implements AvailabilityStore for testing.
type mockAvailabilityStore struct {
	records []domainAvailability.Record
	calls   int
}

// ListByCoach implements AvailabilityStore for testing.
// PRE: coachID is non-empty
// POST: Returns matching records ordered by date
func (m *mockAvailabilityStore) ListByCoach(_ context.Context, coachID string, filter availability.ListFilter) ([]domainAvailability.Record, error) {
	m.calls++
	var out []domainAvailability.Record
	for _, r := range m.records {
		if r.CoachID != coachID {
			continue
		}
		if filter.StartDate != "" && r.Date < filter.StartDate {
			continue
		}
		if filter.EndDate != "" && r.Date > filter.EndDate {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// ListByDate implements AvailabilityStore for testing.
func (m *mockAvailabilityStore) ListByDate(_ context.Context, date string) ([]domainAvailability.Record, error) {
	var out []domainAvailability.Record
	for _, r := range m.records {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

// mockAttendanceStore implements AttendanceStore for testing.
type mockAttendanceStore struct {
	records []domainAttendance.Record
}

// ListByClient implements AttendanceStore for testing.
func (m *mockAttendanceStore) ListByClient(_ context.Context, clientID, start, end string) ([]domainAttendance.Record, error) {
	var out []domainAttendance.Record
	for _, r := range m.records {
		if r.ClientID == clientID && r.Date >= start && r.Date <= end {
			out = append(out, r)
		}
	}
	return out, nil
}

// mockSummaryCache implements SummaryCache with a map.
type mockSummaryCache struct {
	entries map[string]summary.YearlySummary
	getErr  error
}

func newMockSummaryCache() *mockSummaryCache {
	return &mockSummaryCache{entries: make(map[string]summary.YearlySummary)}
}

// Get implements SummaryCache for testing.
func (m *mockSummaryCache) Get(_ context.Context, scope cache.Scope, id string, year int) (summary.YearlySummary, bool, error) {
	if m.getErr != nil {
		return summary.YearlySummary{}, false, m.getErr
	}
	s, ok := m.entries[cache.Key(scope, id, year)]
	return s, ok, nil
}

// Set implements SummaryCache for testing.
func (m *mockSummaryCache) Set(_ context.Context, scope cache.Scope, s summary.YearlySummary) error {
	m.entries[cache.Key(scope, s.EntityID, s.Year)] = s
	return nil
}

func avail(coachID, date, status, reason string) domainAvailability.Record {
	return domainAvailability.Record{CoachID: coachID, Date: date, Status: status, Reason: reason}
}

var (
	coachAlice = domainCoach.Coach{ID: "coach-1", Name: "Alice Mercer", Email: "alice@itg.example", Active: true}
	coachBash  = domainCoach.Coach{ID: "coach-2", Name: "Bashir Okafor", Email: "bashir@itg.example", Active: true}
	coachGone  = domainCoach.Coach{ID: "coach-3", Name: "Carl Retired", Email: "carl@itg.example", Active: false}
)
