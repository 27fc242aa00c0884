package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"itgportal/internal/adapters/cache"
	"itgportal/internal/adapters/email"
	"itgportal/internal/adapters/storage"
	coachStore "itgportal/internal/adapters/storage/coach"
	"itgportal/internal/domain/attendance"
	"itgportal/internal/domain/availability"
	"itgportal/internal/domain/client"
	"itgportal/internal/domain/coach"
	"itgportal/internal/domain/outbox"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// seqIDs returns a generator yielding id-1, id-2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// --- Mock availability store ---

type mockAvailabilityStore struct {
	records map[string]availability.Record // key: coachID|date
	failOn  string                         // date whose write fails
}

func newMockAvailabilityStore() *mockAvailabilityStore {
	return &mockAvailabilityStore{records: make(map[string]availability.Record)}
}

func availKey(coachID, date string) string { return coachID + "|" + date }

// Upsert stores a mock record, keeping the original ID on update.
// PRE: rec has CoachID and Date
// POST: One record per (CoachID, Date)
func (m *mockAvailabilityStore) Upsert(_ context.Context, rec availability.Record) (availability.Record, error) {
	if rec.Date == m.failOn {
		return availability.Record{}, errors.New("write failed")
	}
	k := availKey(rec.CoachID, rec.Date)
	if existing, ok := m.records[k]; ok {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	}
	m.records[k] = rec
	return rec, nil
}

// UpsertRange writes records in order and stops at failOn, leaving earlier days
// written the way a store without transactions would.
// PRE: records share a CoachID
// POST: Every record before failOn is stored
func (m *mockAvailabilityStore) UpsertRange(ctx context.Context, recs []availability.Record) error {
	for _, rec := range recs {
		if _, err := m.Upsert(ctx, rec); err != nil {
			return fmt.Errorf("%s: %w", rec.Date, err)
		}
	}
	return nil
}

// Delete removes a mock record.
// PRE: none
// POST: No record for (coachID, date)
func (m *mockAvailabilityStore) Delete(_ context.Context, coachID, date string) error {
	delete(m.records, availKey(coachID, date))
	return nil
}

// DeleteRange removes mock records in [start, end].
// PRE: start <= end
// POST: Returns count removed
func (m *mockAvailabilityStore) DeleteRange(_ context.Context, coachID, start, end string) (int, error) {
	n := 0
	for k, r := range m.records {
		if r.CoachID == coachID && r.Date >= start && r.Date <= end {
			delete(m.records, k)
			n++
		}
	}
	return n, nil
}

func (m *mockAvailabilityStore) dates(coachID string) []string {
	var out []string
	for _, r := range m.records {
		if r.CoachID == coachID {
			out = append(out, r.Date)
		}
	}
	sort.Strings(out)
	return out
}

// --- Mock coach store ---

type mockCoachStore struct {
	coaches map[string]coach.Coach
}

func newMockCoachStore(cs ...coach.Coach) *mockCoachStore {
	m := &mockCoachStore{coaches: make(map[string]coach.Coach)}
	for _, c := range cs {
		m.coaches[c.ID] = c
	}
	return m
}

// GetByID retrieves a mock coach.
// PRE: id is non-empty
// POST: Returns coach or storage.ErrNotFound
func (m *mockCoachStore) GetByID(_ context.Context, id string) (coach.Coach, error) {
	c, ok := m.coaches[id]
	if !ok {
		return coach.Coach{}, fmt.Errorf("coach %s: %w", id, storage.ErrNotFound)
	}
	return c, nil
}

// Save persists a mock coach.
// PRE: c has an ID
// POST: Coach stored in map
func (m *mockCoachStore) Save(_ context.Context, c coach.Coach) error {
	m.coaches[c.ID] = c
	return nil
}

// List returns all mock coaches.
func (m *mockCoachStore) List(_ context.Context, _ coachStore.ListFilter) ([]coach.Coach, error) {
	out := make([]coach.Coach, 0, len(m.coaches))
	for _, c := range m.coaches {
		out = append(out, c)
	}
	return out, nil
}

// --- Mock client store ---

type mockClientStore struct {
	clients map[string]client.Client
}

func newMockClientStore(cs ...client.Client) *mockClientStore {
	m := &mockClientStore{clients: make(map[string]client.Client)}
	for _, c := range cs {
		m.clients[c.ID] = c
	}
	return m
}

// GetByID retrieves a mock client.
// PRE: id is non-empty
// POST: Returns client or storage.ErrNotFound
func (m *mockClientStore) GetByID(_ context.Context, id string) (client.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return client.Client{}, fmt.Errorf("client %s: %w", id, storage.ErrNotFound)
	}
	return c, nil
}

// Save persists a mock client.
func (m *mockClientStore) Save(_ context.Context, c client.Client) error {
	m.clients[c.ID] = c
	return nil
}

// --- Mock attendance store ---

type mockAttendanceStore struct {
	records map[string]attendance.Record
}

func newMockAttendanceStore() *mockAttendanceStore {
	return &mockAttendanceStore{records: make(map[string]attendance.Record)}
}

// Upsert stores a mock attendance record.
// PRE: rec has ClientID and Date
// POST: One record per (ClientID, Date)
func (m *mockAttendanceStore) Upsert(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	k := rec.ClientID + "|" + rec.Date
	if existing, ok := m.records[k]; ok {
		rec.ID = existing.ID
	}
	m.records[k] = rec
	return rec, nil
}

// --- Mock cache ---

type invalidation struct {
	scope    cache.Scope
	entityID string
	years    []int
}

type mockInvalidator struct {
	calls []invalidation
	err   error
}

// Invalidate records the call.
func (m *mockInvalidator) Invalidate(_ context.Context, scope cache.Scope, entityID string, years ...int) error {
	m.calls = append(m.calls, invalidation{scope: scope, entityID: entityID, years: years})
	return m.err
}

// --- Mock sender ---

type mockSender struct {
	sent []email.Message
	err  error
}

// Send records the message.
// PRE: msg has recipients
// POST: Message appended unless err is set
func (m *mockSender) Send(_ context.Context, msg email.Message) (email.SendResult, error) {
	if m.err != nil {
		return email.SendResult{}, m.err
	}
	m.sent = append(m.sent, msg)
	return email.SendResult{MessageID: fmt.Sprintf("msg-%d", len(m.sent)), SentAt: fixedTime}, nil
}

var testCoach = coach.Coach{ID: "coach-1", Name: "Alice Mercer", Email: "alice@itg.example", Active: true}

type mockOutbox struct {
	entries map[string]outbox.Entry
	saveErr error
}

func newMockOutbox() *mockOutbox {
	return &mockOutbox{entries: make(map[string]outbox.Entry)}
}

// Save stores the entry by ID.
// PRE: entry validated
// POST: Entry replaced unless saveErr is set
func (m *mockOutbox) Save(_ context.Context, e outbox.Entry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.entries[e.ID] = e
	return nil
}

// ListPending returns pending entries ordered by ID.
// PRE: limit > 0
// POST: At most limit entries
func (m *mockOutbox) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, e := range m.entries {
		if e.Status == outbox.StatusPending && e.Attempts < e.MaxAttempts {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
