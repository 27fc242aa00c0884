package outbox

import (
	"errors"
	"time"
)

// Entry lifecycle.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// KindTimeOffNotice is a time-off email whose first delivery failed.
const KindTimeOffNotice = "time_off_notice"

// DefaultMaxAttempts applies when an entry is queued without a limit.
const DefaultMaxAttempts = 5

// Domain errors.
var (
	ErrEmptyKind    = errors.New("outbox entry kind is required")
	ErrEmptyPayload = errors.New("outbox entry payload is required")
	ErrNoCreatedAt  = errors.New("outbox entry created_at must be set")
)

// Entry is one undelivered notification waiting for a retry.
type Entry struct {
	ID              string
	Kind            string
	Payload         string // JSON, replayed as-is
	Status          string
	Attempts        int
	MaxAttempts     int
	LastAttemptedAt time.Time
	CreatedAt       time.Time
	MessageID       string // provider ID once sent
	LastError       string
}

// NewEntry returns a pending entry that counts the failed first delivery as attempt one.
func NewEntry(id, kind, payload string, now time.Time, firstErr error) Entry {
	e := Entry{
		ID:              id,
		Kind:            kind,
		Payload:         payload,
		Status:          StatusPending,
		Attempts:        1,
		MaxAttempts:     DefaultMaxAttempts,
		LastAttemptedAt: now,
		CreatedAt:       now,
	}
	if firstErr != nil {
		e.LastError = firstErr.Error()
	}
	return e
}

// Validate checks that the Entry has valid data.
// PRE: Entry struct is populated
// POST: Returns nil if valid; MaxAttempts defaulted when unset
func (e *Entry) Validate() error {
	if e.Kind == "" {
		return ErrEmptyKind
	}
	if e.Payload == "" {
		return ErrEmptyPayload
	}
	if e.CreatedAt.IsZero() {
		return ErrNoCreatedAt
	}
	if e.MaxAttempts <= 0 {
		e.MaxAttempts = DefaultMaxAttempts
	}
	return nil
}

// CanRetry reports whether the entry is pending with attempts left.
func (e Entry) CanRetry() bool {
	return e.Status == StatusPending && e.Attempts < e.MaxAttempts
}

// NextRetryDelay is base * 2^(attempts-1), capped at max.
func (e Entry) NextRetryDelay(base, max time.Duration) time.Duration {
	n := e.Attempts - 1
	if n < 0 {
		n = 0
	}
	if n > 20 {
		return max
	}
	delay := base * (1 << n)
	if delay > max || delay <= 0 {
		return max
	}
	return delay
}

// Due reports whether the backoff since the last attempt has elapsed.
func (e Entry) Due(now time.Time, base, max time.Duration) bool {
	if !e.CanRetry() {
		return false
	}
	if e.LastAttemptedAt.IsZero() {
		return true
	}
	return !now.Before(e.LastAttemptedAt.Add(e.NextRetryDelay(base, max)))
}

// MarkAttempt records a delivery attempt at now.
func (e *Entry) MarkAttempt(now time.Time) {
	e.Attempts++
	e.LastAttemptedAt = now
}

// MarkSent records a successful delivery.
func (e *Entry) MarkSent(messageID string) {
	e.Status = StatusSent
	e.MessageID = messageID
	e.LastError = ""
}

// MarkFailed records err; the entry fails for good once attempts are used up.
func (e *Entry) MarkFailed(err error) {
	e.LastError = err.Error()
	if e.Attempts >= e.MaxAttempts {
		e.Status = StatusFailed
	}
}
