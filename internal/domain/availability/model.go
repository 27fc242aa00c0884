package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"itgportal/internal/domain/civildate"
	"itgportal/internal/domain/period"
)

// Status values. Absence of a stored record means StatusAvailable.
const (
	StatusAvailable = "available"
	StatusOff       = "off"
	StatusSick      = "sick"
	StatusVacation  = "vacation"
)

// MaxReasonLength bounds the free-text reason.
const MaxReasonLength = 500

// Domain errors
var (
	ErrEmptyCoachID  = errors.New("availability must be associated with a coach")
	ErrInvalidStatus = errors.New("status must be one of: available, off, sick, vacation")
	ErrReasonTooLong = errors.New("reason cannot exceed 500 characters")
)

// Statuses lists every accepted status in display order.
var Statuses = []string{StatusAvailable, StatusOff, StatusSick, StatusVacation}

// Record is a coach's stored status on one day.
type Record struct {
	ID        string
	CoachID   string
	Date      string // YYYY-MM-DD
	Status    string
	Reason    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidStatus reports whether s is in the closed status enum.
func ValidStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusOff, StatusSick, StatusVacation:
		return true
	}
	return false
}

// IsTimeOff reports whether a status marks the coach as unavailable.
func IsTimeOff(s string) bool {
	return s == StatusOff || s == StatusSick || s == StatusVacation
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: CoachID non-empty, Date is a civil date, Status in the closed enum
func (r *Record) Validate() error {
	if strings.TrimSpace(r.CoachID) == "" {
		return ErrEmptyCoachID
	}
	if err := civildate.Validate(r.Date); err != nil {
		return err
	}
	if !ValidStatus(r.Status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, r.Status)
	}
	if len(r.Reason) > MaxReasonLength {
		return ErrReasonTooLong
	}
	return nil
}

// ToPeriodRecord strips storage fields for consolidation.
func (r Record) ToPeriodRecord() period.Record {
	return period.Record{Date: r.Date, Status: r.Status, Reason: r.Reason}
}

// ToPeriodRecords converts a slice of stored records.
func ToPeriodRecords(records []Record) []period.Record {
	out := make([]period.Record, len(records))
	for i, r := range records {
		out[i] = r.ToPeriodRecord()
	}
	return out
}

// FromDocument normalises a loosely shaped store document into a Record.
// Dates may arrive as YYYY-MM-DD strings, RFC3339 strings or time values; a
// missing status defaults to available and the reason is trimmed.
// PRE: id is the document key
// POST: Returns a validated Record or an error naming the bad field
func FromDocument(id string, doc map[string]any) (Record, error) {
	r := Record{
		ID:      id,
		CoachID: stringField(doc, "coachId"),
		Status:  strings.ToLower(strings.TrimSpace(stringField(doc, "status"))),
		Reason:  strings.TrimSpace(stringField(doc, "reason")),
	}
	if r.Status == "" {
		r.Status = StatusAvailable
	}

	date, err := dateField(doc["date"])
	if err != nil {
		return Record{}, err
	}
	r.Date = date
	r.CreatedAt = timeField(doc["createdAt"])
	r.UpdatedAt = timeField(doc["updatedAt"])

	if err := r.Validate(); err != nil {
		return Record{}, fmt.Errorf("document %s: %w", id, err)
	}
	return r, nil
}

// ToDocument renders the Record as a store document.
func (r Record) ToDocument() map[string]any {
	return map[string]any{
		"coachId":   r.CoachID,
		"date":      r.Date,
		"status":    r.Status,
		"reason":    r.Reason,
		"createdAt": r.CreatedAt,
		"updatedAt": r.UpdatedAt,
	}
}

func stringField(doc map[string]any, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}

func dateField(v any) (string, error) {
	switch d := v.(type) {
	case string:
		if len(d) > len(civildate.Layout) {
			if t, err := time.Parse(time.RFC3339, d); err == nil {
				return civildate.Format(t), nil
			}
		}
		if err := civildate.Validate(d); err != nil {
			return "", err
		}
		return d, nil
	case time.Time:
		return civildate.Format(d), nil
	}
	return "", fmt.Errorf("%w: %v", civildate.ErrInvalidDateFormat, v)
}

func timeField(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
