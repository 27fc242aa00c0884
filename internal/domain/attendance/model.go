package attendance

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"itgportal/internal/domain/civildate"
	"itgportal/internal/domain/period"
)

// Status values used when attendance is consolidated into streaks.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// MaxNotesLength bounds staff notes.
const MaxNotesLength = 1000

// Domain errors
var (
	ErrEmptyClientID = errors.New("attendance must be associated with a client")
	ErrNotesTooLong  = errors.New("notes cannot exceed 1000 characters")
)

// Record holds one Grace client's attendance on one day.
type Record struct {
	ID         string
	ClientID   string
	Date       string // YYYY-MM-DD
	Present    bool
	Notes      string
	RecordedAt time.Time
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: ClientID must not be empty, Date must be a civil date
func (r *Record) Validate() error {
	if strings.TrimSpace(r.ClientID) == "" {
		return ErrEmptyClientID
	}
	if err := civildate.Validate(r.Date); err != nil {
		return err
	}
	if len(r.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// Status maps the present flag to a period status.
func (r Record) Status() string {
	if r.Present {
		return StatusPresent
	}
	return StatusAbsent
}

// ToPeriodRecord converts to a consolidation record. Notes are not a reason,
// so they never split a streak.
func (r Record) ToPeriodRecord() period.Record {
	return period.Record{Date: r.Date, Status: r.Status()}
}

// ToPeriodRecords converts a slice of attendance records.
func ToPeriodRecords(records []Record) []period.Record {
	out := make([]period.Record, len(records))
	for i, r := range records {
		out[i] = r.ToPeriodRecord()
	}
	return out
}

// FromDocument normalises a store document. "present" may be a bool or a
// "present"/"absent" status string.
// PRE: id is the document key
// POST: Returns a validated Record or an error
func FromDocument(id string, doc map[string]any) (Record, error) {
	r := Record{ID: id}
	r.ClientID, _ = doc["clientId"].(string)
	r.Notes, _ = doc["notes"].(string)
	r.Notes = strings.TrimSpace(r.Notes)

	switch d := doc["date"].(type) {
	case string:
		r.Date = d
	case time.Time:
		r.Date = civildate.Format(d)
	}

	switch p := doc["present"].(type) {
	case bool:
		r.Present = p
	default:
		s, _ := doc["status"].(string)
		switch strings.ToLower(s) {
		case StatusPresent:
			r.Present = true
		case StatusAbsent:
		default:
			return Record{}, fmt.Errorf("document %s: missing present flag", id)
		}
	}

	if t, ok := doc["recordedAt"].(time.Time); ok {
		r.RecordedAt = t
	}
	if err := r.Validate(); err != nil {
		return Record{}, fmt.Errorf("document %s: %w", id, err)
	}
	return r, nil
}

// ToDocument renders the Record as a store document.
func (r Record) ToDocument() map[string]any {
	return map[string]any{
		"clientId":   r.ClientID,
		"date":       r.Date,
		"present":    r.Present,
		"notes":      r.Notes,
		"recordedAt": r.RecordedAt,
	}
}
