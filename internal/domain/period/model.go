package period

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"itgportal/internal/domain/civildate"
)

// StatusAvailable is the open-world default status; it never opens a period in a window walk.
const StatusAvailable = "available"

// Phase values relative to a caller-supplied "today".
const (
	PhasePast    = "past"
	PhaseCurrent = "current"
	PhaseFuture  = "future"
)

// Policy names accepted by PolicyByName.
const (
	PolicyStrict      = "strict"
	PolicyGapTolerant = "gap_tolerant"
)

// DefaultBridgeDays is the gap bridged by the gap-tolerant policy: one missing day.
const DefaultBridgeDays = 2

// Domain errors
var (
	ErrInvalidPolicy = errors.New("policy must allow a gap of at least one day")
	ErrUnknownPolicy = errors.New("policy must be one of: strict, gap_tolerant")
)

// Record is one entity's status on one civil date.
type Record struct {
	Date   string
	Status string
	Reason string
}

// Period is a maximal run of days sharing status and reason.
type Period struct {
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Status      string `json:"status"`
	Reason      string `json:"reason"`
	DayCount    int    `json:"dayCount"`
	RecordCount int    `json:"recordCount"`
}

// Policy controls how far apart two stored records may be and still merge.
// MaxGapDays is measured from the current period end to the next record date.
type Policy struct {
	Name       string
	MaxGapDays int
}

// Strict merges only records on consecutive calendar days.
var Strict = Policy{Name: PolicyStrict, MaxGapDays: 1}

// GapTolerant merges records up to maxGap days apart, bridging missing days.
func GapTolerant(maxGap int) Policy {
	return Policy{Name: PolicyGapTolerant, MaxGapDays: maxGap}
}

// PolicyByName resolves a policy from its wire name. Empty means strict.
func PolicyByName(name string) (Policy, error) {
	switch name {
	case "", PolicyStrict:
		return Strict, nil
	case PolicyGapTolerant:
		return GapTolerant(DefaultBridgeDays), nil
	}
	return Policy{}, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

// Validate checks the policy threshold.
func (p Policy) Validate() error {
	if p.MaxGapDays < 1 {
		return ErrInvalidPolicy
	}
	return nil
}

type datedRecord struct {
	Record
	at time.Time
}

// Consolidate turns records for a single entity into the minimal ordered list of periods.
// Records are sorted by date (stable) on a copy; the input slice is never mutated.
// Duplicate dates are a caller precondition violation and are not deduplicated.
// PRE: every record date is YYYY-MM-DD, policy is valid
// POST: Returns periods in ascending StartDate order with no overlap
func Consolidate(records []Record, policy Policy) ([]Period, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	sorted := make([]datedRecord, len(records))
	for i, r := range records {
		at, err := civildate.ParseIn(time.UTC, r.Date)
		if err != nil {
			return nil, err
		}
		sorted[i] = datedRecord{Record: r, at: at}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	periods := make([]Period, 0)
	var cur *Period
	var curEnd time.Time

	for _, r := range sorted {
		if cur != nil &&
			r.Status == cur.Status &&
			r.Reason == cur.Reason &&
			civildate.DaysBetween(curEnd, r.at) <= policy.MaxGapDays {
			cur.EndDate = r.Date
			cur.RecordCount++
			curEnd = r.at
			continue
		}
		if cur != nil {
			periods = append(periods, closePeriod(*cur, curEnd))
		}
		cur = &Period{StartDate: r.Date, EndDate: r.Date, Status: r.Status, Reason: r.Reason, RecordCount: 1}
		curEnd = r.at
	}
	if cur != nil {
		periods = append(periods, closePeriod(*cur, curEnd))
	}
	return periods, nil
}

func closePeriod(p Period, end time.Time) Period {
	start, _ := civildate.ParseIn(time.UTC, p.StartDate)
	p.DayCount = civildate.DaysBetween(start, end) + 1
	return p
}

// Lookup resolves the status and reason of an entity on any day.
type Lookup interface {
	StatusForDate(date string) string
	ReasonForDate(date string) string
}

// LookupFuncs adapts two callbacks to Lookup.
type LookupFuncs struct {
	Status func(date string) string
	Reason func(date string) string
}

// StatusForDate implements Lookup.
func (l LookupFuncs) StatusForDate(date string) string { return l.Status(date) }

// ReasonForDate implements Lookup.
func (l LookupFuncs) ReasonForDate(date string) string {
	if l.Reason == nil {
		return ""
	}
	return l.Reason(date)
}

// Flagged decides which statuses open a period during a window walk.
type Flagged func(status string) bool

// NotAvailable flags every status except available and the empty status.
func NotAvailable(status string) bool {
	return status != "" && status != StatusAvailable
}

// ConsolidateWindow walks every day from start to end and builds periods over the
// flagged days only. Unflagged days close the open period. Gaps cannot occur.
// PRE: start <= end, lookup is non-nil
// POST: Returns ordered periods whose RecordCount equals DayCount
func ConsolidateWindow(start, end string, lookup Lookup, flagged Flagged) ([]Period, error) {
	if flagged == nil {
		flagged = NotAvailable
	}
	days, err := civildate.GenerateDateRange(start, end)
	if err != nil {
		return nil, err
	}

	periods := make([]Period, 0)
	var cur *Period
	for _, d := range days {
		status := lookup.StatusForDate(d)
		if !flagged(status) {
			if cur != nil {
				periods = append(periods, *cur)
				cur = nil
			}
			continue
		}
		reason := lookup.ReasonForDate(d)
		if cur != nil && cur.Status == status && cur.Reason == reason {
			cur.EndDate = d
			cur.DayCount++
			cur.RecordCount++
			continue
		}
		if cur != nil {
			periods = append(periods, *cur)
		}
		cur = &Period{StartDate: d, EndDate: d, Status: status, Reason: reason, DayCount: 1, RecordCount: 1}
	}
	if cur != nil {
		periods = append(periods, *cur)
	}
	return periods, nil
}

// Expand returns one record per calendar day covered by the periods.
func Expand(periods []Period) ([]Record, error) {
	var out []Record
	for _, p := range periods {
		days, err := civildate.GenerateDateRangeIn(time.UTC, p.StartDate, p.EndDate)
		if err != nil {
			return nil, err
		}
		for _, d := range days {
			out = append(out, Record{Date: d, Status: p.Status, Reason: p.Reason})
		}
	}
	return out, nil
}

// Classify places a period in the past, present or future relative to today.
// PRE: today is a canonical YYYY-MM-DD string
func Classify(p Period, today string) string {
	switch {
	case p.EndDate < today:
		return PhasePast
	case p.StartDate > today:
		return PhaseFuture
	}
	return PhaseCurrent
}

// Covers reports whether date falls inside the period.
func (p Period) Covers(date string) bool {
	return civildate.InRange(date, p.StartDate, p.EndDate)
}
