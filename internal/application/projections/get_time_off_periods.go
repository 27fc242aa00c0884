package projections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"itgportal/internal/adapters/storage/availability"
	domainAvailability "itgportal/internal/domain/availability"
	"itgportal/internal/domain/civildate"
	"itgportal/internal/domain/period"
)

// MaxWindowDays caps the window a time-off walk may cover.
const MaxWindowDays = 731

// ErrWindowTooLong is returned when a time-off window exceeds MaxWindowDays.
var ErrWindowTooLong = errors.New("window cannot exceed 731 days")

// ErrNoToday is returned when neither the query nor Deps.Now supplies today.
var ErrNoToday = errors.New("today is required when no clock is supplied")

// GetTimeOffPeriodsQuery carries input for the time-off projection.
type GetTimeOffPeriodsQuery struct {
	CoachID   string
	StartDate string
	EndDate   string
	Today     string // optional: if empty, taken from Deps.Now
}

// ClassifiedPeriod is a time-off period tagged past, current or future.
type ClassifiedPeriod struct {
	period.Period
	Phase string `json:"phase"`
}

// GetTimeOffPeriodsResult carries the output of the time-off projection.
type GetTimeOffPeriodsResult struct {
	CoachID   string             `json:"coachId"`
	StartDate string             `json:"startDate"`
	EndDate   string             `json:"endDate"`
	Today     string             `json:"today"`
	Periods   []ClassifiedPeriod `json:"periods"`
	DaysOff   int                `json:"daysOff"`
}

// GetTimeOffPeriodsDeps holds dependencies for the time-off projection.
// Now supplies today when the query leaves it empty.
type GetTimeOffPeriodsDeps struct {
	CoachStore        CoachStore
	AvailabilityStore AvailabilityStore
	Now               func() time.Time
}

// QueryGetTimeOffPeriods walks every day of the window and groups consecutive
// time-off days. Days without a record count as available.
// PRE: StartDate <= EndDate, window within MaxWindowDays, coach exists
// POST: Periods ordered by start date, each classified against Today
func QueryGetTimeOffPeriods(ctx context.Context, query GetTimeOffPeriodsQuery, deps GetTimeOffPeriodsDeps) (GetTimeOffPeriodsResult, error) {
	span, err := civildate.DaysDifference(query.StartDate, query.EndDate)
	if err != nil {
		return GetTimeOffPeriodsResult{}, err
	}
	if query.StartDate > query.EndDate {
		return GetTimeOffPeriodsResult{}, fmt.Errorf("%w: %s > %s", civildate.ErrInvalidRange, query.StartDate, query.EndDate)
	}
	if span+1 > MaxWindowDays {
		return GetTimeOffPeriodsResult{}, ErrWindowTooLong
	}

	today := query.Today
	switch {
	case today != "":
		if err := civildate.Validate(today); err != nil {
			return GetTimeOffPeriodsResult{}, err
		}
	case deps.Now != nil:
		today = civildate.Format(deps.Now())
	default:
		return GetTimeOffPeriodsResult{}, ErrNoToday
	}

	if _, err := deps.CoachStore.GetByID(ctx, query.CoachID); err != nil {
		return GetTimeOffPeriodsResult{}, err
	}

	records, err := deps.AvailabilityStore.ListByCoach(ctx, query.CoachID, availability.ListFilter{StartDate: query.StartDate, EndDate: query.EndDate})
	if err != nil {
		return GetTimeOffPeriodsResult{}, err
	}
	byDate := make(map[string]domainAvailability.Record, len(records))
	for _, r := range records {
		byDate[r.Date] = r
	}
	lookup := period.LookupFuncs{
		Status: func(d string) string {
			if r, ok := byDate[d]; ok {
				return r.Status
			}
			return domainAvailability.StatusAvailable
		},
		Reason: func(d string) string { return byDate[d].Reason },
	}

	periods, err := period.ConsolidateWindow(query.StartDate, query.EndDate, lookup, period.NotAvailable)
	if err != nil {
		return GetTimeOffPeriodsResult{}, err
	}

	result := GetTimeOffPeriodsResult{
		CoachID:   query.CoachID,
		StartDate: query.StartDate,
		EndDate:   query.EndDate,
		Today:     today,
		Periods:   make([]ClassifiedPeriod, 0, len(periods)),
	}
	for _, p := range periods {
		result.Periods = append(result.Periods, ClassifiedPeriod{Period: p, Phase: period.Classify(p, today)})
		result.DaysOff += p.DayCount
	}
	return result, nil
}
