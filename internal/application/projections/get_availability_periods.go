package projections

import (
	"context"
	"fmt"

	"itgportal/internal/adapters/storage/availability"
	domainAvailability "itgportal/internal/domain/availability"
	"itgportal/internal/domain/civildate"
	"itgportal/internal/domain/period"
)

// GetAvailabilityQuery carries input for listing a coach's stored records.
// Empty bounds are open.
type GetAvailabilityQuery struct {
	CoachID   string
	StartDate string
	EndDate   string
}

// GetAvailabilityDeps holds dependencies for the availability listing.
type GetAvailabilityDeps struct {
	CoachStore        CoachStore
	AvailabilityStore AvailabilityStore
}

// QueryGetAvailability lists a coach's stored records ordered by date.
// PRE: bounds, when set, are valid dates with StartDate <= EndDate
// POST: Returns a non-nil slice
func QueryGetAvailability(ctx context.Context, query GetAvailabilityQuery, deps GetAvailabilityDeps) ([]domainAvailability.Record, error) {
	if err := validateBounds(query.StartDate, query.EndDate); err != nil {
		return nil, err
	}
	if _, err := deps.CoachStore.GetByID(ctx, query.CoachID); err != nil {
		return nil, err
	}
	records, err := deps.AvailabilityStore.ListByCoach(ctx, query.CoachID, availability.ListFilter{StartDate: query.StartDate, EndDate: query.EndDate})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domainAvailability.Record{}
	}
	return records, nil
}

// GetAvailabilityPeriodsQuery carries input for the stored-record consolidation.
type GetAvailabilityPeriodsQuery struct {
	CoachID   string
	StartDate string
	EndDate   string
	Policy    string // strict (default) or gap_tolerant
}

// GetAvailabilityPeriodsResult carries the output of the consolidation.
type GetAvailabilityPeriodsResult struct {
	CoachID string          `json:"coachId"`
	Policy  string          `json:"policy"`
	Periods []period.Period `json:"periods"`
}

// QueryGetAvailabilityPeriods consolidates a coach's stored records into periods
// under the chosen adjacency policy.
// PRE: Policy is empty, strict or gap_tolerant
// POST: Periods ordered by start date; empty (non-nil) when nothing is stored
func QueryGetAvailabilityPeriods(ctx context.Context, query GetAvailabilityPeriodsQuery, deps GetAvailabilityDeps) (GetAvailabilityPeriodsResult, error) {
	policy, err := period.PolicyByName(query.Policy)
	if err != nil {
		return GetAvailabilityPeriodsResult{}, err
	}
	records, err := QueryGetAvailability(ctx, GetAvailabilityQuery{CoachID: query.CoachID, StartDate: query.StartDate, EndDate: query.EndDate}, deps)
	if err != nil {
		return GetAvailabilityPeriodsResult{}, err
	}
	periods, err := period.Consolidate(domainAvailability.ToPeriodRecords(records), policy)
	if err != nil {
		return GetAvailabilityPeriodsResult{}, err
	}
	return GetAvailabilityPeriodsResult{CoachID: query.CoachID, Policy: policy.Name, Periods: periods}, nil
}

func validateBounds(start, end string) error {
	if start != "" {
		if err := civildate.Validate(start); err != nil {
			return err
		}
	}
	if end != "" {
		if err := civildate.Validate(end); err != nil {
			return err
		}
	}
	if start != "" && end != "" && start > end {
		return fmt.Errorf("%w: %s > %s", civildate.ErrInvalidRange, start, end)
	}
	return nil
}
