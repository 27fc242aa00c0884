package projections

import (
	"context"

	"itgportal/internal/adapters/storage/coach"
	domainAvailability "itgportal/internal/domain/availability"
	"itgportal/internal/domain/civildate"
)

// GetTeamAvailabilityQuery carries input for the team view.
type GetTeamAvailabilityQuery struct {
	Date string
}

// TeamMemberStatus is one coach's status on the queried day.
type TeamMemberStatus struct {
	CoachID string `json:"coachId"`
	Name    string `json:"name"`
	Status  string `json:"status"`
	Reason  string `json:"reason,omitempty"`
}

// GetTeamAvailabilityResult carries the output of the team view.
type GetTeamAvailabilityResult struct {
	Date      string             `json:"date"`
	Coaches   []TeamMemberStatus `json:"coaches"`
	Counts    map[string]int     `json:"counts"`
	Available int                `json:"available"`
}

// GetTeamAvailabilityDeps holds dependencies for the team view.
type GetTeamAvailabilityDeps struct {
	CoachStore        CoachStore
	AvailabilityStore AvailabilityStore
}

// QueryGetTeamAvailability reports every active coach's status on one day.
// Coaches without a record are available.
// PRE: Date is YYYY-MM-DD
// POST: One entry per active coach in store order; Counts sums to len(Coaches)
func QueryGetTeamAvailability(ctx context.Context, query GetTeamAvailabilityQuery, deps GetTeamAvailabilityDeps) (GetTeamAvailabilityResult, error) {
	if err := civildate.Validate(query.Date); err != nil {
		return GetTeamAvailabilityResult{}, err
	}

	coaches, err := deps.CoachStore.List(ctx, coach.ListFilter{ActiveOnly: true})
	if err != nil {
		return GetTeamAvailabilityResult{}, err
	}
	records, err := deps.AvailabilityStore.ListByDate(ctx, query.Date)
	if err != nil {
		return GetTeamAvailabilityResult{}, err
	}
	byCoach := make(map[string]domainAvailability.Record, len(records))
	for _, r := range records {
		byCoach[r.CoachID] = r
	}

	result := GetTeamAvailabilityResult{
		Date:    query.Date,
		Coaches: make([]TeamMemberStatus, 0, len(coaches)),
		Counts:  make(map[string]int),
	}
	for _, c := range coaches {
		entry := TeamMemberStatus{CoachID: c.ID, Name: c.Name, Status: domainAvailability.StatusAvailable}
		if r, ok := byCoach[c.ID]; ok {
			entry.Status = r.Status
			entry.Reason = r.Reason
		}
		result.Coaches = append(result.Coaches, entry)
		result.Counts[entry.Status]++
	}
	result.Available = result.Counts[domainAvailability.StatusAvailable]
	return result, nil
}
