package projections

import (
	"context"
	"errors"
	"log/slog"

	"itgportal/internal/adapters/cache"
	"itgportal/internal/adapters/storage/availability"
	domainAvailability "itgportal/internal/domain/availability"
	"itgportal/internal/domain/civildate"
	"itgportal/internal/domain/summary"
)

// ErrInvalidYear is returned for years outside 1..9999.
var ErrInvalidYear = errors.New("year must be between 1 and 9999")

// GetYearlySummaryQuery carries input for the yearly availability summary.
type GetYearlySummaryQuery struct {
	CoachID string
	Year    int
}

// GetYearlySummaryDeps holds dependencies for the yearly summary projection.
// Cache is optional.
type GetYearlySummaryDeps struct {
	CoachStore        CoachStore
	AvailabilityStore AvailabilityStore
	Cache             SummaryCache
}

// QueryGetYearlySummary tallies a coach's availability records for one year.
// PRE: CoachID names an existing coach; 1 <= Year <= 9999
// POST: Maps and Periods are non-nil; result is cached per (coach, year)
func QueryGetYearlySummary(ctx context.Context, query GetYearlySummaryQuery, deps GetYearlySummaryDeps) (summary.YearlySummary, error) {
	if query.Year < 1 || query.Year > 9999 {
		return summary.YearlySummary{}, ErrInvalidYear
	}
	if _, err := deps.CoachStore.GetByID(ctx, query.CoachID); err != nil {
		return summary.YearlySummary{}, err
	}

	return readThrough(ctx, deps.Cache, cache.ScopeAvailability, query.CoachID, query.Year, func() (summary.YearlySummary, error) {
		first, last := civildate.YearBounds(query.Year)
		records, err := deps.AvailabilityStore.ListByCoach(ctx, query.CoachID, availability.ListFilter{StartDate: first, EndDate: last})
		if err != nil {
			return summary.YearlySummary{}, err
		}
		return summary.BuildYearlySummary(query.CoachID, query.Year, domainAvailability.ToPeriodRecords(records))
	})
}

// readThrough serves a summary from c when present, otherwise builds and stores it.
// Cache errors degrade to a rebuild.
func readThrough(ctx context.Context, c SummaryCache, scope cache.Scope, entityID string, year int, build func() (summary.YearlySummary, error)) (summary.YearlySummary, error) {
	if c != nil {
		s, ok, err := c.Get(ctx, scope, entityID, year)
		if err != nil {
			slog.Warn("summary_cache_get_failed", "scope", scope, "entity_id", entityID, "year", year, "error", err)
		} else if ok {
			return s, nil
		}
	}

	s, err := build()
	if err != nil {
		return summary.YearlySummary{}, err
	}

	if c != nil {
		if err := c.Set(ctx, scope, s); err != nil {
			slog.Warn("summary_cache_set_failed", "scope", scope, "entity_id", entityID, "year", year, "error", err)
		}
	}
	return s, nil
}
