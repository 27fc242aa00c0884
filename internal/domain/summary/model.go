package summary

import (
	"sort"

	"itgportal/internal/domain/civildate"
	"itgportal/internal/domain/period"
)

// YearlySummary aggregates one entity's stored records for a calendar year.
// TotalDays counts stored records only; days with no record are not counted.
type YearlySummary struct {
	EntityID  string                    `json:"entityId"`
	Year      int                       `json:"year"`
	TotalDays int                       `json:"totalDays"`
	ByStatus  map[string]int            `json:"byStatus"`
	ByMonth   map[string]map[string]int `json:"byMonth"` // YYYY-MM -> status -> count
	Periods   []period.Period           `json:"periods"`
}

// BuildYearlySummary filters records to year and tallies them.
// PRE: record dates are YYYY-MM-DD
// POST: Maps and Periods are non-nil even for empty input
func BuildYearlySummary(entityID string, year int, records []period.Record) (YearlySummary, error) {
	first, last := civildate.YearBounds(year)

	s := YearlySummary{
		EntityID: entityID,
		Year:     year,
		ByStatus: make(map[string]int),
		ByMonth:  make(map[string]map[string]int),
		Periods:  []period.Period{},
	}

	inYear := make([]period.Record, 0, len(records))
	for _, r := range records {
		if !civildate.InRange(r.Date, first, last) {
			continue
		}
		inYear = append(inYear, r)
		s.ByStatus[r.Status]++
		month := civildate.MonthKey(r.Date)
		if s.ByMonth[month] == nil {
			s.ByMonth[month] = make(map[string]int)
		}
		s.ByMonth[month][r.Status]++
	}
	s.TotalDays = len(inYear)

	if len(inYear) == 0 {
		return s, nil
	}

	sort.SliceStable(inYear, func(i, j int) bool { return inYear[i].Date < inYear[j].Date })
	periods, err := period.Consolidate(inYear, period.Strict)
	if err != nil {
		return YearlySummary{}, err
	}
	s.Periods = periods
	return s, nil
}

// DaysWithStatus sums the tallies for the given statuses.
func (s YearlySummary) DaysWithStatus(statuses ...string) int {
	n := 0
	for _, st := range statuses {
		n += s.ByStatus[st]
	}
	return n
}

// MonthTotal returns the number of stored records in month (YYYY-MM).
func (s YearlySummary) MonthTotal(month string) int {
	n := 0
	for _, c := range s.ByMonth[month] {
		n += c
	}
	return n
}

// LongestPeriod returns the period with the most days, earliest first on ties.
func (s YearlySummary) LongestPeriod() (period.Period, bool) {
	var best period.Period
	found := false
	for _, p := range s.Periods {
		if !found || p.DayCount > best.DayCount {
			best = p
			found = true
		}
	}
	return best, found
}
