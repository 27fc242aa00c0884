package projections

import (
	"context"
	"math"

	"itgportal/internal/adapters/cache"
	domainAttendance "itgportal/internal/domain/attendance"
	"itgportal/internal/domain/civildate"
	"itgportal/internal/domain/client"
	"itgportal/internal/domain/period"
	"itgportal/internal/domain/summary"
)

// GetAttendanceSummaryQuery carries input for a Grace client's yearly attendance.
type GetAttendanceSummaryQuery struct {
	ClientID string
	Year     int
}

// GetAttendanceSummaryResult carries the summary plus absence streaks.
type GetAttendanceSummaryResult struct {
	Summary        summary.YearlySummary `json:"summary"`
	AttendanceRate float64               `json:"attendanceRate"` // present / recorded, 0 when nothing recorded
	AbsenceStreaks []period.Period       `json:"absenceStreaks"`
	LongestAbsence int                   `json:"longestAbsence"`
}

// GetAttendanceSummaryDeps holds dependencies for the attendance summary projection.
type GetAttendanceSummaryDeps struct {
	ClientStore     ClientStore
	AttendanceStore AttendanceStore
	Cache           SummaryCache
}

// QueryGetAttendanceSummary summarises a Grace client's recorded days for one year.
// Only recorded sessions count, so a streak spans consecutive recorded absences.
// PRE: ClientID names a grace client; 1 <= Year <= 9999
// POST: AbsenceStreaks are ordered; LongestAbsence counts sessions, not calendar days
func QueryGetAttendanceSummary(ctx context.Context, query GetAttendanceSummaryQuery, deps GetAttendanceSummaryDeps) (GetAttendanceSummaryResult, error) {
	if query.Year < 1 || query.Year > 9999 {
		return GetAttendanceSummaryResult{}, ErrInvalidYear
	}
	c, err := deps.ClientStore.GetByID(ctx, query.ClientID)
	if err != nil {
		return GetAttendanceSummaryResult{}, err
	}
	if !c.TracksAttendance() {
		return GetAttendanceSummaryResult{}, client.ErrNotGrace
	}

	s, err := readThrough(ctx, deps.Cache, cache.ScopeAttendance, query.ClientID, query.Year, func() (summary.YearlySummary, error) {
		first, last := civildate.YearBounds(query.Year)
		records, err := deps.AttendanceStore.ListByClient(ctx, query.ClientID, first, last)
		if err != nil {
			return summary.YearlySummary{}, err
		}
		return summary.BuildYearlySummary(query.ClientID, query.Year, domainAttendance.ToPeriodRecords(records))
	})
	if err != nil {
		return GetAttendanceSummaryResult{}, err
	}

	result := GetAttendanceSummaryResult{Summary: s, AbsenceStreaks: absenceStreaks(s.Periods)}
	if s.TotalDays > 0 {
		rate := float64(s.ByStatus[domainAttendance.StatusPresent]) / float64(s.TotalDays)
		result.AttendanceRate = math.Round(rate*1000) / 1000
	}
	for _, p := range result.AbsenceStreaks {
		if p.RecordCount > result.LongestAbsence {
			result.LongestAbsence = p.RecordCount
		}
	}
	return result, nil
}

// absenceStreaks joins absent periods that have no present period between them.
// Sessions are not held every day, so calendar gaps inside a streak are expected.
// PRE: periods are ordered by start date
func absenceStreaks(periods []period.Period) []period.Period {
	streaks := []period.Period{}
	var cur *period.Period
	for _, p := range periods {
		if p.Status != domainAttendance.StatusAbsent {
			cur = nil
			continue
		}
		if cur == nil {
			streaks = append(streaks, period.Period{StartDate: p.StartDate, Status: p.Status})
			cur = &streaks[len(streaks)-1]
		}
		cur.EndDate = p.EndDate
		cur.RecordCount += p.RecordCount
		span, _ := civildate.DaysDifference(cur.StartDate, cur.EndDate)
		cur.DayCount = span + 1
	}
	return streaks
}
