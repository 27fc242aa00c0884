package web

import (
	"context"
	"net/http"
	"time"

	"itgportal/internal/application/orchestrators"
	"itgportal/internal/application/projections"
	"itgportal/internal/domain/availability"
	"itgportal/internal/domain/civildate"
)

type availabilityView struct {
	CoachID   string    `json:"coachId"`
	Date      string    `json:"date"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toAvailabilityView(r availability.Record) availabilityView {
	return availabilityView{CoachID: r.CoachID, Date: r.Date, Status: r.Status, Reason: r.Reason, UpdatedAt: r.UpdatedAt}
}

type setAvailabilityRequest struct {
	Date   string `json:"date" validate:"required,civildate"`
	Status string `json:"status" validate:"required,oneof=available off sick vacation"`
	Reason string `json:"reason" validate:"max=500"`
}

type setAvailabilityRangeRequest struct {
	StartDate string `json:"startDate" validate:"required,civildate"`
	EndDate   string `json:"endDate" validate:"required,civildate"`
	Status    string `json:"status" validate:"required,oneof=available off sick vacation"`
	Reason    string `json:"reason" validate:"max=500"`
}

// timeOffNotifier returns the notification hook, or nil when email is not configured.
func timeOffNotifier() func(context.Context, orchestrators.NotifyTimeOffInput) error {
	if emailSender == nil || len(notifyRecipients) == 0 {
		return nil
	}
	deps := orchestrators.NotifyTimeOffDeps{
		Sender:     emailSender,
		Recipients: notifyRecipients,
		From:       emailFromAddress,
		Outbox:     noticeOutbox,
		GenerateID: generateID,
		Now:        timeNow,
	}
	return func(ctx context.Context, in orchestrators.NotifyTimeOffInput) error {
		_, err := orchestrators.ExecuteNotifyTimeOff(ctx, in, deps)
		return err
	}
}

func today() string {
	return civildate.Format(timeNow())
}

// handleGetAvailability serves GET /api/coaches/{id}/availability?start=&end=.
func handleGetAvailability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	records, err := projections.QueryGetAvailability(r.Context(), projections.GetAvailabilityQuery{
		CoachID:   r.PathValue("id"),
		StartDate: q.Get("start"),
		EndDate:   q.Get("end"),
	}, projections.GetAvailabilityDeps{CoachStore: stores.CoachStore, AvailabilityStore: stores.AvailabilityStore})
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]availabilityView, len(records))
	for i, rec := range records {
		views[i] = toAvailabilityView(rec)
	}
	writeJSON(w, http.StatusOK, views)
}

// handleSetAvailability serves PUT /api/coaches/{id}/availability.
func handleSetAvailability(w http.ResponseWriter, r *http.Request) {
	var req setAvailabilityRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := orchestrators.ExecuteSetAvailability(r.Context(), orchestrators.SetAvailabilityInput{
		CoachID: r.PathValue("id"),
		Date:    req.Date,
		Status:  req.Status,
		Reason:  req.Reason,
	}, orchestrators.SetAvailabilityDeps{
		AvailabilityStore: stores.AvailabilityStore,
		CoachStore:        stores.CoachStore,
		Cache:             summaryCache,
		GenerateID:        generateID,
		Now:               timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"record":  toAvailabilityView(res.Record),
		"cleared": res.Cleared,
	})
}

// handleSetAvailabilityRange serves POST /api/coaches/{id}/availability/range.
func handleSetAvailabilityRange(w http.ResponseWriter, r *http.Request) {
	var req setAvailabilityRangeRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := orchestrators.ExecuteSetAvailabilityRange(r.Context(), orchestrators.SetAvailabilityRangeInput{
		CoachID:   r.PathValue("id"),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    req.Status,
		Reason:    req.Reason,
	}, orchestrators.SetAvailabilityRangeDeps{
		AvailabilityStore: stores.AvailabilityStore,
		CoachStore:        stores.CoachStore,
		Cache:             summaryCache,
		Notify:            timeOffNotifier(),
		GenerateID:        generateID,
		Now:               timeNow,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": res.Days, "notified": res.Notified, "noticeQueued": res.NoticeQueued})
}

// handleClearAvailabilityRange serves DELETE /api/coaches/{id}/availability/range?start=&end=.
func handleClearAvailabilityRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := orchestrators.ExecuteClearAvailabilityRange(r.Context(), orchestrators.ClearAvailabilityRangeInput{
		CoachID:   r.PathValue("id"),
		StartDate: q.Get("start"),
		EndDate:   q.Get("end"),
	}, orchestrators.ClearAvailabilityRangeDeps{
		AvailabilityStore: stores.AvailabilityStore,
		CoachStore:        stores.CoachStore,
		Cache:             summaryCache,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

// handleGetSummary serves GET /api/coaches/{id}/summary?year=.
func handleGetSummary(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		writeError(w, err)
		return
	}
	s, err := projections.QueryGetYearlySummary(r.Context(), projections.GetYearlySummaryQuery{
		CoachID: r.PathValue("id"),
		Year:    year,
	}, projections.GetYearlySummaryDeps{
		CoachStore:        stores.CoachStore,
		AvailabilityStore: stores.AvailabilityStore,
		Cache:             summaryCache,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleGetPeriods serves GET /api/coaches/{id}/periods?start=&end=&policy=.
func handleGetPeriods(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := projections.QueryGetAvailabilityPeriods(r.Context(), projections.GetAvailabilityPeriodsQuery{
		CoachID:   r.PathValue("id"),
		StartDate: q.Get("start"),
		EndDate:   q.Get("end"),
		Policy:    q.Get("policy"),
	}, projections.GetAvailabilityDeps{CoachStore: stores.CoachStore, AvailabilityStore: stores.AvailabilityStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleGetTimeOff serves GET /api/coaches/{id}/time-off?start=&end=&today=.
// start defaults to today and end to 90 days later.
func handleGetTimeOff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	now := q.Get("today")
	if now == "" {
		now = today()
	}
	start := q.Get("start")
	if start == "" {
		start = now
	}
	end := q.Get("end")
	if end == "" {
		var err error
		if end, err = civildate.AddDays(start, 90); err != nil {
			writeError(w, err)
			return
		}
	}

	res, err := projections.QueryGetTimeOffPeriods(r.Context(), projections.GetTimeOffPeriodsQuery{
		CoachID:   r.PathValue("id"),
		StartDate: start,
		EndDate:   end,
		Today:     now,
	}, projections.GetTimeOffPeriodsDeps{CoachStore: stores.CoachStore, AvailabilityStore: stores.AvailabilityStore, Now: timeNow})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleGetTeamAvailability serves GET /api/team/availability?date=.
func handleGetTeamAvailability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = today()
	}
	res, err := projections.QueryGetTeamAvailability(r.Context(), projections.GetTeamAvailabilityQuery{Date: date},
		projections.GetTeamAvailabilityDeps{CoachStore: stores.CoachStore, AvailabilityStore: stores.AvailabilityStore})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
