package web

import (
	"net/http"
	"time"

	"itgportal/internal/application/orchestrators"
	"itgportal/internal/application/projections"
	"itgportal/internal/domain/attendance"
)

type attendanceView struct {
	ClientID   string    `json:"clientId"`
	Date       string    `json:"date"`
	Present    bool      `json:"present"`
	Notes      string    `json:"notes,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

func toAttendanceView(r attendance.Record) attendanceView {
	return attendanceView{ClientID: r.ClientID, Date: r.Date, Present: r.Present, Notes: r.Notes, RecordedAt: r.RecordedAt}
}

type recordAttendanceRequest struct {
	Date    string `json:"date" validate:"required,civildate"`
	Present *bool  `json:"present" validate:"required"`
	Notes   string `json:"notes" validate:"max=1000"`
}

type rollCallEntry struct {
	ClientID string `json:"clientId" validate:"required"`
	Present  *bool  `json:"present" validate:"required"`
	Notes    string `json:"notes" validate:"max=1000"`
}

type rollCallRequest struct {
	Date    string          `json:"date" validate:"required,civildate"`
	Entries []rollCallEntry `json:"entries" validate:"required,min=1,dive"`
}

func attendanceDeps() orchestrators.RecordAttendanceDeps {
	return orchestrators.RecordAttendanceDeps{
		AttendanceStore: stores.AttendanceStore,
		ClientStore:     stores.ClientStore,
		Cache:           summaryCache,
		GenerateID:      generateID,
		Now:             timeNow,
	}
}

// handleRecordAttendance serves PUT /api/clients/{id}/attendance.
func handleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	var req recordAttendanceRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	rec, err := orchestrators.ExecuteRecordAttendance(r.Context(), orchestrators.RecordAttendanceInput{
		ClientID: r.PathValue("id"),
		Date:     req.Date,
		Present:  *req.Present,
		Notes:    req.Notes,
	}, attendanceDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAttendanceView(rec))
}

// handleRecordRollCall serves POST /api/attendance/roll-call.
func handleRecordRollCall(w http.ResponseWriter, r *http.Request) {
	var req rollCallRequest
	if err := decodeAndValidate(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	entries := make([]orchestrators.AttendanceEntry, len(req.Entries))
	for i, e := range req.Entries {
		entries[i] = orchestrators.AttendanceEntry{ClientID: e.ClientID, Present: *e.Present, Notes: e.Notes}
	}
	records, err := orchestrators.ExecuteRecordAttendanceBatch(r.Context(), orchestrators.RecordAttendanceBatchInput{
		Date:    req.Date,
		Entries: entries,
	}, attendanceDeps())
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]attendanceView, len(records))
	for i, rec := range records {
		views[i] = toAttendanceView(rec)
	}
	writeJSON(w, http.StatusOK, views)
}

// handleGetAttendanceSummary serves GET /api/clients/{id}/attendance/summary?year=.
func handleGetAttendanceSummary(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := projections.QueryGetAttendanceSummary(r.Context(), projections.GetAttendanceSummaryQuery{
		ClientID: r.PathValue("id"),
		Year:     year,
	}, projections.GetAttendanceSummaryDeps{
		ClientStore:     stores.ClientStore,
		AttendanceStore: stores.AttendanceStore,
		Cache:           summaryCache,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
