package web

import (
	"net/http"
	"time"

	"itgportal/internal/domain/outbox"
)

// registerRoutes maps every API endpoint onto mux.
func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /api/coaches", handleListCoaches)
	mux.HandleFunc("POST /api/coaches", handleCreateCoach)
	mux.HandleFunc("GET /api/clients", handleListClients)
	mux.HandleFunc("POST /api/clients", handleCreateClient)

	mux.HandleFunc("GET /api/coaches/{id}/availability", handleGetAvailability)
	mux.HandleFunc("PUT /api/coaches/{id}/availability", handleSetAvailability)
	mux.HandleFunc("POST /api/coaches/{id}/availability/range", handleSetAvailabilityRange)
	mux.HandleFunc("DELETE /api/coaches/{id}/availability/range", handleClearAvailabilityRange)
	mux.HandleFunc("GET /api/coaches/{id}/summary", handleGetSummary)
	mux.HandleFunc("GET /api/coaches/{id}/periods", handleGetPeriods)
	mux.HandleFunc("GET /api/coaches/{id}/time-off", handleGetTimeOff)
	mux.HandleFunc("GET /api/team/availability", handleGetTeamAvailability)

	mux.HandleFunc("PUT /api/clients/{id}/attendance", handleRecordAttendance)
	mux.HandleFunc("POST /api/attendance/roll-call", handleRecordRollCall)
	mux.HandleFunc("GET /api/clients/{id}/attendance/summary", handleGetAttendanceSummary)

	mux.HandleFunc("GET /api/admin/perf", handleAdminPerf)
	mux.HandleFunc("GET /api/admin/notices", handleAdminNotices)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAdminPerf serves GET /api/admin/perf?window=15m.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	window := 15 * time.Minute
	if raw := r.URL.Query().Get("window"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "window must be a positive duration"})
			return
		}
		window = d
	}
	if perfCollector == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	snap := perfCollector.Snapshot(timeNow().Add(-window), 10)
	writeJSON(w, http.StatusOK, map[string]any{
		"window":        window.String(),
		"snapshot":      snap,
		"cacheHitRatio": snap.CacheHitRatio(),
	})
}

type noticeView struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	Attempts        int       `json:"attempts"`
	MaxAttempts     int       `json:"maxAttempts"`
	CreatedAt       time.Time `json:"createdAt"`
	LastAttemptedAt time.Time `json:"lastAttemptedAt"`
	MessageID       string    `json:"messageId,omitempty"`
	LastError       string    `json:"lastError,omitempty"`
}

// handleAdminNotices serves GET /api/admin/notices?status=failed.
func handleAdminNotices(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "":
		status = outbox.StatusFailed
	case outbox.StatusPending, outbox.StatusSent, outbox.StatusFailed:
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "status must be one of: pending, sent, failed"})
		return
	}
	views := make([]noticeView, 0)
	if noticeOutbox != nil {
		entries, err := noticeOutbox.ListByStatus(r.Context(), status, 100)
		if err != nil {
			internalError(w, err)
			return
		}
		for _, e := range entries {
			views = append(views, noticeView{
				ID: e.ID, Status: e.Status, Attempts: e.Attempts, MaxAttempts: e.MaxAttempts,
				CreatedAt: e.CreatedAt, LastAttemptedAt: e.LastAttemptedAt, MessageID: e.MessageID, LastError: e.LastError,
			})
		}
	}
	writeJSON(w, http.StatusOK, views)
}
