package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"itgportal/internal/adapters/http/perf"
)

// captureLogs points the default slog logger at a JSON buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

type requestLog struct {
	Level  string  `json:"level"`
	Msg    string  `json:"msg"`
	Method string  `json:"method"`
	Path   string  `json:"path"`
	Status int     `json:"status"`
	Ms     float64 `json:"duration_ms"`
}

func lastRequestLog(t *testing.T, buf *bytes.Buffer) requestLog {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var rl requestLog
	if err := json.Unmarshal(lines[len(lines)-1], &rl); err != nil {
		t.Fatalf("decode log line %q: %v", lines[len(lines)-1], err)
	}
	return rl
}

func portalMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/coaches/{id}/summary", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("DELETE /api/coaches/{id}/availability", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/api/admin/perf", func(w http.ResponseWriter, r *http.Request) {})
	return mux
}

// TestTiming_RouteLabel checks which label each request is aggregated under.
func TestTiming_RouteLabel(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		want   string
	}{
		{"method pattern kept", "GET", "/api/coaches/c1/summary", "GET /api/coaches/{id}/summary"},
		{"delete pattern", "DELETE", "/api/coaches/c1/availability?startDate=2026-03-02", "DELETE /api/coaches/{id}/availability"},
		{"method added to bare pattern", "GET", "/api/admin/perf", "GET /api/admin/perf"},
		{"unmatched falls back to path", "GET", "/api/unknown/c9", "GET /api/unknown/c9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := perf.NewCollector(10)
			h := Timing(collector, time.Hour)(portalMux())
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.path, nil))

			snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
			if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Path != tt.want {
				t.Errorf("SlowestPaths = %+v, want one entry %q", snap.SlowestPaths, tt.want)
			}
		})
	}
}

// TestTiming_CoachIDsShareLabel keeps per-coach summary calls in one bucket.
func TestTiming_CoachIDsShareLabel(t *testing.T) {
	collector := perf.NewCollector(10)
	h := Timing(collector, time.Hour)(portalMux())

	for _, id := range []string{"coach-a", "coach-b"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/coaches/"+id+"/summary?year=2026", nil))
	}

	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	if len(snap.SlowestPaths) != 1 {
		t.Fatalf("SlowestPaths = %+v, want one label", snap.SlowestPaths)
	}
	if got := snap.SlowestPaths[0]; got.Path != "GET /api/coaches/{id}/summary" || got.Count != 2 {
		t.Errorf("stat = %+v, want summary pattern with count 2", got)
	}
	if snap.Requests != 2 {
		t.Errorf("Requests = %d, want 2", snap.Requests)
	}
}

// TestTiming_HealthNotRecorded keeps the health check out of stats and logs.
func TestTiming_HealthNotRecorded(t *testing.T) {
	buf := captureLogs(t)
	collector := perf.NewCollector(10)
	called := false
	h := Timing(collector, time.Nanosecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/healthz", nil))

	if !called {
		t.Error("health handler not called")
	}
	if collector.TotalRecorded() != 0 {
		t.Errorf("TotalRecorded = %d, want 0", collector.TotalRecorded())
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected log output: %s", buf.String())
	}
}

// TestTiming_LogsStatus runs the cases in order on one middleware so a pooled
// writer that kept the previous status would show up in the next case.
func TestTiming_LogsStatus(t *testing.T) {
	buf := captureLogs(t)
	h := Timing(perf.NewCollector(10), time.Nanosecond)

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    int
	}{
		{"conflict", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusConflict) }, http.StatusConflict},
		{"body only", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(`{"removed":0}`)) }, http.StatusOK},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "store down", http.StatusInternalServerError)
		}, http.StatusInternalServerError},
		{"nothing written", func(w http.ResponseWriter, r *http.Request) {}, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			rr := httptest.NewRecorder()
			h(tt.handler).ServeHTTP(rr, httptest.NewRequest("POST", "/api/coaches/c1/availability", nil))

			if rr.Code != tt.want {
				t.Errorf("response code = %d, want %d", rr.Code, tt.want)
			}
			got := lastRequestLog(t, buf)
			if got.Status != tt.want {
				t.Errorf("logged status = %d, want %d", got.Status, tt.want)
			}
		})
	}
}

// TestTiming_LogLevel checks WARN at the threshold and DEBUG below it.
func TestTiming_LogLevel(t *testing.T) {
	tests := []struct {
		name    string
		slow    time.Duration
		wantMsg string
		wantLvl string
	}{
		{"at threshold", time.Nanosecond, "slow_request", "WARN"},
		{"under threshold", time.Hour, "request", "DEBUG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			h := Timing(nil, tt.slow)(portalMux())
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/coaches/c1/summary", nil))

			got := lastRequestLog(t, buf)
			if got.Msg != tt.wantMsg || got.Level != tt.wantLvl {
				t.Errorf("log = %s %q, want %s %q", got.Level, got.Msg, tt.wantLvl, tt.wantMsg)
			}
			if got.Method != "GET" || got.Path != "/api/coaches/c1/summary" {
				t.Errorf("log request = %s %s", got.Method, got.Path)
			}
			if got.Ms < 0 {
				t.Errorf("duration_ms = %v", got.Ms)
			}
		})
	}
}

// TestTiming_PanicStillRecorded keeps the entry when a handler panics.
func TestTiming_PanicStillRecorded(t *testing.T) {
	collector := perf.NewCollector(10)
	h := Timing(collector, time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("summary build failed")
	}))

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic was swallowed")
			}
		}()
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/coaches/c1/summary", nil))
	}()

	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
	}
}

func BenchmarkTiming(b *testing.B) {
	collector := perf.NewCollector(1000)
	h := Timing(collector, time.Hour)(portalMux())

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/coaches/c1/summary", nil))
		}
	})
}
