package web

import (
	"net/http"
	"time"

	"itgportal/internal/adapters/cache"
	"itgportal/internal/adapters/email"
	"itgportal/internal/adapters/http/middleware"
	"itgportal/internal/adapters/http/perf"
	attendanceStore "itgportal/internal/adapters/storage/attendance"
	availabilityStore "itgportal/internal/adapters/storage/availability"
	clientStore "itgportal/internal/adapters/storage/client"
	coachStore "itgportal/internal/adapters/storage/coach"
	outboxStore "itgportal/internal/adapters/storage/outbox"
)

// Stores holds all storage dependencies.
type Stores struct {
	CoachStore        coachStore.Store
	ClientStore       clientStore.Store
	AvailabilityStore availabilityStore.Store
	AttendanceStore   attendanceStore.Store
}

// Options configures the middleware and the side effects handlers may trigger.
type Options struct {
	CSRFKey        []byte // 32 bytes
	SecureCookies  bool
	TrustedOrigins []string
	RatePerSecond  float64
	RateBurst      int
	SlowRequest    time.Duration
	Cache          cache.SummaryCache // nil disables caching
	Sender         email.Sender       // nil disables time-off notices
	EmailFrom      string
	NotifyTo       []string
	Outbox         outboxStore.Store // nil sends notices once without retry
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global summary cache (set by NewMux)
var summaryCache cache.SummaryCache = cache.NewNoopSummaryCache()

// Global email sender and recipients (set by NewMux)
var (
	emailSender      email.Sender
	emailFromAddress string
	notifyRecipients []string
	noticeOutbox     outboxStore.Store
)

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, collector *perf.Collector, opts Options) http.Handler {
	stores = s
	perfCollector = collector
	summaryCache = opts.Cache
	if summaryCache == nil {
		summaryCache = cache.NewNoopSummaryCache()
	}
	emailSender = opts.Sender
	emailFromAddress = opts.EmailFrom
	notifyRecipients = opts.NotifyTo
	noticeOutbox = opts.Outbox

	mux := http.NewServeMux()
	registerRoutes(mux)

	rate := opts.RatePerSecond
	if rate <= 0 {
		rate = 10
	}
	limiter := middleware.NewRateLimiter(rate, opts.RateBurst)
	go limiter.RunSweeper(time.Minute, nil)

	// Apply middleware: Timing -> RateLimit -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins),
		middleware.RateLimit(limiter),
		middleware.Timing(collector, opts.SlowRequest),
	)
}
