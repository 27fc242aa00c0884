package projections

import (
	"context"

	"itgportal/internal/adapters/cache"
	"itgportal/internal/adapters/storage/availability"
	"itgportal/internal/adapters/storage/client"
	"itgportal/internal/adapters/storage/coach"
	domainAttendance "itgportal/internal/domain/attendance"
	domainAvailability "itgportal/internal/domain/availability"
	domainClient "itgportal/internal/domain/client"
	domainCoach "itgportal/internal/domain/coach"
	"itgportal/internal/domain/summary"
)

// CoachStore interface for coach queries.
type CoachStore interface {
	GetByID(ctx context.Context, id string) (domainCoach.Coach, error)
	List(ctx context.Context, filter coach.ListFilter) ([]domainCoach.Coach, error)
}

// ClientStore interface for client queries.
type ClientStore interface {
	GetByID(ctx context.Context, id string) (domainClient.Client, error)
	List(ctx context.Context, filter client.ListFilter) ([]domainClient.Client, error)
}

// AvailabilityStore interface for availability queries.
type AvailabilityStore interface {
	ListByCoach(ctx context.Context, coachID string, filter availability.ListFilter) ([]domainAvailability.Record, error)
	ListByDate(ctx context.Context, date string) ([]domainAvailability.Record, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	ListByClient(ctx context.Context, clientID, startDate, endDate string) ([]domainAttendance.Record, error)
}

// SummaryCache interface for the read-through summary cache.
type SummaryCache interface {
	Get(ctx context.Context, scope cache.Scope, entityID string, year int) (summary.YearlySummary, bool, error)
	Set(ctx context.Context, scope cache.Scope, s summary.YearlySummary) error
}
