package availability

import (
	"context"

	domain "itgportal/internal/domain/availability"
)

// Collection is the document-store collection holding availability records.
const Collection = "coach-availability"

// Store persists coach availability. At most one record exists per (CoachID, Date).
type Store interface {
	Get(ctx context.Context, coachID, date string) (domain.Record, error)
	Upsert(ctx context.Context, value domain.Record) (domain.Record, error)
	UpsertRange(ctx context.Context, values []domain.Record) error
	Delete(ctx context.Context, coachID, date string) error
	DeleteRange(ctx context.Context, coachID, startDate, endDate string) (int, error)
	ListByCoach(ctx context.Context, coachID string, filter ListFilter) ([]domain.Record, error)
	ListByDate(ctx context.Context, date string) ([]domain.Record, error)
}

// ListFilter bounds a coach listing to an inclusive date window.
// Empty bounds are open.
type ListFilter struct {
	StartDate string
	EndDate   string
}
