package attendance

import (
	"context"

	domain "itgportal/internal/domain/attendance"
)

// Collection is the document-store collection holding Grace attendance.
const Collection = "grace-attendance"

// Store persists Grace attendance. At most one record exists per (ClientID, Date).
type Store interface {
	Get(ctx context.Context, clientID, date string) (domain.Record, error)
	Upsert(ctx context.Context, value domain.Record) (domain.Record, error)
	ListByClient(ctx context.Context, clientID, startDate, endDate string) ([]domain.Record, error)
	ListByDate(ctx context.Context, date string) ([]domain.Record, error)
}
