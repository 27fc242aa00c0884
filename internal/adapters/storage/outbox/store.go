package outbox

import (
	"context"

	domain "itgportal/internal/domain/outbox"
)

// Store persists undelivered notifications.
type Store interface {
	// Save inserts or updates an entry.
	// PRE: entry has been validated
	// POST: Entry is persisted
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns entries still eligible for retry, oldest first.
	// PRE: limit > 0
	// POST: Returns up to limit entries with status pending
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListByStatus returns entries in one status, newest attempt first.
	// PRE: limit > 0
	// POST: Returns up to limit entries
	ListByStatus(ctx context.Context, status string, limit int) ([]domain.Entry, error)
}
