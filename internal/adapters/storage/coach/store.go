package coach

import (
	"context"

	domain "itgportal/internal/domain/coach"
)

// Collection is the document-store collection holding coaches.
const Collection = "coaches"

// Store persists Coach state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Coach, error)
	Save(ctx context.Context, value domain.Coach) error
	List(ctx context.Context, filter ListFilter) ([]domain.Coach, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	ActiveOnly bool
}
