package client

import (
	"context"

	domain "itgportal/internal/domain/client"
)

// Collection is the document-store collection holding clients.
const Collection = "clients"

// Store persists Client state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Client, error)
	Save(ctx context.Context, value domain.Client) error
	List(ctx context.Context, filter ListFilter) ([]domain.Client, error)
}

// ListFilter carries filtering parameters for List operations.
// Empty fields do not filter.
type ListFilter struct {
	Program string
	CoachID string
	Status  string
}
