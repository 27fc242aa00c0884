package projections

import (
	"context"

	"itgportal/internal/adapters/storage/client"
	"itgportal/internal/adapters/storage/coach"
	domainClient "itgportal/internal/domain/client"
	domainCoach "itgportal/internal/domain/coach"
)

// ListCoachesQuery carries input for the coach directory.
type ListCoachesQuery struct {
	ActiveOnly bool
}

// QueryListCoaches lists coaches. Returns a non-nil slice.
func QueryListCoaches(ctx context.Context, query ListCoachesQuery, store CoachStore) ([]domainCoach.Coach, error) {
	coaches, err := store.List(ctx, coach.ListFilter{ActiveOnly: query.ActiveOnly})
	if err != nil {
		return nil, err
	}
	if coaches == nil {
		coaches = []domainCoach.Coach{}
	}
	return coaches, nil
}

// ListClientsQuery carries input for the client directory. Empty fields do not filter.
type ListClientsQuery struct {
	Program string
	CoachID string
	Status  string
}

// QueryListClients lists clients. Returns a non-nil slice.
func QueryListClients(ctx context.Context, query ListClientsQuery, store ClientStore) ([]domainClient.Client, error) {
	clients, err := store.List(ctx, client.ListFilter{Program: query.Program, CoachID: query.CoachID, Status: query.Status})
	if err != nil {
		return nil, err
	}
	if clients == nil {
		clients = []domainClient.Client{}
	}
	return clients, nil
}
