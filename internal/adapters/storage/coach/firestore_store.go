package coach

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"itgportal/internal/adapters/storage"
	domain "itgportal/internal/domain/coach"
)

// coachDoc is the stored shape of a coach document.
type coachDoc struct {
	Name   string `firestore:"name"`
	Email  string `firestore:"email"`
	Active bool   `firestore:"active"`
}

// FirestoreStore implements Store on the coaches collection.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a Store backed by client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// GetByID retrieves a Coach by document ID.
func (s *FirestoreStore) GetByID(ctx context.Context, id string) (domain.Coach, error) {
	snap, err := s.client.Collection(Collection).Doc(id).Get(ctx)
	if snap != nil && !snap.Exists() {
		return domain.Coach{}, fmt.Errorf("coach %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return domain.Coach{}, err
	}
	var d coachDoc
	if err := snap.DataTo(&d); err != nil {
		return domain.Coach{}, err
	}
	return domain.Coach{ID: id, Name: d.Name, Email: d.Email, Active: d.Active}, nil
}

// Save writes the coach document under its ID.
func (s *FirestoreStore) Save(ctx context.Context, c domain.Coach) error {
	_, err := s.client.Collection(Collection).Doc(c.ID).Set(ctx, coachDoc{Name: c.Name, Email: c.Email, Active: c.Active})
	return err
}

// List retrieves coaches ordered by name.
func (s *FirestoreStore) List(ctx context.Context, filter ListFilter) ([]domain.Coach, error) {
	q := s.client.Collection(Collection).Query
	if filter.ActiveOnly {
		q = q.Where("active", "==", true)
	}
	iter := q.OrderBy("name", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var results []domain.Coach
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var d coachDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, err
		}
		results = append(results, domain.Coach{ID: doc.Ref.ID, Name: d.Name, Email: d.Email, Active: d.Active})
	}
	return results, nil
}
