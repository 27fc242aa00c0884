package client

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"itgportal/internal/adapters/storage"
	domain "itgportal/internal/domain/client"
)

type clientDoc struct {
	Name    string `firestore:"name"`
	Email   string `firestore:"email"`
	Program string `firestore:"program"`
	CoachID string `firestore:"coachId"`
	Status  string `firestore:"status"`
}

func (d clientDoc) toDomain(id string) domain.Client {
	return domain.Client{ID: id, Name: d.Name, Email: d.Email, Program: d.Program, CoachID: d.CoachID, Status: d.Status}
}

// FirestoreStore implements Store on the clients collection.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a Store backed by fs.
func NewFirestoreStore(fs *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: fs}
}

// GetByID retrieves a Client by document ID.
func (s *FirestoreStore) GetByID(ctx context.Context, id string) (domain.Client, error) {
	snap, err := s.client.Collection(Collection).Doc(id).Get(ctx)
	if snap != nil && !snap.Exists() {
		return domain.Client{}, fmt.Errorf("client %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return domain.Client{}, err
	}
	var d clientDoc
	if err := snap.DataTo(&d); err != nil {
		return domain.Client{}, err
	}
	return d.toDomain(id), nil
}

// Save writes the client document under its ID.
func (s *FirestoreStore) Save(ctx context.Context, c domain.Client) error {
	doc := clientDoc{Name: c.Name, Email: c.Email, Program: c.Program, CoachID: c.CoachID, Status: c.Status}
	_, err := s.client.Collection(Collection).Doc(c.ID).Set(ctx, doc)
	return err
}

// List retrieves clients matching filter.
func (s *FirestoreStore) List(ctx context.Context, filter ListFilter) ([]domain.Client, error) {
	q := s.client.Collection(Collection).Query
	if filter.Program != "" {
		q = q.Where("program", "==", filter.Program)
	}
	if filter.CoachID != "" {
		q = q.Where("coachId", "==", filter.CoachID)
	}
	if filter.Status != "" {
		q = q.Where("status", "==", filter.Status)
	}
	iter := q.Documents(ctx)
	defer iter.Stop()

	var results []domain.Client
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var d clientDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, err
		}
		results = append(results, d.toDomain(doc.Ref.ID))
	}
	return results, nil
}
