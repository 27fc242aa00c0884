package attendance

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"itgportal/internal/adapters/storage"
	domain "itgportal/internal/domain/attendance"
)

// FirestoreStore implements Store on the grace-attendance collection.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a Store backed by client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) byClientDate(clientID, date string) firestore.Query {
	return s.client.Collection(Collection).
		Where("clientId", "==", clientID).
		Where("date", "==", date).
		Limit(1)
}

// Get retrieves one client's attendance on one date.
func (s *FirestoreStore) Get(ctx context.Context, clientID, date string) (domain.Record, error) {
	docs, err := s.byClientDate(clientID, date).Documents(ctx).GetAll()
	if err != nil {
		return domain.Record{}, err
	}
	if len(docs) == 0 {
		return domain.Record{}, fmt.Errorf("attendance %s/%s: %w", clientID, date, storage.ErrNotFound)
	}
	return domain.FromDocument(docs[0].Ref.ID, docs[0].Data())
}

// Upsert updates the existing (clientId, date) document or creates one.
// PRE: value has been validated
// POST: Exactly one document exists for (clientId, date)
func (s *FirestoreStore) Upsert(ctx context.Context, value domain.Record) (domain.Record, error) {
	stored := value
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(s.byClientDate(value.ClientID, value.Date)).GetAll()
		if err != nil {
			return err
		}
		ref := s.client.Collection(Collection).Doc(value.ID)
		if len(docs) > 0 {
			ref = docs[0].Ref
			stored.ID = ref.ID
		}
		return tx.Set(ref, stored.ToDocument())
	})
	if err != nil {
		return domain.Record{}, err
	}
	return stored, nil
}

// ListByClient lists a client's attendance in [startDate, endDate] ordered by date.
func (s *FirestoreStore) ListByClient(ctx context.Context, clientID, startDate, endDate string) ([]domain.Record, error) {
	q := s.client.Collection(Collection).
		Where("clientId", "==", clientID).
		Where("date", ">=", startDate).
		Where("date", "<=", endDate).
		OrderBy("date", firestore.Asc)
	return s.collect(ctx, q)
}

// ListByDate lists every client's attendance on one date.
func (s *FirestoreStore) ListByDate(ctx context.Context, date string) ([]domain.Record, error) {
	return s.collect(ctx, s.client.Collection(Collection).Where("date", "==", date))
}

func (s *FirestoreStore) collect(ctx context.Context, q firestore.Query) ([]domain.Record, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var results []domain.Record
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		r, err := domain.FromDocument(doc.Ref.ID, doc.Data())
		if err != nil {
			slog.Warn("attendance_document_skipped", "id", doc.Ref.ID, "error", err)
			continue
		}
		results = append(results, r)
	}
	return results, nil
}
