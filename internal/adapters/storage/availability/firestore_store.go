package availability

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"itgportal/internal/adapters/storage"
	domain "itgportal/internal/domain/availability"
)

// FirestoreStore implements Store on the coach-availability collection.
// Documents are keyed by generated IDs, so uniqueness per (coachId, date) is
// kept by querying inside a transaction before writing.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a Store backed by client.
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) byCoachDate(coachID, date string) firestore.Query {
	return s.client.Collection(Collection).
		Where("coachId", "==", coachID).
		Where("date", "==", date).
		Limit(1)
}

// Get retrieves the record for one coach on one date.
func (s *FirestoreStore) Get(ctx context.Context, coachID, date string) (domain.Record, error) {
	docs, err := s.byCoachDate(coachID, date).Documents(ctx).GetAll()
	if err != nil {
		return domain.Record{}, err
	}
	if len(docs) == 0 {
		return domain.Record{}, fmt.Errorf("availability %s/%s: %w", coachID, date, storage.ErrNotFound)
	}
	return domain.FromDocument(docs[0].Ref.ID, docs[0].Data())
}

// Upsert queries for an existing (coachId, date) document and updates it, or
// creates a document with value.ID.
// PRE: value has been validated
// POST: Exactly one document exists for (coachId, date)
func (s *FirestoreStore) Upsert(ctx context.Context, value domain.Record) (domain.Record, error) {
	stored := value
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docs, err := tx.Documents(s.byCoachDate(value.CoachID, value.Date)).GetAll()
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			existing, err := domain.FromDocument(docs[0].Ref.ID, docs[0].Data())
			if err != nil {
				return err
			}
			stored.ID = existing.ID
			stored.CreatedAt = existing.CreatedAt
			return tx.Set(docs[0].Ref, stored.ToDocument())
		}
		return tx.Set(s.client.Collection(Collection).Doc(value.ID), stored.ToDocument())
	})
	if err != nil {
		return domain.Record{}, err
	}
	return stored, nil
}

// UpsertRange writes every record for one coach in a single transaction. The
// existing documents in the covered window are read first, since Firestore
// transactions require all reads before any write.
// PRE: values share one CoachID, are validated and number at most 500
// POST: Exactly one document per (coachId, date) for every value, or no change on error
func (s *FirestoreStore) UpsertRange(ctx context.Context, values []domain.Record) error {
	if len(values) == 0 {
		return nil
	}
	coachID := values[0].CoachID
	first, last := values[0].Date, values[0].Date
	for _, v := range values {
		first = min(first, v.Date)
		last = max(last, v.Date)
	}

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		q := s.client.Collection(Collection).
			Where("coachId", "==", coachID).
			Where("date", ">=", first).
			Where("date", "<=", last)
		docs, err := tx.Documents(q).GetAll()
		if err != nil {
			return err
		}
		existing := make(map[string]domain.Record, len(docs))
		refs := make(map[string]*firestore.DocumentRef, len(docs))
		for _, d := range docs {
			rec, err := domain.FromDocument(d.Ref.ID, d.Data())
			if err != nil {
				return err
			}
			existing[rec.Date] = rec
			refs[rec.Date] = d.Ref
		}

		for _, v := range values {
			stored := v
			ref := s.client.Collection(Collection).Doc(v.ID)
			if prev, ok := existing[v.Date]; ok {
				stored.ID = prev.ID
				stored.CreatedAt = prev.CreatedAt
				ref = refs[v.Date]
			}
			if err := tx.Set(ref, stored.ToDocument()); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the record for one coach on one date.
func (s *FirestoreStore) Delete(ctx context.Context, coachID, date string) error {
	docs, err := s.byCoachDate(coachID, date).Documents(ctx).GetAll()
	if err != nil {
		return err
	}
	for _, d := range docs {
		if _, err := d.Ref.Delete(ctx); err != nil {
			return err
		}
	}
	return nil
}

// DeleteRange removes a coach's documents in [startDate, endDate].
func (s *FirestoreStore) DeleteRange(ctx context.Context, coachID, startDate, endDate string) (int, error) {
	q := s.client.Collection(Collection).
		Where("coachId", "==", coachID).
		Where("date", ">=", startDate).
		Where("date", "<=", endDate)
	iter := q.Documents(ctx)
	defer iter.Stop()

	n := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return n, err
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// ListByCoach lists a coach's records ordered by date.
func (s *FirestoreStore) ListByCoach(ctx context.Context, coachID string, filter ListFilter) ([]domain.Record, error) {
	q := s.client.Collection(Collection).Where("coachId", "==", coachID)
	if filter.StartDate != "" {
		q = q.Where("date", ">=", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("date", "<=", filter.EndDate)
	}
	return s.collect(ctx, q.OrderBy("date", firestore.Asc))
}

// ListByDate lists every coach's record for one date.
func (s *FirestoreStore) ListByDate(ctx context.Context, date string) ([]domain.Record, error) {
	return s.collect(ctx, s.client.Collection(Collection).Where("date", "==", date))
}

// collect normalises each document, skipping ones that cannot be read.
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
			slog.Warn("availability_document_skipped", "id", doc.Ref.ID, "error", err)
			continue
		}
		results = append(results, r)
	}
	return results, nil
}
