package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"itgportal/internal/adapters/storage"
	domain "itgportal/internal/domain/attendance"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new attendance SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const selectColumns = "SELECT id, client_id, date, present, notes, recorded_at FROM grace_attendance"

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (domain.Record, error) {
	var r domain.Record
	var present int
	var recorded string
	if err := row.Scan(&r.ID, &r.ClientID, &r.Date, &present, &r.Notes, &recorded); err != nil {
		return domain.Record{}, err
	}
	r.Present = present == 1
	t, err := time.Parse(time.RFC3339Nano, recorded)
	if err != nil {
		return domain.Record{}, fmt.Errorf("failed to parse recorded_at: %w", err)
	}
	r.RecordedAt = t
	return r, nil
}

// Get retrieves one client's attendance on one date.
// PRE: clientID and date are non-empty
// POST: Returns the record or storage.ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, clientID, date string) (domain.Record, error) {
	r, err := scanRecord(s.db.QueryRowContext(ctx, selectColumns+" WHERE client_id = ? AND date = ?", clientID, date))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, fmt.Errorf("attendance %s/%s: %w", clientID, date, storage.ErrNotFound)
	}
	return r, err
}

// Upsert inserts or updates the record keyed by (client_id, date).
// PRE: value has been validated
// POST: Returns the record as stored; the original id is kept on update
func (s *SQLiteStore) Upsert(ctx context.Context, value domain.Record) (domain.Record, error) {
	present := 0
	if value.Present {
		present = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO grace_attendance (id, client_id, date, present, notes, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id, date) DO UPDATE SET
			present = excluded.present,
			notes = excluded.notes,
			recorded_at = excluded.recorded_at`,
		value.ID, value.ClientID, value.Date, present, value.Notes,
		value.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return domain.Record{}, err
	}
	return s.Get(ctx, value.ClientID, value.Date)
}

// ListByClient lists a client's attendance in [startDate, endDate] ordered by date.
func (s *SQLiteStore) ListByClient(ctx context.Context, clientID, startDate, endDate string) ([]domain.Record, error) {
	return s.list(ctx, selectColumns+" WHERE client_id = ? AND date >= ? AND date <= ? ORDER BY date", clientID, startDate, endDate)
}

// ListByDate lists every client's attendance on one date.
func (s *SQLiteStore) ListByDate(ctx context.Context, date string) ([]domain.Record, error) {
	return s.list(ctx, selectColumns+" WHERE date = ? ORDER BY client_id", date)
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}
