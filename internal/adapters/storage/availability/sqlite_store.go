package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"itgportal/internal/adapters/storage"
	domain "itgportal/internal/domain/availability"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new availability SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const selectColumns = "SELECT id, coach_id, date, status, reason, created_at, updated_at FROM coach_availability"

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (domain.Record, error) {
	var r domain.Record
	var created, updated string
	if err := row.Scan(&r.ID, &r.CoachID, &r.Date, &r.Status, &r.Reason, &created, &updated); err != nil {
		return domain.Record{}, err
	}
	var err error
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return domain.Record{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if r.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return domain.Record{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return r, nil
}

// Get retrieves the record for one coach on one date.
// PRE: coachID and date are non-empty
// POST: Returns the record or storage.ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, coachID, date string) (domain.Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE coach_id = ? AND date = ?", coachID, date)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, fmt.Errorf("availability %s/%s: %w", coachID, date, storage.ErrNotFound)
	}
	return r, err
}

// Upsert inserts or updates the record keyed by (coach_id, date).
// The stored id and created_at survive an update.
// PRE: value has been validated and carries an ID for the insert case
// POST: Returns the record as stored
func (s *SQLiteStore) Upsert(ctx context.Context, value domain.Record) (domain.Record, error) {
	_, err := s.db.ExecContext(ctx, upsertSQL,
		value.ID,
		value.CoachID,
		value.Date,
		value.Status,
		value.Reason,
		value.CreatedAt.UTC().Format(time.RFC3339Nano),
		value.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return domain.Record{}, err
	}
	return s.Get(ctx, value.CoachID, value.Date)
}

const upsertSQL = `
	INSERT INTO coach_availability (id, coach_id, date, status, reason, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(coach_id, date) DO UPDATE SET
		status = excluded.status,
		reason = excluded.reason,
		updated_at = excluded.updated_at`

// UpsertRange upserts every record in one transaction; either all days are
// written or none are.
// PRE: each value has been validated and carries an ID
// POST: One row per (coach_id, date) for every value, or no change on error
func (s *SQLiteStore) UpsertRange(ctx context.Context, values []domain.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, v := range values {
		if _, err := stmt.ExecContext(ctx,
			v.ID, v.CoachID, v.Date, v.Status, v.Reason,
			v.CreatedAt.UTC().Format(time.RFC3339Nano),
			v.UpdatedAt.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("upsert %s: %w", v.Date, err)
		}
	}
	return tx.Commit()
}

// Delete removes the record for one coach on one date. Missing rows are not an error.
func (s *SQLiteStore) Delete(ctx context.Context, coachID, date string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM coach_availability WHERE coach_id = ? AND date = ?", coachID, date)
	return err
}

// DeleteRange removes a coach's records in [startDate, endDate].
// POST: Returns the number of rows removed
func (s *SQLiteStore) DeleteRange(ctx context.Context, coachID, startDate, endDate string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM coach_availability WHERE coach_id = ? AND date >= ? AND date <= ?",
		coachID, startDate, endDate)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// ListByCoach lists a coach's records ordered by date.
func (s *SQLiteStore) ListByCoach(ctx context.Context, coachID string, filter ListFilter) ([]domain.Record, error) {
	query := selectColumns + " WHERE coach_id = ?"
	args := []any{coachID}
	if filter.StartDate != "" {
		query += " AND date >= ?"
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		query += " AND date <= ?"
		args = append(args, filter.EndDate)
	}
	return s.list(ctx, query+" ORDER BY date", args...)
}

// ListByDate lists every coach's record for one date.
func (s *SQLiteStore) ListByDate(ctx context.Context, date string) ([]domain.Record, error) {
	return s.list(ctx, selectColumns+" WHERE date = ? ORDER BY coach_id", date)
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
