package client

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"itgportal/internal/adapters/storage"
	domain "itgportal/internal/domain/client"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new client SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const selectColumns = "SELECT id, name, email, program, coach_id, status FROM client"

type scanner interface {
	Scan(dest ...any) error
}

func scanClient(row scanner) (domain.Client, error) {
	var c domain.Client
	var coachID sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Program, &coachID, &c.Status); err != nil {
		return domain.Client{}, err
	}
	c.CoachID = coachID.String
	return c, nil
}

// GetByID retrieves a Client by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Client, error) {
	c, err := scanClient(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Client{}, fmt.Errorf("client %s: %w", id, storage.ErrNotFound)
	}
	return c, err
}

// Save persists a Client (insert or update).
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, c domain.Client) error {
	var coachID any
	if c.CoachID != "" {
		coachID = c.CoachID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO client (id, name, email, program, coach_id, status) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, email=excluded.email, program=excluded.program,
			coach_id=excluded.coach_id, status=excluded.status`,
		c.ID, c.Name, c.Email, c.Program, coachID, c.Status)
	return err
}

// List retrieves clients matching filter, ordered by name.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Client, error) {
	query := selectColumns + " WHERE 1=1"
	var args []any
	if filter.Program != "" {
		query += " AND program = ?"
		args = append(args, filter.Program)
	}
	if filter.CoachID != "" {
		query += " AND coach_id = ?"
		args = append(args, filter.CoachID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, filter.Status)
	}

	rows, err := s.db.QueryContext(ctx, query+" ORDER BY name", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, rows.Err()
}
