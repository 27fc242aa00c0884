package coach

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"itgportal/internal/adapters/storage"
	domain "itgportal/internal/domain/coach"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new coach SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Coach by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Coach, error) {
	var c domain.Coach
	var active int
	err := s.db.QueryRowContext(ctx, "SELECT id, name, email, active FROM coach WHERE id = ?", id).
		Scan(&c.ID, &c.Name, &c.Email, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coach{}, fmt.Errorf("coach %s: %w", id, storage.ErrNotFound)
	}
	c.Active = active == 1
	return c, err
}

// Save persists a Coach (insert or update).
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, c domain.Coach) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO coach (id, name, email, active) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, email=excluded.email, active=excluded.active`,
		c.ID, c.Name, c.Email, boolToInt(c.Active))
	return err
}

// List retrieves coaches ordered by name.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Coach, error) {
	query := "SELECT id, name, email, active FROM coach"
	if filter.ActiveOnly {
		query += " WHERE active = 1"
	}
	rows, err := s.db.QueryContext(ctx, query+" ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Coach
	for rows.Next() {
		var c domain.Coach
		var active int
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &active); err != nil {
			return nil, err
		}
		c.Active = active == 1
		results = append(results, c)
	}
	return results, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
