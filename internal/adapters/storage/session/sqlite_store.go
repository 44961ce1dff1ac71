package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"brickyard/internal/adapters/storage"
	domain "brickyard/internal/domain/session"
)

const selectColumns = "SELECT id, title, start_ts, end_ts, age_min, age_max, tags, type, location, capacity, notes FROM club_session"

// SQLiteStore implements Store over any storage.SQLDB (SQLite or Postgres).
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new session store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (domain.Session, error) {
	var entity domain.Session
	var tags string
	if err := row.Scan(
		&entity.ID, &entity.Title, &entity.StartTs, &entity.EndTs,
		&entity.AgeMin, &entity.AgeMax, &tags, &entity.Type,
		&entity.Location, &entity.Capacity, &entity.Notes,
	); err != nil {
		return domain.Session{}, err
	}
	if err := json.Unmarshal([]byte(tags), &entity.Tags); err != nil {
		return domain.Session{}, fmt.Errorf("decode tags for session %s: %w", entity.ID, err)
	}
	if entity.Tags == nil {
		entity.Tags = []string{}
	}
	return entity, nil
}

// GetByID retrieves a Session by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	entity, err := scanSession(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, fmt.Errorf("session %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Create inserts a new Session.
// PRE: entity has been validated
// POST: Entity is persisted, or storage.ErrAlreadyExists if the ID is taken
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Session) error {
	tags := entity.Tags
	if tags == nil {
		tags = []string{}
	}
	encoded, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO club_session (id, title, start_ts, end_ts, age_min, age_max, tags, type, location, capacity, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING",
		entity.ID, entity.Title, entity.StartTs, entity.EndTs, entity.AgeMin, entity.AgeMax,
		string(encoded), entity.Type, entity.Location, entity.Capacity, entity.Notes,
	)
	if err != nil {
		return err
	}
	return storage.RequireInserted(result, "session", entity.ID)
}

// Exists reports whether a Session with the ID is stored.
// PRE: id is non-empty
// POST: Returns true when a row exists
func (s *SQLiteStore) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM club_session WHERE id = ?", id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// List retrieves all Sessions ordered by start time, then ID.
// PRE: none
// POST: Returns a non-nil slice
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY start_ts ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Session{}
	for rows.Next() {
		entity, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the number of stored Sessions.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM club_session").Scan(&n)
	return n, err
}
