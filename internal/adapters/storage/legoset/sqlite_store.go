package legoset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"brickyard/internal/adapters/storage"
	domain "brickyard/internal/domain/legoset"
)

// SQLiteStore implements Store over any storage.SQLDB (SQLite or Postgres).
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new set catalog store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Set by its catalog ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Set, error) {
	var entity domain.Set
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, shelf, piece_count, instructions_url FROM lego_set WHERE id = ?", id,
	).Scan(&entity.ID, &entity.Title, &entity.Shelf, &entity.PieceCount, &entity.InstructionsURL)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Set{}, fmt.Errorf("set %s: %w", id, storage.ErrNotFound)
	}
	return entity, err
}

// Create inserts a new Set.
// PRE: entity has been validated
// POST: Entity is persisted, or storage.ErrAlreadyExists if the ID is taken
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Set) error {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO lego_set (id, title, shelf, piece_count, instructions_url) VALUES (?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING",
		entity.ID, entity.Title, entity.Shelf, entity.PieceCount, entity.InstructionsURL,
	)
	if err != nil {
		return err
	}
	return storage.RequireInserted(result, "set", entity.ID)
}

// List retrieves all Sets ordered by catalog ID.
// PRE: none
// POST: Returns a non-nil slice
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Set, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, shelf, piece_count, instructions_url FROM lego_set ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Set{}
	for rows.Next() {
		var entity domain.Set
		if err := rows.Scan(&entity.ID, &entity.Title, &entity.Shelf, &entity.PieceCount, &entity.InstructionsURL); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the number of catalog entries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lego_set").Scan(&n)
	return n, err
}
