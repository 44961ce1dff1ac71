package family

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"brickyard/internal/adapters/storage"
	domain "brickyard/internal/domain/family"
)

// SQLiteStore implements Store over any storage.SQLDB (SQLite or Postgres).
// Children live in their own table and keep their submitted order.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new family store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Family and its children.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Family, error) {
	var entity domain.Family
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, parent_name, parent_email FROM family WHERE id = ?", id,
	).Scan(&entity.ID, &entity.Name, &entity.ParentName, &entity.ParentEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Family{}, fmt.Errorf("family %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return domain.Family{}, err
	}

	byFamily, err := s.children(ctx, "WHERE family_id = ?", id)
	if err != nil {
		return domain.Family{}, err
	}
	entity.Children = byFamily[id]
	if entity.Children == nil {
		entity.Children = []domain.Child{}
	}
	return entity, nil
}

// Create inserts a Family and all of its children in one transaction.
// PRE: entity has been validated
// POST: Family and children persisted atomically, or storage.ErrAlreadyExists
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Family) error {
	return s.db.InTx(ctx, func(q storage.Querier) error {
		result, err := q.ExecContext(ctx,
			"INSERT INTO family (id, name, parent_name, parent_email) VALUES (?, ?, ?, ?) ON CONFLICT (id) DO NOTHING",
			entity.ID, entity.Name, entity.ParentName, entity.ParentEmail,
		)
		if err != nil {
			return err
		}
		if err := storage.RequireInserted(result, "family", entity.ID); err != nil {
			return err
		}

		for i, c := range entity.Children {
			tags := c.InterestTags
			if tags == nil {
				tags = []string{}
			}
			encoded, err := json.Marshal(tags)
			if err != nil {
				return err
			}
			if _, err := q.ExecContext(ctx,
				"INSERT INTO child (family_id, id, position, name, age, interest_tags) VALUES (?, ?, ?, ?, ?, ?)",
				entity.ID, c.ID, i, c.Name, c.Age, string(encoded),
			); err != nil {
				return fmt.Errorf("insert child %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// Exists reports whether a Family with the ID is stored.
func (s *SQLiteStore) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM family WHERE id = ?", id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// List retrieves all Families ordered by name, each with its children.
// PRE: none
// POST: Returns a non-nil slice
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Family, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, parent_name, parent_email FROM family ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	results := []domain.Family{}
	for rows.Next() {
		var entity domain.Family
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.ParentName, &entity.ParentEmail); err != nil {
			rows.Close()
			return nil, err
		}
		results = append(results, entity)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byFamily, err := s.children(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Children = byFamily[results[i].ID]
		if results[i].Children == nil {
			results[i].Children = []domain.Child{}
		}
	}
	return results, nil
}

// Count returns the number of stored Families.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM family").Scan(&n)
	return n, err
}

// children loads child rows grouped by family ID in submitted order.
func (s *SQLiteStore) children(ctx context.Context, where string, args ...any) (map[string][]domain.Child, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT family_id, id, name, age, interest_tags FROM child "+where+" ORDER BY family_id, position", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.Child)
	for rows.Next() {
		var familyID, tags string
		var c domain.Child
		if err := rows.Scan(&familyID, &c.ID, &c.Name, &c.Age, &tags); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tags), &c.InterestTags); err != nil {
			return nil, fmt.Errorf("decode interest tags for child %s: %w", c.ID, err)
		}
		if c.InterestTags == nil {
			c.InterestTags = []string{}
		}
		out[familyID] = append(out[familyID], c)
	}
	return out, rows.Err()
}
