package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"brickyard/internal/adapters/storage"
	domain "brickyard/internal/domain/booking"
)

const selectColumns = "SELECT id, session_id, family_id, child_id, status, approval_token, created_ts, notes FROM booking"

// SQLiteStore implements Store over any storage.SQLDB (SQLite or Postgres).
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new booking store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner) (domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.SessionID, &b.FamilyID, &b.ChildID, &b.Status, &b.ApprovalToken, &b.CreatedTs, &b.Notes)
	return b, err
}

// GetByID retrieves a Booking by its ID.
// PRE: id is non-empty
// POST: Returns the entity or storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Booking, error) {
	b, err := scanBooking(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, fmt.Errorf("booking %s: %w", id, storage.ErrNotFound)
	}
	return b, err
}

// Create inserts a new Booking.
// PRE: entity has been validated
// POST: Entity is persisted, or storage.ErrAlreadyExists if the ID is taken
func (s *SQLiteStore) Create(ctx context.Context, b domain.Booking) error {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO booking (id, session_id, family_id, child_id, status, approval_token, created_ts, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING",
		b.ID, b.SessionID, b.FamilyID, b.ChildID, b.Status, b.ApprovalToken, b.CreatedTs, b.Notes,
	)
	if err != nil {
		return err
	}
	return storage.RequireInserted(result, "booking", b.ID)
}

// UpdateStatus performs a compare-and-set on the status column.
// PRE: id is non-empty; from and to are valid statuses
// POST: exactly one row changed, or ErrNotFound / ErrStatusMismatch and nothing changed
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id, from, to string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE booking SET status = ? WHERE id = ? AND status = ?", to, id, from)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var current string
	err = s.db.QueryRowContext(ctx, "SELECT status FROM booking WHERE id = ?", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("booking %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("booking %s is %s, expected %s: %w", id, current, from, storage.ErrStatusMismatch)
}

// List retrieves Bookings newest first.
// PRE: filter has valid parameters
// POST: Returns a non-nil slice
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Booking, error) {
	query := selectColumns
	var args []any
	if filter.FamilyID != "" {
		query += " WHERE family_id = ?"
		args = append(args, filter.FamilyID)
	}
	query += " ORDER BY created_ts DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, b)
	}
	return results, rows.Err()
}

// Count returns the number of stored Bookings.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM booking").Scan(&n)
	return n, err
}
