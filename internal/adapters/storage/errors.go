package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// Store errors shared by every entity store.
var (
	// ErrNotFound is returned when no row matches the requested ID.
	ErrNotFound = errors.New("not found")
	// ErrStatusMismatch is returned by conditional updates when the stored
	// status no longer matches the expected pre-state.
	ErrStatusMismatch = errors.New("stored status does not match expected status")
	// ErrAlreadyExists is returned when creating a record whose ID is taken.
	ErrAlreadyExists = errors.New("already exists")
)

// RequireInserted converts a zero-row ON CONFLICT DO NOTHING insert into ErrAlreadyExists.
// PRE: result comes from an INSERT ... ON CONFLICT (id) DO NOTHING
// POST: returns nil when exactly one row was inserted
func RequireInserted(result sql.Result, entity, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", entity, id, ErrAlreadyExists)
	}
	return nil
}
