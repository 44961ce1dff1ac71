package session

import (
	"context"

	domain "brickyard/internal/domain/session"
)

// Store persists Session state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Session, error)
	Create(ctx context.Context, value domain.Session) error
	Exists(ctx context.Context, id string) (bool, error)
	// List returns every session ordered by start time ascending.
	List(ctx context.Context) ([]domain.Session, error)
	Count(ctx context.Context) (int, error)
}
