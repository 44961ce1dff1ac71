package legoset

import (
	"context"

	domain "brickyard/internal/domain/legoset"
)

// Store persists the club's set catalog.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Set, error)
	Create(ctx context.Context, value domain.Set) error
	// List returns sets ordered by ID.
	List(ctx context.Context) ([]domain.Set, error)
	Count(ctx context.Context) (int, error)
}
