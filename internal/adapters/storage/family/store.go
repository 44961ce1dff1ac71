package family

import (
	"context"

	domain "brickyard/internal/domain/family"
)

// Store persists Family state together with its children.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Family, error)
	Create(ctx context.Context, value domain.Family) error
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context) ([]domain.Family, error)
	Count(ctx context.Context) (int, error)
}
