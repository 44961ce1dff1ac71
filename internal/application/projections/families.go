package projections

import (
	"context"
	"errors"

	"brickyard/internal/adapters/storage"
	"brickyard/internal/domain/apperr"
	domainFamily "brickyard/internal/domain/family"
)

// GetFamilyQuery carries query parameters.
type GetFamilyQuery struct {
	FamilyID string
}

// GetFamilyDeps holds dependencies for GetFamily.
type GetFamilyDeps struct {
	FamilyStore FamilyStore
}

// QueryGetFamily returns a family with its children.
// PRE: FamilyID non-empty
// POST: returns the family or a NotFound error
func QueryGetFamily(ctx context.Context, query GetFamilyQuery, deps GetFamilyDeps) (domainFamily.Family, error) {
	f, err := deps.FamilyStore.GetByID(ctx, query.FamilyID)
	if errors.Is(err, storage.ErrNotFound) {
		return domainFamily.Family{}, apperr.NotFound("family not found")
	}
	return f, err
}

// ListFamiliesDeps holds dependencies for ListFamilies.
type ListFamiliesDeps struct {
	FamilyStore FamilyLister
}

// QueryListFamilies returns every family with its children, ordered by name.
// PRE: none
// POST: result is non-nil
func QueryListFamilies(ctx context.Context, deps ListFamiliesDeps) ([]domainFamily.Family, error) {
	families, err := deps.FamilyStore.List(ctx)
	if err != nil {
		return nil, err
	}
	if families == nil {
		families = []domainFamily.Family{}
	}
	return families, nil
}
