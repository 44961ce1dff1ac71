package projections

import (
	"context"
	"sort"

	domainLegoSet "brickyard/internal/domain/legoset"
)

// ListLegoSetsQuery carries an optional search over title and catalog ID.
type ListLegoSetsQuery struct {
	Search string
}

// ListLegoSetsDeps holds dependencies for ListLegoSets.
type ListLegoSetsDeps struct {
	LegoSetStore LegoSetStore
}

// QueryListLegoSets returns catalog entries sorted by ID, filtered by Search.
// PRE: none
// POST: result is non-nil
func QueryListLegoSets(ctx context.Context, query ListLegoSetsQuery, deps ListLegoSetsDeps) ([]domainLegoSet.Set, error) {
	sets, err := deps.LegoSetStore.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domainLegoSet.Set, 0, len(sets))
	for _, s := range sets {
		if s.Matches(query.Search) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
