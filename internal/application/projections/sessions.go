package projections

import (
	"context"
	"errors"
	"sort"
	"strings"

	"brickyard/internal/adapters/storage"
	"brickyard/internal/domain/apperr"
	domainSession "brickyard/internal/domain/session"
)

// ListSessionsDeps holds dependencies for ListSessions and GetSession.
type ListSessionsDeps struct {
	SessionStore SessionStore
}

// QueryListSessions returns every session ordered by start time.
// PRE: none
// POST: result is non-nil and sorted by StartTs ascending
func QueryListSessions(ctx context.Context, deps ListSessionsDeps) ([]domainSession.Session, error) {
	sessions, err := deps.SessionStore.List(ctx)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []domainSession.Session{}
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartTs < sessions[j].StartTs
	})
	return sessions, nil
}

// GetSessionQuery carries query parameters.
type GetSessionQuery struct {
	SessionID string
}

// QueryGetSession returns one session.
// PRE: SessionID non-empty
// POST: returns the session or a NotFound error
func QueryGetSession(ctx context.Context, query GetSessionQuery, deps ListSessionsDeps) (domainSession.Session, error) {
	if strings.TrimSpace(query.SessionID) == "" {
		return domainSession.Session{}, apperr.Validation("session id is required")
	}
	s, err := deps.SessionStore.GetByID(ctx, query.SessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return domainSession.Session{}, apperr.NotFound("Session not found")
	}
	return s, err
}

// DiscoverSessionsQuery carries the filters picked for one child.
type DiscoverSessionsQuery struct {
	FamilyID string
	ChildID  string
	Tags     []string
	Search   string
}

// ScoredSession is a session with its interest match count for the child.
type ScoredSession struct {
	domainSession.Session
	Score int
}

// DiscoverSessionsResult carries the ranked sessions.
// MaxScore is the number of the child's interests, the best possible score.
type DiscoverSessionsResult struct {
	ChildID  string
	Sessions []ScoredSession
	MaxScore int
}

// DiscoverSessionsDeps holds dependencies for DiscoverSessions.
type DiscoverSessionsDeps struct {
	SessionStore SessionStore
	FamilyStore  FamilyStore
}

// QueryDiscoverSessions returns sessions suitable for a child, best interest match first.
// Sessions outside the child's age, missing any requested tag, or not matching
// the title search are excluded.
// PRE: FamilyID and ChildID non-empty
// POST: Sessions sorted by Score desc, then StartTs asc
func QueryDiscoverSessions(ctx context.Context, query DiscoverSessionsQuery, deps DiscoverSessionsDeps) (DiscoverSessionsResult, error) {
	if strings.TrimSpace(query.FamilyID) == "" || strings.TrimSpace(query.ChildID) == "" {
		return DiscoverSessionsResult{}, apperr.Validation("familyId and childId are required")
	}

	f, err := deps.FamilyStore.GetByID(ctx, query.FamilyID)
	if errors.Is(err, storage.ErrNotFound) {
		return DiscoverSessionsResult{}, apperr.NotFound("family not found")
	}
	if err != nil {
		return DiscoverSessionsResult{}, err
	}
	child, ok := f.FindChild(query.ChildID)
	if !ok {
		return DiscoverSessionsResult{}, apperr.NotFound("Child not found in family")
	}

	sessions, err := deps.SessionStore.List(ctx)
	if err != nil {
		return DiscoverSessionsResult{}, err
	}

	tags := domainSession.NormalizeTags(query.Tags)
	search := strings.ToLower(strings.TrimSpace(query.Search))

	scored := []ScoredSession{}
	for _, s := range sessions {
		if !s.AcceptsAge(child.Age) || !s.HasAllTags(tags) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(s.Title), search) {
			continue
		}
		scored = append(scored, ScoredSession{Session: s, Score: s.InterestScore(child.InterestTags)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].StartTs < scored[j].StartTs
	})

	return DiscoverSessionsResult{
		ChildID:  child.ID,
		Sessions: scored,
		MaxScore: len(child.InterestTags),
	}, nil
}
