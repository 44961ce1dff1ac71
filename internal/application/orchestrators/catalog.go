package orchestrators

import (
	"context"
	"errors"
	"strings"

	"brickyard/internal/adapters/storage"
	"brickyard/internal/domain/apperr"
	"brickyard/internal/domain/family"
	"brickyard/internal/domain/legoset"
	"brickyard/internal/domain/session"
)

// SessionStoreForOrchestrator defines the store interface needed by CreateSession.
type SessionStoreForOrchestrator interface {
	Create(ctx context.Context, s session.Session) error
}

// FamilyStoreForOrchestrator defines the store interface needed by CreateFamily.
type FamilyStoreForOrchestrator interface {
	Create(ctx context.Context, f family.Family) error
}

// LegoSetStoreForOrchestrator defines the store interface needed by CreateLegoSet.
type LegoSetStoreForOrchestrator interface {
	Create(ctx context.Context, s legoset.Set) error
}

// --- Create Session ---

// CreateSessionInput carries input for the create session orchestrator.
type CreateSessionInput struct {
	Title    string
	StartTs  int64
	EndTs    int64
	AgeMin   int
	AgeMax   int
	Tags     []string
	Type     string
	Location string
	Capacity int
	Notes    string
}

// CreateSessionDeps holds dependencies for CreateSession.
type CreateSessionDeps struct {
	SessionStore SessionStoreForOrchestrator
	GenerateID   func() string
}

// ExecuteCreateSession schedules a new club session.
// PRE: input describes a valid session; empty Type means free-play
// POST: Session persisted with a generated ID and normalized tags
func ExecuteCreateSession(ctx context.Context, input CreateSessionInput, deps CreateSessionDeps) (session.Session, error) {
	s := session.Session{
		ID:       deps.GenerateID(),
		Title:    strings.TrimSpace(input.Title),
		StartTs:  input.StartTs,
		EndTs:    input.EndTs,
		AgeMin:   input.AgeMin,
		AgeMax:   input.AgeMax,
		Tags:     session.NormalizeTags(input.Tags),
		Type:     input.Type,
		Location: strings.TrimSpace(input.Location),
		Capacity: input.Capacity,
		Notes:    input.Notes,
	}
	if s.Type == "" {
		s.Type = session.TypeFreePlay
	}
	if err := s.Validate(); err != nil {
		return session.Session{}, apperr.AsValidation(err)
	}

	if err := deps.SessionStore.Create(ctx, s); err != nil {
		return session.Session{}, mapCreateError(err, "session")
	}
	return s, nil
}

// --- Create Family ---

// ChildInput describes one child in a family registration. ID is optional.
type ChildInput struct {
	ID           string
	Name         string
	Age          int
	InterestTags []string
}

// CreateFamilyInput carries input for the create family orchestrator.
// Children must be non-nil (an empty list is fine); ID is optional.
type CreateFamilyInput struct {
	ID          string
	Name        string
	ParentName  string
	ParentEmail string
	Children    []ChildInput
}

// CreateFamilyDeps holds dependencies for CreateFamily.
type CreateFamilyDeps struct {
	FamilyStore FamilyStoreForOrchestrator
	GenerateID  func() string
}

// ExecuteCreateFamily registers a family and its children.
// PRE: Name, ParentName, ParentEmail non-empty; Children non-nil
// POST: Family persisted; missing family and child IDs are generated
func ExecuteCreateFamily(ctx context.Context, input CreateFamilyInput, deps CreateFamilyDeps) (family.Family, error) {
	if input.Children == nil {
		return family.Family{}, apperr.Validation("Missing required family data")
	}

	f := family.Family{
		ID:          strings.TrimSpace(input.ID),
		Name:        strings.TrimSpace(input.Name),
		ParentName:  strings.TrimSpace(input.ParentName),
		ParentEmail: strings.TrimSpace(input.ParentEmail),
		Children:    make([]family.Child, 0, len(input.Children)),
	}
	if f.ID == "" {
		f.ID = deps.GenerateID()
	}
	for _, c := range input.Children {
		child := family.Child{
			ID:           strings.TrimSpace(c.ID),
			Name:         strings.TrimSpace(c.Name),
			Age:          c.Age,
			InterestTags: session.NormalizeTags(c.InterestTags),
		}
		if child.ID == "" {
			child.ID = deps.GenerateID()
		}
		f.Children = append(f.Children, child)
	}

	if err := f.Validate(); err != nil {
		return family.Family{}, apperr.AsValidation(err)
	}
	if err := deps.FamilyStore.Create(ctx, f); err != nil {
		return family.Family{}, mapCreateError(err, "family")
	}
	return f, nil
}

// --- Create Lego Set ---

// CreateLegoSetInput carries input for the create set orchestrator.
type CreateLegoSetInput struct {
	ID              string
	Title           string
	Shelf           string
	PieceCount      int
	InstructionsURL string
}

// CreateLegoSetDeps holds dependencies for CreateLegoSet.
type CreateLegoSetDeps struct {
	LegoSetStore LegoSetStoreForOrchestrator
}

// ExecuteCreateLegoSet adds a set to the club catalog.
// PRE: ID is the catalog number; Shelf is a known shelf
// POST: Set persisted
func ExecuteCreateLegoSet(ctx context.Context, input CreateLegoSetInput, deps CreateLegoSetDeps) (legoset.Set, error) {
	s := legoset.Set{
		ID:              strings.TrimSpace(input.ID),
		Title:           strings.TrimSpace(input.Title),
		Shelf:           input.Shelf,
		PieceCount:      input.PieceCount,
		InstructionsURL: strings.TrimSpace(input.InstructionsURL),
	}
	if err := s.Validate(); err != nil {
		return legoset.Set{}, apperr.AsValidation(err)
	}
	if err := deps.LegoSetStore.Create(ctx, s); err != nil {
		return legoset.Set{}, mapCreateError(err, "set")
	}
	return s, nil
}

// mapCreateError turns a taken ID into a Conflict error.
func mapCreateError(err error, entity string) error {
	if errors.Is(err, storage.ErrAlreadyExists) {
		return apperr.Conflict("%s already exists", entity)
	}
	return err
}
