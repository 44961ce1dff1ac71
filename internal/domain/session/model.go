package session

import (
	"errors"
	"strings"
	"time"
)

// Session type constants.
const (
	TypeFreePlay   = "free-play"
	TypeWorkshop   = "workshop"
	TypeAdultNight = "adult-night"
)

// Types lists every valid session type.
var Types = []string{TypeFreePlay, TypeWorkshop, TypeAdultNight}

// Max length constants.
const (
	MaxTitleLength    = 200
	MaxLocationLength = 200
	MaxNotesLength    = 4000
)

// Domain errors.
var (
	ErrEmptyTitle       = errors.New("session title is required")
	ErrTitleTooLong     = errors.New("session title cannot exceed 200 characters")
	ErrInvalidTimeRange = errors.New("session start must be before its end")
	ErrInvalidAgeRange  = errors.New("session minimum age cannot exceed maximum age")
	ErrNegativeAge      = errors.New("session ages cannot be negative")
	ErrInvalidType      = errors.New("session type must be one of: free-play, workshop, adult-night")
	ErrNegativeCapacity = errors.New("session capacity cannot be negative")
	ErrLocationTooLong  = errors.New("session location cannot exceed 200 characters")
	ErrNotesTooLong     = errors.New("session notes cannot exceed 4000 characters")
)

// Session is a scheduled club session that children can be booked into.
// Times are epoch milliseconds. Capacity is informational only.
// INVARIANT: StartTs < EndTs, AgeMin <= AgeMax
type Session struct {
	ID       string
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

// Validate checks the session's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (s *Session) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	if len(s.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if s.StartTs >= s.EndTs {
		return ErrInvalidTimeRange
	}
	if s.AgeMin < 0 || s.AgeMax < 0 {
		return ErrNegativeAge
	}
	if s.AgeMin > s.AgeMax {
		return ErrInvalidAgeRange
	}
	if !IsValidType(s.Type) {
		return ErrInvalidType
	}
	if s.Capacity < 0 {
		return ErrNegativeCapacity
	}
	if len(s.Location) > MaxLocationLength {
		return ErrLocationTooLong
	}
	if len(s.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// Start returns the start time in UTC.
func (s Session) Start() time.Time {
	return time.UnixMilli(s.StartTs).UTC()
}

// End returns the end time in UTC.
func (s Session) End() time.Time {
	return time.UnixMilli(s.EndTs).UTC()
}

// AcceptsAge reports whether a child of the given age fits the inclusive age range.
func (s Session) AcceptsAge(age int) bool {
	return age >= s.AgeMin && age <= s.AgeMax
}

// HasAllTags reports whether every tag in want is present on the session.
// An empty want matches every session.
func (s Session) HasAllTags(want []string) bool {
	for _, w := range want {
		if !containsTag(s.Tags, w) {
			return false
		}
	}
	return true
}

// InterestScore counts the session tags that appear in the given interests.
// Order of either set does not matter.
func (s Session) InterestScore(interests []string) int {
	score := 0
	for _, tag := range s.Tags {
		if containsTag(interests, tag) {
			score++
		}
	}
	return score
}

// IsValidType reports whether t is a known session type.
func IsValidType(t string) bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// NormalizeTags trims each tag, drops empties and removes duplicates,
// keeping the first occurrence order.
// POST: result is non-nil
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
