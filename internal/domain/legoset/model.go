package legoset

import (
	"errors"
	"net/url"
	"strings"
)

// Shelf constants.
const (
	ShelfReadyForPlay    = "Ready for Play"
	ShelfReadyForParts   = "Ready for Parts"
	ShelfWorksInProgress = "Works in Progress"
)

// Domain errors.
var (
	ErrEmptyID            = errors.New("set ID is required")
	ErrEmptyTitle         = errors.New("set title is required")
	ErrInvalidShelf       = errors.New("shelf must be one of: Ready for Play, Ready for Parts, Works in Progress")
	ErrNegativePieceCount = errors.New("piece count cannot be negative")
	ErrInvalidURL         = errors.New("instructions URL must be an absolute http(s) URL")
)

// Set is a catalog entry in the club's library of pre-built sets.
// ID is the manufacturer set number (e.g. "10281").
type Set struct {
	ID              string
	Title           string
	Shelf           string
	PieceCount      int
	InstructionsURL string
}

// Validate checks the set's fields.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (s *Set) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(s.Title) == "" {
		return ErrEmptyTitle
	}
	switch s.Shelf {
	case ShelfReadyForPlay, ShelfReadyForParts, ShelfWorksInProgress:
	default:
		return ErrInvalidShelf
	}
	if s.PieceCount < 0 {
		return ErrNegativePieceCount
	}
	if s.InstructionsURL != "" {
		u, err := url.Parse(s.InstructionsURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidURL
		}
	}
	return nil
}

// Matches reports whether the set's title or ID contains q, ignoring case.
// An empty query matches everything.
func (s Set) Matches(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s.Title), q) || strings.Contains(strings.ToLower(s.ID), q)
}
