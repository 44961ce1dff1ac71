package booking

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"
)

// Status constants.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// IDPrefix is prepended to every minted booking ID.
const IDPrefix = "book_"

// MaxNotesLength bounds the free-text note a parent can attach.
const MaxNotesLength = 2000

// Domain errors.
var (
	ErrEmptySessionID   = errors.New("sessionId is required")
	ErrEmptyFamilyID    = errors.New("familyId is required")
	ErrEmptyChildID     = errors.New("childId is required")
	ErrEmptyToken       = errors.New("approval token is required")
	ErrInvalidStatus    = errors.New("booking status must be one of: pending, confirmed, cancelled")
	ErrNotesTooLong     = errors.New("booking notes cannot exceed 2000 characters")
	ErrTokenMismatch    = errors.New("invalid approval token")
	ErrNotPending       = errors.New("booking is not pending approval")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)

// Booking is a request for one child to attend one session.
// CreatedTs is epoch milliseconds.
// INVARIANT: ApprovalToken is set at creation and never rotated
// INVARIANT: Status never returns to pending once it has left it
type Booking struct {
	ID            string
	SessionID     string
	FamilyID      string
	ChildID       string
	Status        string
	ApprovalToken string
	CreatedTs     int64
	Notes         string
}

// Validate checks the booking's invariants.
// PRE: none
// POST: returns nil if valid, error describing the first violation otherwise
func (b *Booking) Validate() error {
	if strings.TrimSpace(b.SessionID) == "" {
		return ErrEmptySessionID
	}
	if strings.TrimSpace(b.FamilyID) == "" {
		return ErrEmptyFamilyID
	}
	if strings.TrimSpace(b.ChildID) == "" {
		return ErrEmptyChildID
	}
	if b.ApprovalToken == "" {
		return ErrEmptyToken
	}
	if !IsValidStatus(b.Status) {
		return ErrInvalidStatus
	}
	if len(b.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// CreatedAt returns the creation time in UTC.
func (b Booking) CreatedAt() time.Time {
	return time.UnixMilli(b.CreatedTs).UTC()
}

// IsPending returns true if the booking awaits approval.
func (b Booking) IsPending() bool { return b.Status == StatusPending }

// IsConfirmed returns true if the booking was approved.
func (b Booking) IsConfirmed() bool { return b.Status == StatusConfirmed }

// IsCancelled returns true if the booking was cancelled.
func (b Booking) IsCancelled() bool { return b.Status == StatusCancelled }

// TokenMatches reports whether token exactly equals the stored approval token.
// An empty token never matches.
func (b Booking) TokenMatches(token string) bool {
	if token == "" || b.ApprovalToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(b.ApprovalToken)) == 1
}

// Approve moves a pending booking to confirmed.
// PRE: token is the booking's approval token; booking is pending
// POST: Status is confirmed
func (b *Booking) Approve(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if !b.TokenMatches(token) {
		return ErrTokenMismatch
	}
	if !b.IsPending() || !CanTransition(b.Status, StatusConfirmed) {
		return ErrNotPending
	}
	b.Status = StatusConfirmed
	return nil
}

// Cancel moves a pending or confirmed booking to cancelled.
// PRE: booking is not already cancelled
// POST: Status is cancelled
func (b *Booking) Cancel() error {
	if !CanTransition(b.Status, StatusCancelled) {
		return ErrAlreadyCancelled
	}
	b.Status = StatusCancelled
	return nil
}

// CanTransition reports whether from -> to is an allowed status change.
func CanTransition(from, to string) bool {
	switch {
	case from == StatusPending && to == StatusConfirmed:
		return true
	case (from == StatusPending || from == StatusConfirmed) && to == StatusCancelled:
		return true
	}
	return false
}

// IsValidStatus reports whether s is a known status.
func IsValidStatus(s string) bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusCancelled
}
