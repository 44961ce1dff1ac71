package orchestrators

import (
	"context"
	"errors"
	"strings"
	"time"

	"brickyard/internal/adapters/storage"
	"brickyard/internal/domain/apperr"
	"brickyard/internal/domain/booking"
	"brickyard/internal/domain/family"
)

// BookingStoreForOrchestrator defines the store interface needed by booking orchestrators.
type BookingStoreForOrchestrator interface {
	GetByID(ctx context.Context, id string) (booking.Booking, error)
	Create(ctx context.Context, b booking.Booking) error
	UpdateStatus(ctx context.Context, id, from, to string) error
}

// SessionLookup checks that a session exists.
type SessionLookup interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// FamilyLookup resolves a family by ID.
type FamilyLookup interface {
	GetByID(ctx context.Context, id string) (family.Family, error)
}

// --- Create Booking ---

// CreateBookingInput carries input for the create booking orchestrator.
type CreateBookingInput struct {
	SessionID string
	FamilyID  string
	ChildID   string
	Notes     string
}

// CreateBookingDeps holds dependencies for CreateBooking.
// SessionStore and FamilyStore are only consulted when Strict is set.
type CreateBookingDeps struct {
	BookingStore  BookingStoreForOrchestrator
	SessionStore  SessionLookup
	FamilyStore   FamilyLookup
	Strict        bool
	GenerateID    func() string
	GenerateToken func() string
	Now           func() time.Time
}

// ExecuteCreateBooking records a pending booking request for one child.
// Duplicate requests for the same child and session are allowed.
// PRE: SessionID, FamilyID and ChildID are non-empty after trimming
// POST: Booking persisted with status pending, ID "book_<id>", fresh approval token
func ExecuteCreateBooking(ctx context.Context, input CreateBookingInput, deps CreateBookingDeps) (booking.Booking, error) {
	sessionID := strings.TrimSpace(input.SessionID)
	familyID := strings.TrimSpace(input.FamilyID)
	childID := strings.TrimSpace(input.ChildID)
	if sessionID == "" || familyID == "" || childID == "" {
		return booking.Booking{}, apperr.Validation("sessionId, familyId, and childId are required")
	}

	if deps.Strict {
		if err := checkBookingReferences(ctx, sessionID, familyID, childID, deps); err != nil {
			return booking.Booking{}, err
		}
	}

	b := booking.Booking{
		ID:            booking.IDPrefix + deps.GenerateID(),
		SessionID:     sessionID,
		FamilyID:      familyID,
		ChildID:       childID,
		Status:        booking.StatusPending,
		ApprovalToken: deps.GenerateToken(),
		CreatedTs:     deps.Now().UnixMilli(),
		Notes:         strings.TrimSpace(input.Notes),
	}
	if err := b.Validate(); err != nil {
		return booking.Booking{}, apperr.AsValidation(err)
	}

	if err := deps.BookingStore.Create(ctx, b); err != nil {
		return booking.Booking{}, err
	}
	return b, nil
}

// checkBookingReferences verifies the session and family exist and own the child.
func checkBookingReferences(ctx context.Context, sessionID, familyID, childID string, deps CreateBookingDeps) error {
	found, err := deps.SessionStore.Exists(ctx, sessionID)
	if err != nil {
		return err
	}
	if !found {
		return apperr.NotFound("Session not found")
	}
	f, err := deps.FamilyStore.GetByID(ctx, familyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.NotFound("Family not found")
		}
		return err
	}
	if _, ok := f.FindChild(childID); !ok {
		return apperr.Validation("Child not found in family")
	}
	return nil
}

// --- Approve Booking ---

// ApproveBookingInput carries input for the approve booking orchestrator.
type ApproveBookingInput struct {
	BookingID string
	Token     string
}

// ApproveBookingDeps holds dependencies for ApproveBooking.
type ApproveBookingDeps struct {
	BookingStore BookingStoreForOrchestrator
}

// ExecuteApproveBooking confirms a pending booking when the approval token matches.
// Checks run in order: token present, booking exists, token matches, booking pending.
// PRE: BookingID is non-empty
// POST: Booking status is confirmed; the stored token is unchanged
func ExecuteApproveBooking(ctx context.Context, input ApproveBookingInput, deps ApproveBookingDeps) (booking.Booking, error) {
	if input.Token == "" {
		return booking.Booking{}, apperr.Validation("Approval token is required")
	}

	b, err := getBooking(ctx, deps.BookingStore, input.BookingID)
	if err != nil {
		return booking.Booking{}, err
	}

	from := b.Status
	if err := b.Approve(input.Token); err != nil {
		switch {
		case errors.Is(err, booking.ErrTokenMismatch):
			return booking.Booking{}, apperr.Validation("Invalid approval token")
		case errors.Is(err, booking.ErrNotPending):
			return booking.Booking{}, apperr.Conflict("Booking is not pending approval")
		}
		return booking.Booking{}, apperr.AsValidation(err)
	}

	if err := deps.BookingStore.UpdateStatus(ctx, b.ID, from, booking.StatusConfirmed); err != nil {
		if errors.Is(err, storage.ErrStatusMismatch) {
			return booking.Booking{}, apperr.Conflict("Booking is not pending approval")
		}
		if errors.Is(err, storage.ErrNotFound) {
			return booking.Booking{}, apperr.NotFound("Booking not found")
		}
		return booking.Booking{}, err
	}
	return b, nil
}

// --- Cancel Booking ---

// CancelBookingInput carries input for the cancel booking orchestrator.
type CancelBookingInput struct {
	BookingID string
}

// CancelBookingDeps holds dependencies for CancelBooking.
type CancelBookingDeps struct {
	BookingStore BookingStoreForOrchestrator
}

// ExecuteCancelBooking marks a booking cancelled. Cancelling an already
// cancelled booking succeeds without a write.
// PRE: BookingID is non-empty
// POST: Booking status is cancelled
func ExecuteCancelBooking(ctx context.Context, input CancelBookingInput, deps CancelBookingDeps) (booking.Booking, error) {
	b, err := getBooking(ctx, deps.BookingStore, input.BookingID)
	if err != nil {
		return booking.Booking{}, err
	}
	if b.IsCancelled() {
		return b, nil
	}

	from := b.Status
	if err := b.Cancel(); err != nil {
		return booking.Booking{}, apperr.Conflict("%s", err.Error())
	}

	err = deps.BookingStore.UpdateStatus(ctx, b.ID, from, booking.StatusCancelled)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, storage.ErrStatusMismatch) {
		return booking.Booking{}, err
	}

	// Lost a race: success only if someone else already cancelled it.
	current, err := getBooking(ctx, deps.BookingStore, b.ID)
	if err != nil {
		return booking.Booking{}, err
	}
	if current.IsCancelled() {
		return current, nil
	}
	return booking.Booking{}, apperr.Conflict("Booking changed while cancelling, try again")
}

// getBooking loads a booking, mapping a missing row to a NotFound error.
func getBooking(ctx context.Context, store BookingStoreForOrchestrator, id string) (booking.Booking, error) {
	if strings.TrimSpace(id) == "" {
		return booking.Booking{}, apperr.Validation("booking id is required")
	}
	b, err := store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return booking.Booking{}, apperr.NotFound("Booking not found")
		}
		return booking.Booking{}, err
	}
	return b, nil
}
