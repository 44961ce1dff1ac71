package projections

import (
	"context"
	"errors"
	"time"

	"brickyard/internal/adapters/storage"
	"brickyard/internal/domain/apperr"
	"brickyard/internal/domain/calendar"
)

// BookingCalendarQuery carries query parameters.
type BookingCalendarQuery struct {
	BookingID string
}

// BookingCalendarResult is a ready-to-serve calendar attachment.
type BookingCalendarResult struct {
	Filename string
	Content  string
}

// BookingCalendarDeps holds dependencies for BookingCalendar.
type BookingCalendarDeps struct {
	BookingStore BookingStore
	SessionStore SessionStore
	FamilyStore  FamilyStore
	Timezone     string
	Now          func() time.Time
}

// QueryBookingCalendar renders a confirmed booking as an .ics attachment.
// PRE: BookingID non-empty
// POST: NotFound for unknown booking, session, family or child; Validation when not confirmed
func QueryBookingCalendar(ctx context.Context, query BookingCalendarQuery, deps BookingCalendarDeps) (BookingCalendarResult, error) {
	b, err := deps.BookingStore.GetByID(ctx, query.BookingID)
	if errors.Is(err, storage.ErrNotFound) {
		return BookingCalendarResult{}, apperr.NotFound("Booking not found")
	}
	if err != nil {
		return BookingCalendarResult{}, err
	}
	if !b.IsConfirmed() {
		return BookingCalendarResult{}, apperr.Validation("Booking not confirmed")
	}

	s, err := deps.SessionStore.GetByID(ctx, b.SessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return BookingCalendarResult{}, apperr.NotFound("Session or Family not found")
	}
	if err != nil {
		return BookingCalendarResult{}, err
	}
	f, err := deps.FamilyStore.GetByID(ctx, b.FamilyID)
	if errors.Is(err, storage.ErrNotFound) {
		return BookingCalendarResult{}, apperr.NotFound("Session or Family not found")
	}
	if err != nil {
		return BookingCalendarResult{}, err
	}
	child, ok := f.FindChild(b.ChildID)
	if !ok {
		return BookingCalendarResult{}, apperr.NotFound("Child not found in family")
	}

	content, err := calendar.ExportBooking(b, s, f, child, calendar.Options{Timezone: deps.Timezone, Now: deps.Now})
	if err != nil {
		return BookingCalendarResult{}, err
	}
	return BookingCalendarResult{Filename: calendar.Filename(b.ID), Content: content}, nil
}
