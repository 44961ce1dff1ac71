package booking

import (
	"context"

	domain "brickyard/internal/domain/booking"
)

// ListFilter narrows List. Zero value lists every booking.
type ListFilter struct {
	FamilyID string
}

// Store persists Booking state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Booking, error)
	Create(ctx context.Context, value domain.Booking) error
	// UpdateStatus moves a booking from one status to another only if the stored
	// status still equals from. Returns storage.ErrNotFound or storage.ErrStatusMismatch.
	UpdateStatus(ctx context.Context, id, from, to string) error
	// List returns bookings newest first, ties broken by ID descending.
	List(ctx context.Context, filter ListFilter) ([]domain.Booking, error)
	Count(ctx context.Context) (int, error)
}
