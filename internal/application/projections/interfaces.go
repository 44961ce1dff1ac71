package projections

import (
	"context"

	"brickyard/internal/adapters/storage/booking"
	domainBooking "brickyard/internal/domain/booking"
	domainFamily "brickyard/internal/domain/family"
	domainLegoSet "brickyard/internal/domain/legoset"
	domainSession "brickyard/internal/domain/session"
)

// BookingStore interface for booking queries.
type BookingStore interface {
	GetByID(ctx context.Context, id string) (domainBooking.Booking, error)
	List(ctx context.Context, filter booking.ListFilter) ([]domainBooking.Booking, error)
}

// SessionStore interface for session queries.
type SessionStore interface {
	GetByID(ctx context.Context, id string) (domainSession.Session, error)
	List(ctx context.Context) ([]domainSession.Session, error)
}

// FamilyStore interface for family queries.
type FamilyStore interface {
	GetByID(ctx context.Context, id string) (domainFamily.Family, error)
}

// FamilyLister interface for the admin family roster.
type FamilyLister interface {
	List(ctx context.Context) ([]domainFamily.Family, error)
}

// LegoSetStore interface for catalog queries.
type LegoSetStore interface {
	List(ctx context.Context) ([]domainLegoSet.Set, error)
}
