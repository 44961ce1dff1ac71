package projections

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"brickyard/internal/adapters/storage"
	"brickyard/internal/adapters/storage/booking"
	"brickyard/internal/domain/apperr"
	domainBooking "brickyard/internal/domain/booking"
	domainFamily "brickyard/internal/domain/family"
	domainSession "brickyard/internal/domain/session"
)

// enrichLimit bounds concurrent session/family lookups per list request.
const enrichLimit = 8

// EnrichedBooking is a booking joined with its session and child.
// Session and Child are nil when the reference no longer resolves.
type EnrichedBooking struct {
	domainBooking.Booking
	Session *domainSession.Session
	Child   *domainFamily.Child
}

// ListBookingsQuery carries query parameters. An empty FamilyID lists every booking.
type ListBookingsQuery struct {
	FamilyID string
	All      bool
}

// ListBookingsDeps holds dependencies for ListBookings.
type ListBookingsDeps struct {
	BookingStore BookingStore
	SessionStore SessionStore
	FamilyStore  FamilyStore
}

// QueryListBookings returns bookings newest first, each enriched with its
// session and child. Missing references leave the field nil.
// PRE: FamilyID non-empty unless All is set
// POST: result is non-nil and sorted by CreatedTs desc, then ID desc
func QueryListBookings(ctx context.Context, query ListBookingsQuery, deps ListBookingsDeps) ([]EnrichedBooking, error) {
	familyID := strings.TrimSpace(query.FamilyID)
	if !query.All && familyID == "" {
		return nil, apperr.Validation("familyId is required")
	}

	filter := booking.ListFilter{}
	if !query.All {
		filter.FamilyID = familyID
	}
	bookings, err := deps.BookingStore.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	sessions, families, err := loadReferences(ctx, bookings, deps)
	if err != nil {
		return nil, err
	}

	result := make([]EnrichedBooking, 0, len(bookings))
	for _, b := range bookings {
		eb := EnrichedBooking{Booking: b}
		if s, ok := sessions[b.SessionID]; ok {
			eb.Session = &s
		}
		if f, ok := families[b.FamilyID]; ok {
			if c, found := f.FindChild(b.ChildID); found {
				eb.Child = &c
			}
		}
		result = append(result, eb)
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedTs != result[j].CreatedTs {
			return result[i].CreatedTs > result[j].CreatedTs
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// loadReferences fetches each distinct session and family once, concurrently.
// Not-found references are skipped; any other error aborts the query.
func loadReferences(ctx context.Context, bookings []domainBooking.Booking, deps ListBookingsDeps) (map[string]domainSession.Session, map[string]domainFamily.Family, error) {
	sessionIDs := make(map[string]struct{})
	familyIDs := make(map[string]struct{})
	for _, b := range bookings {
		sessionIDs[b.SessionID] = struct{}{}
		familyIDs[b.FamilyID] = struct{}{}
	}

	var mu sync.Mutex
	sessions := make(map[string]domainSession.Session, len(sessionIDs))
	families := make(map[string]domainFamily.Family, len(familyIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichLimit)
	for id := range sessionIDs {
		g.Go(func() error {
			s, err := deps.SessionStore.GetByID(gctx, id)
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			sessions[id] = s
			mu.Unlock()
			return nil
		})
	}
	for id := range familyIDs {
		g.Go(func() error {
			f, err := deps.FamilyStore.GetByID(gctx, id)
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			families[id] = f
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return sessions, families, nil
}
