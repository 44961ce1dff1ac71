package projections

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"brickyard/internal/adapters/storage"
	"brickyard/internal/adapters/storage/booking"
	"brickyard/internal/domain/apperr"
	domainBooking "brickyard/internal/domain/booking"
	domainFamily "brickyard/internal/domain/family"
	domainSession "brickyard/internal/domain/session"
)

type mockBookingStore struct {
	bookings []domainBooking.Booking
}

// GetByID returns a seeded booking by ID.
// PRE: id is non-empty
// POST: Returns the seeded booking or storage.ErrNotFound
func (m *mockBookingStore) GetByID(_ context.Context, id string) (domainBooking.Booking, error) {
	for _, b := range m.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return domainBooking.Booking{}, fmt.Errorf("booking %s: %w", id, storage.ErrNotFound)
}

// List returns seeded bookings matching the family filter, in seed order.
// PRE: filter is valid
// POST: Returns matching bookings
func (m *mockBookingStore) List(_ context.Context, filter booking.ListFilter) ([]domainBooking.Booking, error) {
	var out []domainBooking.Booking
	for _, b := range m.bookings {
		if filter.FamilyID == "" || b.FamilyID == filter.FamilyID {
			out = append(out, b)
		}
	}
	return out, nil
}

type mockSessionStore struct {
	sessions map[string]domainSession.Session
	err      error
	calls    atomic.Int32
}

// GetByID returns a seeded session, the injected error, or storage.ErrNotFound.
// PRE: id is non-empty
// POST: Returns the seeded session or an error
func (m *mockSessionStore) GetByID(_ context.Context, id string) (domainSession.Session, error) {
	m.calls.Add(1)
	if m.err != nil {
		return domainSession.Session{}, m.err
	}
	s, ok := m.sessions[id]
	if !ok {
		return domainSession.Session{}, storage.ErrNotFound
	}
	return s, nil
}

// List returns all seeded sessions in map order.
// PRE: none
// POST: Returns every seeded session
func (m *mockSessionStore) List(_ context.Context) ([]domainSession.Session, error) {
	out := []domainSession.Session{}
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out, m.err
}

type mockFamilyStore struct {
	families map[string]domainFamily.Family
}

// GetByID returns a seeded family or storage.ErrNotFound.
// PRE: id is non-empty
// POST: Returns the seeded family or an error
func (m *mockFamilyStore) GetByID(_ context.Context, id string) (domainFamily.Family, error) {
	f, ok := m.families[id]
	if !ok {
		return domainFamily.Family{}, storage.ErrNotFound
	}
	return f, nil
}

func listFixture() ListBookingsDeps {
	return ListBookingsDeps{
		BookingStore: &mockBookingStore{bookings: []domainBooking.Booking{
			{ID: "book_a", SessionID: "s1", FamilyID: "f1", ChildID: "c1", Status: domainBooking.StatusPending, CreatedTs: 100},
			{ID: "book_b", SessionID: "s2", FamilyID: "f1", ChildID: "c2", Status: domainBooking.StatusConfirmed, CreatedTs: 300},
			{ID: "book_c", SessionID: "gone", FamilyID: "f1", ChildID: "c9", Status: domainBooking.StatusPending, CreatedTs: 200},
			{ID: "book_d", SessionID: "s1", FamilyID: "f2", ChildID: "c1", Status: domainBooking.StatusPending, CreatedTs: 200},
			{ID: "book_e", SessionID: "s1", FamilyID: "ghost", ChildID: "c1", Status: domainBooking.StatusCancelled, CreatedTs: 50},
		}},
		SessionStore: &mockSessionStore{sessions: map[string]domainSession.Session{
			"s1": {ID: "s1", Title: "Space Builders"},
			"s2": {ID: "s2", Title: "Castle Siege"},
		}},
		FamilyStore: &mockFamilyStore{families: map[string]domainFamily.Family{
			"f1": {ID: "f1", Children: []domainFamily.Child{{ID: "c1", Name: "Leo"}, {ID: "c2", Name: "Maya"}}},
			"f2": {ID: "f2", Children: []domainFamily.Child{{ID: "c1", Name: "Ava"}}},
		}},
	}
}

// TestQueryListBookings_Family verifies enrichment, gaps and newest-first order.
func TestQueryListBookings_Family(t *testing.T) {
	got, err := QueryListBookings(context.Background(), ListBookingsQuery{FamilyID: "f1"}, listFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantIDs := []string{"book_b", "book_c", "book_a"}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d bookings, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
		}
	}

	if got[0].Session == nil || got[0].Session.Title != "Castle Siege" || got[0].Child == nil || got[0].Child.Name != "Maya" {
		t.Errorf("book_b enrichment = %+v / %+v", got[0].Session, got[0].Child)
	}
	if got[1].Session != nil || got[1].Child != nil {
		t.Errorf("book_c should have no session or child, got %+v / %+v", got[1].Session, got[1].Child)
	}
}

// TestQueryListBookings_All verifies the admin view, a missing family and tie order.
func TestQueryListBookings_All(t *testing.T) {
	got, err := QueryListBookings(context.Background(), ListBookingsQuery{All: true}, listFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantIDs := []string{"book_b", "book_d", "book_c", "book_a", "book_e"}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
	if got[1].Child == nil || got[1].Child.Name != "Ava" {
		t.Errorf("book_d child should resolve within f2, got %+v", got[1].Child)
	}
	last := got[4]
	if last.Session == nil || last.Child != nil {
		t.Errorf("book_e should keep session but lack child, got %+v / %+v", last.Session, last.Child)
	}
}

// TestQueryListBookings_RequiresFamily verifies the family filter is mandatory.
func TestQueryListBookings_RequiresFamily(t *testing.T) {
	_, err := QueryListBookings(context.Background(), ListBookingsQuery{FamilyID: " "}, listFixture())
	if !apperr.IsValidation(err) || err.Error() != "familyId is required" {
		t.Errorf("error = %v, want validation 'familyId is required'", err)
	}
}

// TestQueryListBookings_Empty verifies an unknown family yields an empty, non-nil list.
func TestQueryListBookings_Empty(t *testing.T) {
	got, err := QueryListBookings(context.Background(), ListBookingsQuery{FamilyID: "nobody"}, listFixture())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty non-nil", got)
	}
}

// TestQueryListBookings_LookupError verifies non-not-found store errors abort the query.
func TestQueryListBookings_LookupError(t *testing.T) {
	deps := listFixture()
	boom := errors.New("connection reset")
	deps.SessionStore = &mockSessionStore{err: boom}
	_, err := QueryListBookings(context.Background(), ListBookingsQuery{FamilyID: "f1"}, deps)
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}

// TestQueryListBookings_DedupesLookups verifies each session is fetched once.
func TestQueryListBookings_DedupesLookups(t *testing.T) {
	deps := listFixture()
	sessions := deps.SessionStore.(*mockSessionStore)
	if _, err := QueryListBookings(context.Background(), ListBookingsQuery{All: true}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// s1, s2, gone
	if got := sessions.calls.Load(); got != 3 {
		t.Errorf("session lookups = %d, want 3", got)
	}
}

// TestQueryListBookings_ContextCancelled verifies a cancelled context surfaces from lookups.
func TestQueryListBookings_ContextCancelled(t *testing.T) {
	deps := listFixture()
	deps.SessionStore = &mockSessionStore{err: context.Canceled}
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	if _, err := QueryListBookings(ctx, ListBookingsQuery{All: true}, deps); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
