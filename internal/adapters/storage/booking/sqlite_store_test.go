package booking_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"brickyard/internal/adapters/storage"
	bookingstore "brickyard/internal/adapters/storage/booking"
	"brickyard/internal/adapters/storage/storagetest"
	domain "brickyard/internal/domain/booking"
)

func newBooking(id, familyID string, created int64) domain.Booking {
	return domain.Booking{
		ID: id, SessionID: "s1", FamilyID: familyID, ChildID: "c1",
		Status: domain.StatusPending, ApprovalToken: "tok-" + id, CreatedTs: created,
	}
}

// TestSQLiteStore_CreateAndGet round-trips a booking including notes.
func TestSQLiteStore_CreateAndGet(t *testing.T) {
	store := bookingstore.NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()
	want := newBooking("book_1", "f1", 1700000000000)
	want.Notes = "Allergic to glue"

	if err := store.Create(ctx, want); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := store.GetByID(ctx, "book_1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != want {
		t.Errorf("GetByID = %+v, want %+v", got, want)
	}
}

// TestSQLiteStore_GetByID_NotFound wraps storage.ErrNotFound.
func TestSQLiteStore_GetByID_NotFound(t *testing.T) {
	store := bookingstore.NewSQLiteStore(storagetest.OpenDB(t))
	if _, err := store.GetByID(context.Background(), "book_x"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByID error = %v, want ErrNotFound", err)
	}
}

// TestSQLiteStore_Create_Duplicate rejects a reused ID.
func TestSQLiteStore_Create_Duplicate(t *testing.T) {
	store := bookingstore.NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()
	store.Create(ctx, newBooking("book_1", "f1", 1))
	if err := store.Create(ctx, newBooking("book_1", "f2", 2)); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("Create duplicate error = %v, want ErrAlreadyExists", err)
	}
}

// TestSQLiteStore_UpdateStatus covers the compare-and-set outcomes.
func TestSQLiteStore_UpdateStatus(t *testing.T) {
	store := bookingstore.NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()
	store.Create(ctx, newBooking("book_1", "f1", 1))

	if err := store.UpdateStatus(ctx, "book_1", domain.StatusPending, domain.StatusConfirmed); err != nil {
		t.Fatalf("UpdateStatus pending->confirmed: %v", err)
	}
	got, _ := store.GetByID(ctx, "book_1")
	if got.Status != domain.StatusConfirmed {
		t.Errorf("Status = %s, want confirmed", got.Status)
	}

	err := store.UpdateStatus(ctx, "book_1", domain.StatusPending, domain.StatusCancelled)
	if !errors.Is(err, storage.ErrStatusMismatch) {
		t.Errorf("stale UpdateStatus error = %v, want ErrStatusMismatch", err)
	}
	got, _ = store.GetByID(ctx, "book_1")
	if got.Status != domain.StatusConfirmed {
		t.Errorf("Status after failed CAS = %s, want confirmed", got.Status)
	}

	if err := store.UpdateStatus(ctx, "book_x", domain.StatusPending, domain.StatusConfirmed); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateStatus missing error = %v, want ErrNotFound", err)
	}
}

// TestSQLiteStore_UpdateStatus_SingleWinner lets exactly one concurrent approval succeed.
func TestSQLiteStore_UpdateStatus_SingleWinner(t *testing.T) {
	store := bookingstore.NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()
	store.Create(ctx, newBooking("book_1", "f1", 1))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.UpdateStatus(ctx, "book_1", domain.StatusPending, domain.StatusConfirmed) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	if wins.Load() != 1 {
		t.Errorf("winners = %d, want 1", wins.Load())
	}
}

// TestSQLiteStore_List orders newest first and filters by family.
func TestSQLiteStore_List(t *testing.T) {
	store := bookingstore.NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()

	empty, err := store.List(ctx, bookingstore.ListFilter{})
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("List on empty = %v, %v", empty, err)
	}

	store.Create(ctx, newBooking("book_a", "f1", 100))
	store.Create(ctx, newBooking("book_b", "f2", 300))
	store.Create(ctx, newBooking("book_c", "f1", 200))
	store.Create(ctx, newBooking("book_d", "f1", 200))

	all, _ := store.List(ctx, bookingstore.ListFilter{})
	wantAll := []string{"book_b", "book_d", "book_c", "book_a"}
	if len(all) != len(wantAll) {
		t.Fatalf("List all = %d entries, want %d", len(all), len(wantAll))
	}
	for i, id := range wantAll {
		if all[i].ID != id {
			t.Errorf("all[%d] = %s, want %s", i, all[i].ID, id)
		}
	}

	mine, _ := store.List(ctx, bookingstore.ListFilter{FamilyID: "f1"})
	if len(mine) != 3 || mine[0].ID != "book_d" || mine[2].ID != "book_a" {
		t.Errorf("List f1 = %+v", mine)
	}
	none, _ := store.List(ctx, bookingstore.ListFilter{FamilyID: "nobody"})
	if len(none) != 0 {
		t.Errorf("List unknown family = %d entries, want 0", len(none))
	}
	if n, _ := store.Count(ctx); n != 4 {
		t.Errorf("Count = %d, want 4", n)
	}
}
