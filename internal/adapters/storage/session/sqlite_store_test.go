package session_test

import (
	"context"
	"errors"
	"testing"

	"brickyard/internal/adapters/storage"
	sessionstore "brickyard/internal/adapters/storage/session"
	"brickyard/internal/adapters/storage/storagetest"
	domain "brickyard/internal/domain/session"
)

func newSession(id string, start int64) domain.Session {
	return domain.Session{
		ID: id, Title: "Build " + id,
		StartTs: start, EndTs: start + 3600000,
		AgeMin: 5, AgeMax: 12,
		Tags: []string{"space", "robots"}, Type: domain.TypeWorkshop,
		Location: "Main Hall", Capacity: 12, Notes: "Bring a friend",
	}
}

// TestSQLiteStore_CreateAndGet round-trips every column.
func TestSQLiteStore_CreateAndGet(t *testing.T) {
	store := sessionstore.NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()
	want := newSession("s1", 1700000000000)

	if err := store.Create(ctx, want); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := store.GetByID(ctx, "s1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != want.Title || got.StartTs != want.StartTs || got.EndTs != want.EndTs ||
		got.AgeMin != 5 || got.AgeMax != 12 || got.Type != want.Type ||
		got.Location != want.Location || got.Capacity != 12 || got.Notes != want.Notes {
		t.Errorf("GetByID = %+v, want %+v", got, want)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "space" || got.Tags[1] != "robots" {
		t.Errorf("Tags = %v, want [space robots]", got.Tags)
	}
}

// TestSQLiteStore_GetByID_NotFound wraps storage.ErrNotFound.
func TestSQLiteStore_GetByID_NotFound(t *testing.T) {
	store := sessionstore.NewSQLiteStore(storagetest.OpenDB(t))
	if _, err := store.GetByID(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByID error = %v, want ErrNotFound", err)
	}
}

// TestSQLiteStore_Create_Duplicate rejects a reused ID.
func TestSQLiteStore_Create_Duplicate(t *testing.T) {
	store := sessionstore.NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()
	store.Create(ctx, newSession("s1", 1))
	if err := store.Create(ctx, newSession("s1", 5)); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Errorf("Create duplicate error = %v, want ErrAlreadyExists", err)
	}
}

// TestSQLiteStore_NilTags stores an empty list and reads back a non-nil slice.
func TestSQLiteStore_NilTags(t *testing.T) {
	store := sessionstore.NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()
	s := newSession("s1", 1)
	s.Tags = nil
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, _ := store.GetByID(ctx, "s1")
	if got.Tags == nil || len(got.Tags) != 0 {
		t.Errorf("Tags = %#v, want empty non-nil", got.Tags)
	}
}

// TestSQLiteStore_List orders by start time ascending.
func TestSQLiteStore_List(t *testing.T) {
	store := sessionstore.NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()

	empty, err := store.List(ctx)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("List on empty = %v, %v; want empty non-nil", empty, err)
	}

	store.Create(ctx, newSession("late", 3000))
	store.Create(ctx, newSession("early", 1000))
	store.Create(ctx, newSession("mid", 2000))

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ids []string
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	if len(ids) != 3 || ids[0] != "early" || ids[1] != "mid" || ids[2] != "late" {
		t.Errorf("List order = %v, want [early mid late]", ids)
	}
}

// TestSQLiteStore_ExistsAndCount reports presence and totals.
func TestSQLiteStore_ExistsAndCount(t *testing.T) {
	store := sessionstore.NewSQLiteStore(storagetest.OpenDB(t))
	ctx := context.Background()
	store.Create(ctx, newSession("s1", 1))

	if ok, _ := store.Exists(ctx, "s1"); !ok {
		t.Error("Exists(s1) = false")
	}
	if ok, _ := store.Exists(ctx, "nope"); ok {
		t.Error("Exists(nope) = true")
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}
