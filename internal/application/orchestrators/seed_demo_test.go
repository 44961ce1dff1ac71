package orchestrators

import (
	"context"
	"fmt"
	"testing"

	bookingstore "brickyard/internal/adapters/storage/booking"
	familystore "brickyard/internal/adapters/storage/family"
	legosetstore "brickyard/internal/adapters/storage/legoset"
	sessionstore "brickyard/internal/adapters/storage/session"
	"brickyard/internal/adapters/storage/storagetest"
	"brickyard/internal/domain/booking"
	"brickyard/internal/domain/family"
)

func seedDeps(t *testing.T) (SeedDemoDeps, *bookingstore.SQLiteStore, *familystore.SQLiteStore) {
	t.Helper()
	db := storagetest.OpenDB(t)
	n := 0
	bookings := bookingstore.NewSQLiteStore(db)
	families := familystore.NewSQLiteStore(db)
	return SeedDemoDeps{
		SessionStore:  sessionstore.NewSQLiteStore(db),
		FamilyStore:   families,
		BookingStore:  bookings,
		LegoSetStore:  legosetstore.NewSQLiteStore(db),
		GenerateID:    func() string { n++; return fmt.Sprintf("seed-%d", n) },
		GenerateToken: fixedToken,
		Now:           fixedNow,
	}, bookings, families
}

// TestExecuteSeedDemo_SeedsEmptyTables tests the first run fills every table.
func TestExecuteSeedDemo_SeedsEmptyTables(t *testing.T) {
	deps, bookings, families := seedDeps(t)
	ctx := context.Background()

	result, err := ExecuteSeedDemo(ctx, deps)
	if err != nil {
		t.Fatalf("ExecuteSeedDemo: %v", err)
	}
	if result.Sessions != 4 || result.Families != 1 || result.Bookings != 1 || result.Sets != len(demoSets) {
		t.Errorf("result = %+v", result)
	}

	f, err := families.GetByID(ctx, DemoFamilyID)
	if err != nil {
		t.Fatalf("demo family: %v", err)
	}
	if f.Name != "Miller" || len(f.Children) != 2 {
		t.Errorf("demo family = %+v", f)
	}

	list, _ := bookings.List(ctx, bookingstore.ListFilter{FamilyID: DemoFamilyID})
	if len(list) != 1 || list[0].Status != booking.StatusPending || list[0].ChildID != "child_leo" {
		t.Errorf("demo bookings = %+v", list)
	}
}

// TestExecuteSeedDemo_Idempotent tests a second run adds nothing.
func TestExecuteSeedDemo_Idempotent(t *testing.T) {
	deps, bookings, _ := seedDeps(t)
	ctx := context.Background()

	if _, err := ExecuteSeedDemo(ctx, deps); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	result, err := ExecuteSeedDemo(ctx, deps)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if result != (SeedDemoResult{}) {
		t.Errorf("second run seeded %+v, want nothing", result)
	}
	if n, _ := bookings.Count(ctx); n != 1 {
		t.Errorf("bookings = %d, want 1", n)
	}
}

// TestExecuteSeedDemo_AddsMissingDemoFamily tests that other families do not
// stop the demo family from being seeded.
func TestExecuteSeedDemo_AddsMissingDemoFamily(t *testing.T) {
	deps, _, families := seedDeps(t)
	ctx := context.Background()
	if err := families.Create(ctx, family.Family{
		ID: "fam_lee", Name: "Lee", ParentName: "Jo Lee", ParentEmail: "jo@example.com",
	}); err != nil {
		t.Fatalf("create family: %v", err)
	}

	result, err := ExecuteSeedDemo(ctx, deps)
	if err != nil {
		t.Fatalf("ExecuteSeedDemo: %v", err)
	}
	if result.Families != 1 {
		t.Errorf("Families = %d, want 1", result.Families)
	}
	if ok, _ := families.Exists(ctx, DemoFamilyID); !ok {
		t.Error("demo family missing")
	}
}
