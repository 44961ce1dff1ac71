package orchestrators

import (
	"context"
	"time"

	"brickyard/internal/domain/booking"
	"brickyard/internal/domain/family"
	"brickyard/internal/domain/legoset"
	"brickyard/internal/domain/session"
)

// DemoFamilyID is the ID of the seeded demo family.
const DemoFamilyID = "fam_miller"

// SeedSessionStore defines the session store interface needed by SeedDemo.
type SeedSessionStore interface {
	Create(ctx context.Context, s session.Session) error
	Count(ctx context.Context) (int, error)
}

// SeedFamilyStore defines the family store interface needed by SeedDemo.
type SeedFamilyStore interface {
	Create(ctx context.Context, f family.Family) error
	Exists(ctx context.Context, id string) (bool, error)
}

// SeedBookingStore defines the booking store interface needed by SeedDemo.
type SeedBookingStore interface {
	Create(ctx context.Context, b booking.Booking) error
	Count(ctx context.Context) (int, error)
}

// SeedLegoSetStore defines the set store interface needed by SeedDemo.
type SeedLegoSetStore interface {
	Create(ctx context.Context, s legoset.Set) error
	Count(ctx context.Context) (int, error)
}

// SeedDemoDeps holds dependencies for SeedDemo.
type SeedDemoDeps struct {
	SessionStore  SeedSessionStore
	FamilyStore   SeedFamilyStore
	BookingStore  SeedBookingStore
	LegoSetStore  SeedLegoSetStore
	GenerateID    func() string
	GenerateToken func() string
	Now           func() time.Time
}

// SeedDemoResult reports how many records each table received.
type SeedDemoResult struct {
	Sessions int
	Families int
	Bookings int
	Sets     int
}

// ExecuteSeedDemo fills empty tables with demo sessions, the Miller family,
// one pending booking and the set catalog. Tables that already hold rows are left alone,
// except that the Miller family is added whenever it is missing.
// PRE: none
// POST: calling it again seeds nothing
func ExecuteSeedDemo(ctx context.Context, deps SeedDemoDeps) (SeedDemoResult, error) {
	var result SeedDemoResult

	day := deps.Now().UTC().Truncate(24 * time.Hour)
	at := func(days, hour int) int64 {
		return day.AddDate(0, 0, days).Add(time.Duration(hour) * time.Hour).UnixMilli()
	}
	hour := int64(time.Hour / time.Millisecond)

	var sessionIDs []string
	n, err := deps.SessionStore.Count(ctx)
	if err != nil {
		return result, err
	}
	if n == 0 {
		sessions := []session.Session{
			{Title: "Space Builders", StartTs: at(2, 21), AgeMin: 6, AgeMax: 12, Tags: []string{"space", "rockets", "robots"}, Type: session.TypeWorkshop, Location: "Main Hall", Capacity: 12, Notes: "Build a **moon base** together. Bring your own minifigs!"},
			{Title: "Saturday Free Play", StartTs: at(4, 14), AgeMin: 4, AgeMax: 14, Tags: []string{"free-build"}, Type: session.TypeFreePlay, Location: "Library Annex", Capacity: 25},
			{Title: "Castle Siege", StartTs: at(6, 21), AgeMin: 8, AgeMax: 14, Tags: []string{"castles", "history"}, Type: session.TypeWorkshop, Location: "Main Hall", Capacity: 10, Notes: "Knights, catapults and drawbridges."},
			{Title: "Adult Builders Night", StartTs: at(7, 23), AgeMin: 18, AgeMax: 99, Tags: []string{"architecture", "technic"}, Type: session.TypeAdultNight, Location: "Community Room", Capacity: 16},
		}
		for _, s := range sessions {
			s.ID = deps.GenerateID()
			s.EndTs = s.StartTs + 2*hour
			if err := deps.SessionStore.Create(ctx, s); err != nil {
				return result, err
			}
			sessionIDs = append(sessionIDs, s.ID)
			result.Sessions++
		}
	}

	hasDemo, err := deps.FamilyStore.Exists(ctx, DemoFamilyID)
	if err != nil {
		return result, err
	}
	if !hasDemo {
		demo := family.Family{
			ID:          DemoFamilyID,
			Name:        "Miller",
			ParentName:  "Sarah Miller",
			ParentEmail: "sarah.miller@example.com",
			Children: []family.Child{
				{ID: "child_leo", Name: "Leo", Age: 8, InterestTags: []string{"space", "robots"}},
				{ID: "child_maya", Name: "Maya", Age: 11, InterestTags: []string{"castles", "history", "architecture"}},
			},
		}
		if err := deps.FamilyStore.Create(ctx, demo); err != nil {
			return result, err
		}
		result.Families++
	}

	n, err = deps.BookingStore.Count(ctx)
	if err != nil {
		return result, err
	}
	// Only seed a booking against sessions created in this run so the reference resolves.
	if n == 0 && result.Families == 1 && len(sessionIDs) > 0 {
		b := booking.Booking{
			ID:            booking.IDPrefix + deps.GenerateID(),
			SessionID:     sessionIDs[0],
			FamilyID:      DemoFamilyID,
			ChildID:       "child_leo",
			Status:        booking.StatusPending,
			ApprovalToken: deps.GenerateToken(),
			CreatedTs:     deps.Now().UnixMilli(),
		}
		if err := deps.BookingStore.Create(ctx, b); err != nil {
			return result, err
		}
		result.Bookings++
	}

	n, err = deps.LegoSetStore.Count(ctx)
	if err != nil {
		return result, err
	}
	if n == 0 {
		for _, s := range demoSets {
			if err := deps.LegoSetStore.Create(ctx, s); err != nil {
				return result, err
			}
			result.Sets++
		}
	}
	return result, nil
}

var demoSets = []legoset.Set{
	{ID: "10281", Title: "Bonsai Tree", Shelf: legoset.ShelfReadyForPlay, PieceCount: 878},
	{ID: "10497", Title: "Galaxy Explorer", Shelf: legoset.ShelfReadyForPlay, PieceCount: 1254},
	{ID: "21318", Title: "Tree House", Shelf: legoset.ShelfWorksInProgress, PieceCount: 3036},
	{ID: "31120", Title: "Medieval Castle", Shelf: legoset.ShelfReadyForParts, PieceCount: 1426},
	{ID: "42115", Title: "Lamborghini Sián FKP 37", Shelf: legoset.ShelfWorksInProgress, PieceCount: 3696},
}
