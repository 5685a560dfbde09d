package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/event-calendar/internal/persistence"
	"github.com/example/event-calendar/internal/testfixtures"
)

func seedUser(t *testing.T, harness *testfixtures.SQLiteHarness) testfixtures.UserFixture {
	t.Helper()
	fixture := testfixtures.NewUserFixture()
	if err := harness.Users.CreateUser(context.Background(), fixture.Persistence()); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return fixture
}

func seedEvent(t *testing.T, harness *testfixtures.SQLiteHarness, opts ...testfixtures.EventOption) testfixtures.EventFixture {
	t.Helper()
	fixture := testfixtures.NewEventFixture(opts...)
	if err := harness.Events.CreateEvent(context.Background(), fixture.Persistence()); err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	return fixture
}

func TestEventRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	t.Run("round-trips date and time as wall clock values", func(t *testing.T) {
		t.Parallel()

		harness := testfixtures.NewSQLiteHarness(t)
		owner := seedUser(t, harness)

		fixture := seedEvent(t, harness,
			testfixtures.WithEventOwner(owner.ID),
			testfixtures.WithEventDate(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)),
			testfixtures.WithEventTime(time.Date(0, time.January, 1, 9, 30, 0, 0, time.UTC)),
		)

		stored, err := harness.Events.GetEvent(context.Background(), fixture.ID)
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if got := stored.Date.Format("2006-01-02"); got != "2024-03-01" {
			t.Fatalf("unexpected date %s", got)
		}
		if got := stored.Time.Format("15:04"); got != "09:30" {
			t.Fatalf("unexpected time %s", got)
		}
		if stored.OwnerID != owner.ID {
			t.Fatalf("unexpected owner %s", stored.OwnerID)
		}
	})

	t.Run("rejects events for unknown owners", func(t *testing.T) {
		t.Parallel()

		harness := testfixtures.NewSQLiteHarness(t)

		fixture := testfixtures.NewEventFixture(testfixtures.WithEventOwner("ghost"))
		err := harness.Events.CreateEvent(context.Background(), fixture.Persistence())
		if !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})
}

func TestEventRepository_ListEventsForOwner(t *testing.T) {
	t.Parallel()

	t.Run("returns only the owner's events ordered by date then time", func(t *testing.T) {
		t.Parallel()

		harness := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		alice := seedUser(t, harness)
		bob := seedUser(t, harness)

		day := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
		later := seedEvent(t, harness,
			testfixtures.WithEventOwner(alice.ID),
			testfixtures.WithEventDate(day),
			testfixtures.WithEventTime(time.Date(0, time.January, 1, 18, 0, 0, 0, time.UTC)),
		)
		earlier := seedEvent(t, harness,
			testfixtures.WithEventOwner(alice.ID),
			testfixtures.WithEventDate(day),
			testfixtures.WithEventTime(time.Date(0, time.January, 1, 8, 0, 0, 0, time.UTC)),
		)
		previousDay := seedEvent(t, harness,
			testfixtures.WithEventOwner(alice.ID),
			testfixtures.WithEventDate(day.AddDate(0, 0, -1)),
			testfixtures.WithEventTime(time.Date(0, time.January, 1, 23, 0, 0, 0, time.UTC)),
		)
		seedEvent(t, harness, testfixtures.WithEventOwner(bob.ID), testfixtures.WithEventDate(day))

		events, err := harness.Events.ListEventsForOwner(ctx, alice.ID, persistence.EventFilter{})
		if err != nil {
			t.Fatalf("ListEventsForOwner failed: %v", err)
		}
		if len(events) != 3 {
			t.Fatalf("expected 3 events, got %d", len(events))
		}
		if events[0].ID != previousDay.ID || events[1].ID != earlier.ID || events[2].ID != later.ID {
			t.Fatalf("unexpected order: %s, %s, %s", events[0].ID, events[1].ID, events[2].ID)
		}
	})

	t.Run("matches title search case-insensitively", func(t *testing.T) {
		t.Parallel()

		harness := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		owner := seedUser(t, harness)

		match := seedEvent(t, harness,
			testfixtures.WithEventOwner(owner.ID),
			testfixtures.WithEventTitle("Quarterly Planning Meeting"),
		)
		seedEvent(t, harness,
			testfixtures.WithEventOwner(owner.ID),
			testfixtures.WithEventTitle("Dentist"),
		)

		events, err := harness.Events.ListEventsForOwner(ctx, owner.ID, persistence.EventFilter{Search: "meeting"})
		if err != nil {
			t.Fatalf("ListEventsForOwner failed: %v", err)
		}
		if len(events) != 1 || events[0].ID != match.ID {
			t.Fatalf("unexpected search result %#v", events)
		}
	})

	t.Run("treats LIKE wildcards in the search term literally", func(t *testing.T) {
		t.Parallel()

		harness := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		owner := seedUser(t, harness)

		match := seedEvent(t, harness,
			testfixtures.WithEventOwner(owner.ID),
			testfixtures.WithEventTitle("100% done"),
		)
		seedEvent(t, harness,
			testfixtures.WithEventOwner(owner.ID),
			testfixtures.WithEventTitle("100 percent done"),
		)

		events, err := harness.Events.ListEventsForOwner(ctx, owner.ID, persistence.EventFilter{Search: "100%"})
		if err != nil {
			t.Fatalf("ListEventsForOwner failed: %v", err)
		}
		if len(events) != 1 || events[0].ID != match.ID {
			t.Fatalf("expected only the literal match, got %#v", events)
		}
	})

	t.Run("filters by exact category", func(t *testing.T) {
		t.Parallel()

		harness := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		owner := seedUser(t, harness)

		work := seedEvent(t, harness,
			testfixtures.WithEventOwner(owner.ID),
			testfixtures.WithEventCategory("Work"),
		)
		seedEvent(t, harness,
			testfixtures.WithEventOwner(owner.ID),
			testfixtures.WithEventCategory("Personal"),
		)

		events, err := harness.Events.ListEventsForOwner(ctx, owner.ID, persistence.EventFilter{Category: "Work"})
		if err != nil {
			t.Fatalf("ListEventsForOwner failed: %v", err)
		}
		if len(events) != 1 || events[0].ID != work.ID {
			t.Fatalf("unexpected category result %#v", events)
		}
	})
}

func TestEventRepository_OwnedMutations(t *testing.T) {
	t.Parallel()

	t.Run("update is scoped to the owner", func(t *testing.T) {
		t.Parallel()

		harness := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		alice := seedUser(t, harness)
		bob := seedUser(t, harness)

		fixture := seedEvent(t, harness, testfixtures.WithEventOwner(alice.ID))

		hijack := fixture.Persistence()
		hijack.OwnerID = bob.ID
		hijack.Title = "Hijacked"
		if err := harness.Events.UpdateOwnedEvent(ctx, hijack); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for non-owner update, got %v", err)
		}

		owned := fixture.Persistence()
		owned.Title = "Renamed"
		if err := harness.Events.UpdateOwnedEvent(ctx, owned); err != nil {
			t.Fatalf("UpdateOwnedEvent failed: %v", err)
		}

		stored, err := harness.Events.GetEvent(ctx, fixture.ID)
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if stored.Title != "Renamed" {
			t.Fatalf("expected renamed title, got %q", stored.Title)
		}
	})

	t.Run("delete is scoped to the owner and not idempotent", func(t *testing.T) {
		t.Parallel()

		harness := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()
		alice := seedUser(t, harness)
		bob := seedUser(t, harness)

		fixture := seedEvent(t, harness, testfixtures.WithEventOwner(alice.ID))

		if err := harness.Events.DeleteOwnedEvent(ctx, fixture.ID, bob.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for non-owner delete, got %v", err)
		}
		if err := harness.Events.DeleteOwnedEvent(ctx, fixture.ID, alice.ID); err != nil {
			t.Fatalf("DeleteOwnedEvent failed: %v", err)
		}
		if err := harness.Events.DeleteOwnedEvent(ctx, fixture.ID, alice.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound for repeated delete, got %v", err)
		}
	})
}
