package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/event-calendar/internal/testfixtures"
)

func TestMigrate(t *testing.T) {
	t.Parallel()

	t.Run("is a no-op on an up-to-date database", func(t *testing.T) {
		t.Parallel()

		harness := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()

		// The harness already migrated once.
		if err := harness.Pool.Migrate(ctx); err != nil {
			t.Fatalf("repeated Migrate failed: %v", err)
		}

		var applied int
		row := harness.Pool.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`)
		if err := row.Scan(&applied); err != nil {
			t.Fatalf("failed to count applied migrations: %v", err)
		}
		if applied != 4 {
			t.Fatalf("expected 4 applied migrations, got %d", applied)
		}
	})

	t.Run("creates the full schema", func(t *testing.T) {
		t.Parallel()

		harness := testfixtures.NewSQLiteHarness(t)
		ctx := context.Background()

		for _, table := range []string{"users", "events", "sessions"} {
			var name string
			row := harness.Pool.DB().QueryRowContext(ctx,
				`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
			if err := row.Scan(&name); err != nil {
				t.Fatalf("expected table %s: %v", table, err)
			}
		}
	})
}
