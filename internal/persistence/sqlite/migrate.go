package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migration pairs a monotonically increasing version with the DDL that
// brings the schema up to that version.
type migration struct {
	version int
	name    string
	ddl     string
}

// migrations lists every schema step in order. Entries are append-only;
// applied versions are recorded in schema_migrations and never re-run.
var migrations = []migration{
	{
		version: 1,
		name:    "create_users",
		ddl: `
			CREATE TABLE IF NOT EXISTS users (
				id            TEXT PRIMARY KEY,
				username      TEXT NOT NULL UNIQUE,
				email         TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at    TEXT NOT NULL,
				updated_at    TEXT NOT NULL
			)
		`,
	},
	{
		version: 2,
		name:    "create_events",
		ddl: `
			CREATE TABLE IF NOT EXISTS events (
				id          TEXT PRIMARY KEY,
				owner_id    TEXT NOT NULL REFERENCES users(id),
				title       TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				category    TEXT NOT NULL DEFAULT 'Personal',
				event_date  TEXT NOT NULL,
				event_time  TEXT NOT NULL,
				created_at  TEXT NOT NULL,
				updated_at  TEXT NOT NULL
			)
		`,
	},
	{
		version: 3,
		name:    "index_events_owner",
		ddl:     `CREATE INDEX IF NOT EXISTS idx_events_owner ON events(owner_id, event_date, event_time)`,
	},
	{
		version: 4,
		name:    "create_sessions",
		ddl: `
			CREATE TABLE IF NOT EXISTS sessions (
				id         TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL REFERENCES users(id),
				token      TEXT NOT NULL UNIQUE,
				expires_at TEXT NOT NULL,
				revoked_at TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)
		`,
	},
}

// Migrate applies every pending schema migration inside a transaction per
// step, recording each applied version in schema_migrations. Calling it on
// an up-to-date database is a no-op.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := cp.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to iterate applied migrations: %w", err)
	}
	rows.Close()

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		err := cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.Exec(m.ddl); err != nil {
				return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
			}
			if _, err := tx.Exec(
				`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
				m.version, m.name, time.Now().UTC().Format(time.RFC3339),
			); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
