package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// migration is one forward-only schema step. Statements are portable between
// SQLite and Postgres.
type migration struct {
	version    int
	name       string
	statements []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "baseline",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS club_session (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				start_ts BIGINT NOT NULL,
				end_ts BIGINT NOT NULL,
				age_min INTEGER NOT NULL,
				age_max INTEGER NOT NULL,
				tags TEXT NOT NULL DEFAULT '[]',
				type TEXT NOT NULL,
				location TEXT NOT NULL DEFAULT '',
				capacity INTEGER NOT NULL DEFAULT 0,
				notes TEXT NOT NULL DEFAULT '',
				CHECK (start_ts < end_ts),
				CHECK (age_min <= age_max)
			)`,
			`CREATE TABLE IF NOT EXISTS family (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				parent_name TEXT NOT NULL,
				parent_email TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS child (
				family_id TEXT NOT NULL,
				id TEXT NOT NULL,
				position INTEGER NOT NULL,
				name TEXT NOT NULL,
				age INTEGER NOT NULL,
				interest_tags TEXT NOT NULL DEFAULT '[]',
				PRIMARY KEY (family_id, id),
				FOREIGN KEY (family_id) REFERENCES family(id) ON DELETE CASCADE
			)`,
			`CREATE TABLE IF NOT EXISTS booking (
				id TEXT PRIMARY KEY,
				session_id TEXT NOT NULL,
				family_id TEXT NOT NULL,
				child_id TEXT NOT NULL,
				status TEXT NOT NULL,
				approval_token TEXT NOT NULL,
				created_ts BIGINT NOT NULL,
				notes TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE TABLE IF NOT EXISTS lego_set (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				shelf TEXT NOT NULL,
				piece_count INTEGER NOT NULL DEFAULT 0,
				instructions_url TEXT NOT NULL DEFAULT ''
			)`,
		},
	},
	{
		version: 2,
		name:    "list_indexes",
		statements: []string{
			`CREATE INDEX IF NOT EXISTS idx_club_session_start ON club_session(start_ts)`,
			`CREATE INDEX IF NOT EXISTS idx_booking_family_created ON booking(family_id, created_ts)`,
			`CREATE INDEX IF NOT EXISTS idx_booking_created ON booking(created_ts)`,
		},
	},
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Open opens a pool for the dialect and verifies it with a ping.
// PRE: dsn is valid for the dialect's driver
// POST: returns a configured pool or an error; caller owns Close
func Open(ctx context.Context, d Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name(), err)
	}
	if err := d.ConfigureConnection(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure %s: %w", d.Name(), err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Name(), err)
	}
	return db, nil
}

// MigrateDB applies every pending migration in order, each in its own transaction.
// PRE: db is a valid connection opened with dialect d
// POST: SchemaVersion(db, d) == LatestSchemaVersion(); running it again is a no-op
func MigrateDB(db *sql.DB, d Dialect) error {
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(db, d)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, db, d, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name, "dialect", d.Name())
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, d Dialect, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		d.Rebind("INSERT INTO schema_version (version, name, applied_at) VALUES (?, ?, ?)"),
		m.version, m.name, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration, or 0 for an untracked database.
// PRE: db is a valid connection opened with dialect d
// POST: returns version >= 0
func SchemaVersion(db *sql.DB, d Dialect) (int, error) {
	ctx := context.Background()
	exists, err := tableExists(ctx, db, d, "schema_version")
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, nil
	}
	var v int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

func tableExists(ctx context.Context, db *sql.DB, d Dialect, name string) (bool, error) {
	q := "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
	if d.Name() == Postgres.Name() {
		q = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?"
	}
	var n int
	if err := db.QueryRowContext(ctx, d.Rebind(q), name).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return n > 0, nil
}
