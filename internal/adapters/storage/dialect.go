package storage

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // registers the "sqlite" database/sql driver
)

// Dialect captures the differences between the supported SQL backends.
// Stores always write queries with ? placeholders; the dialect rebinds them.
type Dialect interface {
	// Name is the configuration name ("sqlite" or "postgres").
	Name() string
	// DriverName returns the database/sql driver name.
	DriverName() string
	// Rebind converts ? placeholders to the backend's syntax.
	Rebind(query string) string
	// ConfigureConnection applies pool settings and pragmas.
	ConfigureConnection(db *sql.DB) error
}

// Supported dialects.
var (
	SQLite   Dialect = sqliteDialect{}
	Postgres Dialect = postgresDialect{}
)

// DialectByName returns the dialect for a configuration name.
// PRE: name is "sqlite" or "postgres"
// POST: returns an error for any other name
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "sqlite":
		return SQLite, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", name)
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string               { return "sqlite" }
func (sqliteDialect) DriverName() string         { return "sqlite" }
func (sqliteDialect) Rebind(query string) string { return query }

// ConfigureConnection sizes the pool for WAL mode.
func (sqliteDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	return nil
}

// SQLiteDSN builds a modernc.org/sqlite DSN with WAL, foreign keys and a busy timeout.
func SQLiteDSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
}

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "pgx" }

// Rebind rewrites ? to $1, $2, ... Queries in this module never contain a
// literal question mark inside string constants.
func (postgresDialect) Rebind(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteByte(query[i])
	}
	return sb.String()
}

// ConfigureConnection applies pool limits; Postgres enforces foreign keys natively.
func (postgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)
	return nil
}
