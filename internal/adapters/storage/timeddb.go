package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"brickyard/internal/adapters/http/perf"
)

// Querier is the query surface shared by the pool and an open transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLDB is the database interface used by all stores.
// Queries use ? placeholders; implementations rebind them for the dialect.
type SQLDB interface {
	Querier
	// InTx runs fn inside a transaction, committing when fn returns nil.
	InTx(ctx context.Context, fn func(q Querier) error) error
}

// DefaultSlowQuery is the default threshold for slow query warnings.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDB wraps a *sql.DB to rebind placeholders, log slow queries and
// optionally record to a collector.
type TimedDB struct {
	db        *sql.DB
	dialect   Dialect
	collector *perf.Collector
	threshold float64
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps a *sql.DB with dialect rebinding and timing instrumentation.
// PRE: db is a valid database connection; dialect matches the driver db was opened with
// POST: Returns a TimedDB that logs slow queries and records to collector (which may be nil)
func NewTimedDB(db *sql.DB, dialect Dialect, collector *perf.Collector) *TimedDB {
	if dialect == nil {
		dialect = SQLite
	}
	return &TimedDB{
		db:        db,
		dialect:   dialect,
		collector: collector,
		threshold: float64(DefaultSlowQuery.Milliseconds()),
	}
}

// SetSlowQueryThreshold changes the slow query warning threshold.
// PRE: d > 0
// POST: subsequent queries at or above d log at WARN
func (t *TimedDB) SetSlowQueryThreshold(d time.Duration) {
	if d > 0 {
		t.threshold = float64(d.Microseconds()) / 1000.0
	}
}

// RawDB returns the underlying *sql.DB (needed for migrations and pool config).
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// Dialect returns the SQL dialect in use.
func (t *TimedDB) Dialect() Dialect {
	return t.dialect
}

// queryLabel reduces a statement to "VERB table" for aggregation.
func queryLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "empty"
	}
	verb := strings.ToUpper(fields[0])
	var marker string
	switch verb {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT":
		marker = "INTO"
	case "UPDATE":
		return verb + " " + at(fields, 1)
	default:
		return verb
	}
	for i, f := range fields {
		if strings.EqualFold(f, marker) {
			return verb + " " + strings.Trim(at(fields, i+1), "(")
		}
	}
	return verb
}

func at(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

// logQuery logs and optionally records a query timing.
func (t *TimedDB) logQuery(op, query string, start time.Time) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	label := queryLabel(query)

	if durationMs >= t.threshold {
		slog.Warn("slow_query",
			"op", op,
			"query", label,
			"duration_ms", durationMs,
		)
	} else {
		slog.Debug("query",
			"op", op,
			"query", label,
			"duration_ms", durationMs,
		)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       label,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// ExecContext wraps sql.DB.ExecContext with rebinding and timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed, timing recorded to collector
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, t.dialect.Rebind(query), args...)
	t.logQuery("ExecContext", query, start)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with rebinding and timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed, timing recorded to collector
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, t.dialect.Rebind(query), args...)
	t.logQuery("QueryContext", query, start)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with rebinding and timing.
// PRE: ctx is valid, query is non-empty
// POST: query executed, timing recorded to collector
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
	t.logQuery("QueryRowContext", query, start)
	return row
}

// InTx runs fn in a transaction. Statements issued through q are rebound and timed.
// PRE: ctx is valid, fn is non-nil
// POST: committed when fn returns nil, rolled back otherwise
func (t *TimedDB) InTx(ctx context.Context, fn func(q Querier) error) error {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, nil)
	t.logQuery("BeginTx", "BEGIN", start)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&timedTx{tx: tx, parent: t}); err != nil {
		return err
	}
	return tx.Commit()
}

// timedTx applies the parent's rebinding and timing to a transaction.
type timedTx struct {
	tx     *sql.Tx
	parent *TimedDB
}

func (x *timedTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := x.tx.ExecContext(ctx, x.parent.dialect.Rebind(query), args...)
	x.parent.logQuery("Tx.ExecContext", query, start)
	return result, err
}

func (x *timedTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := x.tx.QueryContext(ctx, x.parent.dialect.Rebind(query), args...)
	x.parent.logQuery("Tx.QueryContext", query, start)
	return rows, err
}

func (x *timedTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := x.tx.QueryRowContext(ctx, x.parent.dialect.Rebind(query), args...)
	x.parent.logQuery("Tx.QueryRowContext", query, start)
	return row
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// PingContext verifies the database connection.
// PRE: none
// POST: returns nil if connection is alive
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// SchemaVersion reports the highest applied migration.
func (t *TimedDB) SchemaVersion() (int, error) {
	return SchemaVersion(t.db, t.dialect)
}
