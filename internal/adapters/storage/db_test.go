package storage

import (
	"database/sql"
	"sort"
	"strings"
	"testing"
)

// openTestDB creates an in-memory SQLite database for testing.
// A single connection keeps every statement on the same in-memory database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// getSchemaSQL returns sorted CREATE statements from sqlite_master.
func getSchemaSQL(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT sql FROM sqlite_master WHERE name NOT LIKE 'sqlite_%' AND sql IS NOT NULL ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var sqls []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			t.Fatalf("failed to scan sql: %v", err)
		}
		sqls = append(sqls, strings.Join(strings.Fields(s), " "))
	}
	sort.Strings(sqls)
	return sqls
}

// expectedTables is the sorted list of tables after all migrations.
var expectedTables = []string{
	"booking",
	"child",
	"club_session",
	"family",
	"lego_set",
	"schema_version",
}

// TestMigrateDB_Fresh verifies all migrations apply cleanly to an empty database.
func TestMigrateDB_Fresh(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db, SQLite); err != nil {
		t.Fatalf("MigrateDB failed on fresh db: %v", err)
	}

	version, err := SchemaVersion(db, SQLite)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != LatestSchemaVersion() {
		t.Errorf("version = %d, want %d", version, LatestSchemaVersion())
	}

	tables := getTableNames(t, db)
	if strings.Join(tables, ",") != strings.Join(expectedTables, ",") {
		t.Errorf("tables = %v, want %v", tables, expectedTables)
	}
}

// TestMigrateDB_Idempotent verifies that running MigrateDB twice produces no errors
// and records each migration once.
func TestMigrateDB_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db, SQLite); err != nil {
		t.Fatalf("first MigrateDB failed: %v", err)
	}
	if err := MigrateDB(db, SQLite); err != nil {
		t.Fatalf("second MigrateDB failed: %v", err)
	}

	var rows int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&rows); err != nil {
		t.Fatalf("count schema_version: %v", err)
	}
	if rows != len(migrations) {
		t.Errorf("schema_version rows = %d, want %d", rows, len(migrations))
	}
}

// TestMigrateDB_SchemaDrift verifies two fresh databases end with identical schemas.
func TestMigrateDB_SchemaDrift(t *testing.T) {
	db1 := openTestDB(t)
	db2 := openTestDB(t)
	if err := MigrateDB(db1, SQLite); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}
	if err := MigrateDB(db2, SQLite); err != nil {
		t.Fatalf("MigrateDB (second) failed: %v", err)
	}

	golden, actual := getSchemaSQL(t, db1), getSchemaSQL(t, db2)
	if len(golden) != len(actual) {
		t.Fatalf("schema drift: golden has %d objects, actual has %d", len(golden), len(actual))
	}
	for i := range golden {
		if golden[i] != actual[i] {
			t.Errorf("schema drift at %d:\ngolden: %s\nactual: %s", i, golden[i], actual[i])
		}
	}
}

// TestMigrateDB_VersionProgression verifies SchemaVersion reports 0 before
// migration and the latest version after.
func TestMigrateDB_VersionProgression(t *testing.T) {
	db := openTestDB(t)

	v, err := SchemaVersion(db, SQLite)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != 0 {
		t.Errorf("initial version = %d, want 0", v)
	}

	if err := MigrateDB(db, SQLite); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}
	if v, _ = SchemaVersion(db, SQLite); v != LatestSchemaVersion() {
		t.Errorf("post-migration version = %d, want %d", v, LatestSchemaVersion())
	}
}

// TestMigrateDB_ExistingDB verifies that pre-existing tables and rows survive
// on a database without version tracking.
func TestMigrateDB_ExistingDB(t *testing.T) {
	db := openTestDB(t)

	if _, err := db.Exec(`CREATE TABLE family (id TEXT PRIMARY KEY, name TEXT NOT NULL, parent_name TEXT NOT NULL, parent_email TEXT NOT NULL)`); err != nil {
		t.Fatalf("failed to create pre-migration table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO family (id, name, parent_name, parent_email) VALUES ('f1', 'Miller', 'Sarah', 'sarah@example.com')`); err != nil {
		t.Fatalf("failed to insert pre-migration data: %v", err)
	}

	if err := MigrateDB(db, SQLite); err != nil {
		t.Fatalf("MigrateDB on existing db failed: %v", err)
	}

	var name string
	if err := db.QueryRow("SELECT name FROM family WHERE id = 'f1'").Scan(&name); err != nil {
		t.Fatalf("pre-migration data lost: %v", err)
	}
	if name != "Miller" {
		t.Errorf("name = %q, want Miller", name)
	}
}

// TestMigrateDB_SessionChecks verifies the schema rejects inverted time and age ranges.
func TestMigrateDB_SessionChecks(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db, SQLite); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}

	insert := "INSERT INTO club_session (id, title, start_ts, end_ts, age_min, age_max, type) VALUES (?, 'x', ?, ?, ?, ?, 'free-play')"
	if _, err := db.Exec(insert, "ok", 1, 2, 5, 10); err != nil {
		t.Fatalf("valid insert failed: %v", err)
	}
	if _, err := db.Exec(insert, "bad-time", 2, 2, 5, 10); err == nil {
		t.Error("expected CHECK failure for start_ts >= end_ts")
	}
	if _, err := db.Exec(insert, "bad-age", 1, 2, 11, 10); err == nil {
		t.Error("expected CHECK failure for age_min > age_max")
	}
}

// TestMigrateDB_ChildCascade verifies children are removed with their family.
func TestMigrateDB_ChildCascade(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := MigrateDB(db, SQLite); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}

	db.Exec(`INSERT INTO family (id, name, parent_name, parent_email) VALUES ('f1', 'Miller', 'Sarah', 's@example.com')`)
	db.Exec(`INSERT INTO child (family_id, id, position, name, age) VALUES ('f1', 'c1', 0, 'Leo', 8)`)
	if _, err := db.Exec(`DELETE FROM family WHERE id = 'f1'`); err != nil {
		t.Fatalf("delete family: %v", err)
	}
	var n int
	db.QueryRow("SELECT COUNT(*) FROM child").Scan(&n)
	if n != 0 {
		t.Errorf("children after cascade = %d, want 0", n)
	}
}
