package storage

import (
	"database/sql"
	"sort"
	"testing"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
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

// expectedTables is the sorted list of tables after all migrations.
var expectedTables = []string{
	"registration",
	"schema_version",
}

// TestMigrateDBFreshDatabase tests migrating an empty database to the latest version.
func TestMigrateDBFreshDatabase(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB() failed: %v", err)
	}

	tables := getTableNames(t, db)
	if len(tables) != len(expectedTables) {
		t.Fatalf("got tables %v, want %v", tables, expectedTables)
	}
	for i, name := range expectedTables {
		if tables[i] != name {
			t.Errorf("table[%d] = %q, want %q", i, tables[i], name)
		}
	}

	var version int
	if err := db.QueryRow("SELECT version FROM schema_version").Scan(&version); err != nil {
		t.Fatalf("failed to read schema_version: %v", err)
	}
	if version != LatestSchemaVersion() {
		t.Errorf("schema version = %d, want %d", version, LatestSchemaVersion())
	}
}

// TestMigrateDBIdempotent tests that running migrations twice is a no-op.
func TestMigrateDBIdempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("first MigrateDB() failed: %v", err)
	}
	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("second MigrateDB() failed: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		t.Fatalf("failed to count schema_version rows: %v", err)
	}
	if count != 1 {
		t.Errorf("schema_version rows = %d, want 1", count)
	}
}

// TestEmailUniqueConstraint tests that the registration table enforces unique emails.
func TestEmailUniqueConstraint(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("MigrateDB() failed: %v", err)
	}

	insert := `INSERT INTO registration (code, email, tier, created_at) VALUES (?, ?, ?, ?)`
	if _, err := db.Exec(insert, "APLLS-1-AAAA", "dup@example.com", "standard", "2026-01-01T00:00:00Z"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := db.Exec(insert, "APLLS-2-BBBB", "dup@example.com", "late", "2026-01-02T00:00:00Z"); err == nil {
		t.Fatal("second insert with duplicate email succeeded, want constraint violation")
	}
}
