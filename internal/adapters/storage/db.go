package storage

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migration is a single schema step applied inside a transaction.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered, append-only schema history. The registration table
// is the only entity; payment slips live in blob storage and are referenced by URL.
var migrations = []migration{
	{
		version: 1,
		sql: `
		CREATE TABLE IF NOT EXISTS registration (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT NOT NULL UNIQUE,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL UNIQUE,
			phone TEXT NOT NULL DEFAULT '',
			club_name TEXT NOT NULL DEFAULT '',
			district TEXT NOT NULL DEFAULT '',
			position TEXT NOT NULL DEFAULT '',
			gender TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			tier TEXT NOT NULL,
			poolside_party INTEGER NOT NULL DEFAULT 0,
			community_service INTEGER NOT NULL DEFAULT 0,
			installation_banquet INTEGER NOT NULL DEFAULT 0,
			tier_fee INTEGER NOT NULL DEFAULT 0,
			addon_fee INTEGER NOT NULL DEFAULT 0,
			total_amount INTEGER NOT NULL DEFAULT 0,
			vegetarian INTEGER NOT NULL DEFAULT 0,
			terms_accepted INTEGER NOT NULL DEFAULT 0,
			privacy_agreed INTEGER NOT NULL DEFAULT 0,
			marketing_opt_in INTEGER NOT NULL DEFAULT 0,
			payment_slip_url TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_registration_created_at ON registration(created_at);
		`,
	},
	{
		version: 2,
		sql: `
		CREATE INDEX IF NOT EXISTS idx_registration_tier ON registration(tier);
		CREATE INDEX IF NOT EXISTS idx_registration_status ON registration(status);
		`,
	},
}

// LatestSchemaVersion returns the version the database is migrated to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// MigrateDB brings the database schema up to the latest version.
// Each pending migration runs in its own transaction; schema_version records
// the applied version so restarts are idempotent.
// PRE: db is a valid database connection
// POST: schema_version equals LatestSchemaVersion()
func MigrateDB(db *sql.DB, dbPath string) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	current, err := currentVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration %d failed for %s: %w", m.version, dbPath, err)
		}
		slog.Info("schema_migrated", "version", m.version, "db", dbPath)
	}
	return nil
}

// currentVersion reads the applied schema version (0 for a fresh database).
func currentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (0)"); err != nil {
			return 0, fmt.Errorf("failed to seed schema_version: %w", err)
		}
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema_version: %w", err)
	}
	return version, nil
}

// applyMigration runs one migration and records its version atomically.
func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.sql); err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE schema_version SET version = ?", m.version); err != nil {
		return err
	}
	return tx.Commit()
}
