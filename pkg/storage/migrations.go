package storage

import (
	"database/sql"
	"fmt"
)

// MigrationVersion tracks the current database schema version.
const MigrationVersion = 1

// InitializeDatabase creates the SQLite schema for tick profiles,
// with migration version tracking to support future schema updates.
func InitializeDatabase(db *sql.DB) error {
	migrationsTable := `
	CREATE TABLE IF NOT EXISTS migrations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		version INTEGER NOT NULL UNIQUE,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := db.Exec(migrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to check migration version: %w", err)
	}

	if currentVersion < 1 {
		if err := applyMigration1(db); err != nil {
			return fmt.Errorf("failed to apply migration 1: %w", err)
		}
	}

	return nil
}

// applyMigration1 creates the initial schema.
func applyMigration1(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Ticks table - one row per completed tick
	ticksTable := `
	CREATE TABLE ticks (
		id TEXT PRIMARY KEY,
		graph_id TEXT NOT NULL,
		graph_name TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		duration_ns INTEGER NOT NULL,
		nodes_executed INTEGER NOT NULL,
		cache_hits INTEGER NOT NULL,
		cache_misses INTEGER NOT NULL
	);`
	if _, err := tx.Exec(ticksTable); err != nil {
		return fmt.Errorf("failed to create ticks table: %w", err)
	}

	// Node timings table - per-node profile rows for each tick
	timingsTable := `
	CREATE TABLE node_timings (
		tick_id TEXT NOT NULL,
		node_id INTEGER NOT NULL,
		label TEXT,
		type TEXT,
		exec_count INTEGER NOT NULL,
		last_execution_ns INTEGER NOT NULL,
		FOREIGN KEY (tick_id) REFERENCES ticks(id) ON DELETE CASCADE
	);`
	if _, err := tx.Exec(timingsTable); err != nil {
		return fmt.Errorf("failed to create node_timings table: %w", err)
	}

	indexes := []string{
		`CREATE INDEX idx_ticks_graph ON ticks(graph_id, started_at DESC);`,
		`CREATE INDEX idx_timings_tick ON node_timings(tick_id);`,
	}
	for _, idx := range indexes {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if _, err := tx.Exec("INSERT INTO migrations (version) VALUES (1)"); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}
