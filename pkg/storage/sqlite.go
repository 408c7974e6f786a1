// Package storage persists tick profiles to SQLite for offline
// inspection by profiling tooling.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/dshills/gonodes/pkg/domain/types"
	"github.com/dshills/gonodes/pkg/engine"
)

// TickProfile is the readback row for one persisted tick.
type TickProfile struct {
	ID            types.TickID
	GraphID       types.GraphID
	GraphName     string
	StartedAt     time.Time
	Duration      time.Duration
	NodesExecuted int
	CacheHits     uint64
	CacheMisses   uint64
}

// NodeProfile is the readback row for one node's timing within a tick.
type NodeProfile struct {
	TickID        types.TickID
	Node          types.NodeID
	Label         string
	Type          string
	ExecCount     uint64
	LastExecution time.Duration
}

// SQLiteProfileRepository implements engine.ProfileRepository using
// SQLite storage.
type SQLiteProfileRepository struct {
	db *sql.DB
}

// NewSQLiteProfileRepository creates a repository at the default
// location, ~/.gonodes/gonodes.db.
func NewSQLiteProfileRepository() (*SQLiteProfileRepository, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return NewSQLiteProfileRepositoryWithPath(filepath.Join(homeDir, ".gonodes", "gonodes.db"))
}

// NewSQLiteProfileRepositoryWithPath creates a repository with a custom
// database path. Useful for testing.
func NewSQLiteProfileRepositoryWithPath(dbPath string) (*SQLiteProfileRepository, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := InitializeDatabase(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &SQLiteProfileRepository{db: db}, nil
}

// Close closes the database connection.
func (r *SQLiteProfileRepository) Close() error {
	return r.db.Close()
}

// SaveTick persists one completed tick and its node timings.
func (r *SQLiteProfileRepository) SaveTick(graphID types.GraphID, graphName string, stats engine.TickStats, timings []engine.NodeTiming) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO ticks (id, graph_id, graph_name, started_at, duration_ns, nodes_executed, cache_hits, cache_misses)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.ID.String(), graphID.String(), graphName, stats.StartedAt,
		stats.Duration.Nanoseconds(), stats.NodesExecuted,
		int64(stats.CacheHits), int64(stats.CacheMisses))
	if err != nil {
		return fmt.Errorf("failed to insert tick: %w", err)
	}

	for _, t := range timings {
		_, err = tx.Exec(`
			INSERT INTO node_timings (tick_id, node_id, label, type, exec_count, last_execution_ns)
			VALUES (?, ?, ?, ?, ?, ?)`,
			stats.ID.String(), int64(t.Node), t.Label, t.Type,
			int64(t.ExecCount), t.LastExecution.Nanoseconds())
		if err != nil {
			return fmt.Errorf("failed to insert node timing: %w", err)
		}
	}

	return tx.Commit()
}

// ListTicks returns persisted ticks for a graph, most recent first.
// A zero graphID lists ticks across all graphs.
func (r *SQLiteProfileRepository) ListTicks(graphID types.GraphID, limit int) ([]TickProfile, error) {
	if limit < 1 {
		limit = 50
	}

	query := `
		SELECT id, graph_id, graph_name, started_at, duration_ns, nodes_executed, cache_hits, cache_misses
		FROM ticks`
	args := []interface{}{}
	if !graphID.IsZero() {
		query += " WHERE graph_id = ?"
		args = append(args, graphID.String())
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ticks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var profiles []TickProfile
	for rows.Next() {
		var p TickProfile
		var id, gid string
		var durationNs, hits, misses int64
		if err := rows.Scan(&id, &gid, &p.GraphName, &p.StartedAt, &durationNs, &p.NodesExecuted, &hits, &misses); err != nil {
			return nil, fmt.Errorf("failed to scan tick: %w", err)
		}
		p.ID = types.TickID(id)
		p.GraphID = types.GraphID(gid)
		p.Duration = time.Duration(durationNs)
		p.CacheHits = uint64(hits)
		p.CacheMisses = uint64(misses)
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

// TickTimings returns the per-node timing rows for one tick.
func (r *SQLiteProfileRepository) TickTimings(tickID types.TickID) ([]NodeProfile, error) {
	rows, err := r.db.Query(`
		SELECT tick_id, node_id, label, type, exec_count, last_execution_ns
		FROM node_timings WHERE tick_id = ? ORDER BY node_id`,
		tickID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query node timings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var profiles []NodeProfile
	for rows.Next() {
		var p NodeProfile
		var id string
		var nodeID, execCount, lastNs int64
		if err := rows.Scan(&id, &nodeID, &p.Label, &p.Type, &execCount, &lastNs); err != nil {
			return nil, fmt.Errorf("failed to scan node timing: %w", err)
		}
		p.TickID = types.TickID(id)
		p.Node = types.NodeID(nodeID)
		p.ExecCount = uint64(execCount)
		p.LastExecution = time.Duration(lastNs)
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}
