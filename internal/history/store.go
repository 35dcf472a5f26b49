// Package history keeps a persistent audit trail of check_code runs.
//
// The identifier tracker itself is in-memory and per session; this store
// only records the outcome of each check so a session's recent history can
// be reviewed later. It uses SQLite through the pure-Go modernc driver.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// dbFile is the database file name inside Config.DataDir.
const dbFile = "history.db"

// ─── Types ───────────────────────────────────────────────────────────────────

// Run is the recorded outcome of one check.
type Run struct {
	ID                int64  `json:"id"`
	SessionID         string `json:"session_id"`
	Filename          string `json:"filename"`
	Success           bool   `json:"success"`
	ErrorCount        int    `json:"error_count"`
	WarningCount      int    `json:"warning_count"`
	ConsistencyIssues int    `json:"consistency_issues"`
	CheckerAvailable  bool   `json:"checker_available"`
	CreatedAt         string `json:"created_at"`
}

// Stats holds aggregate history statistics.
type Stats struct {
	TotalRuns         int `json:"total_runs"`
	FailedRuns        int `json:"failed_runs"`
	Sessions          int `json:"sessions"`
	ConsistencyIssues int `json:"consistency_issues"`
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds history store configuration.
type Config struct {
	DataDir string
	// DefaultLimit bounds Runs when the caller passes limit <= 0.
	DefaultLimit int
}

// DefaultConfig returns the default configuration for the history store.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DataDir:      filepath.Join(home, ".pyward"),
		DefaultLimit: 20,
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the SQLite-backed run history.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New opens (creating if needed) the history database in cfg.DataDir.
func New(cfg Config) (*Store, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("history: data dir is empty")
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultConfig().DefaultLimit
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return s, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return filepath.Join(s.cfg.DataDir, dbFile)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id                 INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id         TEXT    NOT NULL,
			filename           TEXT    NOT NULL,
			success            INTEGER NOT NULL,
			error_count        INTEGER NOT NULL DEFAULT 0,
			warning_count      INTEGER NOT NULL DEFAULT 0,
			consistency_issues INTEGER NOT NULL DEFAULT 0,
			checker_available  INTEGER NOT NULL DEFAULT 0,
			created_at         TEXT    NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_runs_session ON runs(session_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ─── Runs ────────────────────────────────────────────────────────────────────

// RecordRun stores r and returns its ID. ID and CreatedAt on r are ignored.
func (s *Store) RecordRun(r Run) (int64, error) {
	if r.SessionID == "" {
		return 0, fmt.Errorf("history: run has no session id")
	}
	res, err := s.db.Exec(
		`INSERT INTO runs (session_id, filename, success, error_count, warning_count, consistency_issues, checker_available)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, r.Filename, r.Success, r.ErrorCount, r.WarningCount, r.ConsistencyIssues, r.CheckerAvailable,
	)
	if err != nil {
		return 0, fmt.Errorf("history: record run: %w", err)
	}
	return res.LastInsertId()
}

// Runs returns the most recent runs for sessionID, newest first. An empty
// sessionID returns runs from every session.
func (s *Store) Runs(sessionID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	query := `SELECT id, session_id, filename, success, error_count, warning_count,
		consistency_issues, checker_available, created_at FROM runs`
	args := []any{}

	if sessionID != "" {
		query += " WHERE session_id = ?"
		args = append(args, sessionID)
	}

	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Filename, &r.Success, &r.ErrorCount,
			&r.WarningCount, &r.ConsistencyIssues, &r.CheckerAvailable, &r.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// DeleteSession removes every run recorded for sessionID and returns how
// many were removed.
func (s *Store) DeleteSession(sessionID string) (int64, error) {
	res, err := s.db.Exec("DELETE FROM runs WHERE session_id = ?", sessionID)
	if err != nil {
		return 0, fmt.Errorf("history: delete session: %w", err)
	}
	return res.RowsAffected()
}

// ─── Stats ───────────────────────────────────────────────────────────────────

// Stats returns aggregate history statistics.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}
	err := s.db.QueryRow(`SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT session_id),
			COALESCE(SUM(consistency_issues), 0)
		FROM runs`).Scan(&stats.TotalRuns, &stats.FailedRuns, &stats.Sessions, &stats.ConsistencyIssues)
	if err != nil {
		return nil, fmt.Errorf("history: stats: %w", err)
	}
	return stats, nil
}
