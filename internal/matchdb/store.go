// Package matchdb persists scan runs and their matches to SQLite.
//
// The journal is optional; when configured it gives forensic workflows
// an audit trail of what was scanned, with what threshold, and what
// matched. Each scan writes exactly one run row plus one row per match,
// committed in a single transaction after the scan finishes.
package matchdb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"pixhunt/internal/results"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the
// schema changes; existing journals with another version are rejected.
const schemaVersion = 1

// ErrSchemaMismatch indicates the journal was created by an
// incompatible pixhunt version.
var ErrSchemaMismatch = errors.New("journal schema version mismatch")

// Store manages journal persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run describes one completed (or cancelled) scan.
type Run struct {
	ID               string
	ImagePath        string
	ReferenceDir     string
	Threshold        float64
	StartedAt        time.Time
	FinishedAt       time.Time
	EntriesVisited   int
	CandidatesScored int
	SoftErrors       int
}

// Open initializes or connects to the journal database at path,
// creating parent directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: journal has version %d, expected %d (delete %s to start fresh)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Path returns the journal database file path.
func (s *Store) Path() string {
	return s.path
}

// SaveRun records one run and all of its matches in a single
// transaction. Match rows keep the result set's discovery order via
// their position column.
func (s *Store) SaveRun(ctx context.Context, run Run, set *results.Set) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			id, image_path, reference_dir, threshold,
			started_at, finished_at,
			entries_visited, candidates_scored, soft_errors, match_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ImagePath, run.ReferenceDir, run.Threshold,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.EntriesVisited, run.CandidatesScored, run.SoftErrors, set.Total(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO matches (run_id, reference_id, candidate_path, score, position)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare match insert: %w", err)
	}
	defer stmt.Close()

	for _, referenceID := range set.ReferenceIDs() {
		for position, match := range set.Matches(referenceID) {
			if _, err := stmt.ExecContext(ctx, run.ID, referenceID, match.Path, match.Score, position); err != nil {
				return fmt.Errorf("insert match for %s: %w", referenceID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// Matches returns the recorded matches for one reference of one run, in
// discovery order.
func (s *Store) Matches(ctx context.Context, runID, referenceID string) ([]results.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT candidate_path, score FROM matches
		WHERE run_id = ? AND reference_id = ?
		ORDER BY position`,
		runID, referenceID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var matches []results.Match
	for rows.Next() {
		var m results.Match
		if err := rows.Scan(&m.Path, &m.Score); err != nil {
			return nil, fmt.Errorf("scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

// GetRun loads one run row by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, image_path, reference_dir, threshold,
		       started_at, finished_at,
		       entries_visited, candidates_scored, soft_errors
		FROM runs WHERE id = ?`, runID)

	var run Run
	var started, finished string
	err := row.Scan(&run.ID, &run.ImagePath, &run.ReferenceDir, &run.Threshold,
		&started, &finished,
		&run.EntriesVisited, &run.CandidatesScored, &run.SoftErrors)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}
	return &run, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
