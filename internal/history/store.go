// Package history persists match runs and their accepted pairs in SQLite so
// runs can be listed and compared later.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lehigh-university-libraries/booklink/internal/matching"
	"github.com/lehigh-university-libraries/booklink/internal/report"
)

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// RunRow is a stored run
type RunRow struct {
	ID           string
	CreatedAt    time.Time
	Strategy     string
	Metric       string
	Workers      int
	LeftPath     string
	RightPath    string
	OutputPath   string
	LeftRecords  int
	RightRecords int
	Matches      int
	Overlap      float64
	Duration     time.Duration
}

// MatchRow is a stored accepted pair
type MatchRow struct {
	MatchID int
	LeftID  string
	RightID string
	Score   float64
	Method  string
	Fields  []string
}

// Open initializes or connects to the history database at path
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// Connection-scoped pragmas go in the DSN so each pooled connection applies them
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma %q: %w", "journal_mode=WAL", err)
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun stores run and every result of set in one transaction and returns
// the new run ID. A non-empty run.ID is kept.
func (s *Store) SaveRun(ctx context.Context, run report.Run, set *matching.MatchSet) (string, error) {
	id := run.ID
	if id == "" {
		id = uuid.NewString()
	}
	created := run.Timestamp
	if created.IsZero() {
		created = time.Now()
	}

	summary := run.Summary
	if summary == nil {
		summary = &report.Summary{Matches: set.Len()}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin run tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (
		id, created_at, strategy, metric, workers, left_path, right_path, output_path,
		left_records, right_records, matches, overlap, duration_ms
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		created.UTC().Format(time.RFC3339Nano),
		run.Config.Strategy,
		run.Config.Metric,
		run.Config.Workers,
		run.Config.Left,
		run.Config.Right,
		run.Config.Output,
		summary.LeftRecords,
		summary.RightRecords,
		set.Len(),
		summary.Overlap,
		summary.Duration.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO matches (
		run_id, match_id, left_id, right_id, score, method, fields
	) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare match insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range set.Results() {
		if _, err := stmt.ExecContext(ctx, id, m.ID, m.Left.ID, m.Right.ID, m.Score, m.Method, strings.Join(m.Fields, ",")); err != nil {
			return "", fmt.Errorf("insert match %d: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	return id, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRow, error) {
	query := `SELECT id, created_at, strategy, metric, workers, left_path, right_path, output_path,
		left_records, right_records, matches, overlap, duration_ms
		FROM runs ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRow
	for rows.Next() {
		var (
			r          RunRow
			created    string
			durationMS int64
		)
		if err := rows.Scan(&r.ID, &created, &r.Strategy, &r.Metric, &r.Workers, &r.LeftPath, &r.RightPath,
			&r.OutputPath, &r.LeftRecords, &r.RightRecords, &r.Matches, &r.Overlap, &durationMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("parse created_at of run %s: %w", r.ID, err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Matches returns the stored pairs of a run in emission order
func (s *Store) Matches(ctx context.Context, runID string) ([]MatchRow, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM runs WHERE id = ?", runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("look up run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("run %s not found", runID)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT match_id, left_id, right_id, score, method, fields
		FROM matches WHERE run_id = ? ORDER BY match_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	var matches []MatchRow
	for rows.Next() {
		var (
			m      MatchRow
			fields string
		)
		if err := rows.Scan(&m.MatchID, &m.LeftID, &m.RightID, &m.Score, &m.Method, &fields); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if fields != "" {
			m.Fields = strings.Split(fields, ",")
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

// DeleteRun removes a run and its matches
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return nil
}
