package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

var ErrEmptyRepo = errors.New("snapshot repo must not be empty")

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts between concurrent API requests.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSnapshot upserts a snapshot keyed by its run id, assigning one when empty.
func (s *Store) SaveSnapshot(ctx context.Context, snapshot Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot.Repo = strings.TrimSpace(snapshot.Repo)
	if snapshot.Repo == "" {
		return ErrEmptyRepo
	}
	if snapshot.RunID == "" {
		snapshot.RunID = uuid.NewString()
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = time.Now().UTC()
	}
	if snapshot.SchemaVersion == 0 {
		snapshot.SchemaVersion = SchemaVersion
	}
	if snapshot.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported snapshot schema version %d", snapshot.SchemaVersion)
	}

	query := `
INSERT INTO snapshots (
  run_id, repo, schema_version, ts_utc, total_files, code_files, analyzed_files,
  dependencies, connected_files, cycle_count, god_files, average_deps, has_tests, health_score
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
  repo=excluded.repo,
  schema_version=excluded.schema_version,
  ts_utc=excluded.ts_utc,
  total_files=excluded.total_files,
  code_files=excluded.code_files,
  analyzed_files=excluded.analyzed_files,
  dependencies=excluded.dependencies,
  connected_files=excluded.connected_files,
  cycle_count=excluded.cycle_count,
  god_files=excluded.god_files,
  average_deps=excluded.average_deps,
  has_tests=excluded.has_tests,
  health_score=excluded.health_score
`
	return s.withRetry(ctx, "save snapshot", func() error {
		_, err := s.db.ExecContext(
			ctx,
			query,
			snapshot.RunID,
			snapshot.Repo,
			snapshot.SchemaVersion,
			snapshot.Timestamp.UTC().Format(time.RFC3339Nano),
			snapshot.TotalFiles,
			snapshot.CodeFiles,
			snapshot.AnalyzedFiles,
			snapshot.Dependencies,
			snapshot.ConnectedFiles,
			snapshot.CycleCount,
			snapshot.GodFiles,
			snapshot.AverageDeps,
			snapshot.HasTests,
			snapshot.HealthScore,
		)
		return err
	})
}

// LoadSnapshots returns a repo's snapshots at or after since, oldest first.
func (s *Store) LoadSnapshots(ctx context.Context, repo string, since time.Time) ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	repo = strings.TrimSpace(repo)
	if repo == "" {
		return nil, ErrEmptyRepo
	}

	base := `
SELECT
  run_id, repo, schema_version, ts_utc, total_files, code_files, analyzed_files,
  dependencies, connected_files, cycle_count, god_files, average_deps, has_tests, health_score
FROM snapshots
WHERE repo = ?`
	args := []any{repo}
	if !since.IsZero() {
		base += " AND ts_utc >= ?"
		args = append(args, since.UTC().Format(time.RFC3339Nano))
	}
	base += " ORDER BY ts_utc ASC, run_id ASC"

	var rows *sql.Rows
	err := s.withRetry(ctx, "load snapshots", func() error {
		var qErr error
		rows, qErr = s.db.QueryContext(ctx, base, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0)
	for rows.Next() {
		var (
			tsRaw    string
			snapshot Snapshot
		)
		if err := rows.Scan(
			&snapshot.RunID,
			&snapshot.Repo,
			&snapshot.SchemaVersion,
			&tsRaw,
			&snapshot.TotalFiles,
			&snapshot.CodeFiles,
			&snapshot.AnalyzedFiles,
			&snapshot.Dependencies,
			&snapshot.ConnectedFiles,
			&snapshot.CycleCount,
			&snapshot.GodFiles,
			&snapshot.AverageDeps,
			&snapshot.HasTests,
			&snapshot.HealthScore,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot timestamp %q: %w", tsRaw, err)
		}
		snapshot.Timestamp = ts.UTC()
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snapshots, nil
}

func (s *Store) withRetry(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(time.Duration(attempt*25) * time.Millisecond):
		}
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}
