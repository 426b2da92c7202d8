package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a Journal backed by a SQLite database file.
type SQLite struct {
	db *sql.DB
}

var _ Journal = (*SQLite)(nil)

// OpenSQLite opens or creates the journal database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty journal path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			script TEXT NOT NULL,
			chara TEXT NOT NULL,
			scene TEXT NOT NULL,
			started_at TEXT NOT NULL,
			outcome TEXT,
			message TEXT,
			finished_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_script ON runs(script, started_at);`,
		`CREATE TABLE IF NOT EXISTS yields (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			tag TEXT NOT NULL,
			text_id TEXT NOT NULL,
			at TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) RunStarted(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, script, chara, scene, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Script, run.Chara, run.Scene, formatTime(run.StartedAt))
	if err != nil {
		return fmt.Errorf("journal run %s: %w", run.ID, err)
	}
	return nil
}

func (s *SQLite) Yielded(ctx context.Context, runID string, tag, textID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO yields (run_id, seq, tag, text_id, at)
		 SELECT id, (SELECT COUNT(*) FROM yields WHERE run_id = ?) + 1, ?, ?, ?
		 FROM runs WHERE id = ?`,
		runID, tag, textID, formatTime(time.Now()), runID)
	if err != nil {
		return fmt.Errorf("journal yield of %s: %w", runID, err)
	}
	return nil
}

func (s *SQLite) RunFinished(ctx context.Context, runID string, outcome Outcome, message string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET outcome = ?, message = ?, finished_at = ? WHERE id = ? AND outcome IS NULL`,
		string(outcome), message, formatTime(time.Now()), runID)
	if err != nil {
		return fmt.Errorf("journal finish of %s: %w", runID, err)
	}
	return nil
}

// Recent returns the latest runs, newest first.
func (s *SQLite) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.script, r.chara, r.scene, r.started_at,
		       COALESCE(r.outcome, ''), COALESCE(r.message, ''), COALESCE(r.finished_at, ''),
		       (SELECT COUNT(*) FROM yields y WHERE y.run_id = r.id)
		FROM runs r
		ORDER BY r.started_at DESC, r.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec               RunRecord
			started, finished string
			outcome           string
		)
		if err := rows.Scan(&rec.ID, &rec.Script, &rec.Chara, &rec.Scene, &started,
			&outcome, &rec.Message, &finished, &rec.Yields); err != nil {
			return nil, err
		}
		rec.Outcome = Outcome(outcome)
		rec.StartedAt = parseTime(started)
		rec.FinishedAt = parseTime(finished)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if errors.Is(err, sql.ErrConnDone) {
		return nil
	}
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
