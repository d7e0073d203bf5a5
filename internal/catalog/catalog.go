package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB is the run catalog: one row per source per collection run, recording
// where the capture landed and how the run went. The lake files stay the
// source of truth; the catalog exists for history and status reporting.
type DB struct {
	pool *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs(
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	source       TEXT NOT NULL,
	started_at   TEXT NOT NULL,
	raw_path     TEXT NOT NULL DEFAULT '',
	processed_path TEXT NOT NULL DEFAULT '',
	rows         INTEGER NOT NULL DEFAULT 0,
	failed_pages INTEGER NOT NULL DEFAULT 0,
	error        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_source ON runs(source, started_at);
`

func Open(path string) (*DB, error) {
	// modernc sqlite DSN: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	pool, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	pool.SetMaxOpenConns(1) // sqlite wants a single writer
	pool.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	if _, err := pool.ExecContext(ctx, schema); err != nil {
		_ = pool.Close()
		return nil, err
	}

	return &DB{pool: pool}, nil
}

func (d *DB) Close() error {
	if d == nil || d.pool == nil {
		return nil
	}
	return d.pool.Close()
}

type Run struct {
	ID            int64
	Source        string
	StartedAt     time.Time
	RawPath       string
	ProcessedPath string
	Rows          int64
	FailedPages   int
	Error         string
}

func (d *DB) RecordRun(ctx context.Context, r Run) error {
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now().UTC()
	}
	_, err := d.pool.ExecContext(ctx, `
INSERT INTO runs(source, started_at, raw_path, processed_path, rows, failed_pages, error)
VALUES(?,?,?,?,?,?,?);`,
		r.Source,
		r.StartedAt.UTC().Format(time.RFC3339),
		r.RawPath,
		r.ProcessedPath,
		r.Rows,
		r.FailedPages,
		r.Error,
	)
	return err
}

// History returns the most recent runs for a source, newest first.
func (d *DB) History(ctx context.Context, source string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.pool.QueryContext(ctx, `
SELECT id, source, started_at, raw_path, processed_path, rows, failed_pages, error
FROM runs
WHERE source = ?
ORDER BY started_at DESC, id DESC
LIMIT ?;`, source, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &r.Source, &started, &r.RawPath, &r.ProcessedPath, &r.Rows, &r.FailedPages, &r.Error); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, started); err == nil {
			r.StartedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
