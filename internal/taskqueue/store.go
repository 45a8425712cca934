// Package taskqueue is a small named-task queue service used in place of a
// managed queue during local development. A task is accepted at most once
// per name; at its fire instant the queue POSTs the stored request to the
// task's target.
package taskqueue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrDuplicateName reports that a task with this name was accepted earlier.
var ErrDuplicateName = errors.New("taskqueue: task name already exists")

// EnsureSchema creates tables if they don't exist.
func EnsureSchema(db *sql.DB) error {
	schema := `
PRAGMA journal_mode=WAL;
CREATE TABLE IF NOT EXISTS tasks (
  name TEXT PRIMARY KEY,
  url TEXT NOT NULL,
  method TEXT NOT NULL DEFAULT 'POST',
  headers TEXT NOT NULL DEFAULT '{}',
  body BLOB,
  fire_at INTEGER NOT NULL,
  state TEXT NOT NULL CHECK(state IN ('pending','delivering','delivered','failed')) DEFAULT 'pending',
  attempts INTEGER NOT NULL DEFAULT 0,
  last_error TEXT,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(state, fire_at);
`
	_, err := db.Exec(schema)
	return err
}

// Record is one stored task. FireAt is a Unix timestamp in whole seconds.
type Record struct {
	Name      string
	URL       string
	Method    string
	Headers   map[string]string
	Body      []byte
	FireAt    int64
	State     string
	Attempts  int
	LastError *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Store interface {
	Insert(ctx context.Context, rec Record) error
	Get(ctx context.Context, name string) (Record, error)
	LeaseDue(ctx context.Context, now time.Time, limit int) ([]Record, error)
	MarkDelivered(ctx context.Context, name string) error
	MarkFailed(ctx context.Context, name, errStr string, nextFireAt int64, maxAttempts int) error
	RecoverStale(ctx context.Context) (int, error)
}

type sqliteStore struct{ db *sql.DB }

func NewSQLiteStore(db *sql.DB) Store { return &sqliteStore{db: db} }

// Insert accepts a task. The name is the at-most-once guarantee: a second
// insert under the same name changes nothing and reports ErrDuplicateName.
func (s *sqliteStore) Insert(ctx context.Context, rec Record) error {
	headers, err := json.Marshal(rec.Headers)
	if err != nil {
		return fmt.Errorf("marshal headers: %w", err)
	}
	if rec.Method == "" {
		rec.Method = "POST"
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO tasks (name,url,method,headers,body,fire_at,state,attempts,created_at,updated_at)
VALUES (?,?,?,?,?,?, 'pending',0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
ON CONFLICT(name) DO NOTHING
`, rec.Name, rec.URL, rec.Method, string(headers), rec.Body, rec.FireAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicateName
	}
	return nil
}

func (s *sqliteStore) Get(ctx context.Context, name string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT name,url,method,headers,body,fire_at,state,attempts,last_error,created_at,updated_at
FROM tasks WHERE name=?`, name)
	return scanRecord(row)
}

// LeaseDue moves up to limit due pending tasks to 'delivering' and returns
// them. The serializable transaction keeps two pollers from leasing the
// same task.
func (s *sqliteStore) LeaseDue(ctx context.Context, now time.Time, limit int) ([]Record, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, `
SELECT name,url,method,headers,body,fire_at,state,attempts,last_error,created_at,updated_at
FROM tasks
WHERE state='pending' AND fire_at <= ?
ORDER BY fire_at ASC
LIMIT ?`, now.Unix(), limit)
	if err != nil {
		return nil, err
	}

	var due []Record
	for rows.Next() {
		rec, scanErr := scanRecord(rows)
		if scanErr != nil {
			rows.Close()
			err = scanErr
			return nil, err
		}
		due = append(due, rec)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	for _, rec := range due {
		if _, err = tx.ExecContext(ctx,
			`UPDATE tasks SET state='delivering', updated_at=CURRENT_TIMESTAMP WHERE name=?`, rec.Name); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return due, nil
}

func (s *sqliteStore) MarkDelivered(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET state='delivered', attempts=attempts+1, updated_at=CURRENT_TIMESTAMP WHERE name=?`, name)
	return err
}

// MarkFailed counts the attempt and either requeues the task for nextFireAt
// or, once attempts reach maxAttempts, parks it as failed.
func (s *sqliteStore) MarkFailed(ctx context.Context, name, errStr string, nextFireAt int64, maxAttempts int) error {
	_, err := s.db.ExecContext(ctx, `
UPDATE tasks
SET attempts = attempts + 1,
    state = CASE WHEN attempts + 1 >= ? THEN 'failed' ELSE 'pending' END,
    fire_at = CASE WHEN attempts + 1 >= ? THEN fire_at ELSE ? END,
    last_error = ?,
    updated_at = CURRENT_TIMESTAMP
WHERE name = ?`, maxAttempts, maxAttempts, nextFireAt, errStr, name)
	return err
}

// RecoverStale requeues tasks stuck in 'delivering', e.g. after a crash
// mid-delivery. Stuck means no state change for over a minute.
func (s *sqliteStore) RecoverStale(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE tasks
SET state='pending', updated_at=CURRENT_TIMESTAMP
WHERE state='delivering' AND strftime('%s','now') - strftime('%s',updated_at) > 60`)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (Record, error) {
	var rec Record
	var headers string
	var lastErr sql.NullString
	err := row.Scan(&rec.Name, &rec.URL, &rec.Method, &headers, &rec.Body, &rec.FireAt,
		&rec.State, &rec.Attempts, &lastErr, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return Record{}, err
	}
	if headers != "" {
		if err := json.Unmarshal([]byte(headers), &rec.Headers); err != nil {
			return Record{}, fmt.Errorf("unmarshal headers: %w", err)
		}
	}
	if lastErr.Valid {
		rec.LastError = &lastErr.String
	}
	return rec, nil
}
