package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Outcomes recorded when a run finishes.
const (
	OutcomeOK            = "ok"
	OutcomeFailed        = "failed"
	OutcomeCleanupFailed = "cleanup_failed"
	OutcomeSwept         = "swept"
)

// Entry is one temporary account.
type Entry struct {
	RunID      string
	Username   string
	CreatedAt  time.Time
	FinishedAt *time.Time
	Outcome    string
}

// SQLiteRepository stores entries in the accounts table.
type SQLiteRepository struct {
	db DBTX
}

func NewSQLiteRepository(db DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, runID, username string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (run_id, username, created_at) VALUES (?, ?, ?)`,
		runID, username, formatTime(at))
	if err != nil {
		return fmt.Errorf("failed to record account %s: %w", username, err)
	}
	return nil
}

func (r *SQLiteRepository) Finish(ctx context.Context, runID, outcome string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET finished_at = ?, outcome = ? WHERE run_id = ?`,
		formatTime(at), outcome, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", runID, err)
	}
	return nil
}

// FinishUser closes every open entry of username and returns how many were
// closed.
func (r *SQLiteRepository) FinishUser(ctx context.Context, username, outcome string, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET finished_at = ?, outcome = ? WHERE username = ? AND finished_at IS NULL`,
		formatTime(at), outcome, username)
	if err != nil {
		return 0, fmt.Errorf("failed to finish entries of %s: %w", username, err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) Get(ctx context.Context, runID string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT run_id, username, created_at, finished_at, outcome FROM accounts WHERE run_id = ?`, runID)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", runID, err)
	}
	return e, nil
}

// ListOpen returns entries that never recorded an outcome, oldest first.
func (r *SQLiteRepository) ListOpen(ctx context.Context) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, username, created_at, finished_at, outcome FROM accounts
		 WHERE finished_at IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list open accounts: %w", err)
	}
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account rows: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		e          Entry
		createdAt  string
		finishedAt sql.NullString
		outcome    sql.NullString
	)
	if err := s.Scan(&e.RunID, &e.Username, &createdAt, &finishedAt, &outcome); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = t
	if finishedAt.Valid {
		ft, err := time.Parse(time.RFC3339Nano, finishedAt.String)
		if err != nil {
			return nil, err
		}
		e.FinishedAt = &ft
	}
	e.Outcome = outcome.String
	return &e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
