package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/runas/internal/journal/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Journal is the run journal backed by a SQLite database file.
type Journal struct {
	db   *sql.DB
	repo *SQLiteRepository
	now  func() time.Time
}

// Open opens (creating if needed) the journal at dsn and applies migrations.
func Open(ctx context.Context, dsn string) (*Journal, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	// a single connection keeps :memory: databases consistent
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating journal: %w", err)
	}
	return &Journal{db: db, repo: NewSQLiteRepository(db), now: time.Now}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Begin records that runID is about to create username.
func (j *Journal) Begin(ctx context.Context, runID, username string) error {
	return j.repo.Create(ctx, runID, username, j.now())
}

// Finish records the outcome of runID.
func (j *Journal) Finish(ctx context.Context, runID, outcome string) error {
	return j.repo.Finish(ctx, runID, outcome, j.now())
}

// Pending returns accounts whose run never recorded an outcome.
func (j *Journal) Pending(ctx context.Context) ([]Entry, error) {
	return j.repo.ListOpen(ctx)
}

// get returns the entry of runID or nil.
func (j *Journal) get(ctx context.Context, runID string) (*Entry, error) {
	return j.repo.Get(ctx, runID)
}

// MarkSwept closes the open entries of usernames in one transaction.
func (j *Journal) MarkSwept(ctx context.Context, usernames []string) (int64, error) {
	var total int64
	at := j.now()
	err := withTx(ctx, j.db, func(tx DBTX) error {
		repo := NewSQLiteRepository(tx)
		for _, u := range usernames {
			n, err := repo.FinishUser(ctx, u, OutcomeSwept, at)
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
