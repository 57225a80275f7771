package journal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func countAccounts(t *testing.T, j *Journal) int {
	t.Helper()
	var n int
	require.NoError(t, j.db.QueryRow(`SELECT COUNT(*) FROM accounts`).Scan(&n))
	return n
}

func TestWithTx_RollbackOnError(t *testing.T) {
	j := openTest(t)
	ctx := context.Background()

	err := withTx(ctx, j.db, func(tx DBTX) error {
		require.NoError(t, NewSQLiteRepository(tx).Create(ctx, "run-1", "u1", j.now()))
		return errors.New("boom")
	})
	require.Error(t, err)
	require.Equal(t, 0, countAccounts(t, j))
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	j := openTest(t)
	ctx := context.Background()

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, countAccounts(t, j))
	}()

	_ = withTx(ctx, j.db, func(tx DBTX) error {
		require.NoError(t, NewSQLiteRepository(tx).Create(ctx, "run-1", "u1", j.now()))
		panic("kaput")
	})
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	j := openTest(t)
	ctx := context.Background()

	err := withTx(ctx, j.db, func(tx DBTX) error {
		return NewSQLiteRepository(tx).Create(ctx, "run-1", "u1", j.now())
	})
	require.NoError(t, err)
	require.Equal(t, 1, countAccounts(t, j))
}
