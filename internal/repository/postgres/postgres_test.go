package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"drop-auction/internal/repository"
	"drop-auction/internal/repository/repotest"
)

// AUCTION_TEST_POSTGRES_DSN points at a disposable database; its tables are truncated.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("AUCTION_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("AUCTION_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	_, err = store.pool.Exec(ctx,
		`TRUNCATE items, item_bidders, bids, timers, users, invoices, messages RESTART IDENTITY`)
	require.NoError(t, err)
	return store
}

func TestStore_Contract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.AuctionDB {
		return newTestStore(t)
	})
}
