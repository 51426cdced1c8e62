package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	model "drop-auction/internal/models"
	"drop-auction/internal/repository"
	"drop-auction/internal/repository/repotest"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "auction.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_Contract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.AuctionDB {
		return newTestStore(t)
	})
}

func TestStore_ReopenKeepsState(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "auction.db")

	store, err := New(path)
	require.NoError(t, err)
	require.NoError(t, store.CreateItem(ctx, repotest.NewItem("item1", "Lamp", 100)))
	_, err = store.UpdateItem(ctx, "item1", func(item *model.AuctionItem) error {
		item.AddBidder("alice")
		item.AddBidder("bob")
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := New(path)
	require.NoError(t, err)
	defer reopened.Close()

	item, err := reopened.GetItem(ctx, "item1")
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, item.BidderIDs)
	require.Equal(t, "100", item.CurrentPrice.String())
}

func TestStore_InMemory(t *testing.T) {
	store, err := New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.CreateUser(context.Background(), model.User{UserID: "alice", Email: "a@example.com"}))
	user, err := store.GetUser(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, "a@example.com", user.Email)
}
