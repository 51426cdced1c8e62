// Package repotest holds behaviour checks shared by every AuctionDB backend.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"drop-auction/internal/biddingerrors"
	model "drop-auction/internal/models"
	"drop-auction/internal/repository"
)

// NewItem builds an open item priced at price
func NewItem(itemID, name string, price int64) model.AuctionItem {
	return model.AuctionItem{
		ItemID:       itemID,
		Name:         name,
		CurrentPrice: decimal.NewFromInt(price),
		Status:       model.ItemStatusOpen,
	}
}

// NewBid builds a pending bid
func NewBid(bidID, itemID, userID string, amount int64, createdAt time.Time) model.Bid {
	return model.Bid{
		BidID:     bidID,
		ItemID:    itemID,
		UserID:    userID,
		Amount:    decimal.NewFromInt(amount),
		Status:    model.BidStatusPending,
		CreatedAt: createdAt.Truncate(time.Millisecond),
	}
}

// Run exercises db through the whole AuctionDB contract. newDB must return an
// empty store each time it is called.
func Run(t *testing.T, newDB func(t *testing.T) repository.AuctionDB) {
	t.Run("items", func(t *testing.T) { testItems(t, newDB(t)) })
	t.Run("update_item", func(t *testing.T) { testUpdateItem(t, newDB(t)) })
	t.Run("concurrent_updates", func(t *testing.T) { testConcurrentUpdates(t, newDB(t)) })
	t.Run("finalize", func(t *testing.T) { testFinalize(t, newDB(t)) })
	t.Run("finalize_after_leader_raises", func(t *testing.T) { testFinalizeAfterLeaderRaises(t, newDB(t)) })
	t.Run("bids", func(t *testing.T) { testBids(t, newDB(t)) })
	t.Run("timers", func(t *testing.T) { testTimers(t, newDB(t)) })
	t.Run("users", func(t *testing.T) { testUsers(t, newDB(t)) })
	t.Run("invoices", func(t *testing.T) { testInvoices(t, newDB(t)) })
	t.Run("messages", func(t *testing.T) { testMessages(t, newDB(t)) })
}

func testItems(t *testing.T, db repository.AuctionDB) {
	ctx := context.Background()

	require.NoError(t, db.CreateItem(ctx, NewItem("item1", "Lamp", 100)))
	require.NoError(t, db.CreateItem(ctx, model.AuctionItem{ItemID: "item2", Name: "Chair", CurrentPrice: decimal.NewFromInt(5)}))
	require.ErrorIs(t, db.CreateItem(ctx, NewItem("item1", "Lamp", 100)), biddingerrors.ErrAlreadyExists)

	got, err := db.GetItem(ctx, "item1")
	require.NoError(t, err)
	require.Equal(t, "Lamp", got.Name)
	require.True(t, got.CurrentPrice.Equal(decimal.NewFromInt(100)))
	require.Equal(t, model.ItemStatusOpen, got.Status)

	got, err = db.GetItem(ctx, "item2")
	require.NoError(t, err)
	require.Equal(t, model.ItemStatusOpen, got.Status, "empty status defaults to open")

	_, err = db.GetItem(ctx, "missing")
	require.ErrorIs(t, err, biddingerrors.ErrItemNotFound)

	_, err = db.GetItemsByUser(ctx, "nobody")
	require.ErrorIs(t, err, biddingerrors.ErrUserNoBids)
}

func testUpdateItem(t *testing.T, db repository.AuctionDB) {
	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond)
	require.NoError(t, db.CreateItem(ctx, NewItem("item1", "Lamp", 100)))
	require.NoError(t, db.CreateItem(ctx, NewItem("item2", "Desk", 10)))

	tests := []struct {
		name    string
		itemID  string
		mutate  func(item *model.AuctionItem) error
		wantErr error
	}{
		{
			name:   "raise_price_and_add_bidder",
			itemID: "item1",
			mutate: func(item *model.AuctionItem) error {
				item.AddBidder("alice")
				item.CurrentPrice = decimal.NewFromInt(150)
				item.CurrentBidderID = "alice"
				item.LeadingBidID = "bid1"
				item.Status = model.ItemStatusDropping
				item.LastActivityAt = now
				item.DeadlineAt = now.Add(30 * time.Second)
				return nil
			},
		},
		{
			name:   "price_decrease_rejected",
			itemID: "item1",
			mutate: func(item *model.AuctionItem) error {
				item.CurrentPrice = decimal.NewFromInt(120)
				return nil
			},
			wantErr: biddingerrors.ErrWriteFailed,
		},
		{
			name:   "status_regression_rejected",
			itemID: "item1",
			mutate: func(item *model.AuctionItem) error {
				item.Status = model.ItemStatusOpen
				return nil
			},
			wantErr: biddingerrors.ErrWriteFailed,
		},
		{
			name:   "mutate_error_propagates",
			itemID: "item2",
			mutate: func(item *model.AuctionItem) error {
				return biddingerrors.ErrInvalidBid
			},
			wantErr: biddingerrors.ErrInvalidBid,
		},
		{
			name:    "missing_item",
			itemID:  "missing",
			mutate:  func(item *model.AuctionItem) error { return nil },
			wantErr: biddingerrors.ErrItemNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := db.UpdateItem(ctx, tc.itemID, tc.mutate)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	got, err := db.GetItem(ctx, "item1")
	require.NoError(t, err)
	require.True(t, got.CurrentPrice.Equal(decimal.NewFromInt(150)))
	require.Equal(t, "alice", got.CurrentBidderID)
	require.Equal(t, "bid1", got.LeadingBidID)
	require.Equal(t, []string{"alice"}, got.BidderIDs)
	require.Equal(t, model.ItemStatusDropping, got.Status)
	require.True(t, got.DeadlineAt.Equal(now.Add(30*time.Second)))

	items, err := db.GetItemsByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "item1", items[0].ItemID)
}

func testConcurrentUpdates(t *testing.T, db repository.AuctionDB) {
	ctx := context.Background()
	require.NoError(t, db.CreateItem(ctx, NewItem("item1", "Lamp", 0)))

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		i := i
		go func() {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i)
			amount := decimal.NewFromInt(int64(100 + i))
			_, err := db.UpdateItem(ctx, "item1", func(item *model.AuctionItem) error {
				item.AddBidder(userID)
				if amount.GreaterThan(item.CurrentPrice) {
					item.CurrentPrice = amount
					item.CurrentBidderID = userID
				}
				return nil
			})
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := db.GetItem(ctx, "item1")
	require.NoError(t, err)
	require.True(t, got.CurrentPrice.Equal(decimal.NewFromInt(100+writers-1)))
	require.Equal(t, fmt.Sprintf("user-%d", writers-1), got.CurrentBidderID)
	require.Len(t, got.BidderIDs, writers)
}

func testFinalize(t *testing.T, db repository.AuctionDB) {
	ctx := context.Background()
	deadline := time.Now().Truncate(time.Millisecond)

	setup := func(itemID string) {
		require.NoError(t, db.CreateItem(ctx, NewItem(itemID, "Lamp", 0)))
		_, err := db.UpdateItem(ctx, itemID, func(item *model.AuctionItem) error {
			item.AddBidder("alice")
			item.CurrentPrice = decimal.NewFromInt(100)
			item.CurrentBidderID = "alice"
			item.Status = model.ItemStatusDropping
			item.DeadlineAt = deadline
			return nil
		})
		require.NoError(t, err)
		require.NoError(t, db.SetTimer(ctx, model.CountdownTimer{ItemID: itemID, DeadlineAt: deadline}))
	}

	setup("item1")
	setup("item2")
	setup("item3")
	require.NoError(t, db.CreateItem(ctx, NewItem("item4", "Rug", 0)))

	tests := []struct {
		name    string
		f       repository.Finalization
		wantErr error
	}{
		{name: "before_deadline", f: repository.Finalization{ItemID: "item2", WinnerID: "alice", Now: deadline.Add(-time.Second)}, wantErr: biddingerrors.ErrDeadlineExtended},
		{name: "leader_changed", f: repository.Finalization{ItemID: "item3", WinnerID: "bob", Now: deadline}, wantErr: biddingerrors.ErrDeadlineExtended},
		{name: "no_timer", f: repository.Finalization{ItemID: "item4", WinnerID: "alice", Now: deadline}, wantErr: biddingerrors.ErrTimerNotFound},
		{name: "missing_item", f: repository.Finalization{ItemID: "missing", WinnerID: "alice", Now: deadline}, wantErr: biddingerrors.ErrItemNotFound},
		{name: "expired", f: repository.Finalization{ItemID: "item1", WinnerID: "alice", WinnerName: "Alice Smith", Now: deadline}},
		{name: "second_finalize", f: repository.Finalization{ItemID: "item1", WinnerID: "alice", Now: deadline}, wantErr: biddingerrors.ErrTimerNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			item, err := db.FinalizeItem(ctx, tc.f)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, model.ItemStatusOnHold, item.Status)
			require.Equal(t, "alice", item.WinnerID)
			require.Equal(t, "Alice Smith", item.WinnerName)
		})
	}

	_, err := db.GetTimer(ctx, "item1")
	require.ErrorIs(t, err, biddingerrors.ErrTimerNotFound, "finalization deletes the countdown")

	_, err = db.GetTimer(ctx, "item2")
	require.NoError(t, err, "rejected finalization keeps the countdown")
}

// A leader outbidding themselves moves the item deadline before the countdown
// row is rewritten. Finalizing in that gap must not close the item.
func testFinalizeAfterLeaderRaises(t *testing.T, db repository.AuctionDB) {
	ctx := context.Background()
	expired := time.Now().Add(-time.Second).Truncate(time.Millisecond)
	extended := expired.Add(30 * time.Second)

	require.NoError(t, db.CreateItem(ctx, NewItem("item1", "Lamp", 0)))
	_, err := db.UpdateItem(ctx, "item1", func(item *model.AuctionItem) error {
		item.AddBidder("alice")
		item.CurrentPrice = decimal.NewFromInt(150)
		item.CurrentBidderID = "alice"
		item.LeadingBidID = "bid1"
		item.Status = model.ItemStatusDropping
		item.DeadlineAt = expired
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, db.SetTimer(ctx, model.CountdownTimer{ItemID: "item1", DeadlineAt: expired}))

	_, err = db.UpdateItem(ctx, "item1", func(item *model.AuctionItem) error {
		item.CurrentPrice = decimal.NewFromInt(200)
		item.LeadingBidID = "bid2"
		item.DeadlineAt = extended
		return nil
	})
	require.NoError(t, err)

	_, err = db.FinalizeItem(ctx, repository.Finalization{ItemID: "item1", WinnerID: "alice", Now: expired.Add(time.Second)})
	require.ErrorIs(t, err, biddingerrors.ErrDeadlineExtended)

	require.NoError(t, db.SetTimer(ctx, model.CountdownTimer{ItemID: "item1", DeadlineAt: extended}))

	item, err := db.GetItem(ctx, "item1")
	require.NoError(t, err)
	require.Equal(t, model.ItemStatusDropping, item.Status)
	require.Empty(t, item.WinnerID)
	timer, err := db.GetTimer(ctx, "item1")
	require.NoError(t, err)
	require.True(t, timer.DeadlineAt.Equal(item.DeadlineAt))

	item, err = db.FinalizeItem(ctx, repository.Finalization{ItemID: "item1", WinnerID: "alice", Now: extended})
	require.NoError(t, err)
	require.Equal(t, model.ItemStatusOnHold, item.Status)
}

func testBids(t *testing.T, db repository.AuctionDB) {
	ctx := context.Background()
	now := time.Now()

	bid1 := NewBid("bid1", "item1", "alice", 100, now)
	bid2 := NewBid("bid2", "item1", "bob", 150, now.Add(time.Millisecond))
	require.NoError(t, db.CreateBid(ctx, bid1))
	require.NoError(t, db.CreateBid(ctx, bid2))
	require.ErrorIs(t, db.CreateBid(ctx, bid1), biddingerrors.ErrAlreadyExists)
	require.ErrorIs(t, db.CreateBid(ctx, NewBid("bid3", "", "alice", 1, now)), biddingerrors.ErrInvalidBid)

	got, err := db.GetBid(ctx, "bid1")
	require.NoError(t, err)
	require.Equal(t, model.BidStatusPending, got.Status)
	require.True(t, got.Amount.Equal(decimal.NewFromInt(100)))
	require.False(t, got.Processed())

	_, err = db.GetBid(ctx, "missing")
	require.ErrorIs(t, err, biddingerrors.ErrBidNotFound)

	first := now.Add(time.Second).Truncate(time.Millisecond)
	require.NoError(t, db.MarkBidProcessed(ctx, "bid1", first))
	require.NoError(t, db.MarkBidProcessed(ctx, "bid1", first.Add(time.Minute)))
	got, err = db.GetBid(ctx, "bid1")
	require.NoError(t, err)
	require.True(t, got.Processed())
	require.True(t, got.ProcessedAt.Equal(first), "processed timestamp is written once")

	require.ErrorIs(t, db.MarkBidProcessed(ctx, "missing", now), biddingerrors.ErrBidNotFound)

	bids, err := db.GetBidsByItem(ctx, "item1")
	require.NoError(t, err)
	require.Len(t, bids, 2)
	require.Equal(t, "bid1", bids[0].BidID)
	require.Equal(t, "bid2", bids[1].BidID)

	_, err = db.GetBidsByItem(ctx, "item2")
	require.ErrorIs(t, err, biddingerrors.ErrNoBids)
}

func testTimers(t *testing.T, db repository.AuctionDB) {
	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond)

	_, err := db.GetTimer(ctx, "item1")
	require.ErrorIs(t, err, biddingerrors.ErrTimerNotFound)
	require.ErrorIs(t, db.UpdateTimerRemaining(ctx, "item1", 10, now), biddingerrors.ErrTimerNotFound)

	require.NoError(t, db.SetTimer(ctx, model.CountdownTimer{ItemID: "item1", DeadlineAt: now.Add(30 * time.Second), RemainingSeconds: 30, UpdatedAt: now}))
	require.NoError(t, db.SetTimer(ctx, model.CountdownTimer{ItemID: "item2", DeadlineAt: now.Add(10 * time.Second), RemainingSeconds: 10, UpdatedAt: now}))

	// overwrite extends the deadline
	require.NoError(t, db.SetTimer(ctx, model.CountdownTimer{ItemID: "item1", DeadlineAt: now.Add(60 * time.Second), RemainingSeconds: 60, UpdatedAt: now}))

	require.NoError(t, db.UpdateTimerRemaining(ctx, "item1", 58, now.Add(2*time.Second)))
	timer, err := db.GetTimer(ctx, "item1")
	require.NoError(t, err)
	require.Equal(t, int64(58), timer.RemainingSeconds)
	require.True(t, timer.DeadlineAt.Equal(now.Add(60*time.Second)))
	require.True(t, timer.UpdatedAt.Equal(now.Add(2*time.Second)))

	timers, err := db.ListTimers(ctx)
	require.NoError(t, err)
	require.Len(t, timers, 2)
	require.Equal(t, "item2", timers[0].ItemID)
	require.Equal(t, "item1", timers[1].ItemID)

	require.NoError(t, db.DeleteTimer(ctx, "item2"))
	require.NoError(t, db.DeleteTimer(ctx, "item2"), "deleting a missing timer is a no-op")
	_, err = db.GetTimer(ctx, "item2")
	require.ErrorIs(t, err, biddingerrors.ErrTimerNotFound)
	timers, err = db.ListTimers(ctx)
	require.NoError(t, err)
	require.Len(t, timers, 1)
}

func testUsers(t *testing.T, db repository.AuctionDB) {
	ctx := context.Background()
	alice := model.User{UserID: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Smith"}

	require.NoError(t, db.CreateUser(ctx, alice))
	require.ErrorIs(t, db.CreateUser(ctx, alice), biddingerrors.ErrAlreadyExists)

	got, err := db.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, alice, got)

	_, err = db.GetUser(ctx, "bob")
	require.ErrorIs(t, err, biddingerrors.ErrUserNotFound)
}

func testInvoices(t *testing.T, db repository.AuctionDB) {
	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond)
	invoice := model.Invoice{
		InvoiceID: "inv1",
		UserID:    "alice",
		Items:     []model.InvoiceLine{{ItemID: "item1", Name: "Lamp"}, {ItemID: "item2", Name: "Chair"}},
		Status:    model.InvoiceStatusPending,
		CreatedAt: now,
	}

	require.NoError(t, db.CreateInvoice(ctx, invoice))
	require.ErrorIs(t, db.CreateInvoice(ctx, invoice), biddingerrors.ErrAlreadyExists)

	got, err := db.GetInvoice(ctx, "inv1")
	require.NoError(t, err)
	require.Equal(t, invoice.Items, got.Items)
	require.Equal(t, model.InvoiceStatusPending, got.Status)

	require.NoError(t, db.MarkInvoiceSent(ctx, "inv1", now.Add(time.Second)))
	got, err = db.GetInvoice(ctx, "inv1")
	require.NoError(t, err)
	require.Equal(t, model.InvoiceStatusSent, got.Status)
	require.True(t, got.SentAt.Equal(now.Add(time.Second)))

	_, err = db.GetInvoice(ctx, "missing")
	require.ErrorIs(t, err, biddingerrors.ErrInvoiceNotFound)
	require.ErrorIs(t, db.MarkInvoiceSent(ctx, "missing", now), biddingerrors.ErrInvoiceNotFound)
}

func testMessages(t *testing.T, db repository.AuctionDB) {
	ctx := context.Background()
	now := time.Now().Truncate(time.Millisecond)

	msgs, err := db.ListMessages(ctx)
	require.NoError(t, err)
	require.Empty(t, msgs)

	first := model.OutboundMessage{MessageID: "m1", To: "alice@example.com", From: "Dropmaster <dropmaster@example.com>", Subject: "Winning bid", Body: "<p>hi</p>", EnqueuedAt: now}
	second := first
	second.MessageID = "m2"
	second.Subject = "Invoice"
	second.EnqueuedAt = now.Add(time.Millisecond)

	require.NoError(t, db.Enqueue(ctx, first))
	require.NoError(t, db.Enqueue(ctx, second))

	msgs, err = db.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "m1", msgs[0].MessageID)
	require.Equal(t, "Winning bid", msgs[0].Subject)
	require.Equal(t, "m2", msgs[1].MessageID)
	require.True(t, msgs[1].EnqueuedAt.Equal(second.EnqueuedAt))
}
