package repository

//go:generate mockgen -destination=mock_repository.go -package=repository drop-auction/internal/repository AuctionDB

import (
	"context"
	"fmt"
	"time"

	"drop-auction/internal/biddingerrors"
	model "drop-auction/internal/models"
)

// ItemStore holds auction items. UpdateItem and FinalizeItem are atomic with
// respect to every other write on the same item.
type ItemStore interface {
	CreateItem(ctx context.Context, item model.AuctionItem) error
	GetItem(ctx context.Context, itemID string) (model.AuctionItem, error)
	UpdateItem(ctx context.Context, itemID string, mutate func(item *model.AuctionItem) error) (model.AuctionItem, error)
	GetItemsByUser(ctx context.Context, userID string) ([]model.AuctionItem, error)
	FinalizeItem(ctx context.Context, f Finalization) (model.AuctionItem, error)
}

// BidStore holds submitted bids
type BidStore interface {
	CreateBid(ctx context.Context, bid model.Bid) error
	GetBid(ctx context.Context, bidID string) (model.Bid, error)
	MarkBidProcessed(ctx context.Context, bidID string, at time.Time) error
	GetBidsByItem(ctx context.Context, itemID string) ([]model.Bid, error)
}

// TimerStore holds one countdown per dropping item
type TimerStore interface {
	SetTimer(ctx context.Context, timer model.CountdownTimer) error
	GetTimer(ctx context.Context, itemID string) (model.CountdownTimer, error)
	UpdateTimerRemaining(ctx context.Context, itemID string, remainingSeconds int64, at time.Time) error
	ListTimers(ctx context.Context) ([]model.CountdownTimer, error)
	// DeleteTimer drops the countdown for an item. Deleting a missing timer is not an error.
	DeleteTimer(ctx context.Context, itemID string) error
}

// UserStore is the identity lookup
type UserStore interface {
	CreateUser(ctx context.Context, user model.User) error
	GetUser(ctx context.Context, userID string) (model.User, error)
}

// InvoiceStore holds invoices awaiting delivery
type InvoiceStore interface {
	CreateInvoice(ctx context.Context, invoice model.Invoice) error
	GetInvoice(ctx context.Context, invoiceID string) (model.Invoice, error)
	MarkInvoiceSent(ctx context.Context, invoiceID string, at time.Time) error
}

// MessageQueue is the outbound message queue read by the mail delivery worker
type MessageQueue interface {
	Enqueue(ctx context.Context, msg model.OutboundMessage) error
	ListMessages(ctx context.Context) ([]model.OutboundMessage, error)
}

// AuctionDB defines the document storage interface for the auction system
type AuctionDB interface {
	ItemStore
	BidStore
	TimerStore
	UserStore
	InvoiceStore
	MessageQueue
}

// Finalization asks the store to close an item in favour of WinnerID.
// The countdown for the item is deleted in the same write.
type Finalization struct {
	ItemID     string
	WinnerID   string
	WinnerName string
	Now        time.Time
}

// ApplyFinalization validates f against the current item and timer and moves
// the item to its terminal status. timer is nil when no countdown exists.
func ApplyFinalization(item *model.AuctionItem, timer *model.CountdownTimer, f Finalization) error {
	if timer == nil || item.Status.Finalized() {
		return fmt.Errorf("finalize item %s: %w", f.ItemID, biddingerrors.ErrTimerNotFound)
	}
	// The item deadline moves before the timer row does when a bid lands, so
	// both must have passed.
	if f.Now.Before(timer.DeadlineAt) || f.Now.Before(item.DeadlineAt) || item.CurrentBidderID != f.WinnerID {
		return fmt.Errorf("finalize item %s: %w", f.ItemID, biddingerrors.ErrDeadlineExtended)
	}
	item.Status = model.ItemStatusOnHold
	item.WinnerID = f.WinnerID
	item.WinnerName = f.WinnerName
	return nil
}

// CheckItemUpdate rejects updates that would lower the price or move the status backwards.
func CheckItemUpdate(before, after model.AuctionItem) error {
	if after.ItemID != before.ItemID {
		return fmt.Errorf("update item %s: item id changed: %w", before.ItemID, biddingerrors.ErrWriteFailed)
	}
	if after.CurrentPrice.LessThan(before.CurrentPrice) {
		return fmt.Errorf("update item %s: price would decrease from %s to %s: %w",
			before.ItemID, before.CurrentPrice, after.CurrentPrice, biddingerrors.ErrWriteFailed)
	}
	if !before.Status.CanAdvanceTo(after.Status) {
		return fmt.Errorf("update item %s: status %q cannot follow %q: %w",
			before.ItemID, after.Status, before.Status, biddingerrors.ErrWriteFailed)
	}
	return nil
}

// CloneItem returns a copy of item that shares no slices with it
func CloneItem(item model.AuctionItem) model.AuctionItem {
	item.BidderIDs = append([]string(nil), item.BidderIDs...)
	return item
}
