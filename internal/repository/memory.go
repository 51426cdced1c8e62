package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"drop-auction/internal/biddingerrors"
	model "drop-auction/internal/models"
)

var _ AuctionDB = (*MemoryRepo)(nil)

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionDB
type MemoryRepo struct {
	mu        sync.RWMutex
	items     map[string]model.AuctionItem    // key: itemID -> value: item
	bids      map[string]model.Bid            // key: bidID -> value: bid
	itemBids  map[string][]string             // key: itemID -> value: bidIDs in arrival order
	userItems map[string][]string             // key: userID -> value: list of itemIDs user has bid on
	timers    map[string]model.CountdownTimer // key: itemID -> value: countdown
	users     map[string]model.User
	invoices  map[string]model.Invoice
	messages  []model.OutboundMessage
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		items:     make(map[string]model.AuctionItem),
		bids:      make(map[string]model.Bid),
		itemBids:  make(map[string][]string),
		userItems: make(map[string][]string),
		timers:    make(map[string]model.CountdownTimer),
		users:     make(map[string]model.User),
		invoices:  make(map[string]model.Invoice),
	}
}

// CreateItem stores a new item
func (r *MemoryRepo) CreateItem(_ context.Context, item model.AuctionItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.ItemID]; ok {
		return fmt.Errorf("create item %s: %w", item.ItemID, biddingerrors.ErrAlreadyExists)
	}
	if item.Status == "" {
		item.Status = model.ItemStatusOpen
	}
	r.items[item.ItemID] = CloneItem(item)
	for _, userID := range item.BidderIDs {
		r.indexBidder(userID, item.ItemID)
	}
	return nil
}

// GetItem returns a snapshot of an item
func (r *MemoryRepo) GetItem(_ context.Context, itemID string) (model.AuctionItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[itemID]
	if !ok {
		return model.AuctionItem{}, fmt.Errorf("get item %s: %w", itemID, biddingerrors.ErrItemNotFound)
	}
	return CloneItem(item), nil
}

// UpdateItem applies mutate to the stored item while holding the write lock
func (r *MemoryRepo) UpdateItem(_ context.Context, itemID string, mutate func(item *model.AuctionItem) error) (model.AuctionItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	before, ok := r.items[itemID]
	if !ok {
		return model.AuctionItem{}, fmt.Errorf("update item %s: %w", itemID, biddingerrors.ErrItemNotFound)
	}

	after := CloneItem(before)
	if err := mutate(&after); err != nil {
		return model.AuctionItem{}, err
	}
	if err := CheckItemUpdate(before, after); err != nil {
		return model.AuctionItem{}, err
	}

	r.items[itemID] = after
	for _, userID := range after.BidderIDs {
		r.indexBidder(userID, itemID)
	}
	return CloneItem(after), nil
}

// indexBidder must be called with the write lock held
func (r *MemoryRepo) indexBidder(userID, itemID string) {
	for _, id := range r.userItems[userID] {
		if id == itemID {
			return
		}
	}
	r.userItems[userID] = append(r.userItems[userID], itemID)
}

// GetItemsByUser returns all items a user has bid on
func (r *MemoryRepo) GetItemsByUser(_ context.Context, userID string) ([]model.AuctionItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	itemIDs, ok := r.userItems[userID]
	if !ok || len(itemIDs) == 0 {
		return nil, fmt.Errorf("get items for user %s: %w", userID, biddingerrors.ErrUserNoBids)
	}

	items := make([]model.AuctionItem, 0, len(itemIDs))
	for _, id := range itemIDs {
		if item, exists := r.items[id]; exists {
			items = append(items, CloneItem(item))
		}
	}
	return items, nil
}

// FinalizeItem closes the item and deletes its countdown in one step
func (r *MemoryRepo) FinalizeItem(_ context.Context, f Finalization) (model.AuctionItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[f.ItemID]
	if !ok {
		return model.AuctionItem{}, fmt.Errorf("finalize item %s: %w", f.ItemID, biddingerrors.ErrItemNotFound)
	}

	var timer *model.CountdownTimer
	if t, ok := r.timers[f.ItemID]; ok {
		timer = &t
	}

	after := CloneItem(item)
	if err := ApplyFinalization(&after, timer, f); err != nil {
		return model.AuctionItem{}, err
	}

	r.items[f.ItemID] = after
	delete(r.timers, f.ItemID)
	return CloneItem(after), nil
}

// CreateBid records a pending bid
func (r *MemoryRepo) CreateBid(_ context.Context, bid model.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if bid.ItemID == "" {
		return fmt.Errorf("create bid %s: %w", bid.BidID, biddingerrors.ErrInvalidBid)
	}
	if _, ok := r.bids[bid.BidID]; ok {
		return fmt.Errorf("create bid %s: %w", bid.BidID, biddingerrors.ErrAlreadyExists)
	}
	r.bids[bid.BidID] = bid
	r.itemBids[bid.ItemID] = append(r.itemBids[bid.ItemID], bid.BidID)
	return nil
}

// GetBid returns a bid by id
func (r *MemoryRepo) GetBid(_ context.Context, bidID string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bid, ok := r.bids[bidID]
	if !ok {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	return bid, nil
}

// MarkBidProcessed sets the processed status once; later calls keep the first timestamp
func (r *MemoryRepo) MarkBidProcessed(_ context.Context, bidID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bid, ok := r.bids[bidID]
	if !ok {
		return fmt.Errorf("mark bid %s processed: %w", bidID, biddingerrors.ErrBidNotFound)
	}
	if bid.Processed() {
		return nil
	}
	bid.Status = model.BidStatusProcessed
	bid.ProcessedAt = at
	r.bids[bidID] = bid
	return nil
}

// GetBidsByItem returns all bids for an item
func (r *MemoryRepo) GetBidsByItem(_ context.Context, itemID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bidIDs, ok := r.itemBids[itemID]
	if !ok || len(bidIDs) == 0 {
		return nil, fmt.Errorf("get bids for item %s: %w", itemID, biddingerrors.ErrNoBids)
	}
	bids := make([]model.Bid, 0, len(bidIDs))
	for _, id := range bidIDs {
		bids = append(bids, r.bids[id])
	}
	return bids, nil
}

// SetTimer creates or overwrites the countdown for an item
func (r *MemoryRepo) SetTimer(_ context.Context, timer model.CountdownTimer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timers[timer.ItemID] = timer
	return nil
}

// GetTimer returns the countdown for an item
func (r *MemoryRepo) GetTimer(_ context.Context, itemID string) (model.CountdownTimer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	timer, ok := r.timers[itemID]
	if !ok {
		return model.CountdownTimer{}, fmt.Errorf("get timer %s: %w", itemID, biddingerrors.ErrTimerNotFound)
	}
	return timer, nil
}

// UpdateTimerRemaining records countdown progress. A deleted timer is not recreated.
func (r *MemoryRepo) UpdateTimerRemaining(_ context.Context, itemID string, remainingSeconds int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	timer, ok := r.timers[itemID]
	if !ok {
		return fmt.Errorf("update timer %s: %w", itemID, biddingerrors.ErrTimerNotFound)
	}
	timer.RemainingSeconds = remainingSeconds
	timer.UpdatedAt = at
	r.timers[itemID] = timer
	return nil
}

// DeleteTimer drops the countdown for an item
func (r *MemoryRepo) DeleteTimer(_ context.Context, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.timers, itemID)
	return nil
}

// ListTimers returns every running countdown ordered by deadline
func (r *MemoryRepo) ListTimers(_ context.Context) ([]model.CountdownTimer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	timers := make([]model.CountdownTimer, 0, len(r.timers))
	for _, t := range r.timers {
		timers = append(timers, t)
	}
	sort.Slice(timers, func(i, j int) bool { return timers[i].DeadlineAt.Before(timers[j].DeadlineAt) })
	return timers, nil
}

// CreateUser stores an identity record
func (r *MemoryRepo) CreateUser(_ context.Context, user model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.UserID]; ok {
		return fmt.Errorf("create user %s: %w", user.UserID, biddingerrors.ErrAlreadyExists)
	}
	r.users[user.UserID] = user
	return nil
}

// GetUser looks up an identity record
func (r *MemoryRepo) GetUser(_ context.Context, userID string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[userID]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", userID, biddingerrors.ErrUserNotFound)
	}
	return user, nil
}

// CreateInvoice stores a pending invoice
func (r *MemoryRepo) CreateInvoice(_ context.Context, invoice model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.invoices[invoice.InvoiceID]; ok {
		return fmt.Errorf("create invoice %s: %w", invoice.InvoiceID, biddingerrors.ErrAlreadyExists)
	}
	invoice.Items = append([]model.InvoiceLine(nil), invoice.Items...)
	r.invoices[invoice.InvoiceID] = invoice
	return nil
}

// GetInvoice returns an invoice by id
func (r *MemoryRepo) GetInvoice(_ context.Context, invoiceID string) (model.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	invoice, ok := r.invoices[invoiceID]
	if !ok {
		return model.Invoice{}, fmt.Errorf("get invoice %s: %w", invoiceID, biddingerrors.ErrInvoiceNotFound)
	}
	invoice.Items = append([]model.InvoiceLine(nil), invoice.Items...)
	return invoice, nil
}

// MarkInvoiceSent flags an invoice as delivered
func (r *MemoryRepo) MarkInvoiceSent(_ context.Context, invoiceID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	invoice, ok := r.invoices[invoiceID]
	if !ok {
		return fmt.Errorf("mark invoice %s sent: %w", invoiceID, biddingerrors.ErrInvoiceNotFound)
	}
	invoice.Status = model.InvoiceStatusSent
	invoice.SentAt = at
	r.invoices[invoiceID] = invoice
	return nil
}

// Enqueue appends a message to the outbound queue
func (r *MemoryRepo) Enqueue(_ context.Context, msg model.OutboundMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, msg)
	return nil
}

// ListMessages returns queued messages in enqueue order
func (r *MemoryRepo) ListMessages(_ context.Context) ([]model.OutboundMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.OutboundMessage(nil), r.messages...), nil
}
