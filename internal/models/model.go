package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus is the lifecycle state of an auction item
type ItemStatus string

const (
	ItemStatusOpen     ItemStatus = "Open"
	ItemStatusDropping ItemStatus = "Dropping"
	ItemStatusOnHold   ItemStatus = "On Hold"
)

func (s ItemStatus) rank() int {
	switch s {
	case ItemStatusOpen, "":
		return 0
	case ItemStatusDropping:
		return 1
	case ItemStatusOnHold:
		return 2
	default:
		return -1
	}
}

// CanAdvanceTo reports whether moving from s to next keeps the status monotonic.
func (s ItemStatus) CanAdvanceTo(next ItemStatus) bool {
	return next.rank() >= s.rank() && next.rank() >= 0
}

// Finalized reports whether the auction for the item is over.
func (s ItemStatus) Finalized() bool {
	return s == ItemStatusOnHold
}

// BidStatus is the processing state of a bid
type BidStatus string

const (
	BidStatusPending   BidStatus = "Pending"
	BidStatusProcessed BidStatus = "Processed"
)

// InvoiceStatus is the delivery state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "Pending"
	InvoiceStatusSent    InvoiceStatus = "Sent"
)

// User is the identity record of an auction participant
type User struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName joins first and last name, with a space only when both are set.
func (u User) DisplayName() string {
	if u.FirstName != "" && u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName + u.LastName
}

// AuctionItem represents an item being dropped
type AuctionItem struct {
	ItemID          string          `json:"item_id"`
	Name            string          `json:"name"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	CurrentBidderID string          `json:"current_bidder_id,omitempty"`
	LeadingBidID    string          `json:"leading_bid_id,omitempty"`
	BidderIDs       []string        `json:"bidder_ids"`
	Status          ItemStatus      `json:"status"`
	LastActivityAt  time.Time       `json:"last_activity_at,omitempty"`
	DeadlineAt      time.Time       `json:"deadline_at,omitempty"`
	WinnerID        string          `json:"winner_id,omitempty"`
	WinnerName      string          `json:"winner_name,omitempty"`
}

// AddBidder records userID in the bidder set. It returns false if already present.
func (i *AuctionItem) AddBidder(userID string) bool {
	if i.HasBidder(userID) {
		return false
	}
	i.BidderIDs = append(i.BidderIDs, userID)
	return true
}

// HasBidder reports whether userID has bid on the item
func (i AuctionItem) HasBidder(userID string) bool {
	for _, id := range i.BidderIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Bid represents a user's bid on an item
type Bid struct {
	BidID       string          `json:"bid_id"`
	ItemID      string          `json:"item_id"`
	UserID      string          `json:"user_id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      BidStatus       `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt time.Time       `json:"processed_at,omitempty"`
}

// Processed reports whether the bid has already been arbitrated
func (b Bid) Processed() bool {
	return b.Status == BidStatusProcessed
}

// CountdownTimer tracks the closing deadline of an item while it is dropping
type CountdownTimer struct {
	ItemID           string    `json:"item_id"`
	DeadlineAt       time.Time `json:"deadline_at"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// RemainingSeconds is the whole number of seconds left until deadline, never negative.
func RemainingSeconds(deadline, now time.Time) int64 {
	if !now.Before(deadline) {
		return 0
	}
	return int64(deadline.Sub(now) / time.Second)
}

// InvoiceLine is a single item billed on an invoice
type InvoiceLine struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
}

// Invoice bills a user for items won
type Invoice struct {
	InvoiceID string        `json:"invoice_id"`
	UserID    string        `json:"user_id"`
	Items     []InvoiceLine `json:"items"`
	Status    InvoiceStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	SentAt    time.Time     `json:"sent_at,omitempty"`
}

// OutboundMessage is an email queued for the delivery collaborator
type OutboundMessage struct {
	MessageID  string    `json:"message_id"`
	To         string    `json:"to"`
	From       string    `json:"from"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// BidOutcome describes what arbitration decided for a bid
type BidOutcome string

const (
	BidOutcomeLeading   BidOutcome = "leading"
	BidOutcomeOutbid    BidOutcome = "outbid"
	BidOutcomeClosed    BidOutcome = "closed"
	BidOutcomeDuplicate BidOutcome = "duplicate"
)

// BidResult is the result of arbitrating one bid
type BidResult struct {
	BidID        string          `json:"bid_id"`
	ItemID       string          `json:"item_id"`
	Outcome      BidOutcome      `json:"outcome"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	DeadlineAt   time.Time       `json:"deadline_at,omitempty"`
}

// Leading reports whether the bid holds the lead and armed the countdown
func (r BidResult) Leading() bool {
	return r.Outcome == BidOutcomeLeading
}
