package helpers

import (
	"time"

	"github.com/shopspring/decimal"

	"drop-auction/internal/models"
)

// Request/Response DTOs
type PlaceBidRequest struct {
	ItemID string          `json:"item_id" binding:"required"`
	UserID string          `json:"user_id" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required,gt=0"`
}

type BidResponse struct {
	BidID        string          `json:"bid_id"`
	ItemID       string          `json:"item_id"`
	UserID       string          `json:"user_id"`
	Amount       decimal.Decimal `json:"amount"`
	Outcome      string          `json:"outcome"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	DeadlineAt   string          `json:"deadline_at,omitempty"`
	CreatedAt    string          `json:"created_at"`
}

type InvoiceLineRequest struct {
	ItemID string `json:"item_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
}

type CreateInvoiceRequest struct {
	UserID string               `json:"user_id" binding:"required"`
	Items  []InvoiceLineRequest `json:"items" binding:"required,min=1,dive"`
}

type InvoiceResponse struct {
	InvoiceID string               `json:"invoice_id"`
	UserID    string               `json:"user_id"`
	Items     []models.InvoiceLine `json:"items"`
	Status    string               `json:"status"`
	CreatedAt string               `json:"created_at"`
	SentAt    string               `json:"sent_at,omitempty"`
}

// NewBidResponse flattens a stored bid and its arbitration result
func NewBidResponse(bid models.Bid, result models.BidResult) BidResponse {
	return BidResponse{
		BidID:        bid.BidID,
		ItemID:       bid.ItemID,
		UserID:       bid.UserID,
		Amount:       bid.Amount,
		Outcome:      string(result.Outcome),
		CurrentPrice: result.CurrentPrice,
		DeadlineAt:   FormatTime(result.DeadlineAt),
		CreatedAt:    FormatTime(bid.CreatedAt),
	}
}

// Lines converts the request items into invoice lines
func (r CreateInvoiceRequest) Lines() []models.InvoiceLine {
	lines := make([]models.InvoiceLine, 0, len(r.Items))
	for _, it := range r.Items {
		lines = append(lines, models.InvoiceLine{ItemID: it.ItemID, Name: it.Name})
	}
	return lines
}

func NewInvoiceResponse(inv models.Invoice) InvoiceResponse {
	return InvoiceResponse{
		InvoiceID: inv.InvoiceID,
		UserID:    inv.UserID,
		Items:     inv.Items,
		Status:    string(inv.Status),
		CreatedAt: FormatTime(inv.CreatedAt),
		SentAt:    FormatTime(inv.SentAt),
	}
}

// FormatTime renders t as RFC3339 in UTC, or "" for the zero time
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
