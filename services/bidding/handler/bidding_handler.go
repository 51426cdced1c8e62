package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"drop-auction/internal/biddingerrors"
	"drop-auction/internal/models"
	"drop-auction/services/bidding/helpers"
	"drop-auction/utils"
)

//go:generate mockgen -destination=mock_bidding_service.go -package=handler drop-auction/services/bidding/handler BiddingServiceInterface
//go:generate mockgen -destination=mock_invoice_service.go -package=handler drop-auction/services/bidding/handler InvoiceServiceInterface

type BiddingServiceInterface interface {
	PlaceBid(ctx context.Context, itemID, userID string, amount decimal.Decimal) (models.Bid, models.BidResult, error)
	GetItem(ctx context.Context, itemID string) (models.AuctionItem, error)
	GetBidsForItem(ctx context.Context, itemID string) ([]models.Bid, error)
	GetTimer(ctx context.Context, itemID string) (models.CountdownTimer, error)
	GetItemsByUser(ctx context.Context, userID string) ([]models.AuctionItem, error)
}

type InvoiceServiceInterface interface {
	CreateInvoice(ctx context.Context, userID string, lines []models.InvoiceLine) (models.Invoice, error)
}

type BiddingHandler struct {
	service  BiddingServiceInterface
	invoices InvoiceServiceInterface
}

func NewBiddingHandler(service BiddingServiceInterface, invoices InvoiceServiceInterface) *BiddingHandler {
	helpers.RegisterValidators()
	return &BiddingHandler{service: service, invoices: invoices}
}

func (h *BiddingHandler) fail(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := helpers.MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	fields["handler"] = handlerName
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.Warn(handlerName+": request rejected", fields)
}

// RecordBidHandler handles POST /bids
func (h *BiddingHandler) RecordBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RecordBidHandler", err)
		return
	}

	bid, result, err := h.service.PlaceBid(c.Request.Context(), req.ItemID, req.UserID, req.Amount)
	if err != nil {
		h.fail(c, "RecordBidHandler", err, map[string]any{"item_id": req.ItemID, "user_id": req.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid, result), "bid recorded successfully")
	helpers.LogSuccess("RecordBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":  bid.BidID,
		"item_id": bid.ItemID,
		"user_id": req.UserID,
		"amount":  bid.Amount.String(),
		"outcome": string(result.Outcome),
	})
}

// GetItemHandler handles GET /items/:item_id
func (h *BiddingHandler) GetItemHandler(c *gin.Context) {
	itemID := c.Param("item_id")
	item, err := h.service.GetItem(c.Request.Context(), itemID)
	if err != nil {
		h.fail(c, "GetItemHandler", err, map[string]any{"item_id": itemID})
		return
	}

	if item.BidderIDs == nil {
		item.BidderIDs = []string{}
	}
	utils.JSONResponse(c, http.StatusOK, item, "item retrieved successfully")
}

// GetBidsByItemHandler handles GET /items/:item_id/bids
func (h *BiddingHandler) GetBidsByItemHandler(c *gin.Context) {
	itemID := c.Param("item_id")
	bids, err := h.service.GetBidsForItem(c.Request.Context(), itemID)
	if err != nil && !errors.Is(err, biddingerrors.ErrNoBids) {
		h.fail(c, "GetBidsByItemHandler", err, map[string]any{"item_id": itemID})
		return
	}

	if bids == nil {
		bids = []models.Bid{}
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("GetBidsByItemHandler", "bids retrieved successfully", map[string]any{
		"item_id": itemID,
		"count":   len(bids),
	})
}

// GetTimerHandler handles GET /items/:item_id/timer
func (h *BiddingHandler) GetTimerHandler(c *gin.Context) {
	itemID := c.Param("item_id")
	timer, err := h.service.GetTimer(c.Request.Context(), itemID)
	if err != nil {
		h.fail(c, "GetTimerHandler", err, map[string]any{"item_id": itemID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, timer, "timer retrieved successfully")
}

// GetItemsByUserHandler handles GET /users/:user_id/items
func (h *BiddingHandler) GetItemsByUserHandler(c *gin.Context) {
	userID := c.Param("user_id")
	items, err := h.service.GetItemsByUser(c.Request.Context(), userID)
	if err != nil && !errors.Is(err, biddingerrors.ErrUserNoBids) {
		h.fail(c, "GetItemsByUserHandler", err, map[string]any{"user_id": userID})
		return
	}

	if items == nil {
		items = []models.AuctionItem{}
	}

	utils.JSONResponse(c, http.StatusOK, items, "items retrieved successfully")
	helpers.LogSuccess("GetItemsByUserHandler", "items retrieved successfully", map[string]any{
		"user_id":     userID,
		"items_count": len(items),
	})
}

// CreateInvoiceHandler handles POST /invoices
func (h *BiddingHandler) CreateInvoiceHandler(c *gin.Context) {
	var req helpers.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateInvoiceHandler", err)
		return
	}

	invoice, err := h.invoices.CreateInvoice(c.Request.Context(), req.UserID, req.Lines())
	if err != nil {
		h.fail(c, "CreateInvoiceHandler", err, map[string]any{"user_id": req.UserID, "items": len(req.Items)})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewInvoiceResponse(invoice), "invoice sent successfully")
	helpers.LogSuccess("CreateInvoiceHandler", "invoice sent successfully", map[string]any{
		"invoice_id": invoice.InvoiceID,
		"user_id":    invoice.UserID,
		"items":      len(invoice.Items),
	})
}
