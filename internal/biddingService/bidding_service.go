package bidding

//go:generate mockgen -destination=mock_timer_armer.go -package=bidding drop-auction/internal/biddingService TimerArmer

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"drop-auction/internal/biddingerrors"
	"drop-auction/internal/metrics"
	"drop-auction/internal/models"
	"drop-auction/internal/repository"
	"drop-auction/utils"
)

// DefaultExtensionWindow is how long a new leading bid keeps the item open
const DefaultExtensionWindow = 30 * time.Second

// TimerArmer starts or restarts the countdown watcher of an item
type TimerArmer interface {
	Arm(itemID string)
}

// Option configures a BiddingService
type Option func(*BiddingService)

// WithExtensionWindow overrides the deadline extension applied by a leading bid
func WithExtensionWindow(d time.Duration) Option {
	return func(s *BiddingService) {
		if d > 0 {
			s.extension = d
		}
	}
}

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(s *BiddingService) {
		if now != nil {
			s.now = now
		}
	}
}

// BiddingService defines the business logic for auction bidding
type BiddingService struct {
	repo      repository.AuctionDB
	timers    TimerArmer
	extension time.Duration
	now       func() time.Time
}

// NewBiddingService creates a new BiddingService instance. timers may be nil,
// in which case countdowns are persisted but no watcher is started.
func NewBiddingService(repo repository.AuctionDB, timers TimerArmer, opts ...Option) *BiddingService {
	s := &BiddingService{
		repo:      repo,
		timers:    timers,
		extension: DefaultExtensionWindow,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceBid validates and records a user's bid for an item, then arbitrates it
func (s *BiddingService) PlaceBid(ctx context.Context, itemID, userID string, amount decimal.Decimal) (models.Bid, models.BidResult, error) {
	if err := validateBid(itemID, userID, amount); err != nil {
		return models.Bid{}, models.BidResult{}, err
	}

	bid := models.Bid{
		BidID:     utils.GenerateID(),
		ItemID:    itemID,
		UserID:    userID,
		Amount:    amount,
		Status:    models.BidStatusPending,
		CreatedAt: s.now(),
	}

	if err := s.repo.CreateBid(ctx, bid); err != nil {
		utils.Error("failed to record bid", map[string]any{"entity": "bid", "bid_id": bid.BidID, "item_id": itemID, "error": err.Error()})
		return models.Bid{}, models.BidResult{}, fmt.Errorf("service: failed to record bid for item %s by user %s: %w", itemID, userID, err)
	}

	result, err := s.ProcessBid(ctx, bid.BidID)
	if err != nil {
		return bid, models.BidResult{}, err
	}
	if result.Outcome != models.BidOutcomeDuplicate {
		bid.Status = models.BidStatusProcessed
	}
	return bid, result, nil
}

// validateBid checks input validity
func validateBid(itemID, userID string, amount decimal.Decimal) error {
	if itemID == "" || userID == "" {
		return fmt.Errorf("service: %w - missing itemID or userID", biddingerrors.ErrInvalidBid)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("service: %w - non-positive bid amount", biddingerrors.ErrInvalidBid)
	}
	return nil
}

// ProcessBid arbitrates a stored bid against its item. Re-processing a bid is
// safe: a processed bid is reported as a duplicate and a leading bid whose
// processing was interrupted keeps its original deadline.
func (s *BiddingService) ProcessBid(ctx context.Context, bidID string) (models.BidResult, error) {
	bid, err := s.repo.GetBid(ctx, bidID)
	if err != nil {
		return models.BidResult{}, s.stageFailed("load_bid", bidID, "", err)
	}
	if bid.Processed() {
		metrics.BidsProcessed.WithLabelValues(string(models.BidOutcomeDuplicate)).Inc()
		utils.Info("bid already processed", map[string]any{"entity": "bid", "bid_id": bid.BidID, "item_id": bid.ItemID})
		return models.BidResult{BidID: bid.BidID, ItemID: bid.ItemID, Outcome: models.BidOutcomeDuplicate}, nil
	}

	now := s.now()
	var outcome models.BidOutcome
	item, err := s.repo.UpdateItem(ctx, bid.ItemID, func(item *models.AuctionItem) error {
		outcome = arbitrate(item, bid, now, s.extension)
		return nil
	})
	if err != nil {
		return models.BidResult{}, s.stageFailed("update_item", bid.BidID, bid.ItemID, err)
	}

	result := models.BidResult{
		BidID:        bid.BidID,
		ItemID:       item.ItemID,
		Outcome:      outcome,
		CurrentPrice: item.CurrentPrice,
	}

	if result.Leading() {
		result.DeadlineAt = item.DeadlineAt
		timer := models.CountdownTimer{
			ItemID:           item.ItemID,
			DeadlineAt:       item.DeadlineAt,
			RemainingSeconds: models.RemainingSeconds(item.DeadlineAt, now),
			UpdatedAt:        now,
		}
		if err := s.repo.SetTimer(ctx, timer); err != nil {
			return models.BidResult{}, s.stageFailed("set_timer", bid.BidID, bid.ItemID, err)
		}
		if s.timers != nil {
			s.timers.Arm(item.ItemID)
		}
	}

	if err := s.repo.MarkBidProcessed(ctx, bid.BidID, now); err != nil {
		return models.BidResult{}, s.stageFailed("mark_processed", bid.BidID, bid.ItemID, err)
	}

	metrics.BidsProcessed.WithLabelValues(string(outcome)).Inc()
	utils.Info("bid processed", map[string]any{
		"entity":  "bid",
		"bid_id":  bid.BidID,
		"item_id": bid.ItemID,
		"outcome": string(outcome),
		"price":   item.CurrentPrice.String(),
	})
	return result, nil
}

// arbitrate applies bid to item and reports the outcome. It runs inside the
// store's item transaction.
func arbitrate(item *models.AuctionItem, bid models.Bid, now time.Time, extension time.Duration) models.BidOutcome {
	item.AddBidder(bid.UserID)

	switch {
	case item.Status.Finalized():
		return models.BidOutcomeClosed
	case item.LeadingBidID == bid.BidID:
		return models.BidOutcomeLeading
	case bid.Amount.GreaterThan(item.CurrentPrice):
		item.CurrentPrice = bid.Amount
		item.CurrentBidderID = bid.UserID
		item.LeadingBidID = bid.BidID
		item.LastActivityAt = now
		item.DeadlineAt = now.Add(extension)
		item.Status = models.ItemStatusDropping
		return models.BidOutcomeLeading
	default:
		return models.BidOutcomeOutbid
	}
}

func (s *BiddingService) stageFailed(stage, bidID, itemID string, err error) error {
	metrics.StageFailures.WithLabelValues(stage).Inc()
	utils.Error("bid processing failed", map[string]any{
		"entity":  "bid",
		"stage":   stage,
		"bid_id":  bidID,
		"item_id": itemID,
		"error":   err.Error(),
	})
	return fmt.Errorf("service: %s for bid %s: %w", stage, bidID, err)
}

// GetItem returns the current state of an item
func (s *BiddingService) GetItem(ctx context.Context, itemID string) (models.AuctionItem, error) {
	if itemID == "" {
		return models.AuctionItem{}, fmt.Errorf("service: %w - empty item ID", biddingerrors.ErrInvalidBid)
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return models.AuctionItem{}, fmt.Errorf("service: failed to get item %s: %w", itemID, err)
	}

	return item, nil
}

// GetBidsForItem returns all bids for a specific item
func (s *BiddingService) GetBidsForItem(ctx context.Context, itemID string) ([]models.Bid, error) {
	if itemID == "" {
		return nil, fmt.Errorf("service: %w - empty item ID", biddingerrors.ErrInvalidBid)
	}

	bids, err := s.repo.GetBidsByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for item %s: %w", itemID, err)
	}

	return bids, nil
}

// GetTimer returns the running countdown of an item
func (s *BiddingService) GetTimer(ctx context.Context, itemID string) (models.CountdownTimer, error) {
	if itemID == "" {
		return models.CountdownTimer{}, fmt.Errorf("service: %w - empty item ID", biddingerrors.ErrInvalidBid)
	}

	timer, err := s.repo.GetTimer(ctx, itemID)
	if err != nil {
		return models.CountdownTimer{}, fmt.Errorf("service: failed to get timer for item %s: %w", itemID, err)
	}

	return timer, nil
}

// GetItemsByUser returns all items a user has placed bids on
func (s *BiddingService) GetItemsByUser(ctx context.Context, userID string) ([]models.AuctionItem, error) {
	if userID == "" {
		return nil, fmt.Errorf("service: %w - empty user ID", biddingerrors.ErrInvalidBid)
	}

	items, err := s.repo.GetItemsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get items for user %s: %w", userID, err)
	}

	return items, nil
}
