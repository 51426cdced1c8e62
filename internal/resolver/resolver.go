// Package resolver closes items whose countdown has run out.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"drop-auction/internal/biddingerrors"
	"drop-auction/internal/metrics"
	"drop-auction/internal/notification"
	"drop-auction/internal/repository"
	"drop-auction/utils"
)

// Store is the part of the auction store the resolver needs
type Store interface {
	repository.ItemStore
	repository.UserStore
	repository.TimerStore
}

// Resolver finalizes an expired item in favour of its leading bidder and tells the winner
type Resolver struct {
	store    Store
	notifier notification.Notifier
	siteURL  string
	now      func() time.Time
}

// New creates a Resolver. An empty siteURL uses notification.DefaultSiteURL.
func New(store Store, notifier notification.Notifier, siteURL string) *Resolver {
	if siteURL == "" {
		siteURL = notification.DefaultSiteURL
	}
	return &Resolver{
		store:    store,
		notifier: notifier,
		siteURL:  siteURL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Resolve finalizes itemID. It returns nil without changes when the item was
// already resolved or a newer bid moved its deadline.
func (r *Resolver) Resolve(ctx context.Context, itemID string) error {
	item, err := r.store.GetItem(ctx, itemID)
	if err != nil {
		utils.Error("failed to load expired item", map[string]any{"entity": "item", "item_id": itemID, "error": err.Error()})
		return fmt.Errorf("resolver: load item %s: %w", itemID, err)
	}
	if item.Status.Finalized() {
		// a countdown written after finalization would otherwise be re-armed on every restart
		if err := r.store.DeleteTimer(ctx, itemID); err != nil {
			utils.Warn("failed to drop countdown of resolved item", map[string]any{"entity": "timer", "item_id": itemID, "error": err.Error()})
		}
		return nil
	}

	winner, err := r.store.GetUser(ctx, item.CurrentBidderID)
	if err != nil {
		utils.Error("failed to load winning bidder", map[string]any{
			"entity":  "user",
			"item_id": itemID,
			"user_id": item.CurrentBidderID,
			"error":   err.Error(),
		})
		return fmt.Errorf("resolver: load winner of item %s: %w", itemID, err)
	}

	finalized, err := r.store.FinalizeItem(ctx, repository.Finalization{
		ItemID:     itemID,
		WinnerID:   winner.UserID,
		WinnerName: winner.DisplayName(),
		Now:        r.now(),
	})
	switch {
	case errors.Is(err, biddingerrors.ErrTimerNotFound):
		utils.Debug("item already resolved", map[string]any{"item_id": itemID})
		return nil
	case errors.Is(err, biddingerrors.ErrDeadlineExtended):
		utils.Info("deadline moved by a newer bid, resolution skipped", map[string]any{"item_id": itemID})
		return nil
	case err != nil:
		utils.Error("failed to finalize item", map[string]any{"entity": "item", "item_id": itemID, "error": err.Error()})
		return fmt.Errorf("resolver: finalize item %s: %w", itemID, err)
	}

	metrics.Finalized.Inc()
	utils.Info("item finalized", map[string]any{
		"entity":    "item",
		"item_id":   itemID,
		"winner_id": finalized.WinnerID,
		"price":     finalized.CurrentPrice.String(),
	})

	body := notification.WinningBidBody(r.siteURL, finalized.Name)
	if err := r.notifier.Notify(ctx, winner.UserID, notification.SubjectWinningBid, body); err != nil {
		utils.Error("failed to notify winner", map[string]any{"entity": "item", "item_id": itemID, "user_id": winner.UserID, "error": err.Error()})
	}
	return nil
}
