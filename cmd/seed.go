package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"drop-auction/internal/biddingerrors"
	"drop-auction/internal/models"
	"drop-auction/internal/repository"
	"drop-auction/utils"
)

// demoItems is the catalogue loaded when seeding is enabled
var demoItems = []models.AuctionItem{
	{ItemID: "item1", Name: "Brass desk lamp", CurrentPrice: decimal.NewFromInt(100)},
	{ItemID: "item2", Name: "Oak side table", CurrentPrice: decimal.NewFromInt(200)},
	{ItemID: "item3", Name: "Enamel coffee pot", CurrentPrice: decimal.NewFromInt(150)},
}

var demoUsers = []models.User{
	{UserID: "user1", Email: "ada@example.com", FirstName: "Ada", LastName: "Byron"},
	{UserID: "user2", Email: "grace@example.com", FirstName: "Grace", LastName: "Hopper"},
	{UserID: "user3", Email: "edsger@example.com", FirstName: "Edsger"},
}

type seedStore interface {
	repository.ItemStore
	repository.UserStore
}

// prepopulate adds the demo catalogue to the store. Records that already exist
// are left untouched, so restarting against a persistent store is safe.
func prepopulate(ctx context.Context, store seedStore) error {
	created := 0
	for _, item := range demoItems {
		item.Status = models.ItemStatusOpen
		err := store.CreateItem(ctx, item)
		if errors.Is(err, biddingerrors.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed: item %s: %w", item.ItemID, err)
		}
		created++
	}

	for _, user := range demoUsers {
		err := store.CreateUser(ctx, user)
		if errors.Is(err, biddingerrors.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed: user %s: %w", user.UserID, err)
		}
		created++
	}

	utils.Info("demo catalogue seeded", map[string]any{"created": created})
	return nil
}
