package integrationtests

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"drop-auction/cmd"
	"drop-auction/internal/config"
	"drop-auction/internal/models"
	"drop-auction/internal/notification"
)

var bidders = []models.User{
	{UserID: "user1", Email: "ada@example.com", FirstName: "Ada", LastName: "Byron"},
	{UserID: "user2", Email: "grace@example.com", FirstName: "Grace", LastName: "Hopper"},
	{UserID: "user3", Email: "edsger@example.com", FirstName: "Edsger"},
}

func waitForStatus(t *testing.T, app *cmd.App, itemID string, status models.ItemStatus) models.AuctionItem {
	t.Helper()

	var item models.AuctionItem
	require.Eventually(t, func() bool {
		var err error
		item, err = app.Store.GetItem(context.Background(), itemID)
		return err == nil && item.Status == status
	}, 5*time.Second, 10*time.Millisecond, "item %s never reached %s", itemID, status)
	return item
}

func TestDropFlow_HighestBidderWins(t *testing.T) {
	app := SetupTestApp(t, testConfig(), []models.AuctionItem{Item("item1", "Brass desk lamp", 0)}, bidders...)

	first := PlaceBid(t, app.Router, "item1", "user1", "100")
	require.Equal(t, "leading", first["outcome"])

	second := PlaceBid(t, app.Router, "item1", "user2", "150")
	require.Equal(t, "leading", second["outcome"])

	third := PlaceBid(t, app.Router, "item1", "user3", "120")
	require.Equal(t, "outbid", third["outcome"])
	require.Equal(t, "150", third["current_price"])

	resp, w := ExecuteRequestAndParse(t, app.Router, http.MethodGet, "/items/item1/timer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	timer := resp["data"].(map[string]any)
	require.Equal(t, "item1", timer["item_id"])

	item := waitForStatus(t, app, "item1", models.ItemStatusOnHold)
	require.Equal(t, "user2", item.WinnerID)
	require.Equal(t, "Grace Hopper", item.WinnerName)
	require.True(t, item.CurrentPrice.Equal(decimal.NewFromInt(150)))
	require.ElementsMatch(t, []string{"user1", "user2", "user3"}, item.BidderIDs)

	_, w = ExecuteRequestAndParse(t, app.Router, http.MethodGet, "/items/item1/timer", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	resp, w = ExecuteRequestAndParse(t, app.Router, http.MethodGet, "/items/item1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := resp["data"].(map[string]any)
	require.Equal(t, "On Hold", data["status"])
	require.Equal(t, "user2", data["winner_id"])

	msgs, err := app.Store.ListMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "grace@example.com", msgs[0].To)
	require.Equal(t, "Dropmaster <dropmaster@4th.host>", msgs[0].From)
	require.Equal(t, notification.SubjectWinningBid, msgs[0].Subject)
	require.Contains(t, msgs[0].Body, "Brass desk lamp")

	// the item stays closed to later bids
	late := PlaceBid(t, app.Router, "item1", "user1", "500")
	require.Equal(t, "closed", late["outcome"])
	require.Equal(t, "150", late["current_price"])
	require.Eventually(t, func() bool { return app.Scheduler.Active() == 0 }, time.Second, 10*time.Millisecond)
}

func TestDropFlow_LeadingBidExtendsDeadline(t *testing.T) {
	app := SetupTestApp(t, testConfig(), []models.AuctionItem{Item("item1", "Oak side table", 10)}, bidders...)

	PlaceBid(t, app.Router, "item1", "user1", "20")
	item, err := app.Store.GetItem(context.Background(), "item1")
	require.NoError(t, err)
	firstDeadline := item.DeadlineAt

	time.Sleep(extensionWindow / 2)

	PlaceBid(t, app.Router, "item1", "user3", "30")
	item, err = app.Store.GetItem(context.Background(), "item1")
	require.NoError(t, err)
	require.True(t, item.DeadlineAt.After(firstDeadline), "deadline moves forward with each leading bid")

	// still dropping once the first countdown would have ended
	time.Sleep(time.Until(firstDeadline.Add(extensionWindow / 8)))
	item, err = app.Store.GetItem(context.Background(), "item1")
	require.NoError(t, err)
	require.Equal(t, models.ItemStatusDropping, item.Status)
	require.Equal(t, "user3", item.CurrentBidderID)

	item = waitForStatus(t, app, "item1", models.ItemStatusOnHold)
	require.Equal(t, "user3", item.WinnerID)
	require.Equal(t, "Edsger", item.WinnerName)
}

func TestDropFlow_InvoiceAfterWin(t *testing.T) {
	app := SetupTestApp(t, testConfig(), []models.AuctionItem{Item("item1", "Lamp", 0), Item("item2", "Chair", 0)}, bidders...)

	PlaceBid(t, app.Router, "item1", "user2", "10")
	PlaceBid(t, app.Router, "item2", "user2", "15")
	waitForStatus(t, app, "item1", models.ItemStatusOnHold)
	waitForStatus(t, app, "item2", models.ItemStatusOnHold)

	resp, w := ExecuteRequestAndParse(t, app.Router, http.MethodPost, "/invoices", map[string]any{
		"user_id": "user2",
		"items": []map[string]string{
			{"item_id": "item1", "name": "Lamp"},
			{"item_id": "item2", "name": "Chair"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, resp)
	require.Equal(t, "Sent", resp["data"].(map[string]any)["status"])

	msgs, err := app.Store.ListMessages(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	invoice := msgs[2]
	require.Equal(t, notification.SubjectInvoice, invoice.Subject)
	require.Equal(t, "grace@example.com", invoice.To)
	require.Contains(t, invoice.Body, "Lamp, Chair")
}

func TestDropFlow_SQLiteRestartResumesCountdown(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig()
	cfg.Store = config.StoreConf{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "auction.db")}
	cfg.Auction.ExtensionWindow = 2 * time.Second

	first, err := cmd.NewApp(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, first.Store.CreateItem(ctx, models.AuctionItem{ItemID: "item1", Name: "Coffee pot", CurrentPrice: decimal.Zero, Status: models.ItemStatusOpen}))
	require.NoError(t, first.Store.CreateUser(ctx, bidders[0]))
	require.NoError(t, first.Start(ctx))

	PlaceBid(t, first.Router, "item1", "user1", "42.50")
	require.NoError(t, first.Close())

	second := SetupTestApp(t, cfg, nil)
	item := waitForStatus(t, second, "item1", models.ItemStatusOnHold)
	require.Equal(t, "user1", item.WinnerID)
	require.Equal(t, "42.5", item.CurrentPrice.String())

	msgs, err := second.Store.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}
