package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"drop-auction/cmd"
	"drop-auction/internal/config"
	"drop-auction/internal/models"
)

// extensionWindow is kept short so countdowns run out within a test
const extensionWindow = 400 * time.Millisecond

// testConfig returns an in-memory configuration with a fast countdown
func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConf{Addr: ":0", ShutdownTimeout: time.Second, AllowOrigins: []string{"*"}},
		Store:  config.StoreConf{Driver: config.DriverMemory},
		Auction: config.AuctionConf{
			ExtensionWindow: extensionWindow,
			FarPoll:         20 * time.Millisecond,
			NearPoll:        10 * time.Millisecond,
			NearThreshold:   0,
			ResolveAttempts: 3,
		},
		Mail: config.MailConf{From: "Dropmaster <dropmaster@4th.host>", SiteURL: "http://dropex.4th.host"},
	}
}

// SetupTestApp wires a full node for cfg and seeds it with items and users
func SetupTestApp(t *testing.T, cfg *config.Config, items []models.AuctionItem, users ...models.User) *cmd.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	app, err := cmd.NewApp(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, app.Close()) })

	for _, item := range items {
		if item.Status == "" {
			item.Status = models.ItemStatusOpen
		}
		require.NoError(t, app.Store.CreateItem(ctx, item))
	}
	for _, user := range users {
		require.NoError(t, app.Store.CreateUser(ctx, user))
	}
	require.NoError(t, app.Start(ctx))
	return app
}

// Item builds an open item priced at price
func Item(itemID, name string, price int64) models.AuctionItem {
	return models.AuctionItem{ItemID: itemID, Name: name, CurrentPrice: decimal.NewFromInt(price)}
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case string:
		reqBody = []byte(v)
	case []byte:
		reqBody = v
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}

	return resp, w
}

// PlaceBid posts a bid and returns the response data
func PlaceBid(t *testing.T, router *gin.Engine, itemID, userID, amount string) map[string]any {
	t.Helper()

	resp, w := ExecuteRequestAndParse(t, router, "POST", "/bids", map[string]string{
		"item_id": itemID,
		"user_id": userID,
		"amount":  amount,
	})
	require.Equal(t, 201, w.Code, resp)
	return resp["data"].(map[string]any)
}
