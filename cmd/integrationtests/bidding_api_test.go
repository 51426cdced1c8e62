package integrationtests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"drop-auction/internal/models"
)

// RecordBidHandler Tests
func TestRecordBidHandler(t *testing.T) {
	tests := []struct {
		name        string
		items       []models.AuctionItem
		request     any
		wantStatus  int
		wantOutcome string
	}{
		{
			name:        "Valid_Bid",
			items:       []models.AuctionItem{Item("item1", "Lamp", 50)},
			request:     map[string]any{"item_id": "item1", "user_id": "user1", "amount": 100},
			wantStatus:  http.StatusCreated,
			wantOutcome: "leading",
		},
		{
			name:        "Bid_Not_Above_Price",
			items:       []models.AuctionItem{Item("item1", "Lamp", 50)},
			request:     map[string]any{"item_id": "item1", "user_id": "user1", "amount": "50"},
			wantStatus:  http.StatusCreated,
			wantOutcome: "outbid",
		},
		{
			name:       "Invalid_JSON",
			request:    "{item_id: 'missing quotes', amount: 100}",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Unknown_Item",
			request:    map[string]any{"item_id": "ghost", "user_id": "user1", "amount": "10"},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := SetupTestApp(t, testConfig(), tt.items)
			resp, w := ExecuteRequestAndParse(t, app.Router, http.MethodPost, "/bids", tt.request)
			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusCreated {
				data := resp["data"].(map[string]any)
				require.Equal(t, "item1", data["item_id"])
				require.Equal(t, "user1", data["user_id"])
				require.Equal(t, tt.wantOutcome, data["outcome"])
				require.NotEmpty(t, data["bid_id"])

				_, err := time.Parse(time.RFC3339, data["created_at"].(string))
				require.NoError(t, err)
			}
		})
	}
}

// GetBidsByItemHandler Tests
func TestGetBidsByItemHandler(t *testing.T) {
	tests := []struct {
		name       string
		items      []models.AuctionItem
		seedBids   [][3]string
		itemID     string
		wantCount  int
		wantStatus int
	}{
		{
			name:       "With_Bids",
			items:      []models.AuctionItem{Item("item1", "Lamp", 50)},
			seedBids:   [][3]string{{"item1", "user1", "100"}, {"item1", "user2", "90"}},
			itemID:     "item1",
			wantCount:  2,
			wantStatus: http.StatusOK,
		},
		{
			name:       "No_Bids",
			items:      []models.AuctionItem{Item("item2", "Chair", 30)},
			itemID:     "item2",
			wantCount:  0,
			wantStatus: http.StatusOK,
		},
		{
			name:       "Item_Not_Found",
			itemID:     "nonexistent",
			wantCount:  0,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := SetupTestApp(t, testConfig(), tt.items)
			for _, bid := range tt.seedBids {
				PlaceBid(t, app.Router, bid[0], bid[1], bid[2])
			}

			resp, w := ExecuteRequestAndParse(t, app.Router, http.MethodGet, "/items/"+tt.itemID+"/bids", nil)
			require.Equal(t, tt.wantStatus, w.Code)

			bids := resp["data"].([]any)
			require.Len(t, bids, tt.wantCount)
			for _, b := range bids {
				require.Equal(t, string(models.BidStatusProcessed), b.(map[string]any)["status"])
			}
		})
	}
}

// GetItemsByUserHandler Tests
func TestGetItemsByUserHandler(t *testing.T) {
	app := SetupTestApp(t, testConfig(), []models.AuctionItem{Item("item1", "Lamp", 50), Item("item2", "Chair", 30)})

	PlaceBid(t, app.Router, "item1", "user1", "100")
	PlaceBid(t, app.Router, "item2", "user1", "200")
	PlaceBid(t, app.Router, "item2", "user2", "20")

	tests := []struct {
		name            string
		userID          string
		expectedItemIDs []string
	}{
		{name: "User_With_Items", userID: "user1", expectedItemIDs: []string{"item1", "item2"}},
		{name: "Outbid_User_Still_Listed", userID: "user2", expectedItemIDs: []string{"item2"}},
		{name: "NonexistentUser", userID: "nonexistent", expectedItemIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, w := ExecuteRequestAndParse(t, app.Router, http.MethodGet, "/users/"+tt.userID+"/items", nil)
			require.Equal(t, http.StatusOK, w.Code)

			items := resp["data"].([]any)
			require.Len(t, items, len(tt.expectedItemIDs))

			itemIDs := map[string]bool{}
			for _, i := range items {
				it := i.(map[string]any)
				itemIDs[it["item_id"].(string)] = true
			}
			for _, id := range tt.expectedItemIDs {
				require.True(t, itemIDs[id])
			}
		})
	}
}
