package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	bidding "drop-auction/internal/biddingService"
	"drop-auction/internal/models"
	"drop-auction/internal/notification"
	"drop-auction/internal/repository"
)

func newTestRouter(t *testing.T, opts Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	require.NoError(t, repo.CreateItem(context.Background(), models.AuctionItem{ItemID: "item1", Name: "Lamp", CurrentPrice: decimal.Zero, Status: models.ItemStatusOpen}))

	service := bidding.NewBiddingService(repo, nil)
	invoices := notification.NewInvoiceService(repo, notification.NewDispatcher(repo, repo, ""), "")
	return SetupRouter(service, invoices, opts)
}

func TestSetupRouter_Routes(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, Options{MetricsPath: "/metrics"})

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{name: "place_bid", method: http.MethodPost, target: "/bids", body: `{"item_id":"item1","user_id":"u1","amount":"10"}`, wantStatus: http.StatusCreated},
		{name: "get_item", method: http.MethodGet, target: "/items/item1", wantStatus: http.StatusOK},
		{name: "get_missing_item", method: http.MethodGet, target: "/items/nope", wantStatus: http.StatusNotFound},
		{name: "get_bids", method: http.MethodGet, target: "/items/item1/bids", wantStatus: http.StatusOK},
		{name: "get_timer_without_countdown", method: http.MethodGet, target: "/items/nope/timer", wantStatus: http.StatusNotFound},
		{name: "get_user_items", method: http.MethodGet, target: "/users/u9/items", wantStatus: http.StatusOK},
		{name: "invoice_unknown_user", method: http.MethodPost, target: "/invoices", body: `{"user_id":"u9","items":[{"item_id":"item1","name":"Lamp"}]}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "metrics", method: http.MethodGet, target: "/metrics", wantStatus: http.StatusOK},
		{name: "unknown_route", method: http.MethodGet, target: "/nowhere", wantStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.target, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, tc.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestSetupRouter_MetricsDisabled(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, Options{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetupRouter_CORS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		origins    []string
		origin     string
		wantHeader string
	}{
		{name: "wildcard", origins: []string{"*"}, origin: "http://dropex.4th.host", wantHeader: "*"},
		{name: "allowed", origins: []string{"http://dropex.4th.host"}, origin: "http://dropex.4th.host", wantHeader: "http://dropex.4th.host"},
		{name: "rejected", origins: []string{"http://dropex.4th.host"}, origin: "http://evil.example", wantHeader: ""},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(t, Options{AllowOrigins: tc.origins})
			req := httptest.NewRequest(http.MethodGet, "/items/item1", nil)
			req.Header.Set("Origin", tc.origin)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.wantHeader, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
