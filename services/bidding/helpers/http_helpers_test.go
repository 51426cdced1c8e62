package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"drop-auction/internal/biddingerrors"
	"drop-auction/internal/models"
)

func TestMapErrorToHTTP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err        error
		wantStatus int
	}{
		{err: biddingerrors.ErrItemNotFound, wantStatus: http.StatusNotFound},
		{err: biddingerrors.ErrBidNotFound, wantStatus: http.StatusNotFound},
		{err: biddingerrors.ErrTimerNotFound, wantStatus: http.StatusNotFound},
		{err: biddingerrors.ErrInvoiceNotFound, wantStatus: http.StatusNotFound},
		{err: biddingerrors.ErrInvalidBid, wantStatus: http.StatusBadRequest},
		{err: biddingerrors.ErrInvalidInvoice, wantStatus: http.StatusBadRequest},
		{err: biddingerrors.ErrRecipientNotFound, wantStatus: http.StatusUnprocessableEntity},
		{err: biddingerrors.ErrAlreadyExists, wantStatus: http.StatusConflict},
		{err: biddingerrors.ErrNoBids, wantStatus: http.StatusOK},
		{err: biddingerrors.ErrUserNoBids, wantStatus: http.StatusOK},
		{err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.err.Error(), func(t *testing.T) {
			t.Parallel()

			status, message := MapErrorToHTTP(fmt.Errorf("service: wrapped: %w", tc.err))
			require.Equal(t, tc.wantStatus, status)
			require.NotEmpty(t, message)
		})
	}
}

func TestNewBidResponse(t *testing.T) {
	t.Parallel()

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	resp := NewBidResponse(
		models.Bid{BidID: "b1", ItemID: "item1", UserID: "u1", Amount: decimal.RequireFromString("99.95"), CreatedAt: created},
		models.BidResult{Outcome: models.BidOutcomeOutbid, CurrentPrice: decimal.NewFromInt(120)},
	)

	require.Equal(t, "outbid", resp.Outcome)
	require.Equal(t, "99.95", resp.Amount.String())
	require.Equal(t, "2024-05-01T11:00:00Z", resp.CreatedAt)
	require.Empty(t, resp.DeadlineAt)
}
