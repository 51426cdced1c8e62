package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"drop-auction/internal/biddingerrors"
	"drop-auction/internal/models"
	"drop-auction/internal/repository"
)

func seedUsers(t *testing.T, repo *repository.MemoryRepo) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.CreateUser(ctx, models.User{UserID: "alice", Email: "alice@example.com", FirstName: "Alice", LastName: "Smith"}))
	require.NoError(t, repo.CreateUser(ctx, models.User{UserID: "ghost", FirstName: "No", LastName: "Mail"}))
}

func TestDispatcher_Notify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		userID    string
		wantErr   error
		wantQueue int
	}{
		{name: "known_user", userID: "alice", wantQueue: 1},
		{name: "unknown_user", userID: "bob", wantErr: biddingerrors.ErrRecipientNotFound},
		{name: "user_without_email", userID: "ghost", wantErr: biddingerrors.ErrRecipientNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			repo := repository.NewMemoryRepo()
			seedUsers(t, repo)
			d := NewDispatcher(repo, repo, "")

			err := d.Notify(ctx, tc.userID, SubjectWinningBid, "<p>hi</p>")
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}

			msgs, err := repo.ListMessages(ctx)
			require.NoError(t, err)
			require.Len(t, msgs, tc.wantQueue)
			if tc.wantQueue == 1 {
				require.Equal(t, "alice@example.com", msgs[0].To)
				require.Equal(t, DefaultFrom, msgs[0].From)
				require.Equal(t, SubjectWinningBid, msgs[0].Subject)
				require.Equal(t, "<p>hi</p>", msgs[0].Body)
				require.NotEmpty(t, msgs[0].MessageID)
				require.False(t, msgs[0].EnqueuedAt.IsZero())
			}
		})
	}
}

func TestDispatcher_NotifyStoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	errBoom := errors.New("boom")
	mockRepo := repository.NewMockAuctionDB(ctrl)
	d := NewDispatcher(mockRepo, mockRepo, "Auctions <auctions@example.com>")

	mockRepo.EXPECT().GetUser(gomock.Any(), "alice").Return(models.User{}, errBoom)
	require.ErrorIs(t, d.Notify(context.Background(), "alice", "s", "b"), errBoom)

	mockRepo.EXPECT().GetUser(gomock.Any(), "alice").Return(models.User{UserID: "alice", Email: "a@example.com"}, nil)
	mockRepo.EXPECT().Enqueue(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg models.OutboundMessage) error {
		require.Equal(t, "Auctions <auctions@example.com>", msg.From)
		return biddingerrors.ErrWriteFailed
	})
	require.ErrorIs(t, d.Notify(context.Background(), "alice", "s", "b"), biddingerrors.ErrWriteFailed)
}

func TestMessageBodies(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		`You are the high bidder on item <a href="http://dropex.4th.host">Lamp &amp; Shade</a>`+
			`<p>You will be contacted with the location of the alley in which to deliver the briefcase full of cash</p>`,
		WinningBidBody(DefaultSiteURL, "Lamp & Shade"))

	require.Equal(t,
		`Here is your invoice for <a href="http://example.com">Lamp, Chair</a>`,
		InvoiceBody("http://example.com", []string{"Lamp", "Chair"}))
}

func TestInvoiceService(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	seedUsers(t, repo)
	service := NewInvoiceService(repo, NewDispatcher(repo, repo, ""), "")

	invoice, err := service.CreateInvoice(ctx, "alice", []models.InvoiceLine{
		{ItemID: "item1", Name: "Lamp"},
		{ItemID: "item2", Name: "Chair"},
	})
	require.NoError(t, err)
	require.Equal(t, models.InvoiceStatusSent, invoice.Status)
	require.False(t, invoice.SentAt.IsZero())

	stored, err := repo.GetInvoice(ctx, invoice.InvoiceID)
	require.NoError(t, err)
	require.Equal(t, models.InvoiceStatusSent, stored.Status)

	msgs, err := repo.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, SubjectInvoice, msgs[0].Subject)
	require.Contains(t, msgs[0].Body, "Lamp, Chair")

	// re-processing a sent invoice sends nothing
	again, err := service.ProcessInvoice(ctx, invoice.InvoiceID)
	require.NoError(t, err)
	require.True(t, again.SentAt.Equal(stored.SentAt))
	msgs, err = repo.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
}

func TestInvoiceService_Failures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	seedUsers(t, repo)
	service := NewInvoiceService(repo, NewDispatcher(repo, repo, ""), "")

	tests := []struct {
		name    string
		userID  string
		lines   []models.InvoiceLine
		wantErr error
	}{
		{name: "no_user", userID: "", lines: []models.InvoiceLine{{ItemID: "i", Name: "n"}}, wantErr: biddingerrors.ErrInvalidInvoice},
		{name: "no_items", userID: "alice", wantErr: biddingerrors.ErrInvalidInvoice},
		{name: "unknown_recipient", userID: "bob", lines: []models.InvoiceLine{{ItemID: "i", Name: "n"}}, wantErr: biddingerrors.ErrRecipientNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateInvoice(ctx, tc.userID, tc.lines)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}

	_, err := service.ProcessInvoice(ctx, "missing")
	require.ErrorIs(t, err, biddingerrors.ErrInvoiceNotFound)

	// a failed send leaves the invoice pending
	require.NoError(t, repo.CreateInvoice(ctx, models.Invoice{InvoiceID: "inv-bob", UserID: "bob", Items: []models.InvoiceLine{{Name: "Rug"}}, Status: models.InvoiceStatusPending, CreatedAt: time.Now()}))
	_, err = service.ProcessInvoice(ctx, "inv-bob")
	require.ErrorIs(t, err, biddingerrors.ErrRecipientNotFound)
	stored, err := repo.GetInvoice(ctx, "inv-bob")
	require.NoError(t, err)
	require.Equal(t, models.InvoiceStatusPending, stored.Status)
}
