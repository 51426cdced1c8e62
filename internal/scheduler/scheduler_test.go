package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"drop-auction/internal/biddingerrors"
	"drop-auction/internal/models"
	"drop-auction/internal/repository"
)

var fastPolicy = Policy{FarInterval: 20 * time.Millisecond, NearInterval: 5 * time.Millisecond, NearThreshold: 10}

// resolveLog records every Resolve call
type resolveLog struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (r *resolveLog) Resolve(_ context.Context, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, time.Now())
	return r.err
}

func (r *resolveLog) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *resolveLog) first() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[0]
}

func setTimer(t *testing.T, repo repository.TimerStore, itemID string, deadline time.Time) {
	t.Helper()
	require.NoError(t, repo.SetTimer(context.Background(), models.CountdownTimer{ItemID: itemID, DeadlineAt: deadline}))
}

func TestScheduler_ExpiresAtDeadline(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	resolver := &resolveLog{}
	s := New(repo, resolver, WithPolicy(fastPolicy))
	defer s.Stop()

	deadline := time.Now().Add(60 * time.Millisecond)
	setTimer(t, repo, "item1", deadline)
	s.Arm("item1")

	require.Eventually(t, func() bool { return resolver.count() == 1 }, 2*time.Second, 5*time.Millisecond)
	require.False(t, resolver.first().Before(deadline), "resolved before the deadline")
	require.Eventually(t, func() bool { return s.Active() == 0 }, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, resolver.count())
}

func TestScheduler_RearmReplacesWatcher(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	resolver := &resolveLog{}
	s := New(repo, resolver, WithPolicy(fastPolicy))
	defer s.Stop()

	setTimer(t, repo, "item1", time.Now().Add(50*time.Millisecond))
	s.Arm("item1")

	extended := time.Now().Add(250 * time.Millisecond)
	setTimer(t, repo, "item1", extended)
	s.Arm("item1")
	require.Equal(t, 1, s.Active())

	require.Eventually(t, func() bool { return resolver.count() >= 1 }, 2*time.Second, 5*time.Millisecond)
	require.False(t, resolver.first().Before(extended), "extended deadline was not honoured")
	require.Eventually(t, func() bool { return s.Active() == 0 }, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, resolver.count())
}

func TestScheduler_RemovedTimerStopsWatcher(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	resolver := &resolveLog{}
	s := New(repo, resolver, WithPolicy(fastPolicy))
	defer s.Stop()

	deadline := time.Now().Add(time.Hour)
	require.NoError(t, repo.CreateItem(ctx, models.AuctionItem{ItemID: "item1", CurrentPrice: decimal.NewFromInt(1)}))
	_, err := repo.UpdateItem(ctx, "item1", func(item *models.AuctionItem) error {
		item.CurrentBidderID = "alice"
		item.Status = models.ItemStatusDropping
		return nil
	})
	require.NoError(t, err)
	setTimer(t, repo, "item1", deadline)

	s.Arm("item1")
	require.Equal(t, 1, s.Active())

	_, err = repo.FinalizeItem(ctx, repository.Finalization{ItemID: "item1", WinnerID: "alice", Now: deadline})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return s.Active() == 0 }, time.Second, 5*time.Millisecond)
	require.Zero(t, resolver.count())
}

func TestScheduler_RecordsRemainingSeconds(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := repository.NewMemoryRepo()
	s := New(repo, &resolveLog{}, WithPolicy(fastPolicy), WithClock(func() time.Time { return base }))
	defer s.Stop()

	setTimer(t, repo, "item1", base.Add(45*time.Second))
	s.Arm("item1")

	require.Eventually(t, func() bool {
		timer, err := repo.GetTimer(context.Background(), "item1")
		return err == nil && timer.RemainingSeconds == 45 && timer.UpdatedAt.Equal(base)
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_Resume(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	resolver := &resolveLog{}
	s := New(repo, resolver, WithPolicy(fastPolicy))
	defer s.Stop()

	setTimer(t, repo, "item1", time.Now().Add(-time.Second))
	setTimer(t, repo, "item2", time.Now().Add(30*time.Millisecond))

	n, err := s.Resume(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Eventually(t, func() bool { return resolver.count() == 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_RetriesThenGivesUp(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	resolver := &resolveLog{err: biddingerrors.ErrUserNotFound}
	s := New(repo, resolver, WithPolicy(fastPolicy), WithResolveAttempts(3))
	defer s.Stop()

	setTimer(t, repo, "item1", time.Now())
	s.Arm("item1")

	require.Eventually(t, func() bool { return s.Active() == 0 }, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, 3, resolver.count())

	_, err := repo.GetTimer(context.Background(), "item1")
	require.NoError(t, err, "an unresolved item keeps its countdown for the next resume")
}

func TestScheduler_NonRetryableResolveError(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	resolver := &resolveLog{err: biddingerrors.ErrItemNotFound}
	s := New(repo, resolver, WithPolicy(fastPolicy), WithResolveAttempts(3))
	defer s.Stop()

	setTimer(t, repo, "item1", time.Now())
	s.Arm("item1")

	require.Eventually(t, func() bool { return s.Active() == 0 }, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, 1, resolver.count())
}

func TestScheduler_CancelAndStop(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	var resolved atomic.Int32
	s := New(repo, ResolverFunc(func(context.Context, string) error {
		resolved.Add(1)
		return nil
	}), WithPolicy(fastPolicy))

	setTimer(t, repo, "item1", time.Now().Add(time.Hour))
	setTimer(t, repo, "item2", time.Now().Add(time.Hour))
	s.Arm("item1")
	s.Arm("item2")
	require.Equal(t, 2, s.Active())

	s.Cancel("item1")
	require.Equal(t, 1, s.Active())
	s.Cancel("missing")

	s.Stop()
	require.Zero(t, s.Active())
	require.Zero(t, resolved.Load())
}

func TestScheduler_ArmAfterStop(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	var resolved atomic.Int32
	s := New(repo, ResolverFunc(func(context.Context, string) error {
		resolved.Add(1)
		return nil
	}), WithPolicy(fastPolicy))
	s.Stop()

	setTimer(t, repo, "item1", time.Now().Add(-time.Second))
	s.Arm("item1")
	require.Zero(t, s.Active())

	n, err := s.Resume(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Zero(t, s.Active())

	s.Stop()
	require.Zero(t, resolved.Load())
}
