package perftests

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	bidding "drop-auction/internal/biddingService"
	"drop-auction/internal/models"
	"drop-auction/internal/repository"
	"drop-auction/internal/repository/sqlite"
	"drop-auction/internal/scheduler"
)

// noopArmer drops arm requests so benchmarks measure arbitration only
type noopArmer struct{}

func (noopArmer) Arm(string) {}

func newItem(itemID, name string, price int64) models.AuctionItem {
	return models.AuctionItem{ItemID: itemID, Name: name, CurrentPrice: decimal.NewFromInt(price), Status: models.ItemStatusOpen}
}

func seedItems(b *testing.B, store repository.ItemStore, n int) {
	b.Helper()
	for i := 0; i < n; i++ {
		if err := store.CreateItem(context.Background(), newItem(fmt.Sprintf("item_%d", i), fmt.Sprintf("Benchmark item %d", i), 50)); err != nil {
			b.Fatalf("failed to seed item: %v", err)
		}
	}
}

// Benchmark 1: PlaceBid - Isolated Items (Low Contention - Micro Benchmark)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo, noopArmer{})
	seedItems(b, repo, b.N)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		userID := fmt.Sprintf("user_%d", i)
		itemID := fmt.Sprintf("item_%d", i)
		amount := decimal.NewFromInt(int64(51 + rand.Intn(100)))
		if _, _, err := svc.PlaceBid(ctx, itemID, userID, amount); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: PlaceBid - Shared Item (High Contention - Concurrency Benchmark)
func Benchmark_PlaceBid_ConcurrentSharedItem(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo, noopArmer{})
	seedItems(b, repo, 1)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 50

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			userID := fmt.Sprintf("user_parallel_%d", rnd.Int())
			nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
			_, _, _ = svc.PlaceBid(ctx, "item_0", userID, decimal.NewFromInt(nextBid))
		}
	})
}

// Benchmark 3: PlaceBid against the SQLite store
func Benchmark_PlaceBid_SQLite(b *testing.B) {
	store, err := sqlite.New(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatalf("failed to open sqlite store: %v", err)
	}
	defer store.Close()

	svc := bidding.NewBiddingService(store, noopArmer{})
	seedItems(b, store, 10)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		itemID := fmt.Sprintf("item_%d", i%10)
		if _, _, err := svc.PlaceBid(ctx, itemID, fmt.Sprintf("user_%d", i), decimal.NewFromInt(int64(51+i))); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 4: ProcessBid - redelivered bids are answered from the processed flag
func Benchmark_ProcessBid_Redelivery(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo, noopArmer{})
	seedItems(b, repo, 1)
	ctx := context.Background()

	bid, _, err := svc.PlaceBid(ctx, "item_0", "user_0", decimal.NewFromInt(60))
	if err != nil {
		b.Fatalf("failed to place bid: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		result, err := svc.ProcessBid(ctx, bid.BidID)
		if err != nil || result.Outcome != models.BidOutcomeDuplicate {
			b.Fatalf("unexpected redelivery result %v: %v", result.Outcome, err)
		}
	}
}

// Benchmark 5: GetItem - Concurrent (High Contention)
func Benchmark_GetItem_ConcurrentSharedItem(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo, noopArmer{})
	seedItems(b, repo, 1)
	ctx := context.Background()

	for j := 0; j < 100; j++ {
		_, _, _ = svc.PlaceBid(ctx, "item_0", fmt.Sprintf("user_%d", j), decimal.NewFromInt(int64(51+j)))
	}

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := svc.GetItem(ctx, "item_0"); err != nil {
				b.Errorf("failed to get item: %v", err)
				return
			}
		}
	})
}

// Benchmark 6: Mixed Workload (Readers + Writers concurrently)
func Benchmark_MixedWorkload_SharedItem(b *testing.B) {
	repo := repository.NewMemoryRepo()
	svc := bidding.NewBiddingService(repo, noopArmer{})
	seedItems(b, repo, 1)
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 150

	// Ratio: 70% readers, 30% writers
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			switch opType := rnd.Intn(10); {
			case opType < 3:
				userID := fmt.Sprintf("user_writer_%d", rnd.Int())
				nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
				_, _, _ = svc.PlaceBid(ctx, "item_0", userID, decimal.NewFromInt(nextBid))
			case opType < 5:
				_, _ = svc.GetTimer(ctx, "item_0")
			default:
				_, _ = svc.GetItem(ctx, "item_0")
			}
		}
	})
}

// Benchmark 7: Scheduler - re-arming the same countdown on every leading bid
func Benchmark_Scheduler_Rearm(b *testing.B) {
	repo := repository.NewMemoryRepo()
	resolver := scheduler.ResolverFunc(func(context.Context, string) error { return nil })
	sched := scheduler.New(repo, resolver)
	defer sched.Stop()

	ctx := context.Background()
	deadline := time.Now().Add(time.Hour)
	for i := 0; i < 10; i++ {
		if err := repo.SetTimer(ctx, models.CountdownTimer{ItemID: fmt.Sprintf("item_%d", i), DeadlineAt: deadline}); err != nil {
			b.Fatalf("failed to set timer: %v", err)
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sched.Arm(fmt.Sprintf("item_%d", i%10))
	}
}
