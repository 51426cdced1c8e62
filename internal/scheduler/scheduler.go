// Package scheduler runs one countdown watcher per dropping item and hands
// expired items to the resolver.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/threading"

	"drop-auction/internal/biddingerrors"
	"drop-auction/internal/metrics"
	"drop-auction/internal/repository"
	"drop-auction/utils"
)

// DefaultResolveAttempts bounds resolution retries for an expired item
const DefaultResolveAttempts = 5

// Resolver finalizes an item whose countdown expired
type Resolver interface {
	Resolve(ctx context.Context, itemID string) error
}

// ResolverFunc adapts a function to Resolver
type ResolverFunc func(ctx context.Context, itemID string) error

// Resolve calls f(ctx, itemID)
func (f ResolverFunc) Resolve(ctx context.Context, itemID string) error {
	return f(ctx, itemID)
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithPolicy overrides the polling policy
func WithPolicy(p Policy) Option {
	return func(s *Scheduler) { s.policy = p }
}

// WithResolveAttempts sets how many times a failed resolution is tried
func WithResolveAttempts(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.resolveAttempts = n
		}
	}
}

// WithClock replaces the time source
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

type watcher struct {
	gen    uint64
	cancel context.CancelFunc
}

// Scheduler owns the countdown watchers, keyed by item id. Arming an item that
// already has a watcher replaces it.
type Scheduler struct {
	store           repository.TimerStore
	resolver        Resolver
	policy          Policy
	resolveAttempts int
	now             func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	gen      uint64
	watchers map[string]watcher
	stopped  bool
}

// New creates a Scheduler reading countdowns from store
func New(store repository.TimerStore, resolver Resolver, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		store:           store,
		resolver:        resolver,
		policy:          DefaultPolicy(),
		resolveAttempts: DefaultResolveAttempts,
		now:             func() time.Time { return time.Now().UTC() },
		ctx:             ctx,
		cancel:          cancel,
		watchers:        make(map[string]watcher),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Arm starts a watcher for itemID, cancelling any previous one. Arm is a
// no-op once Stop has been called.
func (s *Scheduler) Arm(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		utils.Debug("scheduler stopped, countdown not armed", map[string]any{"entity": "timer", "item_id": itemID})
		return
	}
	if prev, ok := s.watchers[itemID]; ok {
		prev.cancel()
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(s.ctx)
	s.watchers[itemID] = watcher{gen: gen, cancel: cancel}

	s.wg.Add(1)
	threading.GoSafe(func() {
		defer s.wg.Done()
		defer s.release(itemID, gen)

		metrics.ActiveCountdowns.Inc()
		defer metrics.ActiveCountdowns.Dec()
		s.watch(ctx, itemID)
	})
}

// Cancel stops the watcher of itemID if one is running
func (s *Scheduler) Cancel(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.watchers[itemID]; ok {
		w.cancel()
		delete(s.watchers, itemID)
	}
}

// Resume arms a watcher for every persisted countdown and returns how many were armed
func (s *Scheduler) Resume(ctx context.Context) (int, error) {
	timers, err := s.store.ListTimers(ctx)
	if err != nil {
		return 0, err
	}
	for _, t := range timers {
		s.Arm(t.ItemID)
	}
	utils.Info("countdowns resumed", map[string]any{"count": len(timers)})
	return len(timers), nil
}

// Active returns the number of running watchers
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}

// Stop cancels every watcher and waits for them to exit
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// release forgets the watcher unless a newer one replaced it
func (s *Scheduler) release(itemID string, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.watchers[itemID]; ok && w.gen == gen {
		w.cancel()
		delete(s.watchers, itemID)
	}
}

func (s *Scheduler) watch(ctx context.Context, itemID string) {
	for {
		timer, err := s.store.GetTimer(ctx, itemID)
		if errors.Is(err, biddingerrors.ErrTimerNotFound) {
			utils.Debug("countdown removed", map[string]any{"item_id": itemID})
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			metrics.StageFailures.WithLabelValues("read_timer").Inc()
			utils.Error("failed to read countdown", map[string]any{"entity": "timer", "item_id": itemID, "error": err.Error()})
			if !sleep(ctx, s.policy.NearInterval) {
				return
			}
			continue
		}

		now := s.now()
		decision := Tick(timer, now, s.policy)
		if decision.Action == Expire {
			s.expire(ctx, itemID)
			return
		}

		if decision.RemainingSeconds != timer.RemainingSeconds {
			err := s.store.UpdateTimerRemaining(ctx, itemID, decision.RemainingSeconds, now)
			if errors.Is(err, biddingerrors.ErrTimerNotFound) {
				return
			}
			if err != nil && ctx.Err() == nil {
				metrics.StageFailures.WithLabelValues("update_timer").Inc()
				utils.Warn("failed to record countdown progress", map[string]any{"entity": "timer", "item_id": itemID, "error": err.Error()})
			}
		}

		if !sleep(ctx, decision.Delay) {
			return
		}
	}
}

func (s *Scheduler) expire(ctx context.Context, itemID string) {
	retryable := func(err error) bool {
		return errors.Is(err, biddingerrors.ErrUserNotFound) || errors.Is(err, biddingerrors.ErrWriteFailed)
	}
	err := utils.Retry(ctx, "resolve item "+itemID, s.resolveAttempts, s.policy.NearInterval, retryable, func() error {
		return s.resolver.Resolve(ctx, itemID)
	})
	if err == nil || ctx.Err() != nil {
		return
	}

	metrics.StuckItems.Inc()
	utils.Error("countdown expired but item could not be resolved", map[string]any{
		"alert":   true,
		"entity":  "item",
		"item_id": itemID,
		"error":   err.Error(),
	})
}

// sleep waits for d and reports false if ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
