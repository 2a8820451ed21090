package prices

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"go-token-swap"
)

// Subscriber receives the outcome of every fetch: the quotes on success, or the
// error with nil quotes on failure.
type Subscriber func(quotes []swap.Quote, err error)

// Feed decorates a prices.Service with a cache that is refreshed on a schedule.
// Cached quotes are served until they are older than staleAfter.
// Feed is concurrency safe.
type Feed struct {
	// next the service being decorated with a cache
	next Service

	// refreshEvery how often Run refetches
	refreshEvery time.Duration

	// staleAfter how long fetched quotes are served from cache
	staleAfter time.Duration

	now    func() time.Time
	logger log.Logger

	// refreshing serializes fetches so the cache and subscribers see them in the same order
	refreshing sync.Mutex

	// lock synchronizes access to the cached state and subscribers
	lock        sync.RWMutex
	quotes      []swap.Quote
	fetchedAt   time.Time
	err         error
	subscribers []Subscriber
}

// NewFeed returns a new caching Feed
func NewFeed(refreshEvery, staleAfter time.Duration, logger log.Logger, s Service) *Feed {
	return &Feed{
		next:         s,
		refreshEvery: refreshEvery,
		staleAfter:   staleAfter,
		now:          time.Now,
		logger:       logger,
	}
}

// Subscribe registers fn to be called after each fetch
func (f *Feed) Subscribe(fn Subscriber) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.subscribers = append(f.subscribers, fn)
}

// Quotes returns cached quotes while they are fresh, otherwise it fetches.
func (f *Feed) Quotes(ctx context.Context) ([]swap.Quote, error) {
	f.lock.RLock()
	quotes, fetchedAt := f.quotes, f.fetchedAt
	f.lock.RUnlock()

	if quotes != nil && f.now().Sub(fetchedAt) < f.staleAfter {
		return clone(quotes), nil
	}
	return f.Refresh(ctx)
}

// Refresh fetches immediately and notifies subscribers.
// On failure the last good quotes stay cached but are reported as failed.
func (f *Feed) Refresh(ctx context.Context) ([]swap.Quote, error) {
	f.refreshing.Lock()
	defer f.refreshing.Unlock()

	quotes, err := f.next.Quotes(ctx)

	f.lock.Lock()
	if err != nil {
		f.err = err
	} else {
		f.quotes = clone(quotes)
		f.fetchedAt = f.now()
		f.err = nil
	}
	subscribers := make([]Subscriber, len(f.subscribers))
	copy(subscribers, f.subscribers)
	f.lock.Unlock()

	for _, fn := range subscribers {
		fn(clone(quotes), err)
	}

	if err != nil {
		return nil, fmt.Errorf("refresh prices: %w", err)
	}
	return clone(quotes), nil
}

func clone(quotes []swap.Quote) []swap.Quote {
	if quotes == nil {
		return nil
	}
	out := make([]swap.Quote, len(quotes))
	copy(out, quotes)
	return out
}

// Err the error of the most recent fetch, nil if it succeeded
func (f *Feed) Err() error {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.err
}

// Stale reports whether the cached quotes are missing or older than staleAfter
func (f *Feed) Stale() bool {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.quotes == nil || f.now().Sub(f.fetchedAt) >= f.staleAfter
}

// Run fetches once and then every refreshEvery until ctx is done.
// This is expected to be called from a go-routine.
func (f *Feed) Run(ctx context.Context) {
	if _, err := f.Refresh(ctx); err != nil {
		f.logger.Log("msg", "initial price fetch failed", "err", err)
	}
	ticker := time.NewTicker(f.refreshEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := f.Refresh(ctx); err != nil {
				// Don't return, just log and hope this is a transient error
				f.logger.Log("msg", "periodic refresh failed", "err", err)
			}
		case <-ctx.Done():
			f.logger.Log("msg", "shutting down periodic refresh")
			return
		}
	}
}
