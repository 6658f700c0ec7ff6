package querycache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// view is one registered urgent view: STAT orders, checked-in
// appointments, critical labs and similar operationally hot reads. The
// key is resolved per tick, so date-scoped views roll over to the new
// day's key instead of refreshing yesterday's forever.
type view struct {
	name     string
	key      func() Key
	interval time.Duration
	fn       FetchFunc
}

// Refetcher periodically re-fetches registered urgent views so their cache
// entries never age past the view's interval.
type Refetcher struct {
	cache *Cache
	mu    sync.Mutex
	views []view
}

// NewRefetcher creates a refetcher over the given cache.
func NewRefetcher(cache *Cache) *Refetcher {
	return &Refetcher{cache: cache}
}

// Register adds an urgent view. The key func runs on every tick; views
// whose key depends on the clock resolve it there. Must be called before
// Run.
func (r *Refetcher) Register(name string, key func() Key, interval time.Duration, fn FetchFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, view{name: name, key: key, interval: interval, fn: fn})
}

// Run re-fetches every registered view on its interval until the context
// ends. Failures are logged and the loop continues; a flaky backend must
// not stop the urgent views from recovering.
func (r *Refetcher) Run(ctx context.Context) {
	r.mu.Lock()
	views := make([]view, len(r.views))
	copy(views, r.views)
	r.mu.Unlock()

	log.Info().Int("views", len(views)).Msg("Starting urgent view refetcher")

	var wg sync.WaitGroup
	for _, v := range views {
		wg.Add(1)
		go func(v view) {
			defer wg.Done()
			ticker := time.NewTicker(v.interval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					if _, err := r.cache.Refresh(ctx, v.key(), v.fn); err != nil {
						log.Warn().
							Err(err).
							Str("view", v.name).
							Msg("Urgent view refetch failed")
					}
				case <-ctx.Done():
					return
				}
			}
		}(v)
	}
	wg.Wait()

	log.Info().Msg("Urgent view refetcher stopped")
}
