package collector

import (
	"context"
	"sync"
	"time"

	"StockDashboard/internal/model"

	"github.com/phuslu/log"
)

// CachedFetcher memoizes another Fetcher by (ticker, start date). Entries never
// expire and are dropped only when the process exits. Failed fetches are not
// stored. Callers always receive their own copy of the bars.
type CachedFetcher struct {
	next    Fetcher
	mu      sync.Mutex
	entries map[string]model.PriceSeries
}

// NewCachedFetcher wraps next with a read-through cache.
func NewCachedFetcher(next Fetcher) *CachedFetcher {
	return &CachedFetcher{next: next, entries: map[string]model.PriceSeries{}}
}

func (c *CachedFetcher) Name() string { return c.next.Name() }

func cacheKey(ticker string, start *time.Time) string {
	return ticker + "|" + startKey(start)
}

func (c *CachedFetcher) get(key string) (model.PriceSeries, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[key]
	if !ok {
		return model.PriceSeries{}, false
	}
	return s.Clone(), true
}

func (c *CachedFetcher) FetchHistory(ctx context.Context, ticker string, start *time.Time) (model.PriceSeries, error) {
	key := cacheKey(ticker, start)
	if s, ok := c.get(key); ok {
		return s, nil
	}

	s, err := c.next.FetchHistory(ctx, ticker, start)
	if err != nil {
		return model.PriceSeries{}, err
	}

	c.mu.Lock()
	// Another request may have stored the key meanwhile; the first entry wins.
	if existing, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return existing.Clone(), nil
	}
	c.entries[key] = s.Clone()
	c.mu.Unlock()

	log.Debug().Str("key", key).Int("bars", s.Len()).Msg("history cached")
	return s, nil
}

// Warm fetches the key into the cache if it is not there yet.
func (c *CachedFetcher) Warm(ctx context.Context, ticker string, start *time.Time) error {
	_, err := c.FetchHistory(ctx, ticker, start)
	return err
}

// Len returns the number of cached entries.
func (c *CachedFetcher) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
