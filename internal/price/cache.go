package price

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bettertrack/bettertrack/internal/logger"
	"github.com/bettertrack/bettertrack/internal/model"
)

// DefaultTTL is how long a fetched price stays fresh.
const DefaultTTL = time.Hour

// Entry is one cached quote.
type Entry struct {
	Ticker    string          `json:"ticker"`
	Price     decimal.Decimal `json:"price"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Cache remembers successful lookups from an upstream source for a bounded
// time. Failures are never cached.
type Cache struct {
	src model.PriceLookup
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]Entry
}

var _ model.PriceLookup = (*Cache)(nil)

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// NewCache wraps src. A non-positive ttl means DefaultTTL.
func NewCache(src model.PriceLookup, ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		src:     src,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]Entry),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Price returns the cached price of ticker while it is fresh, fetching it
// from the upstream source otherwise.
func (c *Cache) Price(ctx context.Context, ticker string) (decimal.Decimal, error) {
	c.mu.Lock()
	e, ok := c.entries[ticker]
	c.mu.Unlock()
	if ok && c.now().Sub(e.FetchedAt) < c.ttl {
		logger.Get().Debugw("price cache hit", "ticker", ticker, "price", e.Price)
		return e.Price, nil
	}

	p, err := c.src.Price(ctx, ticker)
	if err != nil {
		return decimal.Zero, err
	}

	c.mu.Lock()
	c.entries[ticker] = Entry{Ticker: ticker, Price: p, FetchedAt: c.now()}
	c.mu.Unlock()
	logger.Get().Debugw("price cached", "ticker", ticker, "price", p)
	return p, nil
}

// Clear forgets every cached price so the next lookups go upstream.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
}

// Invalidate forgets the cached price of ticker.
func (c *Cache) Invalidate(ticker string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, ticker)
}

// Entries returns the fresh entries sorted by ticker.
func (c *Cache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		if now.Sub(e.FetchedAt) < c.ttl {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Restore seeds the cache with previously saved entries. Stale entries are
// kept but never served.
func (c *Cache) Restore(entries []Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range entries {
		c.entries[e.Ticker] = e
	}
}
