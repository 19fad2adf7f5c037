package executor

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// PriceCache is a read-through cache over a PriceSource. Entries live for a
// TTL (default 5s) to bound call volume when several runs poll the same
// asset; concurrent misses for one asset collapse into a single upstream
// fetch. A failed fetch falls back to the last cached value.
type PriceCache struct {
	source PriceSource
	ttl    time.Duration

	mu      sync.RWMutex
	entries map[string]priceEntry
	group   singleflight.Group
}

type priceEntry struct {
	price decimal.Decimal
	at    time.Time
}

func NewPriceCache(source PriceSource, ttl time.Duration) *PriceCache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &PriceCache{
		source:  source,
		ttl:     ttl,
		entries: map[string]priceEntry{},
	}
}

// Get returns a price for the asset, fetching through on a miss or stale
// entry. It errors only when the source fails and nothing was ever cached.
func (c *PriceCache) Get(ctx context.Context, asset string) (decimal.Decimal, error) {
	c.mu.RLock()
	entry, ok := c.entries[asset]
	c.mu.RUnlock()
	if ok && time.Since(entry.at) < c.ttl {
		return entry.price, nil
	}

	v, err, _ := c.group.Do(asset, func() (any, error) {
		price, err := c.source.GetPrice(ctx, asset)
		if err != nil {
			return decimal.Zero, err
		}
		c.mu.Lock()
		c.entries[asset] = priceEntry{price: price, at: time.Now()}
		c.mu.Unlock()
		return price, nil
	})
	if err != nil {
		if ok {
			// Stale beats nothing when the feed is down.
			return entry.price, nil
		}
		return decimal.Zero, err
	}
	return v.(decimal.Decimal), nil
}
