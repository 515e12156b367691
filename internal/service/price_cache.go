package service

import (
	"beat0050/internal/repository"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const cachePrefix = "price_"

// maxPersistedEntries caps the durable mirror; once exceeded the
// oldest-inserted entries are evicted first.
const maxPersistedEntries = 100

// PriceCache memoizes (instrument, date) -> close price for the life of the
// process, with a best-effort durable mirror. The cache is an optimization
// only: mirror failures are logged and swallowed, and a miss simply sends
// the resolver to the next source. Both ledgers share one cache, so access
// is mutex-guarded; entries are immutable once set.
type PriceCache struct {
	mu      sync.RWMutex
	entries map[string]decimal.Decimal
	order   []string
	store   repository.PriceCacheStore
}

// NewPriceCache builds a cache warmed from the durable store. A nil store
// gives a purely in-memory cache.
func NewPriceCache(store repository.PriceCacheStore) *PriceCache {
	c := &PriceCache{
		entries: map[string]decimal.Decimal{},
		store:   store,
	}
	c.loadFromStore()
	return c
}

func cacheKey(symbol string, date time.Time) string {
	return fmt.Sprintf("%s%s_%s", cachePrefix, symbol, date.Format("2006-01-02"))
}

func (c *PriceCache) loadFromStore() {
	if c.store == nil {
		return
	}
	entries, err := c.store.GetAll(cachePrefix)
	if err != nil {
		zap.S().Warnf("failed to load persisted price cache: %v", err)
		return
	}
	// GetAll returns oldest-first, which seeds the eviction order
	for _, entry := range entries {
		price, err := decimal.NewFromString(entry.Value)
		if err != nil {
			continue
		}
		c.entries[entry.Key] = price
		c.order = append(c.order, entry.Key)
	}
	if len(c.entries) > 0 {
		zap.S().Infof("loaded %d persisted price cache entries", len(c.entries))
	}
}

func (c *PriceCache) Get(symbol string, date time.Time) (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	price, ok := c.entries[cacheKey(symbol, date)]
	return price, ok
}

func (c *PriceCache) Set(symbol string, date time.Time, price decimal.Decimal) {
	key := cacheKey(symbol, date)

	c.mu.Lock()
	if _, exists := c.entries[key]; !exists {
		c.order = append(c.order, key)
	}
	c.entries[key] = price
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	value := strconv.FormatFloat(price.InexactFloat64(), 'f', -1, 64)
	if err := c.store.Set(key, value); err != nil {
		// mirror full or broken - evict down to the cap and retry once
		zap.S().Warnf("price cache mirror write failed, evicting old entries: %v", err)
		c.evictOldest()
		if err := c.store.Set(key, value); err != nil {
			zap.S().Warnf("price cache mirror write failed again, keeping memory copy only: %v", err)
		}
	}
}

// evictOldest drops the oldest-inserted entries beyond the cap, from both
// the mirror and memory.
func (c *PriceCache) evictOldest() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.order) <= maxPersistedEntries {
		return
	}
	toRemove := c.order[:len(c.order)-maxPersistedEntries]
	c.order = c.order[len(c.order)-maxPersistedEntries:]

	for _, key := range toRemove {
		delete(c.entries, key)
		if c.store != nil {
			if err := c.store.Remove(key); err != nil {
				zap.S().Warnf("failed to evict cache entry %s: %v", key, err)
			}
		}
	}
}

func (c *PriceCache) Clear() {
	c.mu.Lock()
	c.entries = map[string]decimal.Decimal{}
	c.order = nil
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Clear(cachePrefix); err != nil {
			zap.S().Warnf("failed to clear persisted price cache: %v", err)
		}
	}
}

func (c *PriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
