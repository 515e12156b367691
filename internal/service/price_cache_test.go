package service

import (
	"beat0050/internal/repository"
	"beat0050/internal/util"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeCacheStore struct {
	entries map[string]repository.PriceCacheEntry
	seq     int
	failSet bool
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{entries: map[string]repository.PriceCacheEntry{}}
}

func (s *fakeCacheStore) GetAll(prefix string) ([]repository.PriceCacheEntry, error) {
	out := []repository.PriceCacheEntry{}
	for _, entry := range s.entries {
		if strings.HasPrefix(entry.Key, prefix) {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *fakeCacheStore) Set(key, value string) error {
	if s.failSet {
		return errors.New("disk full")
	}
	s.seq++
	s.entries[key] = repository.PriceCacheEntry{
		Key:       key,
		Value:     value,
		CreatedAt: time.Unix(int64(s.seq), 0),
	}
	return nil
}

func (s *fakeCacheStore) Remove(key string) error {
	delete(s.entries, key)
	return nil
}

func (s *fakeCacheStore) Clear(prefix string) error {
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

func TestPriceCache(t *testing.T) {
	jan15 := util.NewDate(2024, 1, 15)

	t.Run("get and set roundtrip without a store", func(t *testing.T) {
		cache := NewPriceCache(nil)

		_, ok := cache.Get("2330", jan15)
		require.False(t, ok)

		cache.Set("2330", jan15, decimal.NewFromInt(593))

		price, ok := cache.Get("2330", jan15)
		require.True(t, ok)
		require.True(t, decimal.NewFromInt(593).Equal(price))
	})

	t.Run("same instrument on different dates are distinct entries", func(t *testing.T) {
		cache := NewPriceCache(nil)
		cache.Set("2330", jan15, decimal.NewFromInt(593))
		cache.Set("2330", util.NewDate(2024, 1, 16), decimal.NewFromInt(600))

		require.Equal(t, 2, cache.Len())
	})

	t.Run("writes mirror to the store under the prefixed key", func(t *testing.T) {
		store := newFakeCacheStore()
		cache := NewPriceCache(store)

		cache.Set("2330", jan15, decimal.NewFromFloat(593.5))

		entry, ok := store.entries["price_2330_2024-01-15"]
		require.True(t, ok)
		require.Equal(t, "593.5", entry.Value)
	})

	t.Run("warms from the store on startup", func(t *testing.T) {
		store := newFakeCacheStore()
		require.NoError(t, store.Set("price_2330_2024-01-15", "593.5"))

		cache := NewPriceCache(store)

		price, ok := cache.Get("2330", jan15)
		require.True(t, ok)
		require.True(t, decimal.NewFromFloat(593.5).Equal(price))
	})

	t.Run("store failure keeps the memory copy", func(t *testing.T) {
		store := newFakeCacheStore()
		store.failSet = true
		cache := NewPriceCache(store)

		cache.Set("2330", jan15, decimal.NewFromInt(593))

		price, ok := cache.Get("2330", jan15)
		require.True(t, ok)
		require.True(t, decimal.NewFromInt(593).Equal(price))
	})

	t.Run("mirror failure evicts the oldest entries beyond the cap", func(t *testing.T) {
		store := newFakeCacheStore()
		cache := NewPriceCache(store)

		for day := 0; day < maxPersistedEntries; day++ {
			cache.Set("2330", jan15.AddDate(0, 0, day), decimal.NewFromInt(int64(500+day)))
		}
		require.Equal(t, maxPersistedEntries, cache.Len())

		store.failSet = true
		cache.Set("2317", jan15, decimal.NewFromInt(180))

		// one over the cap while the store is failing: the oldest entry goes
		require.Equal(t, maxPersistedEntries, cache.Len())
		_, ok := cache.Get("2330", jan15)
		require.False(t, ok)
		_, ok = cache.Get("2317", jan15)
		require.True(t, ok)
	})

	t.Run("clear drops memory and mirror", func(t *testing.T) {
		store := newFakeCacheStore()
		cache := NewPriceCache(store)
		cache.Set("2330", jan15, decimal.NewFromInt(593))

		cache.Clear()

		require.Equal(t, 0, cache.Len())
		require.Empty(t, store.entries)
	})
}
