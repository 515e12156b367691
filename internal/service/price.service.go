package service

import (
	"beat0050/internal/domain"
	"beat0050/internal/logger"
	"beat0050/internal/repository"
	"beat0050/internal/util"
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// batch latest-price lookups run in small groups with a pause in between,
// to stay under the external sources' rate limits
const (
	latestPriceBatchSize  = 5
	latestPriceBatchDelay = 500 * time.Millisecond
)

// PriceService resolves close prices with a fixed source priority: the
// local benchmark history file (benchmark instrument only), then TWSE, then
// Yahoo Finance. Individual source failures are recovered internally; a
// lookup that exhausts the chain returns domain.PriceUnavailableError.
type PriceService interface {
	ResolveDatedPrice(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, error)
	ResolveLatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	ResolveBatchLatest(ctx context.Context, symbols []string) map[string]*decimal.Decimal
}

func NewPriceService(
	cache *PriceCache,
	benchmarkHistory repository.BenchmarkHistoryRepository,
	twseRepository repository.TwseRepository,
	yahooRepository repository.YahooRepository,
	benchmarkSymbol string,
) PriceService {
	return &priceServiceHandler{
		Cache:            cache,
		BenchmarkHistory: benchmarkHistory,
		TwseRepository:   twseRepository,
		YahooRepository:  yahooRepository,
		BenchmarkSymbol:  benchmarkSymbol,
	}
}

type priceServiceHandler struct {
	Cache            *PriceCache
	BenchmarkHistory repository.BenchmarkHistoryRepository
	TwseRepository   repository.TwseRepository
	YahooRepository  repository.YahooRepository
	BenchmarkSymbol  string
}

func (h priceServiceHandler) ResolveDatedPrice(ctx context.Context, symbol string, date time.Time) (decimal.Decimal, error) {
	log := logger.FromContext(ctx)
	date = util.TruncateToDay(date)

	// the pre-baked dataset only covers the benchmark instrument
	if symbol == h.BenchmarkSymbol && h.BenchmarkHistory != nil {
		price, err := h.BenchmarkHistory.GetClose(date)
		if err != nil {
			log.Warnf("benchmark history lookup failed: %v", err)
		} else if price != nil {
			return *price, nil
		}
	}

	if price, ok := h.Cache.Get(symbol, date); ok {
		return price, nil
	}

	price, err := h.TwseRepository.GetDailyClose(ctx, symbol, date)
	if err != nil {
		log.Warnf("twse lookup failed for %s on %s, falling back to yahoo: %v", symbol, date.Format("2006-01-02"), err)
	} else if price != nil {
		h.Cache.Set(symbol, date, *price)
		return *price, nil
	}

	price, err = h.YahooRepository.GetDailyClose(ctx, symbol, date)
	if err != nil {
		log.Warnf("yahoo lookup failed for %s on %s: %v", symbol, date.Format("2006-01-02"), err)
	} else if price != nil {
		h.Cache.Set(symbol, date, *price)
		return *price, nil
	}

	return decimal.Zero, &domain.PriceUnavailableError{Symbol: symbol, Date: &date}
}

func (h priceServiceHandler) ResolveLatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	log := logger.FromContext(ctx)

	latest, err := h.TwseRepository.GetLatestPrice(ctx, symbol)
	if err != nil {
		log.Warnf("twse latest price failed for %s, falling back to yahoo: %v", symbol, err)
	} else if latest != nil {
		return latest.Price, nil
	}

	latest, err = h.YahooRepository.GetLatestPrice(ctx, symbol)
	if err != nil {
		log.Warnf("yahoo latest price failed for %s: %v", symbol, err)
	} else if latest != nil {
		return latest.Price, nil
	}

	return decimal.Zero, &domain.PriceUnavailableError{Symbol: symbol}
}

// ResolveBatchLatest fetches latest prices for many instruments. One
// instrument failing maps to a nil entry; the batch itself never fails.
func (h priceServiceHandler) ResolveBatchLatest(ctx context.Context, symbols []string) map[string]*decimal.Decimal {
	log := logger.FromContext(ctx)

	out := map[string]*decimal.Decimal{}
	var mu sync.Mutex

	for i := 0; i < len(symbols); i += latestPriceBatchSize {
		group := symbols[i:min(i+latestPriceBatchSize, len(symbols))]

		var wg sync.WaitGroup
		for _, symbol := range group {
			wg.Add(1)
			go func(symbol string) {
				defer wg.Done()
				price, err := h.ResolveLatestPrice(ctx, symbol)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					log.Warnf("failed to resolve latest price for %s: %v", symbol, err)
					out[symbol] = nil
					return
				}
				out[symbol] = &price
			}(symbol)
		}
		wg.Wait()

		if i+latestPriceBatchSize < len(symbols) {
			time.Sleep(latestPriceBatchDelay)
		}
	}

	return out
}
