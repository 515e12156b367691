package cmd

import (
	"beat0050/api"
	"beat0050/internal"
	"beat0050/internal/app"
	"beat0050/internal/repository"
	"beat0050/internal/service"
	"beat0050/internal/statement"
	"beat0050/internal/util"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

func InitializeDependencies() (*api.ApiHandler, error) {
	cfg, err := util.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cacheStore, err := repository.NewPriceCacheStore(cfg.PriceCache.DbFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open price cache store: %w", err)
	}
	priceCache := service.NewPriceCache(cacheStore)

	httpClient := &http.Client{Timeout: 10 * time.Second}
	twseRepository := repository.NewTwseRepository(httpClient)
	yahooRepository := repository.NewYahooRepository()
	benchmarkHistory := repository.NewBenchmarkHistoryRepository(cfg.Benchmark.HistoryFile)

	priceService := service.NewPriceService(
		priceCache,
		benchmarkHistory,
		twseRepository,
		yahooRepository,
		cfg.Benchmark.Symbol,
	)

	nameMap, err := statement.LoadNameMap(cfg.NameMapFile)
	if err != nil {
		// statement uploads degrade to code-only lookups without it
		zap.S().Warnf("name map unavailable: %v", err)
		nameMap = statement.NewNameMap(nil)
	}

	apiHandler := &api.ApiHandler{
		CompareHandler: app.CompareHandler{
			PerformanceHandler: internal.PerformanceHandler{
				PriceService: priceService,
			},
			ReplayHandler: internal.BenchmarkReplayHandler{
				PriceService:   priceService,
				Symbol:         cfg.Benchmark.Symbol,
				CommissionRate: cfg.Fees.CommissionRate,
				TaxRate:        cfg.Fees.TaxRate,
			},
		},
		ChartHandler: internal.BenchmarkChartHandler{
			YahooRepository: yahooRepository,
		},
		PriceService: priceService,
		NameMap:      nameMap,
		ApiPort:      cfg.ApiPort,
	}

	return apiHandler, nil
}
