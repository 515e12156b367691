package internal

import (
	"beat0050/internal/domain"
	"beat0050/internal/repository"
	"beat0050/internal/util"
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

type BenchmarkChartHandler struct {
	YahooRepository repository.YahooRepository
}

// IntraPeriodChangeResult is the chart series plus dispersion stats over
// the same window.
type IntraPeriodChangeResult struct {
	Changes         map[time.Time]float64
	AnnualizedStdev float64
}

// GetIntraPeriodChange gets historic prices for an asset and converts them
// to % change from the period start.
func (h BenchmarkChartHandler) GetIntraPeriodChange(
	ctx context.Context,
	symbol string,
	start,
	end time.Time,
	granularity time.Duration,
) (*IntraPeriodChangeResult, error) {
	prices, err := h.YahooRepository.GetDailyHistory(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, fmt.Errorf("no prices found for symbol %s between %v and %v", symbol, start, end)
	}

	stdev, err := annualizedStdev(prices)
	if err != nil {
		return nil, err
	}

	return &IntraPeriodChangeResult{
		Changes:         intraPeriodChangeIterator(prices, end, granularity),
		AnnualizedStdev: stdev,
	}, nil
}

func intraPeriodChangeIterator(
	prices []domain.AssetPrice,
	end time.Time,
	granularity time.Duration,
) map[time.Time]float64 {
	layout := "2006-01-02"

	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Date.Before(prices[j].Date)
	})

	i := 1
	out := map[time.Time]float64{
		prices[0].Date: 0,
	}
	nextTarget := prices[0].Date.Add(granularity)
	for i < len(prices) && util.DateLte(prices[i].Date, end) {
		for nextTarget.Format(layout) < prices[i].Date.Format(layout) {
			nextTarget = nextTarget.Add(24 * time.Hour)
		}
		if prices[i].Date.Format(layout) == nextTarget.Format(layout) {
			out[nextTarget] = decimal.NewFromInt(100).
				Mul(prices[i].Price.Sub(prices[0].Price)).
				Div(prices[0].Price).
				InexactFloat64()
			nextTarget = nextTarget.Add(granularity)
		}
		i++
	}

	return out
}

const tradingDaysPerYear = 252

// annualizedStdev is the sample stdev of daily returns scaled to a year.
func annualizedStdev(prices []domain.AssetPrice) (float64, error) {
	if len(prices) < 3 {
		return 0, nil
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		prev := prices[i-1].Price
		if prev.IsZero() {
			continue
		}
		returns = append(returns, prices[i].Price.Sub(prev).Div(prev).Mul(decimal.NewFromInt(100)).InexactFloat64())
	}

	stdev, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate stdev: %w", err)
	}

	return stdev * math.Sqrt(tradingDaysPerYear), nil
}
