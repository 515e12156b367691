package repository

import (
	"beat0050/internal/domain"
	"beat0050/internal/util"
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"
)

// YahooRepository is the secondary quote source. Taiwan listings carry a
// .TW suffix on Yahoo Finance.
type YahooRepository interface {
	GetDailyClose(ctx context.Context, symbol string, date time.Time) (*decimal.Decimal, error)
	GetLatestPrice(ctx context.Context, symbol string) (*domain.AssetPrice, error)
	GetDailyHistory(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error)
}

func NewYahooRepository() YahooRepository {
	return &yahooRepositoryHandler{}
}

type yahooRepositoryHandler struct{}

func yahooSymbol(symbol string) string {
	return symbol + ".TW"
}

func (h yahooRepositoryHandler) GetDailyClose(ctx context.Context, symbol string, date time.Time) (*decimal.Decimal, error) {
	start := util.TruncateToDay(date)
	end := start.AddDate(0, 0, 1)

	params := &chart.Params{
		Symbol:   yahooSymbol(symbol),
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	for iter.Next() {
		bar := iter.Bar()
		if bar.Close.IsZero() {
			// no trade that day, likely a holiday
			return nil, nil
		}
		price := bar.Close
		return &price, nil
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get chart for %s: %w", symbol, err)
	}

	return nil, nil
}

func (h yahooRepositoryHandler) GetLatestPrice(ctx context.Context, symbol string) (*domain.AssetPrice, error) {
	q, err := quote.Get(yahooSymbol(symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}
	if q == nil {
		return nil, nil
	}

	price := q.RegularMarketPrice
	if price == 0 {
		price = q.RegularMarketPreviousClose
	}
	if price == 0 {
		return nil, nil
	}

	return &domain.AssetPrice{
		Symbol: symbol,
		Price:  decimal.NewFromFloat(price),
		Date:   util.TruncateToDay(time.Now().UTC()),
	}, nil
}

// GetDailyHistory streams daily closes for a date range. Used by the
// history refresh script to rebuild the local benchmark dataset.
func (h yahooRepositoryHandler) GetDailyHistory(ctx context.Context, symbol string, start, end time.Time) ([]domain.AssetPrice, error) {
	params := &chart.Params{
		Symbol:   yahooSymbol(symbol),
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	prices := []domain.AssetPrice{}
	for iter.Next() {
		bar := iter.Bar()
		if bar.Close.IsZero() {
			continue
		}
		prices = append(prices, domain.AssetPrice{
			Symbol: symbol,
			Price:  bar.Close,
			Date:   util.TruncateToDay(time.Unix(int64(bar.Timestamp), 0).UTC()),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get history for %s: %w", symbol, err)
	}

	return prices, nil
}
