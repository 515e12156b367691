package internal

import (
	"beat0050/internal/domain"
	"beat0050/internal/logger"
	"beat0050/internal/service"
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// sharesPerLot converts lot quantities to share counts for per-share costs
// and market values.
var sharesPerLot = decimal.NewFromInt(1000)

// PerformanceHandler computes the user's actual performance: a FIFO lot
// ledger per instrument, realized P&L from completed sells, unrealized P&L
// on whatever is still open at the latest price.
type PerformanceHandler struct {
	PriceService service.PriceService
}

func (h PerformanceHandler) ComputePerformance(ctx context.Context, transactions []domain.Transaction) (*domain.PerformanceSummary, error) {
	log := logger.FromContext(ctx)

	tracker := newPortfolioTracker()
	for _, txn := range transactions {
		switch txn.Kind {
		case domain.TransactionKindBuy:
			tracker.buy(txn.Symbol, txn.QuantityLots, txn.Date, txn.Amount)
		case domain.TransactionKindSell:
			tracker.sell(ctx, txn.Symbol, txn.QuantityLots, txn.Amount)
		}
	}

	openPositions := tracker.currentHoldings()
	symbols := make([]string, 0, len(openPositions))
	for _, position := range openPositions {
		symbols = append(symbols, position.Symbol)
	}

	latestPrices := h.PriceService.ResolveBatchLatest(ctx, symbols)

	currentValue := decimal.Zero
	openCost := decimal.Zero
	holdings := make([]domain.Holding, 0, len(openPositions))
	for _, position := range openPositions {
		openCost = openCost.Add(position.TotalCost)

		latest := latestPrices[position.Symbol]
		if latest == nil {
			// no latest quote anywhere: value at average cost and flag it
			log.Warnf("no latest price for %s, valuing at average cost", position.Symbol)
			position.LatestPrice = position.AvgCostPerShare
			position.MarketValue = position.TotalCost
			position.UnrealizedPL = decimal.Zero
			position.PriceMissing = true
			currentValue = currentValue.Add(position.MarketValue)
			holdings = append(holdings, position)
			continue
		}

		position.LatestPrice = *latest
		position.MarketValue = position.QuantityLots.Mul(*latest).Mul(sharesPerLot)
		position.UnrealizedPL = position.MarketValue.Sub(position.TotalCost)
		if position.TotalCost.IsPositive() {
			position.UnrealizedPLPercent = position.UnrealizedPL.
				Div(position.TotalCost).
				Mul(decimal.NewFromInt(100)).
				InexactFloat64()
		}
		currentValue = currentValue.Add(position.MarketValue)
		holdings = append(holdings, position)
	}

	realizedPL := tracker.totalProceeds.Sub(tracker.totalInvested.Sub(openCost))
	unrealizedPL := currentValue.Sub(openCost)
	totalPL := realizedPL.Add(unrealizedPL)

	returnRate := 0.0
	if tracker.totalInvested.IsPositive() {
		returnRate = totalPL.Div(tracker.totalInvested).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	return &domain.PerformanceSummary{
		TotalInvested: tracker.totalInvested,
		TotalProceeds: tracker.totalProceeds,
		CurrentValue:  currentValue,
		RealizedPL:    realizedPL,
		UnrealizedPL:  unrealizedPL,
		TotalPL:       totalPL,
		ReturnRate:    returnRate,
		Holdings:      holdings,
	}, nil
}

// portfolioTracker is the FIFO lot ledger over the user's real
// transactions. Invariant: totalInvested splits exactly between consumed
// lot cost (realized against sells) and open lot cost.
type portfolioTracker struct {
	holdings      map[string]*domain.LotQueue
	totalInvested decimal.Decimal
	totalProceeds decimal.Decimal
}

func newPortfolioTracker() *portfolioTracker {
	return &portfolioTracker{
		holdings:      map[string]*domain.LotQueue{},
		totalInvested: decimal.Zero,
		totalProceeds: decimal.Zero,
	}
}

func (t *portfolioTracker) buy(symbol string, quantityLots decimal.Decimal, date time.Time, cost decimal.Decimal) {
	queue, ok := t.holdings[symbol]
	if !ok {
		queue = &domain.LotQueue{}
		t.holdings[symbol] = queue
	}

	queue.Push(domain.Lot{
		Date:       date,
		Quantity:   quantityLots,
		CostPerLot: cost.Div(quantityLots),
		TotalCost:  cost,
	})
	t.totalInvested = t.totalInvested.Add(cost)
}

// sell consumes lots oldest-first and returns the consumed cost basis.
// Selling more than is tracked is a normalization gap, not a fatal error:
// the shortfall is logged and the sell consumes whatever is open.
func (t *portfolioTracker) sell(ctx context.Context, symbol string, quantityLots, proceeds decimal.Decimal) decimal.Decimal {
	log := logger.FromContext(ctx)

	t.totalProceeds = t.totalProceeds.Add(proceeds)

	queue, ok := t.holdings[symbol]
	if !ok {
		log.Warnf("sell of %s lots of %s with no tracked holdings", quantityLots.String(), symbol)
		return decimal.Zero
	}

	cost, consumed := queue.Consume(quantityLots)
	if consumed.LessThan(quantityLots) {
		log.Warnf("sell of %s exceeds tracked holdings by %s lots", symbol, quantityLots.Sub(consumed).String())
	}
	if queue.Len() == 0 {
		delete(t.holdings, symbol)
	}

	return cost
}

// currentHoldings aggregates open lots per instrument, sorted by symbol so
// output ordering is stable.
func (t *portfolioTracker) currentHoldings() []domain.Holding {
	holdings := []domain.Holding{}

	for symbol, queue := range t.holdings {
		quantity := queue.TotalQuantity()
		if !quantity.IsPositive() {
			continue
		}
		totalCost := queue.TotalCost()
		holdings = append(holdings, domain.Holding{
			Symbol:          symbol,
			QuantityLots:    quantity,
			AvgCostPerShare: totalCost.Div(quantity.Mul(sharesPerLot)),
			TotalCost:       totalCost,
		})
	}

	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].Symbol < holdings[j].Symbol
	})

	return holdings
}
