package internal

import (
	"beat0050/internal/domain"
	"beat0050/internal/logger"
	"beat0050/internal/service"
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// replayOversellTolerance allows 0.1% slack before a sell counts as
// divergent. The single-instrument replay of a diversified portfolio can
// legitimately come up slightly short from fee rounding alone.
var replayOversellTolerance = decimal.NewFromFloat(1.001)

// BenchmarkReplayHandler replays the user's cash flows against a single
// benchmark instrument: every buy becomes a benchmark buy of the same
// amount, every sell liquidates the benchmark quantity needed to net the
// same proceeds. This is a modeling approximation - a sell can exceed what
// the replay has accumulated, in which case the ledger liquidates fully,
// records an anomaly, and keeps going from an empty position.
type BenchmarkReplayHandler struct {
	PriceService   service.PriceService
	Symbol         string
	CommissionRate decimal.Decimal
	TaxRate        decimal.Decimal
}

func (h BenchmarkReplayHandler) ComputeBenchmarkPerformance(ctx context.Context, transactions []domain.Transaction) (*domain.BenchmarkSummary, error) {
	tracker := &replayTracker{
		handler:       h,
		totalInvested: decimal.Zero,
		realizedPL:    decimal.Zero,
		anomalies:     []domain.ReplayAnomaly{},
	}

	for _, txn := range transactions {
		var err error
		switch txn.Kind {
		case domain.TransactionKindBuy:
			err = tracker.processBuy(ctx, txn.Date, txn.Amount)
		case domain.TransactionKindSell:
			err = tracker.processSell(ctx, txn.Date, txn.Amount, txn.Symbol)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to replay transaction on %s: %w", txn.Date.Format("2006-01-02"), err)
		}
	}

	return tracker.finalize(ctx)
}

type replayTracker struct {
	handler       BenchmarkReplayHandler
	lots          domain.LotQueue
	totalInvested decimal.Decimal
	realizedPL    decimal.Decimal
	anomalies     []domain.ReplayAnomaly
}

// buyPricePerLot is what one lot costs including commission.
func (t *replayTracker) buyPricePerLot(price decimal.Decimal) decimal.Decimal {
	return price.Mul(sharesPerLot).Mul(decimal.NewFromInt(1).Add(t.handler.CommissionRate))
}

// sellNetPerLot is what one lot nets after commission and transaction tax.
func (t *replayTracker) sellNetPerLot(price decimal.Decimal) decimal.Decimal {
	return price.Mul(sharesPerLot).Mul(
		decimal.NewFromInt(1).Sub(t.handler.CommissionRate).Sub(t.handler.TaxRate),
	)
}

func (t *replayTracker) processBuy(ctx context.Context, date time.Time, amount decimal.Decimal) error {
	price, err := t.handler.PriceService.ResolveDatedPrice(ctx, t.handler.Symbol, date)
	if err != nil {
		return err
	}

	costPerLot := t.buyPricePerLot(price)
	quantity := amount.Div(costPerLot)

	t.lots.Push(domain.Lot{
		Date:       date,
		Quantity:   quantity,
		CostPerLot: costPerLot,
		TotalCost:  amount,
	})
	t.totalInvested = t.totalInvested.Add(amount)

	return nil
}

func (t *replayTracker) processSell(ctx context.Context, date time.Time, amount decimal.Decimal, originalSymbol string) error {
	log := logger.FromContext(ctx)

	price, err := t.handler.PriceService.ResolveDatedPrice(ctx, t.handler.Symbol, date)
	if err != nil {
		return err
	}

	quantityNeeded := amount.Div(t.sellNetPerLot(price))
	held := t.lots.TotalQuantity()

	if quantityNeeded.GreaterThan(held.Mul(replayOversellTolerance)) {
		// the user's real portfolio sold more value than the replay has
		// accumulated by this date: liquidate fully, record the divergence,
		// continue from an empty position
		shortfall := quantityNeeded.Sub(held)
		t.anomalies = append(t.anomalies, domain.ReplayAnomaly{
			Date:            date,
			OriginalSymbol:  originalSymbol,
			UserSellAmount:  amount,
			HoldingValue:    held.Mul(price).Mul(sharesPerLot),
			ShortfallAmount: shortfall.Mul(price).Mul(sharesPerLot),
		})

		liquidated, cost := t.lots.Drain()
		proceeds := liquidated.Mul(t.sellNetPerLot(price))
		t.realizedPL = t.realizedPL.Add(proceeds.Sub(cost))

		log.Warnf("benchmark replay divergence on %s: sell of %s needs %s lots, only %s held; liquidated",
			date.Format("2006-01-02"), originalSymbol, quantityNeeded.StringFixed(4), held.StringFixed(4))
		return nil
	}

	cost, _ := t.lots.Consume(quantityNeeded)
	t.realizedPL = t.realizedPL.Add(amount.Sub(cost))

	return nil
}

func (t *replayTracker) finalize(ctx context.Context) (*domain.BenchmarkSummary, error) {
	latestPrice, err := t.handler.PriceService.ResolveLatestPrice(ctx, t.handler.Symbol)
	if err != nil {
		return nil, err
	}

	currentLots := t.lots.TotalQuantity()
	openCost := t.lots.TotalCost()
	currentValue := currentLots.Mul(latestPrice).Mul(sharesPerLot)
	unrealizedPL := currentValue.Sub(openCost)
	totalPL := t.realizedPL.Add(unrealizedPL)

	returnRate := 0.0
	if t.totalInvested.IsPositive() {
		returnRate = totalPL.Div(t.totalInvested).Mul(decimal.NewFromInt(100)).InexactFloat64()
	}

	return &domain.BenchmarkSummary{
		Symbol:        t.handler.Symbol,
		TotalInvested: t.totalInvested,
		CurrentValue:  currentValue,
		CurrentLots:   currentLots,
		RealizedPL:    t.realizedPL,
		UnrealizedPL:  unrealizedPL,
		TotalPL:       totalPL,
		ReturnRate:    returnRate,
		Anomalies:     t.anomalies,
	}, nil
}
