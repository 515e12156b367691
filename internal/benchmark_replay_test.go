package internal

import (
	"beat0050/internal/domain"
	"beat0050/internal/util"
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newReplayHandler(prices fakePriceService, commission, tax float64) BenchmarkReplayHandler {
	return BenchmarkReplayHandler{
		PriceService:   prices,
		Symbol:         "0050",
		CommissionRate: decimal.NewFromFloat(commission),
		TaxRate:        decimal.NewFromFloat(tax),
	}
}

func TestBenchmarkReplayHandler_ComputeBenchmarkPerformance(t *testing.T) {
	ctx := context.Background()
	jan2 := util.NewDate(2024, 1, 2)
	jan10 := util.NewDate(2024, 1, 10)

	t.Run("buys accumulate benchmark lots", func(t *testing.T) {
		handler := newReplayHandler(fakePriceService{
			dated:  map[string]decimal.Decimal{"0050_2024-01-02": decimal.NewFromInt(100)},
			latest: map[string]decimal.Decimal{"0050": decimal.NewFromInt(125)},
		}, 0, 0)

		summary, err := handler.ComputeBenchmarkPerformance(ctx, []domain.Transaction{
			buyTxn(jan2, "2330", 2, 200000),
		})
		require.NoError(t, err)

		require.True(t, decimal.NewFromInt(2).Equal(summary.CurrentLots), "lots were %s", summary.CurrentLots)
		require.True(t, decimal.NewFromInt(200000).Equal(summary.TotalInvested))
		require.True(t, decimal.NewFromInt(250000).Equal(summary.CurrentValue))
		require.True(t, decimal.NewFromInt(50000).Equal(summary.UnrealizedPL))
		require.InDelta(t, 25.0, summary.ReturnRate, 1e-9)
		require.Empty(t, summary.Anomalies)
	})

	t.Run("sell liquidates the quantity needed to net the same proceeds", func(t *testing.T) {
		handler := newReplayHandler(fakePriceService{
			dated: map[string]decimal.Decimal{
				"0050_2024-01-02": decimal.NewFromInt(100),
				"0050_2024-01-10": decimal.NewFromInt(100),
			},
			latest: map[string]decimal.Decimal{"0050": decimal.NewFromInt(125)},
		}, 0, 0)

		summary, err := handler.ComputeBenchmarkPerformance(ctx, []domain.Transaction{
			buyTxn(jan2, "2330", 2, 200000),
			sellTxn(jan10, "2330", 1, 100000),
		})
		require.NoError(t, err)

		require.True(t, decimal.NewFromInt(1).Equal(summary.CurrentLots))
		require.True(t, summary.RealizedPL.IsZero(), "realized was %s", summary.RealizedPL)
		require.True(t, decimal.NewFromInt(125000).Equal(summary.CurrentValue))
		require.InDelta(t, 12.5, summary.ReturnRate, 1e-9)
		require.Empty(t, summary.Anomalies)
	})

	t.Run("fees raise buy cost and shrink sell proceeds", func(t *testing.T) {
		handler := newReplayHandler(fakePriceService{
			dated: map[string]decimal.Decimal{
				"0050_2024-01-02": decimal.NewFromInt(100),
				"0050_2024-01-10": decimal.NewFromInt(100),
			},
			latest: map[string]decimal.Decimal{"0050": decimal.NewFromInt(100)},
		}, 0.001425, 0.003)

		// 100142.5 buys exactly one lot at 100/share with commission;
		// 99557.5 is exactly what one lot nets after commission and tax
		summary, err := handler.ComputeBenchmarkPerformance(ctx, []domain.Transaction{
			buyTxn(jan2, "2330", 1, 100142.5),
			sellTxn(jan10, "2330", 1, 99557.5),
		})
		require.NoError(t, err)

		require.True(t, summary.CurrentLots.IsZero(), "lots were %s", summary.CurrentLots)
		require.True(t, decimal.NewFromFloat(-585).Equal(summary.RealizedPL), "realized was %s", summary.RealizedPL)
		require.Empty(t, summary.Anomalies)
	})

	t.Run("divergent sell liquidates fully and records an anomaly", func(t *testing.T) {
		handler := newReplayHandler(fakePriceService{
			dated: map[string]decimal.Decimal{
				"0050_2024-01-02": decimal.NewFromInt(100),
				"0050_2024-01-10": decimal.NewFromInt(100),
			},
			latest: map[string]decimal.Decimal{"0050": decimal.NewFromInt(100)},
		}, 0, 0)

		summary, err := handler.ComputeBenchmarkPerformance(ctx, []domain.Transaction{
			buyTxn(jan2, "2330", 1, 100000),
			sellTxn(jan10, "2330", 5, 500000),
		})
		require.NoError(t, err)

		require.Len(t, summary.Anomalies, 1)
		anomaly := summary.Anomalies[0]
		require.Equal(t, jan10, anomaly.Date)
		require.Equal(t, "2330", anomaly.OriginalSymbol)
		require.True(t, decimal.NewFromInt(500000).Equal(anomaly.UserSellAmount))
		require.True(t, decimal.NewFromInt(100000).Equal(anomaly.HoldingValue))
		require.True(t, decimal.NewFromInt(400000).Equal(anomaly.ShortfallAmount))

		// position was liquidated at cost, nothing open afterwards
		require.True(t, summary.CurrentLots.IsZero())
		require.True(t, summary.RealizedPL.IsZero())
		require.True(t, summary.CurrentValue.IsZero())
	})

	t.Run("sell with nothing held diverges immediately", func(t *testing.T) {
		handler := newReplayHandler(fakePriceService{
			dated:  map[string]decimal.Decimal{"0050_2024-01-10": decimal.NewFromInt(100)},
			latest: map[string]decimal.Decimal{"0050": decimal.NewFromInt(100)},
		}, 0, 0)

		summary, err := handler.ComputeBenchmarkPerformance(ctx, []domain.Transaction{
			sellTxn(jan10, "2330", 1, 100000),
		})
		require.NoError(t, err)

		require.Len(t, summary.Anomalies, 1)
		require.True(t, summary.Anomalies[0].HoldingValue.IsZero())
		require.True(t, summary.RealizedPL.IsZero())
	})

	t.Run("replay keeps going after a divergence", func(t *testing.T) {
		handler := newReplayHandler(fakePriceService{
			dated: map[string]decimal.Decimal{
				"0050_2024-01-02": decimal.NewFromInt(100),
				"0050_2024-01-10": decimal.NewFromInt(100),
				"0050_2024-01-15": decimal.NewFromInt(100),
			},
			latest: map[string]decimal.Decimal{"0050": decimal.NewFromInt(110)},
		}, 0, 0)

		summary, err := handler.ComputeBenchmarkPerformance(ctx, []domain.Transaction{
			buyTxn(jan2, "2330", 1, 100000),
			sellTxn(jan10, "2330", 5, 500000),
			buyTxn(util.NewDate(2024, 1, 15), "2317", 1, 100000),
		})
		require.NoError(t, err)

		require.Len(t, summary.Anomalies, 1)
		require.True(t, decimal.NewFromInt(1).Equal(summary.CurrentLots))
		require.True(t, decimal.NewFromInt(110000).Equal(summary.CurrentValue))
	})

	t.Run("missing dated price fails the replay", func(t *testing.T) {
		handler := newReplayHandler(fakePriceService{
			latest: map[string]decimal.Decimal{"0050": decimal.NewFromInt(100)},
		}, 0, 0)

		_, err := handler.ComputeBenchmarkPerformance(ctx, []domain.Transaction{
			buyTxn(jan2, "2330", 1, 100000),
		})

		require.Error(t, err)
		require.True(t, domain.IsPriceUnavailable(err))
	})
}
