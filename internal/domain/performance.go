package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is an aggregated open position with its latest valuation.
// PriceMissing marks positions valued at average cost because no latest
// price could be resolved.
type Holding struct {
	Symbol              string          `json:"symbol"`
	QuantityLots        decimal.Decimal `json:"quantityLots"`
	AvgCostPerShare     decimal.Decimal `json:"avgCostPerShare"`
	TotalCost           decimal.Decimal `json:"totalCost"`
	LatestPrice         decimal.Decimal `json:"latestPrice"`
	MarketValue         decimal.Decimal `json:"marketValue"`
	UnrealizedPL        decimal.Decimal `json:"unrealizedPL"`
	UnrealizedPLPercent float64         `json:"unrealizedPLPercent"`
	PriceMissing        bool            `json:"priceMissing,omitempty"`
}

type PerformanceSummary struct {
	TotalInvested decimal.Decimal `json:"totalInvested"`
	TotalProceeds decimal.Decimal `json:"totalProceeds"`
	CurrentValue  decimal.Decimal `json:"currentValue"`
	RealizedPL    decimal.Decimal `json:"realizedPL"`
	UnrealizedPL  decimal.Decimal `json:"unrealizedPL"`
	TotalPL       decimal.Decimal `json:"totalPL"`
	ReturnRate    float64         `json:"returnRate"`
	Holdings      []Holding       `json:"holdings"`
}

// ReplayAnomaly records a benchmark-replay sell that exceeded the simulated
// holdings. The replay liquidates and continues; the anomaly makes the
// divergence visible instead of silently skewing the comparison.
type ReplayAnomaly struct {
	Date            time.Time       `json:"date"`
	OriginalSymbol  string          `json:"originalSymbol"`
	UserSellAmount  decimal.Decimal `json:"userSellAmount"`
	HoldingValue    decimal.Decimal `json:"holdingValue"`
	ShortfallAmount decimal.Decimal `json:"shortfallAmount"`
}

type BenchmarkSummary struct {
	Symbol        string          `json:"symbol"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	CurrentValue  decimal.Decimal `json:"currentValue"`
	CurrentLots   decimal.Decimal `json:"currentLots"`
	RealizedPL    decimal.Decimal `json:"realizedPL"`
	UnrealizedPL  decimal.Decimal `json:"unrealizedPL"`
	TotalPL       decimal.Decimal `json:"totalPL"`
	ReturnRate    float64         `json:"returnRate"`
	Anomalies     []ReplayAnomaly `json:"anomalies"`
}

// Comparison is the final user-vs-benchmark verdict. Difference is in
// percentage points.
type Comparison struct {
	User       PerformanceSummary `json:"user"`
	Benchmark  BenchmarkSummary   `json:"benchmark"`
	Difference float64            `json:"difference"`
	IsBetter   bool               `json:"isBetter"`
}

func NewComparison(user PerformanceSummary, benchmark BenchmarkSummary) Comparison {
	difference := user.ReturnRate - benchmark.ReturnRate
	return Comparison{
		User:       user,
		Benchmark:  benchmark,
		Difference: difference,
		IsBetter:   difference > 0,
	}
}
