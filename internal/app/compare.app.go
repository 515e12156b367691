package app

import (
	"beat0050/internal"
	"beat0050/internal/domain"
	"context"
	"fmt"
	"sync"
)

// CompareHandler runs the full pipeline: normalize the raw records, replay
// them through the real-portfolio ledger and the benchmark ledger, then
// combine the two summaries into the final verdict. The two ledgers share
// no state besides the price cache, so they run concurrently; each one
// still consumes its transactions strictly in trade-date order.
type CompareHandler struct {
	PerformanceHandler internal.PerformanceHandler
	ReplayHandler      internal.BenchmarkReplayHandler
}

type CompareResult struct {
	Normalize  internal.NormalizeResult `json:"normalize"`
	Comparison domain.Comparison        `json:"comparison"`
}

func (h CompareHandler) Compare(ctx context.Context, raw []domain.RawTransaction) (*CompareResult, error) {
	normalized := internal.NormalizeTransactions(ctx, raw)
	if !normalized.Valid() {
		return &CompareResult{Normalize: normalized}, domain.ErrInvalidTransactions
	}

	var (
		wg               sync.WaitGroup
		userSummary      *domain.PerformanceSummary
		benchmarkSummary *domain.BenchmarkSummary
		userErr          error
		benchmarkErr     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		userSummary, userErr = h.PerformanceHandler.ComputePerformance(ctx, normalized.Transactions)
	}()
	go func() {
		defer wg.Done()
		benchmarkSummary, benchmarkErr = h.ReplayHandler.ComputeBenchmarkPerformance(ctx, normalized.Transactions)
	}()
	wg.Wait()

	// either both ledgers complete or the whole comparison fails - partial
	// numbers would be silently wrong
	if userErr != nil {
		return nil, fmt.Errorf("failed to compute portfolio performance: %w", userErr)
	}
	if benchmarkErr != nil {
		return nil, fmt.Errorf("failed to compute benchmark performance: %w", benchmarkErr)
	}

	return &CompareResult{
		Normalize:  normalized,
		Comparison: domain.NewComparison(*userSummary, *benchmarkSummary),
	}, nil
}
