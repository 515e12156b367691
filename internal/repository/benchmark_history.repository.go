package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// BenchmarkHistoryRepository serves the pre-baked daily close dataset for
// the benchmark instrument. It is the cheapest source in the chain; a
// missing or unreadable file just means every lookup misses.
type BenchmarkHistoryRepository interface {
	GetClose(date time.Time) (*decimal.Decimal, error)
}

func NewBenchmarkHistoryRepository(filePath string) BenchmarkHistoryRepository {
	return &benchmarkHistoryHandler{
		FilePath: filePath,
	}
}

type benchmarkHistoryHandler struct {
	FilePath string

	once    sync.Once
	history map[string]float64
	loadErr error
}

func (h *benchmarkHistoryHandler) load() {
	data, err := os.ReadFile(h.FilePath)
	if err != nil {
		h.loadErr = fmt.Errorf("failed to read benchmark history %s: %w", h.FilePath, err)
		return
	}

	history := map[string]float64{}
	if err := json.Unmarshal(data, &history); err != nil {
		h.loadErr = fmt.Errorf("failed to parse benchmark history %s: %w", h.FilePath, err)
		return
	}
	h.history = history
}

func (h *benchmarkHistoryHandler) GetClose(date time.Time) (*decimal.Decimal, error) {
	h.once.Do(h.load)
	if h.loadErr != nil {
		return nil, h.loadErr
	}

	price, ok := h.history[date.Format("2006-01-02")]
	if !ok {
		return nil, nil
	}
	d := decimal.NewFromFloat(price)
	return &d, nil
}
