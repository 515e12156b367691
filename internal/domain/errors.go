package domain

import (
	"errors"
	"fmt"
	"time"
)

// PriceUnavailableError is returned when every source in the fallback chain
// came up empty for a price a ledger operation needed. The whole computation
// for that ledger aborts; a partial ledger would have a broken cost basis.
type PriceUnavailableError struct {
	Symbol string
	Date   *time.Time
}

func (e *PriceUnavailableError) Error() string {
	if e.Date == nil {
		return fmt.Sprintf("could not price instrument %s: no latest quote", e.Symbol)
	}
	return fmt.Sprintf("could not price instrument %s on %s", e.Symbol, e.Date.Format("2006-01-02"))
}

func IsPriceUnavailable(err error) bool {
	var pe *PriceUnavailableError
	return errors.As(err, &pe)
}

// ErrInvalidTransactions is returned when normalization found hard errors
// and the batch cannot be processed.
var ErrInvalidTransactions = errors.New("transaction set contains invalid records")
