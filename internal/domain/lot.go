package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lot is a slice of holdings created by one buy. Sells consume lots
// oldest-first; partial consumption shrinks Quantity and TotalCost by the
// same ratio, so cost per lot is preserved.
type Lot struct {
	Date       time.Time
	Quantity   decimal.Decimal
	CostPerLot decimal.Decimal
	TotalCost  decimal.Decimal
}

// LotQueue is a FIFO of open lots. Consumed lots are skipped via a head
// cursor rather than re-slicing from the front on every sell.
type LotQueue struct {
	lots []Lot
	head int
}

func (q *LotQueue) Push(lot Lot) {
	q.lots = append(q.lots, lot)
}

func (q *LotQueue) Len() int {
	return len(q.lots) - q.head
}

// Open returns the open lots oldest-first.
func (q *LotQueue) Open() []Lot {
	return q.lots[q.head:]
}

func (q *LotQueue) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, lot := range q.lots[q.head:] {
		total = total.Add(lot.Quantity)
	}
	return total
}

func (q *LotQueue) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, lot := range q.lots[q.head:] {
		total = total.Add(lot.TotalCost)
	}
	return total
}

// consumeEpsilon stops the FIFO loop once the remaining quantity is noise
// from decimal division rather than a real residual.
var consumeEpsilon = decimal.NewFromFloat(0.00001)

// Consume removes quantity from the queue oldest-first and returns the cost
// basis of what was removed, plus the quantity actually consumed. If the
// queue runs out first, consumed ends up short of the requested quantity.
func (q *LotQueue) Consume(quantity decimal.Decimal) (cost, consumed decimal.Decimal) {
	remaining := quantity
	cost = decimal.Zero

	for remaining.GreaterThan(consumeEpsilon) && q.Len() > 0 {
		lot := &q.lots[q.head]

		if lot.Quantity.LessThanOrEqual(remaining) {
			cost = cost.Add(lot.TotalCost)
			remaining = remaining.Sub(lot.Quantity)
			q.head++
			continue
		}

		ratio := remaining.Div(lot.Quantity)
		partialCost := lot.TotalCost.Mul(ratio)
		cost = cost.Add(partialCost)
		lot.Quantity = lot.Quantity.Sub(remaining)
		lot.TotalCost = lot.TotalCost.Sub(partialCost)
		remaining = decimal.Zero
	}

	return cost, quantity.Sub(remaining)
}

// Drain empties the queue and returns the quantity and cost that were open.
func (q *LotQueue) Drain() (quantity, cost decimal.Decimal) {
	quantity = q.TotalQuantity()
	cost = q.TotalCost()
	q.lots = nil
	q.head = 0
	return quantity, cost
}
