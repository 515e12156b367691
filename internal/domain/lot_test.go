package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestLot(day int, quantity, totalCost float64) Lot {
	q := decimal.NewFromFloat(quantity)
	c := decimal.NewFromFloat(totalCost)
	return Lot{
		Date:       time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Quantity:   q,
		CostPerLot: c.Div(q),
		TotalCost:  c,
	}
}

func TestLotQueue_Consume(t *testing.T) {
	t.Run("consumes oldest lot first", func(t *testing.T) {
		q := &LotQueue{}
		q.Push(newTestLot(1, 1, 50000))
		q.Push(newTestLot(2, 1, 70000))

		cost, consumed := q.Consume(decimal.NewFromInt(1))

		require.True(t, decimal.NewFromInt(50000).Equal(cost), "cost was %s", cost)
		require.True(t, decimal.NewFromInt(1).Equal(consumed))
		require.Equal(t, 1, q.Len())
		require.True(t, decimal.NewFromInt(70000).Equal(q.TotalCost()))
	})

	t.Run("partial consumption shrinks cost proportionally", func(t *testing.T) {
		q := &LotQueue{}
		q.Push(newTestLot(1, 2, 100000))

		cost, consumed := q.Consume(decimal.NewFromFloat(0.5))

		require.True(t, decimal.NewFromInt(25000).Equal(cost), "cost was %s", cost)
		require.True(t, decimal.NewFromFloat(0.5).Equal(consumed))
		require.Equal(t, 1, q.Len())
		require.True(t, decimal.NewFromFloat(1.5).Equal(q.TotalQuantity()))
		require.True(t, decimal.NewFromInt(75000).Equal(q.TotalCost()))
		// cost per lot is unchanged after a partial consume
		require.True(t, decimal.NewFromInt(50000).Equal(q.Open()[0].TotalCost.Div(q.Open()[0].Quantity)))
	})

	t.Run("spans multiple lots", func(t *testing.T) {
		q := &LotQueue{}
		q.Push(newTestLot(1, 1, 40000))
		q.Push(newTestLot(2, 1, 60000))
		q.Push(newTestLot(3, 1, 80000))

		cost, consumed := q.Consume(decimal.NewFromFloat(2.5))

		// 40000 + 60000 + half of 80000
		require.True(t, decimal.NewFromInt(140000).Equal(cost), "cost was %s", cost)
		require.True(t, decimal.NewFromFloat(2.5).Equal(consumed))
		require.Equal(t, 1, q.Len())
	})

	t.Run("queue runs out before quantity is filled", func(t *testing.T) {
		q := &LotQueue{}
		q.Push(newTestLot(1, 1, 40000))

		cost, consumed := q.Consume(decimal.NewFromInt(3))

		require.True(t, decimal.NewFromInt(40000).Equal(cost))
		require.True(t, decimal.NewFromInt(1).Equal(consumed))
		require.Equal(t, 0, q.Len())
	})

	t.Run("cost conservation across the whole queue", func(t *testing.T) {
		q := &LotQueue{}
		q.Push(newTestLot(1, 1.5, 33333))
		q.Push(newTestLot(2, 2, 71111))
		totalBefore := q.TotalCost()

		cost, _ := q.Consume(decimal.NewFromFloat(1.7))

		require.True(t, totalBefore.Equal(cost.Add(q.TotalCost())))
	})
}

func TestLotQueue_Drain(t *testing.T) {
	q := &LotQueue{}
	q.Push(newTestLot(1, 1, 40000))
	q.Push(newTestLot(2, 2, 90000))

	quantity, cost := q.Drain()

	require.True(t, decimal.NewFromInt(3).Equal(quantity))
	require.True(t, decimal.NewFromInt(130000).Equal(cost))
	require.Equal(t, 0, q.Len())
	require.True(t, q.TotalQuantity().IsZero())
}
