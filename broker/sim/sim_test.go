package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policygate/capital/broker"
	"github.com/policygate/capital/intent"
	"github.com/policygate/capital/state"
)

func marketOrder(symbol string, side intent.Side, qty float64) intent.OrderIntent {
	return intent.OrderIntent{
		IntentID:   "intent-1",
		Timestamp:  "2026-08-03T12:00:00Z",
		StrategyID: "momentum",
		AccountID:  "acct-1",
		Instrument: intent.Instrument{Symbol: symbol, AssetClass: intent.Equity},
		Side:       side,
		OrderType:  intent.Market,
		Qty:        qty,
	}
}

func limitOrder(symbol string, side intent.Side, qty, limitPrice float64) intent.OrderIntent {
	o := marketOrder(symbol, side, qty)
	o.OrderType = intent.Limit
	o.LimitPrice = &limitPrice
	return o
}

func TestSubmit_MarketOrderFillsAtCurrentPrice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New()
	b.SetPrices(state.MarketSnapshot{Prices: map[string]float64{"AAPL": 200.0}})

	res, err := b.Submit(ctx, marketOrder("AAPL", intent.Buy, 10))
	require.NoError(t, err)
	assert.Equal(t, broker.Filled, res.Status)

	fills, err := b.PollFills(ctx, []string{res.OrderID})
	require.NoError(t, err)
	require.Len(t, fills, 1)
	assert.Equal(t, 200.0, fills[0].Price)
	assert.Equal(t, 10.0, fills[0].Qty)
}

func TestSubmit_LimitBuyFillsWhenLimitAtOrAboveMid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New()
	b.SetPrices(state.MarketSnapshot{Prices: map[string]float64{"AAPL": 200.0}})

	res, err := b.Submit(ctx, limitOrder("AAPL", intent.Buy, 10, 200.0))
	require.NoError(t, err)
	assert.Equal(t, broker.Filled, res.Status)
}

func TestSubmit_LimitBuyRejectedWhenLimitBelowMid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New()
	b.SetPrices(state.MarketSnapshot{Prices: map[string]float64{"AAPL": 200.0}})

	res, err := b.Submit(ctx, limitOrder("AAPL", intent.Buy, 10, 199.99))
	require.NoError(t, err)
	assert.Equal(t, broker.Rejected, res.Status)

	fills, err := b.PollFills(ctx, []string{res.OrderID})
	require.NoError(t, err)
	assert.Empty(t, fills)
}

func TestSubmit_LimitSellFillsWhenLimitAtOrBelowMid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New()
	b.SetPrices(state.MarketSnapshot{Prices: map[string]float64{"AAPL": 200.0}})

	res, err := b.Submit(ctx, limitOrder("AAPL", intent.Sell, 10, 200.0))
	require.NoError(t, err)
	assert.Equal(t, broker.Filled, res.Status)
}

func TestSubmit_LimitSellRejectedWhenLimitAboveMid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New()
	b.SetPrices(state.MarketSnapshot{Prices: map[string]float64{"AAPL": 200.0}})

	res, err := b.Submit(ctx, limitOrder("AAPL", intent.Sell, 10, 200.01))
	require.NoError(t, err)
	assert.Equal(t, broker.Rejected, res.Status)
}

func TestSubmit_UnknownSymbolRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New()
	b.SetPrices(state.MarketSnapshot{Prices: map[string]float64{"AAPL": 200.0}})

	res, err := b.Submit(ctx, marketOrder("MSFT", intent.Buy, 10))
	require.NoError(t, err)
	assert.Equal(t, broker.Rejected, res.Status)
}

func TestPollFills_ConsumesFillsExactlyOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New()
	b.SetPrices(state.MarketSnapshot{Prices: map[string]float64{"AAPL": 200.0}})

	res, err := b.Submit(ctx, marketOrder("AAPL", intent.Buy, 10))
	require.NoError(t, err)

	first, err := b.PollFills(ctx, []string{res.OrderID})
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := b.PollFills(ctx, []string{res.OrderID})
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestGetOrder_ReflectsSubmittedStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New()
	b.SetPrices(state.MarketSnapshot{Prices: map[string]float64{"AAPL": 200.0}})

	res, err := b.Submit(ctx, marketOrder("AAPL", intent.Buy, 10))
	require.NoError(t, err)

	order, err := b.GetOrder(ctx, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, res.OrderID, order.OrderID)
	assert.Equal(t, broker.Filled, order.Status)
}

func TestGetOrder_UnknownOrderErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b := New()
	_, err := b.GetOrder(ctx, "nonexistent")
	assert.Error(t, err)
}
