package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policygate/capital/intent"
	"github.com/policygate/capital/state"
)

func grossExposureFixture() (intent.OrderIntent, state.PortfolioState, state.MarketSnapshot, float64) {
	in := intent.OrderIntent{
		IntentID:   "intent-1",
		StrategyID: "momentum",
		AccountID:  "acct-1",
		Instrument: intent.Instrument{Symbol: "AAPL", AssetClass: intent.Equity},
		Side:       intent.Buy,
		OrderType:  intent.Market,
		Qty:        10,
	}
	portfolio := state.PortfolioState{
		Equity: 100000,
		Positions: map[string]float64{
			"MSFT": 50,
			"GOOG": -20,
			"TSLA": 15,
			"AMZN": -8,
		},
	}
	market := state.MarketSnapshot{
		Prices: map[string]float64{
			"AAPL": 200.0,
			"MSFT": 300.0,
			"GOOG": 150.0,
			"TSLA": 250.0,
			"AMZN": 120.0,
		},
	}
	return in, portfolio, market, 200.0
}

// CheckGrossExposure/CheckNetExposure sum over a map of per-symbol
// position values; with five priced symbols, summing in map iteration
// order (randomized per range by the Go runtime) would make the
// computed ratio, and thus the firing decision, vary between calls on
// identical input. Repeated calls here must agree bit-for-bit.
func TestCheckGrossExposure_DeterministicAcrossRepeatedCalls(t *testing.T) {
	t.Parallel()
	in, portfolio, market, price := grossExposureFixture()

	_, first := CheckGrossExposure(in, portfolio, market, price, 3.0)
	for i := 0; i < 50; i++ {
		_, ev := CheckGrossExposure(in, portfolio, market, price, 3.0)
		require.Equal(t, first.Value, ev.Value)
	}
}

func TestCheckNetExposure_DeterministicAcrossRepeatedCalls(t *testing.T) {
	t.Parallel()
	in, portfolio, market, price := grossExposureFixture()
	limit := 3.0

	_, first := CheckNetExposure(in, portfolio, market, price, &limit)
	for i := 0; i < 50; i++ {
		_, ev := CheckNetExposure(in, portfolio, market, price, &limit)
		require.Equal(t, first.Value, ev.Value)
	}
}

func TestCheckNetExposure_NilLimitSkipsEntirely(t *testing.T) {
	t.Parallel()
	in, portfolio, market, price := grossExposureFixture()

	v, ev := CheckNetExposure(in, portfolio, market, price, nil)
	assert.Nil(t, v)
	assert.Nil(t, ev)
}
