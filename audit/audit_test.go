package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policygate/capital/decision"
	"github.com/policygate/capital/intent"
	"github.com/policygate/capital/state"
)

func sampleEvent() Event {
	return Build(
		decision.Decision{
			Decision:   decision.Allow,
			IntentID:   "intent-1",
			Violations: []decision.Violation{},
			Evidence:   []decision.Evidence{{Metric: "daily_return", Value: 0.01, Limit: -0.05}},
		},
		intent.OrderIntent{
			IntentID:   "intent-1",
			Timestamp:  "2026-08-03T12:00:00Z",
			StrategyID: "momentum",
			AccountID:  "acct-1",
			Instrument: intent.Instrument{Symbol: "AAPL", AssetClass: intent.Equity},
			Side:       intent.Buy,
			OrderType:  intent.Market,
			Qty:        10,
		},
		state.PortfolioState{Equity: 100000, StartOfDayEquity: 100000, PeakEquity: 100000, Positions: map[string]float64{}},
		state.MarketSnapshot{Timestamp: "2026-08-03T12:00:00Z", Prices: map[string]float64{"AAPL": 200.0}},
		state.ExecutionState{OrdersLastMinuteByStrategy: map[string]int{}},
		"0.1.0", "deadbeef", "run-1", "2026-08-03T12:00:00.000001Z",
	)
}

func TestCanonicalJSON_SortsKeysAndIsStable(t *testing.T) {
	t.Parallel()

	e := sampleEvent()
	a, err := canonicalJSON(e)
	require.NoError(t, err)
	b, err := canonicalJSON(e)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.NotContains(t, string(a), " ")
	assert.NotContains(t, string(a), "\n")

	// "decision" sorts before "event_id", so it must be written first.
	s := string(a)
	assert.Less(t, strings.Index(s, `"decision":`), strings.Index(s, `"event_id":`))
}

func TestWriter_AppendOnlyAndReadBack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "audit.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)

	e1 := sampleEvent()
	e2 := sampleEvent()
	e2.EventID = "second-event"

	require.NoError(t, w.Write(e1))
	require.NoError(t, w.Write(e2))
	require.NoError(t, w.Close())

	events, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, e1.EventID, events[0].EventID)
	assert.Equal(t, "second-event", events[1].EventID)
}

func TestReadAll_SkipsTruncatedTrailingLine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "audit.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(sampleEvent()))
	require.NoError(t, w.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"event_id":"truncated`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	events, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestOffset_AdvancesPerWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "audit.jsonl")
	w, err := NewWriter(path)
	require.NoError(t, err)
	defer w.Close()

	before, err := w.Offset()
	require.NoError(t, err)
	require.NoError(t, w.Write(sampleEvent()))
	after, err := w.Offset()
	require.NoError(t, err)
	assert.Greater(t, after, before)
}
