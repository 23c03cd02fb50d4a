package execevent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/policygate/capital/intent"
)

func TestWriter_AppendOnlyAndReadBack(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "exec.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)

	price := 200.0
	submitted := Event{Timestamp: "2026-08-03T12:00:00.000001Z", Event: Submitted, IntentID: "i1", OrderID: "o1", Symbol: "AAPL", Side: intent.Buy, Qty: 10, OrderType: intent.Market}
	filled := Event{Timestamp: "2026-08-03T12:00:01.000001Z", Event: Filled, IntentID: "i1", OrderID: "o1", Symbol: "AAPL", Side: intent.Buy, Qty: 10, Price: &price}

	require.NoError(t, w.Write(submitted))
	require.NoError(t, w.Write(filled))
	require.NoError(t, w.Close())

	events, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, Submitted, events[0].Event)
	assert.Equal(t, Filled, events[1].Event)
	require.NotNil(t, events[1].Price)
	assert.Equal(t, 200.0, *events[1].Price)
}

func TestReadAll_SkipsTruncatedTrailingLine(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "exec.jsonl")

	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.Write(Event{Timestamp: "2026-08-03T12:00:00Z", Event: Rejected, IntentID: "i1", OrderID: ""}))
	require.NoError(t, w.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"event":"ORDER_FIL`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	events, err := ReadAll(path)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, Rejected, events[0].Event)
}
