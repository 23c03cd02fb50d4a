package journal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteJournal_RecordAndQueryDecisions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewSQLite(filepath.Join(dir, "journal.sqlite"))
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.RecordDecision(DecisionRecord{
		RunID: "run-1", IntentID: "i1", PolicyHash: "abc", Timestamp: "2026-08-03T12:00:00Z",
		Decision: "ALLOW", RuleIDs: "", KillSwitch: false,
	}))
	require.NoError(t, j.RecordDecision(DecisionRecord{
		RunID: "run-1", IntentID: "i2", PolicyHash: "abc", Timestamp: "2026-08-03T12:00:01Z",
		Decision: "DENY", RuleIDs: "LOSS-001,EXEC-001", KillSwitch: false,
	}))

	rows, err := j.ListDecisionsByRunID("run-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "i1", rows[0].IntentID)
	assert.Equal(t, "i2", rows[1].IntentID)
	assert.Equal(t, "LOSS-001,EXEC-001", rows[1].RuleIDs)
}

func TestSQLiteJournal_RecordAndGetRunSummary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewSQLite(filepath.Join(dir, "journal.sqlite"))
	require.NoError(t, err)
	defer j.Close()

	summary := RunSummaryRecord{
		RunID: "run-1", TotalIntents: 3, Allowed: 2, Modified: 0, Denied: 1,
		OrdersSubmitted: 2, OrdersFilled: 2, FinalEquity: 101000.0, KillSwitchActive: false,
	}
	require.NoError(t, j.RecordRunSummary(summary))

	got, err := j.GetRunSummary("run-1")
	require.NoError(t, err)
	assert.Equal(t, summary, got)
}

func TestSQLiteJournal_GetRunSummary_NotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewSQLite(filepath.Join(dir, "journal.sqlite"))
	require.NoError(t, err)
	defer j.Close()

	_, err = j.GetRunSummary("missing")
	assert.Error(t, err)
}
