// Package journal persists per-intent decisions and per-run summaries
// for later querying — supplemental to the audit log, which remains the
// authoritative replay source. Grounded on the teacher's journal
// package: same Journal interface shape (Record*/Close) and the same
// SQLite/CSV backend split, adapted from trade/equity records to policy
// decisions and run summaries.
package journal

// DecisionRecord is one row of a stream run's per-intent outcome.
type DecisionRecord struct {
	RunID      string
	IntentID   string
	PolicyHash string
	Timestamp  string
	Decision   string // ALLOW | MODIFY | DENY
	RuleIDs    string // comma-joined fired rule IDs, in evaluation order
	KillSwitch bool
}

// RunSummaryRecord is the persisted form of a completed stream run.
type RunSummaryRecord struct {
	RunID            string
	TotalIntents     int
	Allowed          int
	Modified         int
	Denied           int
	OrdersSubmitted  int
	OrdersFilled     int
	FinalEquity      float64
	KillSwitchActive bool
}

// Journal records decisions and run summaries for later querying.
type Journal interface {
	RecordDecision(DecisionRecord) error
	RecordRunSummary(RunSummaryRecord) error
	Close() error
}
