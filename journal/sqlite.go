package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal persists decisions and run summaries to a SQLite
// database, for querying runs after the fact.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLite opens (creating if necessary) a SQLite journal at path.
func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite journal: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("apply sqlite journal schema: %w", err)
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordDecision(d DecisionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO decisions
		(run_id, intent_id, policy_hash, timestamp, decision, rule_ids, kill_switch)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.RunID, d.IntentID, d.PolicyHash, d.Timestamp, d.Decision, d.RuleIDs, d.KillSwitch,
	)
	return err
}

func (j *SQLiteJournal) RecordRunSummary(s RunSummaryRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO run_summaries
		(run_id, total_intents, allowed, modified, denied, orders_submitted, orders_filled, final_equity, kill_switch_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.RunID, s.TotalIntents, s.Allowed, s.Modified, s.Denied, s.OrdersSubmitted, s.OrdersFilled, s.FinalEquity, s.KillSwitchActive,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
