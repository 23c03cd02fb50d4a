package journal

import (
	"database/sql"
	"fmt"
)

// ListDecisionsByRunID returns every decision recorded for runID, in
// insertion order.
func (j *SQLiteJournal) ListDecisionsByRunID(runID string) ([]DecisionRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, intent_id, policy_hash, timestamp, decision, rule_ids, kill_switch
		FROM decisions
		WHERE run_id = ?
		ORDER BY rowid ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DecisionRecord
	for rows.Next() {
		var rec DecisionRecord
		if err := rows.Scan(
			&rec.RunID, &rec.IntentID, &rec.PolicyHash, &rec.Timestamp,
			&rec.Decision, &rec.RuleIDs, &rec.KillSwitch,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRunSummary returns the summary recorded for runID.
func (j *SQLiteJournal) GetRunSummary(runID string) (RunSummaryRecord, error) {
	var rec RunSummaryRecord
	row := j.db.QueryRow(`
		SELECT run_id, total_intents, allowed, modified, denied, orders_submitted, orders_filled, final_equity, kill_switch_active
		FROM run_summaries
		WHERE run_id = ?`, runID)

	err := row.Scan(
		&rec.RunID, &rec.TotalIntents, &rec.Allowed, &rec.Modified, &rec.Denied,
		&rec.OrdersSubmitted, &rec.OrdersFilled, &rec.FinalEquity, &rec.KillSwitchActive,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return RunSummaryRecord{}, fmt.Errorf("run summary %q not found", runID)
		}
		return RunSummaryRecord{}, err
	}
	return rec, nil
}
