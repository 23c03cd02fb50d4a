package journal

import (
	"encoding/csv"
	"os"
	"strconv"
)

// CSVJournal writes decisions and run summaries to two plain CSV files,
// for environments that don't want a SQLite dependency.
type CSVJournal struct {
	decisions *csv.Writer
	summaries *csv.Writer
	df, sf    *os.File
}

// NewCSV creates (truncating) decisionsPath and summariesPath and writes
// their headers.
func NewCSV(decisionsPath, summariesPath string) (*CSVJournal, error) {
	df, err := os.Create(decisionsPath)
	if err != nil {
		return nil, err
	}
	sf, err := os.Create(summariesPath)
	if err != nil {
		return nil, err
	}

	dw := csv.NewWriter(df)
	sw := csv.NewWriter(sf)

	if err := dw.Write([]string{"run_id", "intent_id", "policy_hash", "timestamp", "decision", "rule_ids", "kill_switch"}); err != nil {
		return nil, err
	}
	if err := sw.Write([]string{"run_id", "total_intents", "allowed", "modified", "denied", "orders_submitted", "orders_filled", "final_equity", "kill_switch_active"}); err != nil {
		return nil, err
	}

	dw.Flush()
	if err := dw.Error(); err != nil {
		return nil, err
	}
	sw.Flush()
	if err := sw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{dw, sw, df, sf}, nil
}

func (j *CSVJournal) RecordDecision(d DecisionRecord) error {
	if err := j.decisions.Write([]string{
		d.RunID,
		d.IntentID,
		d.PolicyHash,
		d.Timestamp,
		d.Decision,
		d.RuleIDs,
		strconv.FormatBool(d.KillSwitch),
	}); err != nil {
		return err
	}
	j.decisions.Flush()
	return j.decisions.Error()
}

func (j *CSVJournal) RecordRunSummary(s RunSummaryRecord) error {
	if err := j.summaries.Write([]string{
		s.RunID,
		strconv.Itoa(s.TotalIntents),
		strconv.Itoa(s.Allowed),
		strconv.Itoa(s.Modified),
		strconv.Itoa(s.Denied),
		strconv.Itoa(s.OrdersSubmitted),
		strconv.Itoa(s.OrdersFilled),
		strconv.FormatFloat(s.FinalEquity, 'f', 6, 64),
		strconv.FormatBool(s.KillSwitchActive),
	}); err != nil {
		return err
	}
	j.summaries.Flush()
	return j.summaries.Error()
}

func (j *CSVJournal) Close() error {
	j.decisions.Flush()
	if err := j.decisions.Error(); err != nil {
		return err
	}
	j.summaries.Flush()
	if err := j.summaries.Error(); err != nil {
		return err
	}
	if err := j.df.Close(); err != nil {
		return err
	}
	return j.sf.Close()
}
