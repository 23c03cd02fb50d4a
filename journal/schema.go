package journal

const Schema = `
CREATE TABLE IF NOT EXISTS decisions (
	run_id TEXT NOT NULL,
	intent_id TEXT NOT NULL,
	policy_hash TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	decision TEXT NOT NULL,
	rule_ids TEXT NOT NULL,
	kill_switch INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_run_id ON decisions(run_id);

CREATE TABLE IF NOT EXISTS run_summaries (
	run_id TEXT PRIMARY KEY,
	total_intents INTEGER NOT NULL,
	allowed INTEGER NOT NULL,
	modified INTEGER NOT NULL,
	denied INTEGER NOT NULL,
	orders_submitted INTEGER NOT NULL,
	orders_filled INTEGER NOT NULL,
	final_equity REAL NOT NULL,
	kill_switch_active INTEGER NOT NULL
);
`
