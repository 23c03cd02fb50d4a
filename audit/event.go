// Package audit implements the byte-stable, append-only JSONL audit log
// (spec.md §4.5): one self-contained AuditEvent per evaluated intent,
// written before any broker I/O, readable back in file order.
package audit

import (
	"time"

	"github.com/policygate/capital/decision"
	"github.com/policygate/capital/intent"
	"github.com/policygate/capital/internal/idgen"
	"github.com/policygate/capital/state"
)

// NowMicros returns the current UTC time formatted as RFC 3339 with
// microsecond precision, the timestamp format spec.md §4.5 requires for
// every audit event.
func NowMicros() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
}

// Event is a single, self-contained record of one evaluation.
type Event struct {
	EventID        string                `json:"event_id"`
	Timestamp      string                `json:"timestamp"` // RFC 3339 UTC, microsecond precision
	EngineVersion  string                `json:"engine_version"`
	PolicyHash     string                `json:"policy_hash"`
	RunID          string                `json:"run_id,omitempty"`
	Intent         intent.OrderIntent    `json:"intent"`
	PortfolioState state.PortfolioState  `json:"portfolio_state"`
	MarketSnapshot state.MarketSnapshot  `json:"market_snapshot"`
	ExecutionState state.ExecutionState  `json:"execution_state"`
	Decision       decision.Decision     `json:"decision"`
}

// Build constructs an Event from an evaluation's inputs and output.
// timestamp must already be formatted RFC 3339 with microsecond precision
// (see NowMicros); the event_id is minted here as a fresh UUID v4.
func Build(d decision.Decision, in intent.OrderIntent, portfolio state.PortfolioState, market state.MarketSnapshot, exec state.ExecutionState, engineVersion, policyHash, runID, timestamp string) Event {
	return Event{
		EventID:        idgen.NewEventID(),
		Timestamp:      timestamp,
		EngineVersion:  engineVersion,
		PolicyHash:     policyHash,
		RunID:          runID,
		Intent:         in,
		PortfolioState: portfolio,
		MarketSnapshot: market,
		ExecutionState: exec,
		Decision:       d,
	}
}
