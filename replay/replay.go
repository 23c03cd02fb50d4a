// Package replay re-evaluates a recorded audit event against a policy
// and compares the outcome to what was originally decided (spec.md
// §4.6). A mismatch means policy drift, an engine regression, or a
// corrupted log line.
package replay

import (
	"github.com/policygate/capital/audit"
	"github.com/policygate/capital/decision"
	"github.com/policygate/capital/engine"
	"github.com/policygate/capital/intent"
	"github.com/policygate/capital/policy"
)

// ReplayEvent reconstructs event's recorded intent, portfolio, market,
// and execution state and re-runs the engine against pol, returning the
// event's original decision alongside the freshly computed one.
func ReplayEvent(event audit.Event, pol *policy.CapitalPolicy) (original, replayed decision.Decision) {
	replayed = engine.Evaluate(event.Intent, event.PortfolioState, event.MarketSnapshot, event.ExecutionState, pol)
	return event.Decision, replayed
}

// DecisionsMatch compares two decisions field by field, per spec.md
// §4.6: decision, intent_id, violations (full list, order-sensitive),
// kill_switch_triggered, and modified_intent.
func DecisionsMatch(a, b decision.Decision) bool {
	if a.Decision != b.Decision {
		return false
	}
	if a.IntentID != b.IntentID {
		return false
	}
	if a.KillSwitchTriggered != b.KillSwitchTriggered {
		return false
	}
	if !modifiedIntentsMatch(a.ModifiedIntent, b.ModifiedIntent) {
		return false
	}
	if len(a.Violations) != len(b.Violations) {
		return false
	}
	for i := range a.Violations {
		if !a.Violations[i].Equal(b.Violations[i]) {
			return false
		}
	}
	return true
}

func modifiedIntentsMatch(a, b *intent.OrderIntent) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.IntentID != b.IntentID || a.Timestamp != b.Timestamp ||
		a.StrategyID != b.StrategyID || a.AccountID != b.AccountID ||
		a.Instrument != b.Instrument || a.Side != b.Side ||
		a.OrderType != b.OrderType || a.Qty != b.Qty {
		return false
	}
	switch {
	case a.LimitPrice == nil && b.LimitPrice == nil:
		return true
	case a.LimitPrice == nil || b.LimitPrice == nil:
		return false
	default:
		return *a.LimitPrice == *b.LimitPrice
	}
}
