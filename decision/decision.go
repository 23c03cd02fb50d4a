// Package decision holds the engine's output types: Decision, Violation,
// and Evidence. Decisions are immutable once produced.
package decision

import "github.com/policygate/capital/intent"

// Verdict is the engine's final call on an OrderIntent.
type Verdict string

const (
	Allow  Verdict = "ALLOW"
	Modify Verdict = "MODIFY"
	Deny   Verdict = "DENY"
)

// Severity ranks a Violation.
type Severity string

const (
	High Severity = "HIGH"
	Crit Severity = "CRIT"
)

// Violation is a rule's finding that a limit was breached.
type Violation struct {
	RuleID   string                 `json:"rule_id"`
	Severity Severity               `json:"severity"`
	Message  string                 `json:"message"`
	Inputs   map[string]interface{} `json:"inputs"`
	Computed map[string]interface{} `json:"computed"`
}

// Equal reports whether two violations carry identical content, used by
// package replay to compare decisions field-by-field.
func (v Violation) Equal(o Violation) bool {
	if v.RuleID != o.RuleID || v.Severity != o.Severity || v.Message != o.Message {
		return false
	}
	return mapsEqual(v.Inputs, o.Inputs) && mapsEqual(v.Computed, o.Computed)
}

func mapsEqual(a, b map[string]interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		if af, aok := toFloat(av); aok {
			if bf, bok := toFloat(bv); bok {
				if af != bf {
					return false
				}
				continue
			}
		}
		if av != bv {
			return false
		}
	}
	return true
}

// toFloat normalizes JSON-decoded numerics (float64) against the
// in-process numerics (float64, int, int64) that the evaluator emits, so
// replay comparisons aren't defeated by type drift across a JSON
// round trip.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// Evidence is a computed metric and the limit it is measured against,
// recorded whether or not the owning rule fired.
type Evidence struct {
	Metric string      `json:"metric"`
	Value  interface{} `json:"value"`
	Limit  interface{} `json:"limit"`
}

// Decision is the engine's verdict on a single OrderIntent.
//
// Invariant: ModifiedIntent != nil iff Decision == Modify.
type Decision struct {
	Decision            Verdict             `json:"decision"`
	IntentID            string              `json:"intent_id"`
	ModifiedIntent      *intent.OrderIntent `json:"modified_intent"`
	Violations          []Violation         `json:"violations"`
	Evidence            []Evidence          `json:"evidence"`
	KillSwitchTriggered bool                `json:"kill_switch_triggered"`
	EvalMs              float64             `json:"eval_ms,omitempty"`
}

// HasRule reports whether ruleID fired in this decision.
func (d Decision) HasRule(ruleID string) bool {
	for _, v := range d.Violations {
		if v.RuleID == ruleID {
			return true
		}
	}
	return false
}
