// Package engine implements the fixed-order rule pipeline (spec.md §4.3)
// and the PolicyEngine facade (spec.md §4.4). Evaluate is a pure function:
// it never mutates its inputs and never blocks.
package engine

import (
	"github.com/policygate/capital/decision"
	"github.com/policygate/capital/intent"
	"github.com/policygate/capital/policy"
	"github.com/policygate/capital/rules"
	"github.com/policygate/capital/state"
)

// Evaluate runs the fixed-order rule pipeline against a single
// OrderIntent and returns a Decision.
//
// Rule order: SYS-001, KILL-001, LOSS-001, LOSS-002, EXEC-001, EXEC-002,
// EXP-001, EXP-002, EXP-003. Every rule runs (no short-circuit) except
// that SYS-001 firing stops evaluation immediately, since every rule
// after it needs a valid price. The kill-switch trip check still applies
// to SYS-001 on that path, so listing "SYS-001" in trip_on_rules works.
func Evaluate(in intent.OrderIntent, portfolio state.PortfolioState, market state.MarketSnapshot, exec state.ExecutionState, pol *policy.CapitalPolicy) decision.Decision {
	symbol := in.Instrument.Symbol

	if v := rules.CheckMissingPrice(symbol, market); v != nil {
		return decision.Decision{
			Decision:            decision.Deny,
			IntentID:            in.IntentID,
			Violations:          []decision.Violation{*v},
			Evidence:            []decision.Evidence{},
			KillSwitchTriggered: ruleInList(v.RuleID, pol.Limits.KillSwitch.TripOnRules),
		}
	}

	price, _ := market.Price(symbol)
	limits := policy.Resolve(pol, symbol, in.StrategyID)

	var violations []decision.Violation
	var evidence []decision.Evidence

	if v := rules.CheckKillSwitch(exec); v != nil {
		violations = append(violations, *v)
	}

	if v, ev := rules.CheckDailyLoss(portfolio, limits.Loss.DailyLossLimitPct); v != nil {
		violations = append(violations, *v)
		evidence = append(evidence, ev)
	} else {
		evidence = append(evidence, ev)
	}

	if v, ev := rules.CheckDrawdown(portfolio, limits.Loss.MaxDrawdownPct); v != nil {
		violations = append(violations, *v)
		evidence = append(evidence, ev)
	} else {
		evidence = append(evidence, ev)
	}

	if v, ev := rules.CheckGlobalRate(exec.OrdersLastMinuteGlobal, limits.Execution.MaxOrdersPerMinuteGlobal); v != nil {
		violations = append(violations, *v)
		evidence = append(evidence, ev)
	} else {
		evidence = append(evidence, ev)
	}

	if v, ev := rules.CheckStrategyRate(in.StrategyID, exec.StrategyOrders(in.StrategyID), limits.Execution.MaxOrdersPerMinuteByStrategy); v != nil {
		violations = append(violations, *v)
		evidence = append(evidence, ev)
	} else {
		evidence = append(evidence, ev)
	}

	posResult := rules.CheckPositionLimit(in, portfolio, price, limits.Exposure)
	evidence = append(evidence, posResult.Evidence)
	if posResult.Violation != nil {
		violations = append(violations, *posResult.Violation)
	}

	if v, ev := rules.CheckGrossExposure(in, portfolio, market, price, limits.Exposure.MaxGrossExposureX); v != nil {
		violations = append(violations, *v)
		evidence = append(evidence, ev)
	} else {
		evidence = append(evidence, ev)
	}

	if v, ev := rules.CheckNetExposure(in, portfolio, market, price, limits.Exposure.MaxNetExposureX); ev != nil {
		evidence = append(evidence, *ev)
		if v != nil {
			violations = append(violations, *v)
		}
	}

	d := decision.Decision{
		IntentID:   in.IntentID,
		Violations: violations,
		Evidence:   evidence,
	}

	switch {
	case len(violations) == 0:
		d.Decision = decision.Allow
	case len(violations) == 1 && violations[0].RuleID == rules.EXP001 && posResult.AllowedQty > 0:
		modified := in.WithQty(posResult.AllowedQty)
		d.Decision = decision.Modify
		d.ModifiedIntent = &modified
	default:
		d.Decision = decision.Deny
	}

	for _, v := range violations {
		if ruleInList(v.RuleID, pol.Limits.KillSwitch.TripOnRules) {
			d.KillSwitchTriggered = true
			break
		}
	}

	if pol.Defaults.Mode == policy.Monitor {
		d.Decision = decision.Allow
		d.ModifiedIntent = nil
	}

	return d
}

func ruleInList(ruleID string, list []string) bool {
	for _, id := range list {
		if id == ruleID {
			return true
		}
	}
	return false
}
