// Package state holds the live portfolio, market, and execution inputs the
// evaluator reads on every call. Portfolio and execution state are mutated
// only by the stream runner (package runner); the evaluator never writes to
// them.
package state

import "fmt"

// ValidationError wraps a malformed state snapshot.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("state validation: %s: %s", e.Field, e.Msg)
}

// PortfolioState is the account's current equity and position book.
//
// peak_equity >= equity is a caller contract, not a validated invariant:
// the runner maintains it via peak = max(peak, equity) after every fill,
// but within a single evaluate() call equity may transiently exceed the
// recorded peak. See spec.md §9.
type PortfolioState struct {
	Equity           float64            `json:"equity"`
	StartOfDayEquity float64            `json:"start_of_day_equity"`
	PeakEquity       float64            `json:"peak_equity"`
	Positions        map[string]float64 `json:"positions"`
}

func (p PortfolioState) Validate() error {
	if p.StartOfDayEquity <= 0 {
		return &ValidationError{"start_of_day_equity", "must be > 0"}
	}
	if p.PeakEquity <= 0 {
		return &ValidationError{"peak_equity", "must be > 0"}
	}
	return nil
}

// Position returns the signed quantity held in symbol, or 0 if flat.
func (p PortfolioState) Position(symbol string) float64 {
	if p.Positions == nil {
		return 0
	}
	return p.Positions[symbol]
}

// MarketSnapshot is the most recent price for every symbol the evaluator
// needs to price exposure against.
type MarketSnapshot struct {
	Timestamp string             `json:"timestamp"`
	Prices    map[string]float64 `json:"prices"`
}

// Price returns the symbol's price and whether it is present and valid
// (not missing, not zero, not negative) per spec.md §3.
func (m MarketSnapshot) Price(symbol string) (float64, bool) {
	if m.Prices == nil {
		return 0, false
	}
	p, ok := m.Prices[symbol]
	if !ok || p <= 0 {
		return 0, false
	}
	return p, true
}

// RuleViolation is a minimal, engine-independent record of a fired rule,
// keyed by the epoch second it fired at. It is what the rolling window in
// ExecutionState accumulates; package decision.Violation carries the full
// detail recorded in the audit log.
type RuleViolation struct {
	RuleID             string `json:"rule_id"`
	TimestampEpochSecs int64  `json:"timestamp_epoch_seconds"`
}

// ExecutionState is the rolling, runner-owned execution bookkeeping: order
// throttles and the kill switch.
type ExecutionState struct {
	OrdersLastMinuteGlobal     int             `json:"orders_last_minute_global"`
	OrdersLastMinuteByStrategy map[string]int  `json:"orders_last_minute_by_strategy"`
	ViolationsInWindow         []RuleViolation `json:"violations_in_window"`
	KillSwitchActive           bool            `json:"kill_switch_active"`
}

// StrategyOrders returns the per-minute order count for strategyID.
func (e ExecutionState) StrategyOrders(strategyID string) int {
	if e.OrdersLastMinuteByStrategy == nil {
		return 0
	}
	return e.OrdersLastMinuteByStrategy[strategyID]
}
