// Package rules implements the nine pure policy rules in spec.md §4.2.
// Each rule is a plain function over its inputs: no shared state, no
// mutation, no I/O. They are wired together in fixed order by package
// engine.
package rules

import (
	"fmt"
	"math"
	"sort"

	"github.com/policygate/capital/decision"
	"github.com/policygate/capital/intent"
	"github.com/policygate/capital/policy"
	"github.com/policygate/capital/state"
)

// Rule IDs, in the fixed evaluation order from spec.md §4.3.
const (
	SYS001  = "SYS-001"
	KILL001 = "KILL-001"
	LOSS001 = "LOSS-001"
	LOSS002 = "LOSS-002"
	EXEC001 = "EXEC-001"
	EXEC002 = "EXEC-002"
	EXP001  = "EXP-001"
	EXP002  = "EXP-002"
	EXP003  = "EXP-003"
)

func round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}

// CheckMissingPrice is SYS-001: fires iff the intent's symbol has no valid
// price in the market snapshot. No evidence is produced — per spec.md
// §4.2, evaluation stops immediately when this fires, so there is nothing
// further to compute proximity against.
func CheckMissingPrice(symbol string, market state.MarketSnapshot) *decision.Violation {
	if _, ok := market.Price(symbol); ok {
		return nil
	}
	return &decision.Violation{
		RuleID:   SYS001,
		Severity: decision.Crit,
		Message:  fmt.Sprintf("missing or invalid price for symbol %q", symbol),
		Inputs:   map[string]interface{}{"symbol": symbol},
		Computed: map[string]interface{}{},
	}
}

// CheckKillSwitch is KILL-001: fires iff the kill switch is already
// active. No evidence — this is a binary gate, not a proximity metric.
func CheckKillSwitch(exec state.ExecutionState) *decision.Violation {
	if !exec.KillSwitchActive {
		return nil
	}
	return &decision.Violation{
		RuleID:   KILL001,
		Severity: decision.Crit,
		Message:  "kill switch is active — all orders denied",
		Inputs:   map[string]interface{}{"kill_switch_active": true},
		Computed: map[string]interface{}{},
	}
}

// CheckDailyLoss is LOSS-001. daily_return = (equity - sod) / sod.
// Fires iff daily_return <= -limitPct.
func CheckDailyLoss(portfolio state.PortfolioState, limitPct float64) (*decision.Violation, decision.Evidence) {
	dailyReturn := (portfolio.Equity - portfolio.StartOfDayEquity) / portfolio.StartOfDayEquity
	ev := decision.Evidence{Metric: "daily_return", Value: round6(dailyReturn), Limit: round6(-limitPct)}

	if dailyReturn > -limitPct {
		return nil, ev
	}
	return &decision.Violation{
		RuleID:   LOSS001,
		Severity: decision.High,
		Message:  fmt.Sprintf("daily return %.4f breaches limit -%.4f", dailyReturn, limitPct),
		Inputs:   map[string]interface{}{"daily_loss_limit_pct": limitPct},
		Computed: map[string]interface{}{"daily_return": round6(dailyReturn)},
	}, ev
}

// CheckDrawdown is LOSS-002. drawdown = (peak - equity) / peak.
// Fires iff drawdown >= limitPct.
func CheckDrawdown(portfolio state.PortfolioState, limitPct float64) (*decision.Violation, decision.Evidence) {
	drawdown := (portfolio.PeakEquity - portfolio.Equity) / portfolio.PeakEquity
	ev := decision.Evidence{Metric: "drawdown", Value: round6(drawdown), Limit: round6(limitPct)}

	if drawdown < limitPct {
		return nil, ev
	}
	return &decision.Violation{
		RuleID:   LOSS002,
		Severity: decision.Crit,
		Message:  fmt.Sprintf("drawdown %.4f breaches limit %.4f", drawdown, limitPct),
		Inputs:   map[string]interface{}{"max_drawdown_pct": limitPct},
		Computed: map[string]interface{}{"drawdown": round6(drawdown)},
	}, ev
}

// CheckGlobalRate is EXEC-001. Fires iff ordersLastMinuteGlobal >= limit.
func CheckGlobalRate(ordersLastMinuteGlobal, limit int) (*decision.Violation, decision.Evidence) {
	ev := decision.Evidence{Metric: "orders_last_minute_global", Value: ordersLastMinuteGlobal, Limit: limit}

	if ordersLastMinuteGlobal < limit {
		return nil, ev
	}
	return &decision.Violation{
		RuleID:   EXEC001,
		Severity: decision.High,
		Message:  fmt.Sprintf("global rate %d orders/min exceeds limit %d", ordersLastMinuteGlobal, limit),
		Inputs:   map[string]interface{}{"max_orders_per_minute_global": limit},
		Computed: map[string]interface{}{"orders_last_minute_global": ordersLastMinuteGlobal},
	}, ev
}

// CheckStrategyRate is EXEC-002. Fires iff ordersLastMinuteStrategy >= limit.
func CheckStrategyRate(strategyID string, ordersLastMinuteStrategy, limit int) (*decision.Violation, decision.Evidence) {
	ev := decision.Evidence{Metric: "orders_last_minute_by_strategy", Value: ordersLastMinuteStrategy, Limit: limit}

	if ordersLastMinuteStrategy < limit {
		return nil, ev
	}
	return &decision.Violation{
		RuleID:   EXEC002,
		Severity: decision.High,
		Message: fmt.Sprintf("strategy %q rate %d orders/min exceeds limit %d",
			strategyID, ordersLastMinuteStrategy, limit),
		Inputs: map[string]interface{}{
			"strategy_id":                       strategyID,
			"max_orders_per_minute_by_strategy": limit,
		},
		Computed: map[string]interface{}{"orders_last_minute_by_strategy": ordersLastMinuteStrategy},
	}, ev
}

// PositionLimitResult bundles EXP-001's violation (if any) with the
// quantity that would fit the limit, floored to 4 decimal places.
type PositionLimitResult struct {
	Violation  *decision.Violation
	Evidence   decision.Evidence
	AllowedQty float64 // 0 when the rule doesn't fire or nothing would fit
}

// CheckPositionLimit is EXP-001. Computes the new position after the
// proposed trade and fires if it would exceed max_position_pct of equity.
// When it fires, AllowedQty carries the largest quantity (floored to 4
// decimals) that would still satisfy the limit — the MODIFY hint.
func CheckPositionLimit(in intent.OrderIntent, portfolio state.PortfolioState, price float64, limits policy.ExposureLimits) PositionLimitResult {
	symbol := in.Instrument.Symbol
	currentQty := portfolio.Position(symbol)

	signedDelta := in.Qty * price
	if in.Side == intent.Sell {
		signedDelta = -signedDelta
	}
	currentPositionValue := currentQty * price
	newPositionValue := currentPositionValue + signedDelta
	newPositionPct := math.Abs(newPositionValue) / portfolio.Equity

	ev := decision.Evidence{Metric: "new_position_pct", Value: round6(newPositionPct), Limit: round6(limits.MaxPositionPct)}

	if newPositionPct <= limits.MaxPositionPct {
		return PositionLimitResult{Evidence: ev}
	}

	maxValue := limits.MaxPositionPct * portfolio.Equity
	allowed := maxValue - math.Abs(currentPositionValue)
	allowedQty := 0.0
	if allowed > 0 {
		allowedQty = allowed / price
	}
	allowedQty = math.Floor(allowedQty*1e4) / 1e4
	if allowedQty < 0 {
		allowedQty = 0
	}

	v := &decision.Violation{
		RuleID:   EXP001,
		Severity: decision.High,
		Message:  fmt.Sprintf("position %.4f breaches limit %.4f", newPositionPct, limits.MaxPositionPct),
		Inputs:   map[string]interface{}{"max_position_pct": limits.MaxPositionPct},
		Computed: map[string]interface{}{
			"new_position_pct": round6(newPositionPct),
			"requested_qty":    in.Qty,
			"allowed_qty":      allowedQty,
		},
	}
	return PositionLimitResult{Violation: v, Evidence: ev, AllowedQty: allowedQty}
}

// hypotheticalPositionValues returns, for every symbol with a valid
// market price that is either currently held or is the intent's symbol,
// the signed position value after applying the proposed trade to
// intent.Instrument.Symbol only.
func hypotheticalPositionValues(in intent.OrderIntent, portfolio state.PortfolioState, market state.MarketSnapshot, price float64) map[string]float64 {
	symbol := in.Instrument.Symbol
	values := make(map[string]float64)

	for sym, qty := range portfolio.Positions {
		p, ok := market.Price(sym)
		if !ok {
			continue
		}
		values[sym] = qty * p
	}

	signedDelta := in.Qty * price
	if in.Side == intent.Sell {
		signedDelta = -signedDelta
	}
	values[symbol] = portfolio.Position(symbol)*price + signedDelta

	return values
}

// CheckGrossExposure is EXP-002. gross = sum(|position_value|) / equity
// across every held-or-traded symbol, after applying the proposed trade.
// Symbols are summed in sorted order: map iteration order is randomized
// per range in Go, and float addition is not associative, so summing in
// map order would make grossX (and thus the firing decision) vary between
// identical calls.
func CheckGrossExposure(in intent.OrderIntent, portfolio state.PortfolioState, market state.MarketSnapshot, price float64, limitX float64) (*decision.Violation, decision.Evidence) {
	values := hypotheticalPositionValues(in, portfolio, market, price)
	symbols := make([]string, 0, len(values))
	for sym := range values {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	gross := 0.0
	for _, sym := range symbols {
		gross += math.Abs(values[sym])
	}
	grossX := gross / portfolio.Equity

	ev := decision.Evidence{Metric: "gross_exposure_x", Value: round6(grossX), Limit: round6(limitX)}

	if grossX <= limitX {
		return nil, ev
	}
	return &decision.Violation{
		RuleID:   EXP002,
		Severity: decision.High,
		Message:  fmt.Sprintf("gross exposure %.4fx breaches limit %.4fx", grossX, limitX),
		Inputs:   map[string]interface{}{"max_gross_exposure_x": limitX},
		Computed: map[string]interface{}{"gross_exposure_x": round6(grossX)},
	}, ev
}

// CheckNetExposure is EXP-003. net = |sum(signed position values)| /
// equity. Skipped entirely (nil violation, nil evidence) when
// limitX is nil, per spec.md §4.2.
func CheckNetExposure(in intent.OrderIntent, portfolio state.PortfolioState, market state.MarketSnapshot, price float64, limitX *float64) (*decision.Violation, *decision.Evidence) {
	if limitX == nil {
		return nil, nil
	}
	values := hypotheticalPositionValues(in, portfolio, market, price)
	symbols := make([]string, 0, len(values))
	for sym := range values {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	sum := 0.0
	for _, sym := range symbols {
		sum += values[sym]
	}
	netX := math.Abs(sum) / portfolio.Equity

	ev := &decision.Evidence{Metric: "net_exposure_x", Value: round6(netX), Limit: round6(*limitX)}

	if netX <= *limitX {
		return nil, ev
	}
	return &decision.Violation{
		RuleID:   EXP003,
		Severity: decision.High,
		Message:  fmt.Sprintf("net exposure %.4fx breaches limit %.4fx", netX, *limitX),
		Inputs:   map[string]interface{}{"max_net_exposure_x": *limitX},
		Computed: map[string]interface{}{"net_exposure_x": round6(netX)},
	}, ev
}
