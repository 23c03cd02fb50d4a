// Package runner drives a sequence of order intents through the engine
// and a broker, evolving portfolio and execution state as it goes
// (spec.md §4.8, §5). It is strictly sequential: evaluate, write the
// audit event, submit to the broker, poll fills, mutate state, update
// the rolling violation window, re-check the kill switch — with no
// interleaving between intents. Grounded on
// original_source/runtime/runner.py for the step sequence, and on the
// teacher's sim/engine.go for the style of owning and mutating account
// state in place.
package runner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/policygate/capital/audit"
	"github.com/policygate/capital/broker"
	"github.com/policygate/capital/decision"
	"github.com/policygate/capital/engine"
	"github.com/policygate/capital/execevent"
	"github.com/policygate/capital/intent"
	"github.com/policygate/capital/internal/idgen"
	"github.com/policygate/capital/journal"
	"github.com/policygate/capital/policy"
	"github.com/policygate/capital/state"
)

// PriceSetter is implemented by brokers (e.g. broker/sim) that need the
// run's market snapshot pushed to them before submitting orders.
type PriceSetter interface {
	SetPrices(state.MarketSnapshot)
}

// RunSummary accumulates statistics over a stream run, mirroring
// original_source's RunSummary and spec.md §4.8's returned shape.
type RunSummary struct {
	RunID            string                   `json:"run_id"`
	TotalIntents     int                      `json:"total_intents"`
	Decisions        map[decision.Verdict]int `json:"decisions"`
	RuleHistogram    map[string]int           `json:"rule_histogram"`
	OrdersSubmitted  int                      `json:"orders_submitted"`
	OrdersFilled     int                      `json:"orders_filled"`
	FinalEquity      float64                  `json:"final_equity"`
	FinalPositions   map[string]float64       `json:"final_positions"`
	KillSwitchActive bool                     `json:"kill_switch_active"`
}

func newSummary(runID string) *RunSummary {
	return &RunSummary{
		RunID:         runID,
		Decisions:     map[decision.Verdict]int{decision.Allow: 0, decision.Modify: 0, decision.Deny: 0},
		RuleHistogram: map[string]int{},
	}
}

func (s *RunSummary) record(d decision.Decision) {
	s.TotalIntents++
	s.Decisions[d.Decision]++
	for _, v := range d.Violations {
		s.RuleHistogram[v.RuleID]++
	}
}

// Run drives intents sequentially through pol via br, writing audit
// events to auditW (required, before any broker I/O) and execution
// lifecycle events to execW (optional — pass nil to skip). jrnl, if
// non-nil, receives a DecisionRecord per intent and a RunSummaryRecord
// at the end — a queryable mirror of the audit log, never consulted by
// evaluation itself. portfolio and execState are mutated in place as
// the run proceeds. A broker error halts the run immediately after an
// ORDER_REJECTED exec event is written, per spec.md's fail-loud
// contract.
func Run(
	ctx context.Context,
	pol *policy.CapitalPolicy,
	intents []intent.OrderIntent,
	portfolio *state.PortfolioState,
	execState *state.ExecutionState,
	market state.MarketSnapshot,
	br broker.Broker,
	auditW *audit.Writer,
	execW *execevent.Writer,
	jrnl journal.Journal,
	engineVersion string,
) (*RunSummary, error) {
	runID := idgen.NewRunID()
	summary := newSummary(runID)

	if ps, ok := br.(PriceSetter); ok {
		ps.SetPrices(market)
	}

	windowSeconds := pol.Limits.KillSwitch.ViolationWindowSeconds
	tripAfterN := pol.Limits.KillSwitch.TripAfterNViolations

	for _, in := range intents {
		d := engine.Evaluate(in, *portfolio, market, *execState, pol)
		summary.record(d)

		eventTimestamp := audit.NowMicros()
		if auditW != nil {
			event := audit.Build(d, in, *portfolio, market, *execState, engineVersion, pol.Hash, runID, eventTimestamp)
			if err := auditW.Write(event); err != nil {
				return summary, fmt.Errorf("write audit event: %w", err)
			}
		}
		if jrnl != nil {
			if err := jrnl.RecordDecision(journal.DecisionRecord{
				RunID:      runID,
				IntentID:   in.IntentID,
				PolicyHash: pol.Hash,
				Timestamp:  eventTimestamp,
				Decision:   string(d.Decision),
				RuleIDs:    ruleIDsJoined(d.Violations),
				KillSwitch: d.KillSwitchTriggered,
			}); err != nil {
				return summary, fmt.Errorf("record decision: %w", err)
			}
		}

		if d.Decision == decision.Deny {
			applyWindowAndKillSwitch(execState, d, in, windowSeconds, tripAfterN)
			continue
		}

		effective := in
		if d.ModifiedIntent != nil {
			effective = *d.ModifiedIntent
		}

		res, err := br.Submit(ctx, effective)
		if err != nil {
			writeExecEvent(execW, execevent.Rejected, in.IntentID, "", runID, pol.Hash, &effective, nil)
			return summary, fmt.Errorf("broker submit: %w", err)
		}

		if res.Status == broker.Rejected {
			writeExecEvent(execW, execevent.Rejected, in.IntentID, res.OrderID, runID, pol.Hash, &effective, nil)
		} else {
			summary.OrdersSubmitted++
			writeExecEvent(execW, execevent.Submitted, in.IntentID, res.OrderID, runID, pol.Hash, &effective, nil)

			fills, err := br.PollFills(ctx, []string{res.OrderID})
			if err != nil {
				return summary, fmt.Errorf("poll fills: %w", err)
			}
			for _, f := range fills {
				applyFill(portfolio, f)
				summary.OrdersFilled++
				price := f.Price
				writeExecEvent(execW, execevent.Filled, in.IntentID, f.OrderID, runID, pol.Hash, nil, &execFillInfo{symbol: f.Symbol, side: f.Side, qty: f.Qty, price: &price})
			}

			if len(fills) == 0 {
				order, err := br.GetOrder(ctx, res.OrderID)
				if err == nil && order.Status == broker.Rejected {
					writeExecEvent(execW, execevent.Rejected, in.IntentID, res.OrderID, runID, pol.Hash, nil, nil)
				}
			}

			execState.OrdersLastMinuteGlobal++
			if execState.OrdersLastMinuteByStrategy == nil {
				execState.OrdersLastMinuteByStrategy = map[string]int{}
			}
			execState.OrdersLastMinuteByStrategy[in.StrategyID]++
		}

		portfolio.PeakEquity = maxFloat(portfolio.PeakEquity, portfolio.Equity)
		applyWindowAndKillSwitch(execState, d, in, windowSeconds, tripAfterN)
	}

	summary.FinalEquity = portfolio.Equity
	summary.FinalPositions = copyPositions(portfolio.Positions)
	summary.KillSwitchActive = execState.KillSwitchActive

	if jrnl != nil {
		if err := jrnl.RecordRunSummary(journal.RunSummaryRecord{
			RunID:            runID,
			TotalIntents:     summary.TotalIntents,
			Allowed:          summary.Decisions[decision.Allow],
			Modified:         summary.Decisions[decision.Modify],
			Denied:           summary.Decisions[decision.Deny],
			OrdersSubmitted:  summary.OrdersSubmitted,
			OrdersFilled:     summary.OrdersFilled,
			FinalEquity:      summary.FinalEquity,
			KillSwitchActive: summary.KillSwitchActive,
		}); err != nil {
			return summary, fmt.Errorf("record run summary: %w", err)
		}
	}

	return summary, nil
}

func ruleIDsJoined(violations []decision.Violation) string {
	ids := make([]string, len(violations))
	for i, v := range violations {
		ids[i] = v.RuleID
	}
	return strings.Join(ids, ",")
}

// applyFill updates positions and, per spec.md §4.8 step 5's simple
// signed cash model, equity: buys debit qty*price, sells credit it.
func applyFill(portfolio *state.PortfolioState, f broker.Fill) {
	if portfolio.Positions == nil {
		portfolio.Positions = map[string]float64{}
	}
	current := portfolio.Positions[f.Symbol]
	var signedQty float64
	switch f.Side {
	case intent.Buy:
		signedQty = f.Qty
		portfolio.Equity -= f.Qty * f.Price
	case intent.Sell:
		signedQty = -f.Qty
		portfolio.Equity += f.Qty * f.Price
	}
	newQty := current + signedQty
	if newQty == 0 {
		delete(portfolio.Positions, f.Symbol)
	} else {
		portfolio.Positions[f.Symbol] = newQty
	}
}

// applyWindowAndKillSwitch appends each fired violation to the rolling
// window, evicts stale entries, and applies the hard/soft kill-switch
// trip logic (spec.md §4.8 steps 8-9). Once tripped, it stays tripped.
func applyWindowAndKillSwitch(execState *state.ExecutionState, d decision.Decision, in intent.OrderIntent, windowSeconds, tripAfterN int) {
	ts := epochSeconds(in.Timestamp)

	for _, v := range d.Violations {
		execState.ViolationsInWindow = append(execState.ViolationsInWindow, state.RuleViolation{RuleID: v.RuleID, TimestampEpochSecs: ts})
	}

	cutoff := ts - int64(windowSeconds)
	kept := execState.ViolationsInWindow[:0:0]
	for _, v := range execState.ViolationsInWindow {
		if v.TimestampEpochSecs >= cutoff {
			kept = append(kept, v)
		}
	}
	execState.ViolationsInWindow = kept

	if d.KillSwitchTriggered {
		execState.KillSwitchActive = true
	}
	if !execState.KillSwitchActive && len(execState.ViolationsInWindow) >= tripAfterN {
		execState.KillSwitchActive = true
	}
}

func epochSeconds(ts string) int64 {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return 0
	}
	return t.Unix()
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func copyPositions(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// RuleHistogramSorted returns summary.RuleHistogram's keys in sorted
// order, for stable CLI/report rendering.
func (s *RunSummary) RuleHistogramSorted() []string {
	keys := make([]string, 0, len(s.RuleHistogram))
	for k := range s.RuleHistogram {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type execFillInfo struct {
	symbol string
	side   intent.Side
	qty    float64
	price  *float64
}

func writeExecEvent(w *execevent.Writer, kind execevent.Kind, intentID, orderID, runID, policyHash string, in *intent.OrderIntent, fill *execFillInfo) {
	if w == nil {
		return
	}
	e := execevent.Event{
		Timestamp:  audit.NowMicros(),
		Event:      kind,
		IntentID:   intentID,
		OrderID:    orderID,
		RunID:      runID,
		PolicyHash: policyHash,
	}
	if in != nil {
		e.Symbol = in.Instrument.Symbol
		e.Side = in.Side
		e.Qty = in.Qty
		if kind == execevent.Submitted {
			e.OrderType = in.OrderType
		}
	}
	if fill != nil {
		e.Symbol = fill.symbol
		e.Side = fill.side
		e.Qty = fill.qty
		e.Price = fill.price
	}
	_ = w.Write(e) // exec log write failures are not fatal to the run
}
