package engine

import (
	"time"

	"github.com/policygate/capital/decision"
	"github.com/policygate/capital/intent"
	"github.com/policygate/capital/policy"
	"github.com/policygate/capital/state"
)

// PolicyEngine loads a policy once and exposes the sole evaluation entry
// point. It holds no mutable state beyond the loaded policy, so a single
// instance may be shared freely across goroutines (spec.md §5).
type PolicyEngine struct {
	policy *policy.CapitalPolicy
}

// New loads and validates a policy from YAML source bytes.
func New(policySource []byte) (*PolicyEngine, error) {
	p, err := policy.LoadBytes(policySource)
	if err != nil {
		return nil, err
	}
	return &PolicyEngine{policy: p}, nil
}

// NewFromFile loads and validates a policy from a YAML file.
func NewFromFile(path string) (*PolicyEngine, error) {
	p, err := policy.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &PolicyEngine{policy: p}, nil
}

// Policy returns the loaded policy.
func (e *PolicyEngine) Policy() *policy.CapitalPolicy { return e.policy }

// PolicyHash returns the SHA-256 hex digest of the policy source.
func (e *PolicyEngine) PolicyHash() string { return e.policy.Hash }

// Evaluate is the sole entry point: a pure function of its inputs that
// also measures wall-clock evaluation time and attaches it to the
// returned Decision as EvalMs (spec.md §4.4).
func (e *PolicyEngine) Evaluate(in intent.OrderIntent, portfolio state.PortfolioState, market state.MarketSnapshot, exec state.ExecutionState) decision.Decision {
	t0 := time.Now()
	d := Evaluate(in, portfolio, market, exec, e.policy)
	d.EvalMs = float64(time.Since(t0).Nanoseconds()) / 1e6
	return d
}
