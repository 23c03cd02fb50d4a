// Package policy implements the CapitalPolicy data model: strict loading,
// bounds validation, SHA-256 hashing, and symbol/strategy override
// resolution. A loaded CapitalPolicy is immutable; nothing in this package
// mutates one after LoadFile or LoadBytes returns.
package policy

// Mode selects whether violations translate to a verdict (enforce) or are
// only recorded (monitor).
type Mode string

const (
	Enforce Mode = "enforce"
	Monitor Mode = "monitor"
)

// DefaultDecision is advisory metadata (spec.md §9, open question):
// preserved on load, never consumed by the evaluation pipeline.
type DefaultDecision string

const (
	DefaultDeny  DefaultDecision = "deny"
	DefaultAllow DefaultDecision = "allow"
)

// Defaults carries the policy-wide mode and the (currently unconsumed)
// default-decision hint.
type Defaults struct {
	Mode     Mode            `yaml:"mode"`
	Decision DefaultDecision `yaml:"decision"`
}

// ExposureLimits bounds a symbol's or account's position concentration.
type ExposureLimits struct {
	MaxPositionPct    float64  `yaml:"max_position_pct"`
	MaxGrossExposureX float64  `yaml:"max_gross_exposure_x"`
	MaxNetExposureX   *float64 `yaml:"max_net_exposure_x"`
}

// LossLimits bounds drawdown and realized daily loss.
type LossLimits struct {
	DailyLossLimitPct float64 `yaml:"daily_loss_limit_pct"`
	MaxDrawdownPct    float64 `yaml:"max_drawdown_pct"`
}

// ExecutionLimits bounds order submission rate.
type ExecutionLimits struct {
	MaxOrdersPerMinuteGlobal     int `yaml:"max_orders_per_minute_global"`
	MaxOrdersPerMinuteByStrategy int `yaml:"max_orders_per_minute_by_strategy"`
}

// KillSwitch configures which rules hard-trip the kill switch and the
// soft-trip threshold over a rolling window.
type KillSwitch struct {
	TripOnRules            []string `yaml:"trip_on_rules"`
	TripAfterNViolations   int      `yaml:"trip_after_n_violations"`
	ViolationWindowSeconds int      `yaml:"violation_window_seconds"`
}

// Limits is the policy-wide default limits block.
type Limits struct {
	Exposure   ExposureLimits  `yaml:"exposure"`
	Loss       LossLimits      `yaml:"loss"`
	Execution  ExecutionLimits `yaml:"execution"`
	KillSwitch KillSwitch      `yaml:"kill_switch"`
}

// OverrideBlock is a partial limits block: any nil sub-block falls back to
// defaults, per spec.md §4.1 sub-block granularity.
type OverrideBlock struct {
	Exposure  *ExposureLimits  `yaml:"exposure"`
	Loss      *LossLimits      `yaml:"loss"`
	Execution *ExecutionLimits `yaml:"execution"`
}

// Overrides maps symbols and strategies to partial limits blocks.
type Overrides struct {
	Symbols    map[string]OverrideBlock `yaml:"symbols"`
	Strategies map[string]OverrideBlock `yaml:"strategies"`
}

// CapitalPolicy is the immutable, validated policy configuration. Use
// LoadFile/LoadBytes to construct one; there is no public constructor
// for zero-value policies because every sub-block requires explicit bounds
// checking.
type CapitalPolicy struct {
	Version   string    `yaml:"version"`
	Timezone  string    `yaml:"timezone"`
	Defaults  Defaults  `yaml:"defaults"`
	Limits    Limits    `yaml:"limits"`
	Overrides Overrides `yaml:"overrides"`

	// Hash is the SHA-256 hex digest of the canonical source bytes that
	// produced this policy. Set by LoadFile/LoadBytes.
	Hash string `yaml:"-"`
}

// EffectiveLimits is the result of resolving overrides for a given
// (symbol, strategy_id) pair: one concrete value per sub-block.
type EffectiveLimits struct {
	Exposure  ExposureLimits
	Loss      LossLimits
	Execution ExecutionLimits
}
