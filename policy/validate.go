package policy

import "fmt"

// ValidationError wraps a structural, bounds, unknown-key, or
// version/timezone mismatch detected while loading a policy. Raised only
// at load time — never during evaluation (spec.md §7).
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("policy validation: %s: %s", e.Field, e.Msg)
}

func fail(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// Validate enforces every bound in spec.md §3. It assumes the source has
// already passed strict (unknown-key-rejecting) decoding.
func (p *CapitalPolicy) Validate() error {
	if p.Version != "0.1" {
		return fail("version", `must equal "0.1"`)
	}
	if p.Timezone != "UTC" {
		return fail("timezone", `must equal "UTC"`)
	}
	switch p.Defaults.Mode {
	case Enforce, Monitor:
	case "":
		p.Defaults.Mode = Enforce
	default:
		return fail("defaults.mode", "must be enforce or monitor")
	}
	switch p.Defaults.Decision {
	case DefaultDeny, DefaultAllow:
	case "":
		p.Defaults.Decision = DefaultDeny
	default:
		return fail("defaults.decision", "must be deny or allow")
	}

	if err := p.Limits.Exposure.validate("limits.exposure"); err != nil {
		return err
	}
	if err := p.Limits.Loss.validate("limits.loss"); err != nil {
		return err
	}
	if err := p.Limits.Execution.validate("limits.execution"); err != nil {
		return err
	}
	if err := p.Limits.KillSwitch.validate("limits.kill_switch"); err != nil {
		return err
	}

	for sym, ov := range p.Overrides.Symbols {
		if err := ov.validate(fmt.Sprintf("overrides.symbols[%s]", sym)); err != nil {
			return err
		}
	}
	for strat, ov := range p.Overrides.Strategies {
		if err := ov.validate(fmt.Sprintf("overrides.strategies[%s]", strat)); err != nil {
			return err
		}
	}
	return nil
}

func (e ExposureLimits) validate(field string) error {
	if e.MaxPositionPct <= 0 || e.MaxPositionPct > 1 {
		return fail(field+".max_position_pct", "must be in (0, 1]")
	}
	if e.MaxGrossExposureX <= 0 {
		return fail(field+".max_gross_exposure_x", "must be > 0")
	}
	if e.MaxNetExposureX != nil && *e.MaxNetExposureX <= 0 {
		return fail(field+".max_net_exposure_x", "must be > 0 when set")
	}
	return nil
}

func (l LossLimits) validate(field string) error {
	if l.DailyLossLimitPct <= 0 || l.DailyLossLimitPct > 1 {
		return fail(field+".daily_loss_limit_pct", "must be in (0, 1]")
	}
	if l.MaxDrawdownPct <= 0 || l.MaxDrawdownPct > 1 {
		return fail(field+".max_drawdown_pct", "must be in (0, 1]")
	}
	return nil
}

func (x ExecutionLimits) validate(field string) error {
	if x.MaxOrdersPerMinuteGlobal < 1 || x.MaxOrdersPerMinuteGlobal > 10000 {
		return fail(field+".max_orders_per_minute_global", "must be in [1, 10000]")
	}
	if x.MaxOrdersPerMinuteByStrategy < 1 || x.MaxOrdersPerMinuteByStrategy > 10000 {
		return fail(field+".max_orders_per_minute_by_strategy", "must be in [1, 10000]")
	}
	return nil
}

func (k KillSwitch) validate(field string) error {
	if k.TripAfterNViolations < 1 || k.TripAfterNViolations > 10000 {
		return fail(field+".trip_after_n_violations", "must be in [1, 10000]")
	}
	const maxWindow = 31536000 // seconds in a year, per spec.md §3
	if k.ViolationWindowSeconds < 1 || k.ViolationWindowSeconds > maxWindow {
		return fail(field+".violation_window_seconds", "must be in [1, 31536000]")
	}
	return nil
}

func (o OverrideBlock) validate(field string) error {
	if o.Exposure != nil {
		if err := o.Exposure.validate(field + ".exposure"); err != nil {
			return err
		}
	}
	if o.Loss != nil {
		if err := o.Loss.validate(field + ".loss"); err != nil {
			return err
		}
	}
	if o.Execution != nil {
		if err := o.Execution.validate(field + ".execution"); err != nil {
			return err
		}
	}
	return nil
}
