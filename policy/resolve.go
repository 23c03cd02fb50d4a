package policy

// Resolve returns the EffectiveLimits for (symbol, strategyID): for each
// sub-block, the first of overrides.symbols[symbol], overrides.strategies
// [strategyID], defaults that defines that sub-block wins (spec.md §4.1).
// A symbol override that defines exposure but omits loss uses defaults for
// loss — resolution happens at sub-block granularity, not as a whole-block
// override.
func Resolve(p *CapitalPolicy, symbol, strategyID string) EffectiveLimits {
	sym := p.Overrides.Symbols[symbol]
	strat := p.Overrides.Strategies[strategyID]

	eff := EffectiveLimits{
		Exposure:  p.Limits.Exposure,
		Loss:      p.Limits.Loss,
		Execution: p.Limits.Execution,
	}

	if sym.Exposure != nil {
		eff.Exposure = *sym.Exposure
	} else if strat.Exposure != nil {
		eff.Exposure = *strat.Exposure
	}

	if sym.Loss != nil {
		eff.Loss = *sym.Loss
	} else if strat.Loss != nil {
		eff.Loss = *strat.Loss
	}

	if sym.Execution != nil {
		eff.Execution = *sym.Execution
	} else if strat.Execution != nil {
		eff.Execution = *strat.Execution
	}

	return eff
}
