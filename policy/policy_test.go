package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validYAML() string {
	return `
version: "0.1"
timezone: UTC
defaults:
  mode: enforce
  decision: deny
limits:
  exposure:
    max_position_pct: 0.10
    max_gross_exposure_x: 3.0
    max_net_exposure_x: 2.0
  loss:
    daily_loss_limit_pct: 0.03
    max_drawdown_pct: 0.08
  execution:
    max_orders_per_minute_global: 20
    max_orders_per_minute_by_strategy: 10
  kill_switch:
    trip_on_rules: ["LOSS-002"]
    trip_after_n_violations: 3
    violation_window_seconds: 300
overrides:
  symbols:
    AAPL:
      exposure:
        max_position_pct: 0.20
        max_gross_exposure_x: 3.0
  strategies:
    momentum:
      execution:
        max_orders_per_minute_global: 5
        max_orders_per_minute_by_strategy: 5
`
}

func TestLoadBytes_Valid(t *testing.T) {
	t.Parallel()

	p, err := LoadBytes([]byte(validYAML()))
	require.NoError(t, err)
	assert.Equal(t, "0.1", p.Version)
	assert.Equal(t, Enforce, p.Defaults.Mode)
	assert.NotEmpty(t, p.Hash)
	assert.Len(t, p.Hash, 64) // sha256 hex digest
}

func TestLoadBytes_Deterministic(t *testing.T) {
	t.Parallel()

	raw := []byte(validYAML())
	a, err := LoadBytes(raw)
	require.NoError(t, err)
	b, err := LoadBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, a.Hash, b.Hash)
}

func TestLoadBytes_RejectsUnknownField(t *testing.T) {
	t.Parallel()

	bad := validYAML() + "\nunknown_top_level_key: true\n"
	_, err := LoadBytes([]byte(bad))
	require.Error(t, err)
}

func TestLoadBytes_RejectsBadVersion(t *testing.T) {
	t.Parallel()

	src := []byte(`
version: "0.2"
timezone: UTC
limits:
  exposure: {max_position_pct: 0.1, max_gross_exposure_x: 2}
  loss: {daily_loss_limit_pct: 0.1, max_drawdown_pct: 0.1}
  execution: {max_orders_per_minute_global: 10, max_orders_per_minute_by_strategy: 10}
  kill_switch: {trip_after_n_violations: 3, violation_window_seconds: 60}
`)
	_, err := LoadBytes(src)
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "version", ve.Field)
}

func TestLoadBytes_RejectsBadTimezone(t *testing.T) {
	t.Parallel()

	src := []byte(`
version: "0.1"
timezone: America/New_York
limits:
  exposure: {max_position_pct: 0.1, max_gross_exposure_x: 2}
  loss: {daily_loss_limit_pct: 0.1, max_drawdown_pct: 0.1}
  execution: {max_orders_per_minute_global: 10, max_orders_per_minute_by_strategy: 10}
  kill_switch: {trip_after_n_violations: 3, violation_window_seconds: 60}
`)
	_, err := LoadBytes(src)
	require.Error(t, err)
}

func TestLoadBytes_RejectsOutOfBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"max_position_pct too high", `
version: "0.1"
timezone: UTC
limits:
  exposure: {max_position_pct: 1.5, max_gross_exposure_x: 2}
  loss: {daily_loss_limit_pct: 0.1, max_drawdown_pct: 0.1}
  execution: {max_orders_per_minute_global: 10, max_orders_per_minute_by_strategy: 10}
  kill_switch: {trip_after_n_violations: 3, violation_window_seconds: 60}
`},
		{"max_orders_per_minute_global zero", `
version: "0.1"
timezone: UTC
limits:
  exposure: {max_position_pct: 0.1, max_gross_exposure_x: 2}
  loss: {daily_loss_limit_pct: 0.1, max_drawdown_pct: 0.1}
  execution: {max_orders_per_minute_global: 0, max_orders_per_minute_by_strategy: 10}
  kill_switch: {trip_after_n_violations: 3, violation_window_seconds: 60}
`},
		{"violation_window_seconds too large", `
version: "0.1"
timezone: UTC
limits:
  exposure: {max_position_pct: 0.1, max_gross_exposure_x: 2}
  loss: {daily_loss_limit_pct: 0.1, max_drawdown_pct: 0.1}
  execution: {max_orders_per_minute_global: 10, max_orders_per_minute_by_strategy: 10}
  kill_switch: {trip_after_n_violations: 3, violation_window_seconds: 99999999}
`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadBytes([]byte(tt.src))
			require.Error(t, err)
		})
	}
}

func TestResolve_SymbolOverridesStrategyOverridesDefaults(t *testing.T) {
	t.Parallel()

	p, err := LoadBytes([]byte(validYAML()))
	require.NoError(t, err)

	// AAPL symbol override defines exposure but not loss/execution.
	eff := Resolve(p, "AAPL", "momentum")
	assert.Equal(t, 0.20, eff.Exposure.MaxPositionPct, "symbol override wins for exposure")
	assert.Equal(t, p.Limits.Loss, eff.Loss, "loss falls back to defaults — AAPL override omits it")
	assert.Equal(t, 5, eff.Execution.MaxOrdersPerMinuteGlobal, "strategy override wins for execution — AAPL override omits it")

	// Unknown symbol/strategy: pure defaults.
	eff2 := Resolve(p, "MSFT", "unknown-strat")
	assert.Equal(t, p.Limits.Exposure, eff2.Exposure)
	assert.Equal(t, p.Limits.Loss, eff2.Loss)
	assert.Equal(t, p.Limits.Execution, eff2.Execution)
}

func TestHash_StableAcrossLoads(t *testing.T) {
	t.Parallel()

	raw := []byte(validYAML())
	assert.Equal(t, Hash(raw), Hash(raw))
}
