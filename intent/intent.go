// Package intent defines the proposed-order shape that flows into the
// policy engine. Instances are immutable once constructed.
package intent

import (
	"fmt"
	"time"
)

// Side is the direction of a proposed order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// OrderType is the proposed order's execution style.
type OrderType string

const (
	Market OrderType = "market"
	Limit  OrderType = "limit"
)

// AssetClass identifies the instrument family of a symbol.
type AssetClass string

const (
	Equity  AssetClass = "equity"
	Crypto  AssetClass = "crypto"
	FX      AssetClass = "fx"
	Futures AssetClass = "futures"
)

// Instrument names the tradable symbol and its asset class.
type Instrument struct {
	Symbol     string     `json:"symbol" yaml:"symbol"`
	AssetClass AssetClass `json:"asset_class" yaml:"asset_class"`
}

// OrderIntent is a proposed order awaiting a policy verdict.
type OrderIntent struct {
	IntentID   string     `json:"intent_id" yaml:"intent_id"`
	Timestamp  string     `json:"timestamp" yaml:"timestamp"` // RFC 3339 UTC
	StrategyID string     `json:"strategy_id" yaml:"strategy_id"`
	AccountID  string     `json:"account_id" yaml:"account_id"`
	Instrument Instrument `json:"instrument" yaml:"instrument"`
	Side       Side       `json:"side" yaml:"side"`
	OrderType  OrderType  `json:"order_type" yaml:"order_type"`
	Qty        float64    `json:"qty" yaml:"qty"`
	LimitPrice *float64   `json:"limit_price" yaml:"limit_price"`
}

// ValidationError wraps a malformed OrderIntent. The CLI maps it to exit 2.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("intent validation: %s: %s", e.Field, e.Msg)
}

// Validate enforces the invariants in spec.md §3: positive qty, a
// non-nil limit price on limit orders, a well-formed side/order_type/
// asset_class, and an RFC 3339 timestamp.
func (o OrderIntent) Validate() error {
	if o.IntentID == "" {
		return &ValidationError{"intent_id", "must not be empty"}
	}
	if _, err := time.Parse(time.RFC3339, o.Timestamp); err != nil {
		return &ValidationError{"timestamp", "must be RFC 3339: " + err.Error()}
	}
	if o.StrategyID == "" {
		return &ValidationError{"strategy_id", "must not be empty"}
	}
	if o.AccountID == "" {
		return &ValidationError{"account_id", "must not be empty"}
	}
	if o.Instrument.Symbol == "" {
		return &ValidationError{"instrument.symbol", "must not be empty"}
	}
	switch o.Instrument.AssetClass {
	case Equity, Crypto, FX, Futures:
	default:
		return &ValidationError{"instrument.asset_class", "must be one of equity, crypto, fx, futures"}
	}
	switch o.Side {
	case Buy, Sell:
	default:
		return &ValidationError{"side", "must be buy or sell"}
	}
	switch o.OrderType {
	case Market, Limit:
	default:
		return &ValidationError{"order_type", "must be market or limit"}
	}
	if o.Qty <= 0 {
		return &ValidationError{"qty", "must be > 0"}
	}
	if o.OrderType == Limit && o.LimitPrice == nil {
		return &ValidationError{"limit_price", "must be set when order_type is limit"}
	}
	if o.LimitPrice != nil && *o.LimitPrice < 0 {
		return &ValidationError{"limit_price", "must be >= 0"}
	}
	return nil
}

// WithQty returns a copy of the intent with Qty replaced. Used by the
// evaluator to produce modified_intent for a MODIFY verdict.
func (o OrderIntent) WithQty(qty float64) OrderIntent {
	c := o
	c.Qty = qty
	return c
}
