// Package sim is a deterministic, in-memory broker.Broker fixture. It
// exists to exercise the abstract broker contract and drive the stream
// runner end to end in tests and the policygate-run default; it is not a
// production broker adapter (those are out of scope, spec.md §3).
//
// Fill rules mirror original_source/adapters/sim_broker.py: a market
// order fills immediately at the current price. A limit buy fills if the
// limit price is at or above the current price; a limit sell fills if
// the limit price is at or below it. Anything that does not fill this
// way is rejected outright — there is no resting order book. No partial
// fills, slippage, or fees.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/policygate/capital/broker"
	"github.com/policygate/capital/intent"
	"github.com/policygate/capital/internal/idgen"
	"github.com/policygate/capital/state"
)

// OrderIDPrefix tags every order ID this broker mints.
const OrderIDPrefix = "SIM-"

type orderRecord struct {
	intent intent.OrderIntent
	status broker.OrderStatus
}

// Broker is a deterministic fill simulator. The zero value is not
// usable; construct with New.
type Broker struct {
	mu     sync.Mutex
	prices map[string]float64
	orders map[string]*orderRecord
	fills  map[string]broker.Fill // keyed by order ID, consumed by PollFills
}

// New returns an empty simulated broker with no known prices.
func New() *Broker {
	return &Broker{
		prices: make(map[string]float64),
		orders: make(map[string]*orderRecord),
		fills:  make(map[string]broker.Fill),
	}
}

// SetPrices replaces the broker's view of current prices, read by
// Submit to decide fills. The stream runner calls this once per market
// snapshot before submitting any orders against it.
func (b *Broker) SetPrices(market state.MarketSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.prices = make(map[string]float64, len(market.Prices))
	for sym, px := range market.Prices {
		b.prices[sym] = px
	}
}

// Submit decides the fill immediately: there is no resting order book.
func (b *Broker) Submit(ctx context.Context, in intent.OrderIntent) (broker.SubmitResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	orderID := idgen.NewOrderID(OrderIDPrefix)
	price, known := b.prices[in.Instrument.Symbol]
	if !known || price <= 0 {
		b.orders[orderID] = &orderRecord{intent: in, status: broker.Rejected}
		return broker.SubmitResult{OrderID: orderID, Status: broker.Rejected}, nil
	}

	if !fills(in, price) {
		b.orders[orderID] = &orderRecord{intent: in, status: broker.Rejected}
		return broker.SubmitResult{OrderID: orderID, Status: broker.Rejected}, nil
	}

	b.orders[orderID] = &orderRecord{intent: in, status: broker.Filled}
	b.fills[orderID] = broker.Fill{
		IntentID:  in.IntentID,
		OrderID:   orderID,
		Symbol:    in.Instrument.Symbol,
		Side:      in.Side,
		Qty:       in.Qty,
		Price:     price,
		Timestamp: time.Now().UTC(),
	}
	return broker.SubmitResult{OrderID: orderID, Status: broker.Filled}, nil
}

// fills reports whether in would execute at price, per the sim's fill
// rules.
func fills(in intent.OrderIntent, price float64) bool {
	if in.OrderType == intent.Market {
		return true
	}
	if in.LimitPrice == nil {
		return false
	}
	switch in.Side {
	case intent.Buy:
		return *in.LimitPrice >= price
	case intent.Sell:
		return *in.LimitPrice <= price
	default:
		return false
	}
}

// Cancel always reports the order's already-settled status: nothing
// rests long enough to cancel in this broker.
func (b *Broker) Cancel(ctx context.Context, orderID string) (broker.OrderStatus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.orders[orderID]
	if !ok {
		return "", fmt.Errorf("sim broker: unknown order %q", orderID)
	}
	return rec.status, nil
}

// PollFills returns, and consumes, any pending fills for the given open
// order IDs. Each fill is returned exactly once.
func (b *Broker) PollFills(ctx context.Context, openOrderIDs []string) ([]broker.Fill, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []broker.Fill
	for _, id := range openOrderIDs {
		if f, ok := b.fills[id]; ok {
			out = append(out, f)
			delete(b.fills, id)
		}
	}
	return out, nil
}

// GetOrder returns the broker's record of a previously submitted order.
func (b *Broker) GetOrder(ctx context.Context, orderID string) (broker.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.orders[orderID]
	if !ok {
		return broker.Order{}, fmt.Errorf("sim broker: unknown order %q", orderID)
	}
	return broker.Order{OrderID: orderID, Status: rec.status}, nil
}
