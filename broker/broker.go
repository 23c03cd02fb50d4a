// Package broker defines the abstract broker contract the stream runner
// drives (spec.md §4.7). Concrete implementations (simulated, Alpaca,
// Tradier) are collaborators at this interface; only a minimal
// deterministic fixture lives in this module, under broker/sim.
package broker

import (
	"context"
	"time"

	"github.com/policygate/capital/intent"
)

// OrderStatus is a broker order's lifecycle state.
type OrderStatus string

const (
	Pending   OrderStatus = "pending"
	Filled    OrderStatus = "filled"
	Cancelled OrderStatus = "cancelled"
	Rejected  OrderStatus = "rejected"
)

// SubmitResult is what Submit returns on success.
type SubmitResult struct {
	OrderID string
	Status  OrderStatus
}

// Order is the broker's view of a previously submitted order, returned
// by GetOrder.
type Order struct {
	OrderID string
	Status  OrderStatus
}

// Fill is one execution against a submitted order.
type Fill struct {
	IntentID  string
	OrderID   string
	Symbol    string
	Side      intent.Side
	Qty       float64
	Price     float64
	Timestamp time.Time
}

// Broker is the abstract contract the stream runner drives. Submit may
// return an error; the runner emits ORDER_REJECTED and re-raises
// (fail-loud, no retry — spec.md §4.7, §7).
type Broker interface {
	Submit(ctx context.Context, in intent.OrderIntent) (SubmitResult, error)
	Cancel(ctx context.Context, orderID string) (OrderStatus, error)
	PollFills(ctx context.Context, openOrderIDs []string) ([]Fill, error)
	GetOrder(ctx context.Context, orderID string) (Order, error)
}
