package order

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("order not found")

// Ledger is the durable store of placed orders.
type Ledger interface {
	// Create assigns ID and Sequence, stores o and takes its items out of stock in one atomic step.
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	// List returns all orders, newest first.
	List(ctx context.Context) ([]Order, error)
	Count(ctx context.Context) (int64, error)
	// Transition changes the status of an order. Cancelling puts its items back into stock.
	// changed is false when the order already had that status.
	Transition(ctx context.Context, id string, to Status, at time.Time) (o *Order, changed bool, err error)
}
