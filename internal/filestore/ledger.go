package filestore

import (
	"context"
	"fmt"
	"time"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/inventory"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/order"
)

// Ledger implements order.Ledger on top of orders.json and products.json.
type Ledger struct {
	s *Store
}

var _ order.Ledger = (*Ledger)(nil)

func (l *Ledger) Create(_ context.Context, o *order.Order) error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	seq := l.s.seq + 1
	o.Sequence = seq
	o.ID = order.NewID(o.CreatedAt, seq)

	products := cloneProducts(l.s.products)
	inventory.Apply(stockTable(products), o.StockLines(), inventory.Out)

	orders := append(l.ordersCopy(), cloneOrder(*o))
	if err := l.commit(orders, products); err != nil {
		return fmt.Errorf("store order: %w", err)
	}
	l.s.seq = seq
	return nil
}

func (l *Ledger) Get(_ context.Context, id string) (*order.Order, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return nil, order.ErrNotFound
	}
	o := cloneOrder(l.s.orders[i])
	return &o, nil
}

func (l *Ledger) List(_ context.Context) ([]order.Order, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	out := make([]order.Order, 0, len(l.s.orders))
	for i := len(l.s.orders) - 1; i >= 0; i-- {
		out = append(out, cloneOrder(l.s.orders[i]))
	}
	return out, nil
}

func (l *Ledger) Count(_ context.Context) (int64, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return int64(len(l.s.orders)), nil
}

func (l *Ledger) Transition(_ context.Context, id string, to order.Status, at time.Time) (*order.Order, bool, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return nil, false, order.ErrNotFound
	}

	o := cloneOrder(l.s.orders[i])
	changed, err := o.Transition(to, at)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return &o, false, nil
	}

	var products []catalog.Product
	if to == order.StatusCancelled {
		products = cloneProducts(l.s.products)
		inventory.Apply(stockTable(products), o.StockLines(), inventory.In)
	}

	orders := l.ordersCopy()
	orders[i] = cloneOrder(o)
	if err := l.commit(orders, products); err != nil {
		return nil, false, fmt.Errorf("store transition: %w", err)
	}
	return &o, true, nil
}

// commit persists the orders, and the products when non-nil, and only then swaps
// them in. mu must be held.
func (l *Ledger) commit(orders []order.Order, products []catalog.Product) error {
	if err := l.s.write(ordersFile, orders); err != nil {
		return err
	}
	if products != nil {
		if err := l.s.write(productsFile, products); err != nil {
			// Roll the order file back so both files agree.
			if rerr := l.s.write(ordersFile, l.s.orders); rerr != nil {
				l.s.logger.Printf("filestore: restore %s: %v", ordersFile, rerr)
			}
			return err
		}
		l.s.products = products
	}
	l.s.orders = orders
	return nil
}

func (l *Ledger) ordersCopy() []order.Order {
	out := make([]order.Order, len(l.s.orders))
	copy(out, l.s.orders)
	return out
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.s.orders {
		if l.s.orders[i].ID == id {
			return i
		}
	}
	return -1
}
