package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/inventory"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// StockAdjuster moves stock inside an open transaction.
type StockAdjuster interface {
	DecrementWithTx(ctx context.Context, tx pgx.Tx, lines []inventory.Line) ([]inventory.Change, error)
	RestockWithTx(ctx context.Context, tx pgx.Tx, lines []inventory.Line) ([]inventory.Change, error)
}

type PostgresLedger struct {
	pool  DBPool
	stock StockAdjuster
}

func NewPostgresLedger(pool DBPool, stock StockAdjuster) *PostgresLedger {
	return &PostgresLedger{pool: pool, stock: stock}
}

// querier is satisfied by both the pool and a pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const orderColumns = `id, seq, customer_name, phone, address, pincode, landmark,
	subtotal, delivery_charge, total, status, created_at, confirmed_at, cancelled_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.Sequence, &o.Name, &o.Phone, &o.Address, &o.Pincode, &o.Landmark,
		&o.Subtotal, &o.DeliveryCharge, &o.Total, &o.Status, &o.CreatedAt, &o.ConfirmedAt, &o.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (l *PostgresLedger) Create(ctx context.Context, o *Order) error {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('order_seq')`).Scan(&seq); err != nil {
		return fmt.Errorf("next order sequence: %w", err)
	}
	o.Sequence = seq
	o.ID = NewID(o.CreatedAt, seq)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, seq, customer_name, phone, address, pincode, landmark,
			subtotal, delivery_charge, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, o.ID, o.Sequence, o.Name, o.Phone, o.Address, o.Pincode, o.Landmark,
		o.Subtotal, o.DeliveryCharge, o.Total, o.Status, o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, it := range o.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, line_no, name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, o.ID, i+1, it.Name, it.Quantity, it.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if _, err := l.stock.DecrementWithTx(ctx, tx, o.StockLines()); err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

func (l *PostgresLedger) Get(ctx context.Context, id string) (*Order, error) {
	return l.get(ctx, l.pool, id, false)
}

func (l *PostgresLedger) get(ctx context.Context, q querier, id string, lock bool) (*Order, error) {
	sql := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	if lock {
		sql += ` FOR UPDATE`
	}
	o, err := scanOrder(q.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := l.items(ctx, q, id)
	if err != nil {
		return nil, err
	}
	o.Items = items[id]
	return o, nil
}

// items loads order lines grouped by order id. An empty id loads every order's lines.
func (l *PostgresLedger) items(ctx context.Context, q querier, id string) (map[string][]Item, error) {
	sql := `SELECT order_id, name, quantity, unit_price FROM order_items`
	var args []any
	if id != "" {
		sql += ` WHERE order_id=$1`
		args = append(args, id)
	}
	sql += ` ORDER BY order_id, line_no`

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	out := map[string][]Item{}
	for rows.Next() {
		var orderID string
		var it Item
		if err := rows.Scan(&orderID, &it.Name, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out[orderID] = append(out[orderID], it)
	}
	return out, rows.Err()
}

func (l *PostgresLedger) List(ctx context.Context) ([]Order, error) {
	rows, err := l.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	items, err := l.items(ctx, l.pool, "")
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Items = items[out[i].ID]
	}
	return out, nil
}

func (l *PostgresLedger) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := l.pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (l *PostgresLedger) Transition(ctx context.Context, id string, to Status, at time.Time) (*Order, bool, error) {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := l.get(ctx, tx, id, true)
	if err != nil {
		return nil, false, err
	}

	changed, err := o.Transition(to, at)
	if err != nil || !changed {
		return o, false, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE orders
		SET status=$2, confirmed_at=$3, cancelled_at=$4
		WHERE id=$1
	`, o.ID, o.Status, o.ConfirmedAt, o.CancelledAt)
	if err != nil {
		return nil, false, fmt.Errorf("update order status: %w", err)
	}

	if to == StatusCancelled {
		if _, err := l.stock.RestockWithTx(ctx, tx, o.StockLines()); err != nil {
			return nil, false, fmt.Errorf("restock: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("commit status change: %w", err)
	}
	return o, true, nil
}
