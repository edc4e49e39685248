package inventory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Adjuster applies stock changes to the products table inside a caller owned transaction.
type Adjuster struct{}

func NewAdjuster() *Adjuster {
	return &Adjuster{}
}

// DecrementWithTx removes each line's quantity from stock, never going below zero.
func (a *Adjuster) DecrementWithTx(ctx context.Context, tx pgx.Tx, lines []Line) ([]Change, error) {
	return a.adjustWithTx(ctx, tx, lines, Out)
}

// RestockWithTx returns each line's quantity to stock.
func (a *Adjuster) RestockWithTx(ctx context.Context, tx pgx.Tx, lines []Line) ([]Change, error) {
	return a.adjustWithTx(ctx, tx, lines, In)
}

func (a *Adjuster) adjustWithTx(ctx context.Context, tx pgx.Tx, lines []Line, dir Direction) ([]Change, error) {
	// Rows are always locked in name order so concurrent orders over the same
	// products queue behind each other instead of deadlocking.
	ordered := slices.Clone(lines)
	slices.SortFunc(ordered, func(a, b Line) int { return strings.Compare(a.Product, b.Product) })

	changes := make([]Change, 0, len(ordered))
	for _, line := range ordered {
		var stock *int
		err := tx.QueryRow(ctx, `
			SELECT stock
			FROM products
			WHERE name=$1
			FOR UPDATE
		`, line.Product).Scan(&stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// product deleted since the order was taken
				continue
			}
			return nil, fmt.Errorf("lock stock for %q: %w", line.Product, err)
		}
		if stock == nil {
			continue
		}

		after := dir.apply(*stock, line.Quantity)
		if _, err := tx.Exec(ctx, `
			UPDATE products
			SET stock=$2, updated_at=now()
			WHERE name=$1
		`, line.Product, after); err != nil {
			return nil, fmt.Errorf("update stock for %q: %w", line.Product, err)
		}
		changes = append(changes, Change{Product: line.Product, Before: *stock, After: after})
	}

	return changes, nil
}
