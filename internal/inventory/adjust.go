// Package inventory adjusts product stock when orders are placed or cancelled.
package inventory

// Decrement removes qty from stock, flooring the result at zero.
func Decrement(stock, qty int) int {
	if qty <= 0 {
		return stock
	}
	if qty >= stock {
		return 0
	}
	return stock - qty
}

// Restock returns qty to stock. There is no upper bound.
func Restock(stock, qty int) int {
	if qty <= 0 {
		return stock
	}
	return stock + qty
}

// Direction selects which adjustment Apply performs.
type Direction int

const (
	Out Direction = iota // order placed
	In                   // order cancelled
)

func (d Direction) apply(stock, qty int) int {
	if d == In {
		return Restock(stock, qty)
	}
	return Decrement(stock, qty)
}

// Apply adjusts an in-memory stock table keyed by product name.
// Products missing from the table or without tracked stock (nil) are left alone.
func Apply(stock map[string]*int, lines []Line, dir Direction) []Change {
	changes := make([]Change, 0, len(lines))
	for _, l := range lines {
		cur, ok := stock[l.Product]
		if !ok || cur == nil {
			continue
		}
		before := *cur
		after := dir.apply(before, l.Quantity)
		*cur = after
		changes = append(changes, Change{Product: l.Product, Before: before, After: after})
	}
	return changes
}
