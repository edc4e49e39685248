// Package pricing computes cart and order totals.
package pricing

import "github.com/shopspring/decimal"

// DefaultDeliveryCharge is the flat fee added to every non-empty order.
var DefaultDeliveryCharge = decimal.NewFromInt(20)

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
	GrandTotal     decimal.Decimal `json:"grandTotal"`
}

type Engine struct {
	deliveryCharge decimal.Decimal
}

func NewEngine(deliveryCharge decimal.Decimal) Engine {
	if deliveryCharge.IsNegative() {
		deliveryCharge = decimal.Zero
	}
	return Engine{deliveryCharge: deliveryCharge}
}

func (e Engine) DeliveryCharge() decimal.Decimal {
	return e.deliveryCharge
}

// LineTotal returns price*qty.
func LineTotal(price decimal.Decimal, qty int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

// Compute sums the lines and adds the delivery charge when the subtotal is positive.
func (e Engine) Compute(lines []Line) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineTotal(l.UnitPrice, l.Quantity))
	}

	delivery := decimal.Zero
	if subtotal.IsPositive() {
		delivery = e.deliveryCharge
	}

	return Totals{
		Subtotal:       subtotal,
		DeliveryCharge: delivery,
		GrandTotal:     subtotal.Add(delivery),
	}
}
