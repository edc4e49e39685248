package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/inventory"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/pricing"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/validation"
)

// Item is a frozen copy of a product line at the time the order was placed.
type Item struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

func (i Item) LineTotal() decimal.Decimal {
	return pricing.LineTotal(i.UnitPrice, i.Quantity)
}

// Delivery holds the customer details collected at checkout.
type Delivery struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Pincode  string `json:"pincode"`
	Landmark string `json:"landmark"`
}

func (d Delivery) normalized() Delivery {
	return Delivery{
		Name:     strings.TrimSpace(d.Name),
		Phone:    strings.TrimSpace(d.Phone),
		Address:  strings.TrimSpace(d.Address),
		Pincode:  strings.TrimSpace(d.Pincode),
		Landmark: strings.TrimSpace(d.Landmark),
	}
}

func (d Delivery) Validate() error {
	var missing []string
	if d.Name == "" {
		missing = append(missing, "name")
	}
	if d.Phone == "" {
		missing = append(missing, "phone")
	}
	if d.Address == "" {
		missing = append(missing, "address")
	}
	if d.Pincode == "" {
		missing = append(missing, "pincode")
	}
	if len(missing) > 0 {
		return validation.Errorf("missing delivery details: %s", strings.Join(missing, ", "))
	}
	return nil
}

type Order struct {
	ID             string          `json:"orderId"`
	Sequence       int64           `json:"sequence"`
	Delivery                       // customer and address
	Items          []Item          `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryCharge decimal.Decimal `json:"deliveryCharge"`
	Total          decimal.Decimal `json:"total"`
	Status         Status          `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	ConfirmedAt    *time.Time      `json:"confirmedAt,omitempty"`
	CancelledAt    *time.Time      `json:"cancelledAt,omitempty"`
}

// StockLines returns the quantities this order takes out of (or puts back into) stock.
func (o *Order) StockLines() []inventory.Line {
	lines := make([]inventory.Line, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, inventory.Line{Product: it.Name, Quantity: it.Quantity})
	}
	return lines
}

// Transition moves the order to status `to` at time at.
// It returns false without touching the order when it is already in that status.
func (o *Order) Transition(to Status, at time.Time) (bool, error) {
	changed, err := o.Status.Next(to)
	if err != nil || !changed {
		return false, err
	}
	o.Status = to
	ts := at.UTC()
	switch to {
	case StatusConfirmed:
		o.ConfirmedAt = &ts
	case StatusCancelled:
		o.CancelledAt = &ts
	}
	return true, nil
}
