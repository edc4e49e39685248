package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/validation"
)

// Product is a menu item. Name is its identity.
type Product struct {
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     *int            `json:"stock"` // nil when stock is not tracked
	ImageRef  string          `json:"imageUrl"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Tracked reports whether the product has a stock level.
func (p Product) Tracked() bool { return p.Stock != nil }

// Available returns the current stock, or -1 when stock is not tracked.
func (p Product) Available() int {
	if p.Stock == nil {
		return -1
	}
	return *p.Stock
}

// Input carries the editable product fields.
type Input struct {
	Name  string
	Price decimal.Decimal
	Stock *int
}

func (in Input) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return validation.Errorf("product name is required")
	}
	if in.Price.IsNegative() {
		return validation.Errorf("price must not be negative")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return validation.Errorf("stock must not be negative")
	}
	return nil
}
