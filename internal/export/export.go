// Package export renders orders as downloadable documents: PDF invoices and an XLSX order history.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/validation"
)

const timeLayout = "2006-01-02 15:04:05"

// Document is a rendered artifact and the name it should be downloaded as.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

type Shop struct {
	Name     string
	Currency string
	Location *time.Location
}

type Exporter struct {
	shop Shop
}

func NewExporter(shop Shop) *Exporter {
	if shop.Name == "" {
		shop.Name = "FOODIFY"
	}
	if shop.Currency == "" {
		shop.Currency = "Rs"
	}
	if shop.Location == nil {
		shop.Location = time.Local
	}
	return &Exporter{shop: shop}
}

// Named returns an exporter that prints name as the shop name. An empty name keeps the current one.
func (e *Exporter) Named(name string) *Exporter {
	name = strings.TrimSpace(name)
	if name == "" {
		return e
	}
	shop := e.shop
	shop.Name = name
	return &Exporter{shop: shop}
}

type Layout string

const (
	LayoutReceipt Layout = "receipt"
	LayoutA4      Layout = "a4"
)

// ParseLayout accepts "receipt" or "a4". Empty means a4.
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case "", LayoutA4:
		return LayoutA4, nil
	case LayoutReceipt:
		return LayoutReceipt, nil
	}
	return "", validation.Errorf("unknown invoice layout %q", s)
}

// ItemSummary joins order lines as "Burger x3, Fries x1".
func ItemSummary(items []order.Item) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
	}
	return strings.Join(parts, ", ")
}

func (e *Exporter) money(d decimal.Decimal) string {
	return e.shop.Currency + " " + d.StringFixed(2)
}

func (e *Exporter) timestamp(t time.Time) string {
	return t.In(e.shop.Location).Format(timeLayout)
}
