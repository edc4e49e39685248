// Package cart holds the products a visitor has picked before checking out.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/inventory"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/pricing"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/validation"
)

type ProductLookup interface {
	Get(ctx context.Context, name string) (catalog.Product, error)
}

type ViewLine struct {
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	ImageURL  string          `json:"imageUrl,omitempty"`
}

// View is a priced snapshot of a cart.
type View struct {
	Lines     []ViewLine `json:"lines"`
	ItemCount int        `json:"itemCount"`
	pricing.Totals
}

type Service struct {
	store    Store
	products ProductLookup
	engine   pricing.Engine
}

func NewService(store Store, products ProductLookup, engine pricing.Engine) *Service {
	return &Service{store: store, products: products, engine: engine}
}

// Add puts qty of product into the session cart, summing with any existing line.
// When the product tracks stock the line is capped at what is currently available.
func (s *Service) Add(ctx context.Context, sessionID, product string, qty int) (View, error) {
	if qty <= 0 {
		return View{}, validation.Errorf("quantity must be at least 1")
	}

	p, err := s.products.Get(ctx, product)
	if err != nil {
		return View{}, err
	}
	limit := p.Available()
	if limit == 0 {
		return View{}, validation.Errorf("%s is out of stock", p.Name)
	}

	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	c.Add(p.Name, qty, limit)
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return View{}, err
	}
	return s.price(ctx, c)
}

// Remove drops the line for product. Missing lines are ignored.
func (s *Service) Remove(ctx context.Context, sessionID, product string) (View, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	c.Remove(product)
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return View{}, err
	}
	return s.price(ctx, c)
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

func (s *Service) View(ctx context.Context, sessionID string) (View, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return s.price(ctx, c)
}

// Lines returns the raw cart contents for checkout.
func (s *Service) Lines(ctx context.Context, sessionID string) ([]inventory.Line, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]inventory.Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		out = append(out, inventory.Line{Product: l.Product, Quantity: l.Quantity})
	}
	return out, nil
}

// price resolves current catalog prices. Products deleted since they were added are skipped.
func (s *Service) price(ctx context.Context, c *Cart) (View, error) {
	v := View{Lines: []ViewLine{}}
	priced := make([]pricing.Line, 0, len(c.Lines))

	for _, l := range c.Lines {
		p, err := s.products.Get(ctx, l.Product)
		if errors.Is(err, catalog.ErrNotFound) {
			continue
		}
		if err != nil {
			return View{}, fmt.Errorf("price %q: %w", l.Product, err)
		}
		v.Lines = append(v.Lines, ViewLine{
			Product:   p.Name,
			Quantity:  l.Quantity,
			UnitPrice: p.Price,
			LineTotal: pricing.LineTotal(p.Price, l.Quantity),
			ImageURL:  p.ImageRef,
		})
		v.ItemCount += l.Quantity
		priced = append(priced, pricing.Line{UnitPrice: p.Price, Quantity: l.Quantity})
	}

	v.Totals = s.engine.Compute(priced)
	return v, nil
}
