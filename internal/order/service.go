// Package order places customer orders and moves them through their lifecycle.
package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/inventory"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/pricing"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/validation"
)

const LocationUnavailableMessage = "Our order service is not available in this location."

// Basket is the session cart as seen by checkout.
type Basket interface {
	Lines(ctx context.Context, sessionID string) ([]inventory.Line, error)
	Clear(ctx context.Context, sessionID string) error
}

type ProductLookup interface {
	Get(ctx context.Context, name string) (catalog.Product, error)
}

// Notifier is told about every order once it is durably stored.
type Notifier interface {
	OrderPlaced(ctx context.Context, o Order) error
}

// PinPolicy restricts delivery to an allow-list of PIN codes. An empty list allows every code.
type PinPolicy struct {
	allowed map[string]struct{}
}

func NewPinPolicy(codes []string) PinPolicy {
	p := PinPolicy{allowed: map[string]struct{}{}}
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			p.allowed[c] = struct{}{}
		}
	}
	return p
}

func (p PinPolicy) Allows(code string) bool {
	if len(p.allowed) == 0 {
		return true
	}
	_, ok := p.allowed[strings.TrimSpace(code)]
	return ok
}

type Service struct {
	ledger   Ledger
	basket   Basket
	products ProductLookup
	engine   pricing.Engine
	pins     PinPolicy
	notifier Notifier
	logger   *log.Logger
	now      func() time.Time
}

type Deps struct {
	Ledger   Ledger
	Basket   Basket
	Products ProductLookup
	Pricing  pricing.Engine
	Pins     PinPolicy
	Notifier Notifier
	Logger   *log.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		ledger:   d.Ledger,
		basket:   d.Basket,
		products: d.Products,
		engine:   d.Pricing,
		pins:     d.Pins,
		notifier: d.Notifier,
		logger:   d.Logger,
		now:      time.Now,
	}
}

// PlaceOrder turns the session cart into a new order.
// Nothing is stored when validation fails.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, d Delivery) (*Order, error) {
	lines, err := s.basket.Lines(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, validation.Errorf("your cart is empty")
	}

	d = d.normalized()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if !s.pins.Allows(d.Pincode) {
		return nil, validation.Errorf(LocationUnavailableMessage)
	}

	items := make([]Item, 0, len(lines))
	priced := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		p, err := s.products.Get(ctx, l.Product)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, validation.Errorf("%s is no longer on the menu", l.Product)
			}
			return nil, fmt.Errorf("look up %q: %w", l.Product, err)
		}
		items = append(items, Item{Name: p.Name, Quantity: l.Quantity, UnitPrice: p.Price})
		priced = append(priced, pricing.Line{UnitPrice: p.Price, Quantity: l.Quantity})
	}
	totals := s.engine.Compute(priced)

	o := &Order{
		Delivery:       d,
		Items:          items,
		Subtotal:       totals.Subtotal,
		DeliveryCharge: totals.DeliveryCharge,
		Total:          totals.GrandTotal,
		Status:         StatusNew,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.ledger.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	if err := s.basket.Clear(ctx, sessionID); err != nil {
		s.logger.Printf("order %s: clear cart: %v", o.ID, err)
	}
	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, *o); err != nil {
			s.logger.Printf("order %s: notify: %v", o.ID, err)
		}
	}

	s.logger.Printf("order %s placed: %d items, total %s", o.ID, len(o.Items), o.Total.StringFixed(2))
	return o, nil
}

func (s *Service) Confirm(ctx context.Context, id string) (*Order, error) {
	return s.transition(ctx, id, StatusConfirmed)
}

// Cancel marks the order cancelled and puts its items back into stock. Repeated calls do nothing.
func (s *Service) Cancel(ctx context.Context, id string) (*Order, error) {
	return s.transition(ctx, id, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, id string, to Status) (*Order, error) {
	o, changed, err := s.ledger.Transition(ctx, id, to, s.now())
	if err != nil {
		return nil, err
	}
	if changed {
		s.logger.Printf("order %s -> %s", o.ID, o.Status)
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.ledger.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.ledger.List(ctx)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.ledger.Count(ctx)
}
