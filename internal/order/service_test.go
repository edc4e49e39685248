package order

import (
	"context"
	"errors"
	"io"
	"log"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/inventory"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/pricing"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/validation"
)

// memLedger keeps orders and stock in memory and applies stock changes with the inventory rules.
type memLedger struct {
	mu        sync.Mutex
	orders    []*Order
	stock     map[string]*int
	createErr error
}

func newMemLedger(stock map[string]*int) *memLedger {
	return &memLedger{stock: stock}
}

func (l *memLedger) Create(_ context.Context, o *Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.createErr != nil {
		return l.createErr
	}
	seq := int64(len(l.orders) + 1)
	o.Sequence = seq
	o.ID = NewID(o.CreatedAt, seq)
	inventory.Apply(l.stock, o.StockLines(), inventory.Out)
	cp := *o
	l.orders = append(l.orders, &cp)
	return nil
}

func (l *memLedger) find(id string) *Order {
	for _, o := range l.orders {
		if o.ID == id {
			return o
		}
	}
	return nil
}

func (l *memLedger) Get(_ context.Context, id string) (*Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.find(id)
	if o == nil {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (l *memLedger) List(context.Context) ([]Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Order, 0, len(l.orders))
	for _, o := range l.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence > out[j].Sequence })
	return out, nil
}

func (l *memLedger) Count(context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int64(len(l.orders)), nil
}

func (l *memLedger) Transition(_ context.Context, id string, to Status, at time.Time) (*Order, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.find(id)
	if o == nil {
		return nil, false, ErrNotFound
	}
	changed, err := o.Transition(to, at)
	if err != nil {
		return nil, false, err
	}
	if changed && to == StatusCancelled {
		inventory.Apply(l.stock, o.StockLines(), inventory.In)
	}
	cp := *o
	return &cp, changed, nil
}

type fakeBasket struct {
	lines    map[string][]inventory.Line
	clearErr error
}

func (b *fakeBasket) Lines(_ context.Context, sid string) ([]inventory.Line, error) {
	return b.lines[sid], nil
}

func (b *fakeBasket) Clear(_ context.Context, sid string) error {
	if b.clearErr != nil {
		return b.clearErr
	}
	delete(b.lines, sid)
	return nil
}

type fakeProducts map[string]catalog.Product

func (f fakeProducts) Get(_ context.Context, name string) (catalog.Product, error) {
	p, ok := f[name]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

type recordingNotifier struct {
	placed []Order
	err    error
}

func (r *recordingNotifier) OrderPlaced(_ context.Context, o Order) error {
	r.placed = append(r.placed, o)
	return r.err
}

type fixture struct {
	svc      *Service
	ledger   *memLedger
	basket   *fakeBasket
	notifier *recordingNotifier
	stock    map[string]*int
}

func intPtr(v int) *int { return &v }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stock := map[string]*int{"Burger": intPtr(10), "Fries": nil}
	f := &fixture{
		ledger:   newMemLedger(stock),
		basket:   &fakeBasket{lines: map[string][]inventory.Line{}},
		notifier: &recordingNotifier{},
		stock:    stock,
	}
	f.svc = NewService(Deps{
		Ledger: f.ledger,
		Basket: f.basket,
		Products: fakeProducts{
			"Burger": {Name: "Burger", Price: decimal.NewFromInt(250), Stock: stock["Burger"]},
			"Fries":  {Name: "Fries", Price: decimal.RequireFromString("4.50")},
		},
		Pricing:  pricing.NewEngine(decimal.NewFromInt(20)),
		Pins:     NewPinPolicy([]string{"743425"}),
		Notifier: f.notifier,
		Logger:   log.New(io.Discard, "", 0),
	})
	f.svc.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
	return f
}

var validDelivery = Delivery{Name: "Asha", Phone: "9999999999", Address: "12 Lake Rd", Pincode: "743425", Landmark: "Temple"}

func TestService_PlaceConfirmCancelScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.basket.lines["s1"] = []inventory.Line{{Product: "Burger", Quantity: 3}}

	o, err := f.svc.PlaceOrder(ctx, "s1", validDelivery)
	require.NoError(t, err)

	assert.Equal(t, StatusNew, o.Status)
	assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(750)))
	assert.True(t, o.DeliveryCharge.Equal(decimal.NewFromInt(20)))
	assert.True(t, o.Total.Equal(decimal.NewFromInt(770)))
	assert.Equal(t, "202610191200000001", o.ID)
	assert.Equal(t, 7, *f.stock["Burger"])
	assert.Empty(t, f.basket.lines["s1"], "cart cleared")
	require.Len(t, f.notifier.placed, 1)
	assert.Equal(t, o.ID, f.notifier.placed[0].ID)

	cancelled, err := f.svc.Cancel(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 10, *f.stock["Burger"])

	again, err := f.svc.Cancel(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, again.Status)
	assert.Equal(t, *cancelled.CancelledAt, *again.CancelledAt)
	assert.Equal(t, 10, *f.stock["Burger"], "second cancel does not restock again")

	_, err = f.svc.Confirm(ctx, o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_ConfirmIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.basket.lines["s1"] = []inventory.Line{{Product: "Fries", Quantity: 2}}

	o, err := f.svc.PlaceOrder(ctx, "s1", validDelivery)
	require.NoError(t, err)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("29")))

	first, err := f.svc.Confirm(ctx, o.ID)
	require.NoError(t, err)
	second, err := f.svc.Confirm(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, second.Status)
	assert.Equal(t, *first.ConfirmedAt, *second.ConfirmedAt)
	assert.Equal(t, 10, *f.stock["Burger"], "confirm has no stock effect")

	_, err = f.svc.Cancel(ctx, o.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_PlaceOrderRejections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		lines    []inventory.Line
		delivery Delivery
		wantMsg  string
	}{
		{
			name:     "empty cart",
			delivery: validDelivery,
			wantMsg:  "your cart is empty",
		},
		{
			name:     "missing delivery fields",
			lines:    []inventory.Line{{Product: "Burger", Quantity: 1}},
			delivery: Delivery{Name: "Asha", Pincode: "743425"},
			wantMsg:  "missing delivery details: phone, address",
		},
		{
			name:  "pin code outside delivery area",
			lines: []inventory.Line{{Product: "Burger", Quantity: 1}},
			delivery: Delivery{
				Name: "Asha", Phone: "1", Address: "x", Pincode: "110001",
			},
			wantMsg: LocationUnavailableMessage,
		},
		{
			name:     "product removed from menu",
			lines:    []inventory.Line{{Product: "Pasta", Quantity: 1}},
			delivery: validDelivery,
			wantMsg:  "Pasta is no longer on the menu",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.lines != nil {
				f.basket.lines["s1"] = tt.lines
			}

			_, err := f.svc.PlaceOrder(ctx, "s1", tt.delivery)
			require.Error(t, err)
			assert.True(t, validation.IsValidation(err))
			assert.EqualError(t, err, tt.wantMsg)

			n, _ := f.ledger.Count(ctx)
			assert.Zero(t, n, "no order stored")
			assert.Equal(t, tt.lines, f.basket.lines["s1"], "cart unchanged")
			assert.Equal(t, 10, *f.stock["Burger"])
			assert.Empty(t, f.notifier.placed)
		})
	}
}

func TestService_PlaceOrderSideEffectFailuresAreLogged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.basket.lines["s1"] = []inventory.Line{{Product: "Burger", Quantity: 1}}
	f.basket.clearErr = errors.New("redis down")
	f.notifier.err = errors.New("broker down")

	o, err := f.svc.PlaceOrder(ctx, "s1", validDelivery)
	require.NoError(t, err)
	n, _ := f.svc.Count(ctx)
	assert.EqualValues(t, 1, n)
	got, err := f.svc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestService_LedgerFailureIsReturned(t *testing.T) {
	f := newFixture(t)
	f.basket.lines["s1"] = []inventory.Line{{Product: "Burger", Quantity: 1}}
	f.ledger.createErr = errors.New("disk full")

	_, err := f.svc.PlaceOrder(context.Background(), "s1", validDelivery)
	require.ErrorContains(t, err, "disk full")
	assert.Len(t, f.basket.lines["s1"], 1)
	assert.Empty(t, f.notifier.placed)
}

func TestService_UnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Cancel(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPinPolicy(t *testing.T) {
	p := NewPinPolicy([]string{" 743425 ", ""})
	assert.True(t, p.Allows("743425"))
	assert.False(t, p.Allows("743426"))
	assert.True(t, NewPinPolicy(nil).Allows("anything"))
}
