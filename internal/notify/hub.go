// Package notify tells open admin views about new orders.
package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/order"
)

const EventNewOrder = "new_order"

type Event struct {
	Type     string          `json:"type"`
	OrderID  string          `json:"orderId"`
	Sequence int64           `json:"sequence"`
	Customer string          `json:"customer"`
	Total    decimal.Decimal `json:"total"`
	PlacedAt time.Time       `json:"placedAt"`
}

func EventFromOrder(o order.Order) Event {
	return Event{
		Type:     EventNewOrder,
		OrderID:  o.ID,
		Sequence: o.Sequence,
		Customer: o.Name,
		Total:    o.Total,
		PlacedAt: o.CreatedAt,
	}
}

const (
	subscriberBuffer = 16
	seenWindow       = 1024
)

// Hub fans order events out to every subscriber. Each ledger sequence is delivered at most once.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	seen   map[int64]struct{}
	order  []int64
	logger *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		subs:   map[int]chan Event{},
		seen:   map[int64]struct{}{},
		logger: logger,
	}
}

// Subscribe registers a listener. The returned func unsubscribes and closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	ch := make(chan Event, subscriberBuffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

// Publish delivers ev to all subscribers. It reports false when the sequence was already published.
// Subscribers that are not keeping up miss the event; they can catch up through the order count.
func (h *Hub) Publish(ev Event) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, dup := h.seen[ev.Sequence]; dup {
		return false
	}
	h.remember(ev.Sequence)

	for id, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.logger.Printf("notify: subscriber %d is slow, dropped order %s", id, ev.OrderID)
		}
	}
	return true
}

func (h *Hub) remember(seq int64) {
	h.seen[seq] = struct{}{}
	h.order = append(h.order, seq)
	if len(h.order) > seenWindow {
		delete(h.seen, h.order[0])
		h.order = h.order[1:]
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// LocalNotifier publishes placed orders straight to an in-process Hub.
type LocalNotifier struct {
	Hub *Hub
}

func (n LocalNotifier) OrderPlaced(_ context.Context, o order.Order) error {
	n.Hub.Publish(EventFromOrder(o))
	return nil
}
