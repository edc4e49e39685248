package notify

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/order"
)

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

func TestHub_DeliversEachOrderOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(discard())

	var wg sync.WaitGroup
	received := make([][]string, 3)
	unsubs := make([]func(), 3)
	for i := range received {
		ch, unsub := hub.Subscribe()
		unsubs[i] = unsub
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for ev := range ch {
				received[i] = append(received[i], ev.OrderID)
			}
		}(i)
	}

	assert.True(t, hub.Publish(Event{OrderID: "a", Sequence: 1}))
	assert.True(t, hub.Publish(Event{OrderID: "c", Sequence: 3}))
	assert.True(t, hub.Publish(Event{OrderID: "b", Sequence: 2}), "late arrivals still delivered")
	assert.False(t, hub.Publish(Event{OrderID: "a", Sequence: 1}), "duplicate suppressed")

	for _, u := range unsubs {
		u()
		u() // idempotent
	}
	wg.Wait()

	for _, got := range received {
		assert.Equal(t, []string{"a", "c", "b"}, got)
	}
	assert.Zero(t, hub.Subscribers())
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub(discard())
	_, unsub := hub.Subscribe()
	defer unsub()

	done := make(chan struct{})
	go func() {
		for i := 1; i <= subscriberBuffer*2; i++ {
			hub.Publish(Event{Sequence: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestHub_SeenWindowIsBounded(t *testing.T) {
	hub := NewHub(discard())
	for i := 1; i <= seenWindow+10; i++ {
		hub.Publish(Event{Sequence: int64(i)})
	}
	assert.Len(t, hub.seen, seenWindow)
	assert.Len(t, hub.order, seenWindow)
}

func TestLocalNotifier(t *testing.T) {
	hub := NewHub(discard())
	ch, unsub := hub.Subscribe()
	defer unsub()

	placed := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	o := order.Order{
		ID:        "202610191200000001",
		Sequence:  1,
		Delivery:  order.Delivery{Name: "Asha"},
		Total:     decimal.NewFromInt(770),
		CreatedAt: placed,
	}
	n := LocalNotifier{Hub: hub}
	require.NoError(t, n.OrderPlaced(context.Background(), o))
	require.NoError(t, n.OrderPlaced(context.Background(), o))

	ev := <-ch
	assert.Equal(t, EventNewOrder, ev.Type)
	assert.Equal(t, o.ID, ev.OrderID)
	assert.Equal(t, "Asha", ev.Customer)
	assert.True(t, ev.Total.Equal(decimal.NewFromInt(770)))
	assert.Equal(t, placed, ev.PlacedAt)

	select {
	case extra := <-ch:
		t.Fatalf("unexpected second event %+v", extra)
	default:
	}
}
