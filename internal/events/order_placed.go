package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/notify"
	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/order"
)

const (
	OrderPlacedEventName = "OrderPlaced"
	OrderPlacedVersion   = 1
	OrderPlacedSchema    = "foodify.order.placed.v1"
)

type OrderPlacedPayload struct {
	OrderID  string          `json:"orderId"`
	Customer string          `json:"customer"`
	Pincode  string          `json:"pincode"`
	Items    int             `json:"items"`
	Total    decimal.Decimal `json:"total"`
	PlacedAt time.Time       `json:"placedAt"`
}

func NewOrderPlacedEnvelope(o order.Order) Envelope[OrderPlacedPayload] {
	return wrap(OrderPlacedEventName, OrderPlacedVersion, OrderPlacedSchema, o.ID, o.Sequence, OrderPlacedPayload{
		OrderID:  o.ID,
		Customer: o.Name,
		Pincode:  o.Pincode,
		Items:    len(o.Items),
		Total:    o.Total,
		PlacedAt: o.CreatedAt,
	})
}

// toNotifyEvent maps the wire event onto the in-process hub event.
func toNotifyEvent(env Envelope[OrderPlacedPayload]) notify.Event {
	return notify.Event{
		Type:     notify.EventNewOrder,
		OrderID:  env.Payload.OrderID,
		Sequence: *env.Sequence,
		Customer: env.Payload.Customer,
		Total:    env.Payload.Total,
		PlacedAt: env.Payload.PlacedAt,
	}
}
