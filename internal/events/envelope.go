package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrMalformed marks a delivery that cannot be turned into a hub event. Such
// messages are dropped rather than requeued.
var ErrMalformed = errors.New("malformed event")

// Envelope wraps every message on the foodify.events exchange. Key is the order
// id and Sequence its ledger sequence, which subscribers use to drop redeliveries.
type Envelope[T any] struct {
	Name       string    `json:"eventName"`
	Version    int       `json:"eventVersion"`
	ID         string    `json:"eventId"`
	Producer   string    `json:"producer"`
	Key        string    `json:"partitionKey"`
	Sequence   *int64    `json:"sequence,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Schema     string    `json:"schema"`
	Payload    T         `json:"payload"`
}

func wrap[T any](name string, version int, schema, key string, seq int64, payload T) Envelope[T] {
	return Envelope[T]{
		Name:       name,
		Version:    version,
		ID:         uuid.NewString(),
		Producer:   producerName,
		Key:        key,
		Sequence:   &seq,
		OccurredAt: time.Now().UTC(),
		Schema:     schema,
		Payload:    payload,
	}
}

// Check reports ErrMalformed unless the envelope is the given event and version
// and carries both its key and its sequence.
func (e Envelope[T]) Check(name string, version int) error {
	switch {
	case e.Name != name:
		return fmt.Errorf("%w: got %q, want %q", ErrMalformed, e.Name, name)
	case e.Version != version:
		return fmt.Errorf("%w: %s version %d, want %d", ErrMalformed, name, e.Version, version)
	case e.Key == "":
		return fmt.Errorf("%w: %s has no order id", ErrMalformed, name)
	case e.Sequence == nil:
		return fmt.Errorf("%w: %s %s has no sequence", ErrMalformed, name, e.Key)
	}
	return nil
}
