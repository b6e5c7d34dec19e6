package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	TopicProduct = "product_events"
	TopicCart    = "cart_events"
	TopicOrder   = "order_events"
)

const (
	ProductCreated  = "product_created"
	ProductUpdated  = "product_updated"
	ProductDeleted  = "product_deleted"
	CartItemAdded   = "cart_item_added"
	CartItemRemoved = "cart_item_removed"
	OrderPlaced     = "order_placed"
)

// Event is the envelope every domain message is published in.
type Event struct {
	ID         string    `json:"event_id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func New(typ string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event Event) error
	Close() error
}

type Noop struct{}

func (Noop) Publish(context.Context, string, string, Event) error { return nil }
func (Noop) Close() error                                         { return nil }
