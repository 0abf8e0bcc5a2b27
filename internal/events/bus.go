package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/gocartshop/gocart-api/pkg/logger"
)

// Topic names a domain event carried on the bus.
type Topic string

const (
	// TopicUserLoggedOut fires when the active session ends. The cart
	// subscribes and empties itself, keeping the session store from
	// reaching into cart state directly.
	TopicUserLoggedOut Topic = "user.logged_out"
	// TopicOrderCompleted fires after a confirmed checkout.
	TopicOrderCompleted Topic = "order.completed"
)

// UserLoggedOut is the payload published on TopicUserLoggedOut.
type UserLoggedOut struct {
	Username string
}

// OrderCompleted is the payload published on TopicOrderCompleted.
type OrderCompleted struct {
	OrderID    string
	TotalItems int
}

// Handler consumes a published event payload.
type Handler func(ctx context.Context, payload any)

// Bus is a synchronous in-process publish/subscribe dispatcher. Handlers
// run inline in subscription order; a panicking handler is contained and
// logged so the publishing store operation still completes.
type Bus struct {
	mu   sync.RWMutex
	subs map[Topic][]Handler
	logg *logger.Logger
}

// NewBus builds an empty bus.
func NewBus(logg *logger.Logger) *Bus {
	return &Bus{
		subs: make(map[Topic][]Handler),
		logg: logg,
	}
}

// Subscribe registers a handler for the topic.
func (b *Bus) Subscribe(topic Topic, handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[topic] = append(b.subs[topic], handler)
}

// Publish delivers the payload to every subscriber of the topic.
func (b *Bus) Publish(ctx context.Context, topic Topic, payload any) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.subs[topic]))
	copy(handlers, b.subs[topic])
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(ctx, topic, handler, payload)
	}
}

func (b *Bus) dispatch(ctx context.Context, topic Topic, handler Handler, payload any) {
	defer func() {
		if rec := recover(); rec != nil {
			if b.logg != nil {
				b.logg.Error(ctx, "event handler panicked", fmt.Errorf("topic %s: %v", topic, rec))
			}
		}
	}()
	handler(ctx, payload)
}
