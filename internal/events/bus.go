// Package events provides the in-process publish/subscribe bus that
// decouples task mutations from their side effects.
package events

import (
	"context"
	"sync"

	"github.com/rizeos/workforce/pkg/logger"
	"github.com/rizeos/workforce/pkg/metrics"
)

// Name identifies an event on the bus.
type Name string

// Events carried by the bus. Each name has a fixed payload type in the
// model package.
const (
	TaskCreated   Name = "task.created"
	TaskCompleted Name = "task.completed"
	EmployeeAdded Name = "employee.added"
)

// defaultMaxSubscribers guards against subscriber leaks, not throughput.
const defaultMaxSubscribers = 20

// Handler reacts to one published event. The bus does not recover panics or
// intercept failures; handlers that must not disturb the publisher guard
// their own body.
type Handler func(ctx context.Context, payload any)

// Bus dispatches events to subscribers synchronously, in registration
// order, within the publisher's control flow. One instance lives for the
// whole process; there is no unsubscribe path.
type Bus struct {
	mu             sync.RWMutex
	handlers       map[Name][]Handler
	maxSubscribers int
	logger         logger.Logger
}

// Option applies a configuration option to the Bus.
type Option func(*Bus)

// WithMaxSubscribers overrides the per-event subscriber cap.
func WithMaxSubscribers(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.maxSubscribers = n
		}
	}
}

// WithLogger sets a custom logger for the bus.
func WithLogger(l logger.Logger) Option {
	return func(b *Bus) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBus creates an event bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		handlers:       make(map[Name][]Handler),
		maxSubscribers: defaultMaxSubscribers,
		logger:         logger.Get().Named("events"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a handler for future publishes of name. Registration
// is permanent for the process.
func (b *Bus) Subscribe(name Name, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.handlers[name]) >= b.maxSubscribers {
		return ErrTooManySubscribers
	}
	b.handlers[name] = append(b.handlers[name], h)
	b.logger.Debug(context.Background(), "new subscriber", logger.String("event", string(name)))
	return nil
}

// Publish invokes every registered subscriber for name, synchronously and
// in registration order. Each handler completes before the next starts.
func (b *Bus) Publish(ctx context.Context, name Name, payload any) {
	b.mu.RLock()
	handlers := b.handlers[name]
	b.mu.RUnlock()

	metrics.RecordEventPublished(string(name))
	b.logger.Debug(ctx, "publishing event",
		logger.String("event", string(name)),
		logger.Int("subscribers", len(handlers)),
	)

	for _, h := range handlers {
		h(ctx, payload)
	}
}

// SubscriberCount reports the registered subscribers for name.
func (b *Bus) SubscriberCount(name Name) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[name])
}
