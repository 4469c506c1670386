package events

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// EventHandler reacts to one published event.
type EventHandler func(context.Context, Event) error

// Dispatcher fans domain events out to subscribers.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher calls subscribers synchronously in subscription order.
// Subscribers only enqueue side effects, so a failing or panicking subscriber
// is logged and never reaches the publisher.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	logger    *zap.Logger
}

// NewInMemoryDispatcher creates a dispatcher. A nil logger discards handler
// failures.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inMemoryDispatcher{
		listeners: make(map[EventType][]EventHandler),
		logger:    logger,
	}
}

// Publish runs every subscriber of event.Type. The event describes a change
// that is already committed, so subscribers run even after ctx is done.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) error {
	d.mu.RLock()
	handlers := d.listeners[event.Type]
	d.mu.RUnlock()

	for i, handler := range handlers {
		if err := d.invoke(ctx, handler, event); err != nil {
			d.logger.Warn("event handler failed",
				zap.String("event_type", string(event.Type)),
				zap.String("event_id", event.ID),
				zap.String("subject_id", event.SubjectID),
				zap.Int("handler", i),
				zap.Error(err))
		}
	}
	return nil
}

func (d *inMemoryDispatcher) invoke(ctx context.Context, handler EventHandler, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, event)
}

// Subscribe appends handler for eventType. The slice is copied on write so
// Publish can iterate without holding the lock.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	current := d.listeners[eventType]
	next := make([]EventHandler, len(current), len(current)+1)
	copy(next, current)
	d.listeners[eventType] = append(next, handler)
}
