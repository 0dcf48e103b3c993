package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// Handler consumes a published event.
type Handler func(ctx context.Context, event Event)

// Dispatcher is a small in-process pub/sub hub. Publish is synchronous:
// handlers run on the publishing goroutine in subscription order. A
// panicking handler is contained and logged so audit capture can never
// break the operation that triggered the event.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   zerolog.Logger
}

// NewDispatcher constructs an empty dispatcher.
func NewDispatcher(logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]Handler),
		logger:   logger.With().Str("component", "event_dispatcher").Logger(),
	}
}

// Subscribe registers a handler for a topic.
func (d *Dispatcher) Subscribe(topic string, handler Handler) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[topic] = append(d.handlers[topic], handler)
}

// Publish delivers the event to every subscriber of its topic.
func (d *Dispatcher) Publish(ctx context.Context, event Event) {
	if event == nil {
		return
	}

	d.mu.RLock()
	handlers := append([]Handler(nil), d.handlers[event.Topic()]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		d.invoke(ctx, event, handler)
	}
}

func (d *Dispatcher) invoke(ctx context.Context, event Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error().Interface("panic", r).Str("topic", event.Topic()).Msg("event handler panicked")
		}
	}()
	handler(ctx, event)
}
