// Package dispatcher implements an in-process event dispatcher: subscribers
// register per concrete event type and are invoked sequentially,
// synchronously, on the dispatching goroutine. No network hop and no
// queueing — every subscriber runs inline with Publish.
package dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/transfa/corebank/internal/events"
)

// Handler processes one event. A returned error is logged and included in
// Publish's joined return value; the remaining subscribers still run.
type Handler func(ctx context.Context, event events.DomainEvent) error

// Dispatcher routes a published event to every handler subscribed to its
// type tag, in registration order.
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	logger      *slog.Logger
}

func New(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		subscribers: make(map[string][]Handler),
		logger:      logger,
	}
}

// Subscribe registers handler to run whenever an event with the given type
// tag is published. Multiple subscribers per tag are permitted.
func (d *Dispatcher) Subscribe(typeTag string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers[typeTag] = append(d.subscribers[typeTag], handler)
}

// Publish invokes every subscriber registered for event's concrete type,
// sequentially, on the calling goroutine. A subscriber that returns an error
// is logged and the next subscriber still runs — the event already sits
// durably in the outbox, so dispatch failures do not need to abort anything.
//
// Publish returns the joined errors of every failed subscriber. The command
// pipeline only logs it and never passes it on to the command's caller; the
// outbox relay inspects it to decide whether a row is retried.
func (d *Dispatcher) Publish(ctx context.Context, event events.DomainEvent) error {
	d.mu.RLock()
	handlers := append([]Handler(nil), d.subscribers[event.TypeTag()]...)
	d.mu.RUnlock()

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			if d.logger != nil {
				d.logger.Error("event subscriber failed",
					slog.String("event_type", event.TypeTag()),
					slog.String("event_id", event.EventID().String()),
					slog.Any("error", err),
				)
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
