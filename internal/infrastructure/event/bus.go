package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/crm/internal/domain/shared"
	"go.uber.org/zap"
)

// Bus is the process-wide shared.EventPublisher. It dispatches each event
// to the in-process handlers subscribed to its type, then forwards it to
// every external sink (log, broker).
type Bus struct {
	registry *HandlerRegistry
	sinks    []shared.EventPublisher
	logger   *zap.Logger
}

// NewBus creates an event bus forwarding to the given sinks
func NewBus(logger *zap.Logger, sinks ...shared.EventPublisher) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		registry: NewHandlerRegistry(),
		sinks:    sinks,
		logger:   logger,
	}
}

// Publish dispatches events to handlers and sinks. Handler failures are
// logged and swallowed; sink failures are logged and returned joined.
func (b *Bus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			if err := b.dispatchToHandler(ctx, handler, event); err != nil {
				b.logger.Error("handler failed to process event",
					zap.String("event_type", event.EventType()),
					zap.String("event_id", event.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}

	var errs []error
	for _, sink := range b.sinks {
		if err := sink.Publish(ctx, events...); err != nil {
			b.logger.Warn("event sink failed", zap.Int("events", len(events)), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Subscribe registers a handler. Without explicit event types the
// handler's own EventTypes are used.
func (b *Bus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *Bus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// dispatchToHandler runs the handler, converting a panic into an error
func (b *Bus) dispatchToHandler(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler.Handle(ctx, event)
}

var _ shared.EventPublisher = (*Bus)(nil)
