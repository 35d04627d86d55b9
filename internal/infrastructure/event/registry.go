package event

import (
	"slices"
	"sync"

	"github.com/erp/crm/internal/domain/shared"
)

// subscription binds a handler to a set of event types; an empty set
// matches every event
type subscription struct {
	handler shared.EventHandler
	types   map[string]struct{}
}

func (s subscription) wildcard() bool {
	return len(s.types) == 0
}

func (s subscription) matches(eventType string) bool {
	_, ok := s.types[eventType]
	return ok
}

// HandlerRegistry keeps handler subscriptions in registration order
type HandlerRegistry struct {
	mu   sync.RWMutex
	subs []subscription
}

// NewHandlerRegistry creates an empty registry
func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{}
}

// Register subscribes handler to eventTypes, or to every event when
// none are given.
func (r *HandlerRegistry) Register(handler shared.EventHandler, eventTypes ...string) {
	types := make(map[string]struct{}, len(eventTypes))
	for _, t := range eventTypes {
		types[t] = struct{}{}
	}

	r.mu.Lock()
	r.subs = append(r.subs, subscription{handler: handler, types: types})
	r.mu.Unlock()
}

// Unregister drops every subscription of handler
func (r *HandlerRegistry) Unregister(handler shared.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = slices.DeleteFunc(r.subs, func(s subscription) bool { return s.handler == handler })
}

// GetHandlers returns the handlers subscribed to eventType by name, then
// the catch-all handlers, each group in registration order
func (r *HandlerRegistry) GetHandlers(eventType string) []shared.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var specific, catchAll []shared.EventHandler
	for _, s := range r.subs {
		switch {
		case s.wildcard():
			catchAll = append(catchAll, s.handler)
		case s.matches(eventType):
			specific = append(specific, s.handler)
		}
	}
	return append(specific, catchAll...)
}
