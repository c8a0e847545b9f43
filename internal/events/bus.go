package events

import (
	"github.com/kelindar/event"
)

// Bus wraps kelindar/event dispatcher for event broadcasting
type Bus struct {
	dispatcher *event.Dispatcher
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		dispatcher: event.NewDispatcher(),
	}
}

// Publish publishes an event to all subscribers
// Usage: bus.Publish(ProcessStartedEvent{...})
func (b *Bus) Publish(ev Event) {
	// Type switch calls the generic Publish with the concrete type
	switch e := ev.(type) {
	case ProcessStartedEvent:
		event.Publish(b.dispatcher, e)
	case ProcessStoppedEvent:
		event.Publish(b.dispatcher, e)
	case ProcessErrorEvent:
		event.Publish(b.dispatcher, e)
	case StateChangedEvent:
		event.Publish(b.dispatcher, e)
	case ProfileReloadedEvent:
		event.Publish(b.dispatcher, e)
	}
}

// Subscribe subscribes to events with a handler function.
// The handler type determines which events it receives.
// Returns an unsubscribe function.
// Usage: unsub := bus.Subscribe(func(e ProcessStartedEvent) { ... })
func (b *Bus) Subscribe(handler any) func() {
	switch h := handler.(type) {
	case func(ProcessStartedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ProcessStoppedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ProcessErrorEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(StateChangedEvent):
		return event.Subscribe(b.dispatcher, h)
	case func(ProfileReloadedEvent):
		return event.Subscribe(b.dispatcher, h)
	default:
		// No-op unsubscribe for unrecognized handler types
		return func() {}
	}
}

// SubscribeToChannel bridges kelindar/event callback-based subscriptions
// to channels. Useful for tests and select-based consumers.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
			// Drop event if channel is full (non-blocking)
		}
	})
}
