package eventbus

import (
	evbus "github.com/asaskevich/EventBus"
)

// Bus fans scan and session events out to the transports. A thin wrapper
// keeps the EventBus dependency in one place.
type Bus struct {
	bus evbus.Bus
}

// New creates a synchronous event bus.
func New() *Bus {
	return &Bus{bus: evbus.New()}
}

// Publish delivers the event to all current subscribers, synchronously.
func (b *Bus) Publish(topic string, args ...interface{}) {
	b.bus.Publish(topic, args...)
}

// Subscribe registers fn for the topic.
func (b *Bus) Subscribe(topic string, fn interface{}) error {
	return b.bus.Subscribe(topic, fn)
}

// SubscribeAsync registers fn to run on its own goroutine per event.
func (b *Bus) SubscribeAsync(topic string, fn interface{}) error {
	return b.bus.SubscribeAsync(topic, fn, false)
}

// Unsubscribe removes a previously registered handler.
func (b *Bus) Unsubscribe(topic string, fn interface{}) error {
	return b.bus.Unsubscribe(topic, fn)
}

// HasCallback reports whether the topic has any subscriber.
func (b *Bus) HasCallback(topic string) bool {
	return b.bus.HasCallback(topic)
}

// WaitAsync blocks until all async handlers have finished. Used in tests
// and during shutdown.
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}
