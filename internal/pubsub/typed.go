package pubsub

import (
	"context"
	"encoding/json"
)

// Event[T] pairs a topic name with a payload type, providing type-safe
// publishing for the fixed set of topics the application uses.
type Event[T any] struct {
	topicName string
}

// NewEvent creates a typed event for the given topic name.
func NewEvent[T any](name string) Event[T] {
	return Event[T]{topicName: name}
}

// Name returns the topic name.
func (e Event[T]) Name() string {
	return e.topicName
}

// Publish sends a typed event. The compiler ensures 'payload' matches 'T'.
func Publish[T any](ctx context.Context, p Publisher, event Event[T], payload T) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.Publish(ctx, Message{
		Topic:   event.Name(),
		Payload: data,
	})
}
