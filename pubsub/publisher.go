package pubsub

import "context"

// Publisher publishes on the base connection.
type Publisher interface {
	Publish(msg Message) error
	Request(ctx context.Context, msg Message) (Message, error)
}
