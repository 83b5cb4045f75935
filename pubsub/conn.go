package pubsub

import (
	"context"

	"github.com/nats-io/nats.go/jetstream"
)

// Conn is a live broker session. Handles derived from it (JetStream,
// StreamManager) are only valid while the connection is open.
type Conn interface {
	Publisher
	Subscriber

	// Server returns the address of the connected server.
	Server() string
	// Status returns the health events of the connection. The channel is
	// closed after the connection closed.
	Status() <-chan Status
	// Drain unsubscribes, lets in-flight messages finish, flushes pending
	// publishes and closes the connection. It returns once the connection
	// is closed or ctx is done.
	Drain(ctx context.Context) error

	JetStream() (JetStream, error)
	StreamManager() (StreamManager, error)
}

// JetStream publishes to and consumes from durable streams.
type JetStream interface {
	Publish(ctx context.Context, msg Message) error
	// Subscribe creates a consumer for subject as described by binding.
	// ErrNoMatchingStream is returned if no stream captures subject.
	Subscribe(subject string, binding ConsumerBinding, handler AckHandler) (Subscription, error)
}

// StreamManager manages stream resources.
type StreamManager interface {
	// StreamInfo returns the current configuration of the named stream or
	// ErrStreamNotFound.
	StreamInfo(ctx context.Context, name string) (*jetstream.StreamConfig, error)
	CreateStream(ctx context.Context, cfg jetstream.StreamConfig) error
	UpdateStream(ctx context.Context, cfg jetstream.StreamConfig) error
}
