// Package jstransport bridges application handlers to NATS.
// Handlers registered as events are bound to JetStream push consumers and
// their messages are acknowledged according to the handler outcome.
// Handlers registered as messages are bound to core NATS subscriptions and
// answer requests on the reply subject.
// The interfaces defined in the `pubsub` package decouple the transport from
// the NATS client; `pubsub/nats` implements them.
package jstransport

import (
	"context"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/tehsphinx/jstransport/pubsub"
	natsps "github.com/tehsphinx/jstransport/pubsub/nats"
)

const (
	defaultRequestTimeout = 5 * time.Second
	// RequestIDHeader carries the request id between client and server.
	RequestIDHeader = "X-Request-Id"
)

// Dialer establishes the broker connection.
type Dialer func(ctx context.Context) (pubsub.Conn, error)

// NewServer creates a server binding the handlers of registry.
func NewServer(registry Registry, opts ...Option) *Server {
	opt := getOptions(opts)

	return &Server{
		registry: registry,
		opt:      opt,
		log:      opt.logger,
		subs:     newSubscriptions(opt.logger),
		unaryInt: chainUnaryInterceptors(opt.unaryInts),
	}
}

// NewClient creates a client emitting events and sending requests.
func NewClient(opts ...Option) *Client {
	opt := getOptions(opts)

	return &Client{
		opt: opt,
		log: opt.logger,
	}
}

func natsDialer(url string, opts []nats.Option) Dialer {
	return func(context.Context) (pubsub.Conn, error) {
		return natsps.Dial(url, opts...)
	}
}
