package nats

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/tehsphinx/jstransport/pubsub"
)

// Dial connects to the NATS server(s) at url and returns the connection as a
// pubsub.Conn. Disconnect, reconnect, error, lame duck, discovered servers
// and closed handlers of opts are replaced by the status feed of the
// connection.
func Dial(url string, opts ...nats.Option) (pubsub.Conn, error) {
	c := &conn{
		feed:   newStatusFeed(),
		errs:   newErrRoutes(),
		closed: make(chan struct{}),
	}

	opts = append(opts, c.statusOptions()...)
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		c.feed.close()
		return nil, err
	}

	c.nc = nc
	c.m.Lock()
	c.servers = nc.Servers()
	c.m.Unlock()
	c.publisher = &publisher{nats: nc}
	c.subscriber = &subscriber{nats: nc, errs: c.errs}
	return c, nil
}

type conn struct {
	*publisher
	*subscriber

	nc   *nats.Conn
	feed *statusFeed
	errs *errRoutes

	m       sync.Mutex
	servers []string

	closed    chan struct{}
	closeOnce sync.Once
}

var _ pubsub.Conn = (*conn)(nil)

// Server implements the pubsub.Conn interface.
func (c *conn) Server() string {
	return c.nc.ConnectedUrlRedacted()
}

// Status implements the pubsub.Conn interface.
func (c *conn) Status() <-chan pubsub.Status {
	return c.feed.out
}

// Drain implements the pubsub.Conn interface.
func (c *conn) Drain(ctx context.Context) error {
	if r := c.nc.Drain(); r != nil {
		if errors.Is(r, nats.ErrConnectionClosed) {
			return nil
		}
		return r
	}

	select {
	case <-c.closed:
		return nil
	case <-ctx.Done():
		c.nc.Close()
		return ctx.Err()
	}
}

// JetStream implements the pubsub.Conn interface.
func (c *conn) JetStream() (pubsub.JetStream, error) {
	legacy, err := c.nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	js, err := jetstream.New(c.nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &jetStream{
		legacy: legacy,
		js:     js,
		errs:   c.errs,
	}, nil
}

// StreamManager implements the pubsub.Conn interface.
func (c *conn) StreamManager() (pubsub.StreamManager, error) {
	js, err := jetstream.New(c.nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &streamManager{js: js}, nil
}

// UnwrapConn returns the NATS connection behind a connection created with Dial.
func UnwrapConn(c pubsub.Conn) (*nats.Conn, bool) {
	nc, ok := c.(*conn)
	if !ok {
		return nil, false
	}
	return nc.nc, true
}
