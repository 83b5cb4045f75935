package jstransport

import (
	"context"
	"fmt"
	"sync"

	"github.com/tehsphinx/jstransport/pubsub"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client emits events to streams and sends requests to message handlers.
type Client struct {
	opt options
	log Logger

	m    sync.Mutex
	conn pubsub.Conn
	js   pubsub.JetStream
}

// Connect establishes the connection. If the client is connected already the
// existing connection is returned without dialing again.
func (c *Client) Connect(ctx context.Context) (pubsub.Conn, error) {
	c.m.Lock()
	defer c.m.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}

	conn, err := c.opt.dialer(ctx)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		_ = conn.Drain(ctx)
		return nil, err
	}

	c.conn = conn
	c.js = js

	go watchStatus(conn.Status(), c.log, c.opt.metrics)

	c.log.Infof("Connected to %s", conn.Server())
	return conn, nil
}

// Close drains the connection and releases it. Connect may be called again
// afterwards.
func (c *Client) Close(ctx context.Context) error {
	c.m.Lock()
	defer c.m.Unlock()

	if c.conn == nil {
		return nil
	}

	err := c.conn.Drain(ctx)
	c.conn = nil
	c.js = nil
	return err
}

// Conn returns the connection or nil if not connected.
func (c *Client) Conn() pubsub.Conn {
	c.m.Lock()
	defer c.m.Unlock()
	return c.conn
}

// JetStream returns the JetStream handle or nil if not connected.
func (c *Client) JetStream() pubsub.JetStream {
	c.m.Lock()
	defer c.m.Unlock()
	return c.js
}

// Emit publishes data as an event on subject pattern. It returns once the
// stream acknowledged the message.
func (c *Client) Emit(ctx context.Context, pattern string, data interface{}) error {
	js := c.JetStream()
	if js == nil {
		return ErrNotConnected
	}

	payload, err := c.opt.codec.Encode(data)
	if err != nil {
		return err
	}

	c.log.Debugf("Emit: subject => %v", pattern)
	return js.Publish(ctx, pubsub.Message{
		Subject: pattern,
		Header:  outgoingHeader(ctx),
		Data:    payload,
	})
}

// Send requests pattern with data and decodes the response into out. out may
// be nil to discard the response. A context without deadline is limited to
// the configured request timeout. Errors replied by the server are returned
// as *RemoteError. The reply headers are available through grpc.Header.
func (c *Client) Send(ctx context.Context, pattern string, data interface{}, out interface{}, opts ...grpc.CallOption) error {
	conn := c.Conn()
	if conn == nil {
		return ErrNotConnected
	}

	payload, err := c.opt.codec.Encode(data)
	if err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opt.requestTimeout)
		defer cancel()
	}

	c.log.Debugf("Request: subject => %v", pattern)
	res, err := conn.Request(ctx, pubsub.Message{
		Subject: pattern,
		Header:  outgoingHeader(ctx),
		Data:    payload,
	})
	if err != nil {
		return err
	}
	applyReplyToOptions(opts, res.Header)

	var packet replyPacket
	if r := c.opt.codec.Decode(res.Data, &packet); r != nil {
		return fmt.Errorf("failed to decode reply: %w", r)
	}
	if packet.Err != nil {
		return &RemoteError{Err: packet.Err}
	}
	if out == nil {
		return nil
	}

	b, err := c.opt.codec.Encode(packet.Response)
	if err != nil {
		return err
	}
	return c.opt.codec.Decode(b, out)
}

func applyReplyToOptions(opts []grpc.CallOption, header pubsub.Header) {
	for _, opt := range opts {
		switch o := opt.(type) {
		case grpc.HeaderCallOption:
			*o.HeaderAddr = toMD(header)
		case grpc.TrailerCallOption:
			*o.TrailerAddr = metadata.MD{}
		}
	}
}

// outgoingHeader converts the outgoing grpc metadata and the request id of
// ctx into message headers.
func outgoingHeader(ctx context.Context) pubsub.Header {
	md, _ := metadata.FromOutgoingContext(ctx)
	if id := RequestID(ctx); id != "" {
		md = metadata.Join(md, metadata.Pairs(RequestIDHeader, id))
	}
	return fromMD(md)
}
