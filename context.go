package jstransport

import (
	"strings"

	"github.com/tehsphinx/jstransport/pubsub"
	"google.golang.org/grpc/metadata"
)

// Context describes the message a handler is invoked for.
type Context struct {
	msg pubsub.Msg
}

func newContext(msg pubsub.Msg) *Context {
	return &Context{msg: msg}
}

// Subject returns the subject the message was received on.
func (c *Context) Subject() string {
	return c.msg.Subject()
}

// Headers returns the message headers. It is nil if the message has none.
func (c *Context) Headers() pubsub.Header {
	return c.msg.Header()
}

// Message returns the received message. Use pubsub/nats.Unwrap to get the
// underlying *nats.Msg.
func (c *Context) Message() pubsub.Msg {
	return c.msg
}

// Metadata returns the headers as grpc metadata with lower case keys.
func (c *Context) Metadata() metadata.MD {
	return toMD(c.msg.Header())
}

func toMD(header pubsub.Header) metadata.MD {
	md := metadata.MD{}
	for k, v := range header {
		key := strings.ToLower(k)
		md[key] = append(md[key], v...)
	}
	return md
}

func fromMD(md metadata.MD) pubsub.Header {
	if len(md) == 0 {
		return nil
	}

	h := pubsub.Header{}
	for k, v := range md {
		h[k] = append([]string(nil), v...)
	}
	return h
}
