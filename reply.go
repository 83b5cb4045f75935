package jstransport

import (
	"context"
	"fmt"
	"time"

	"github.com/tehsphinx/jstransport/pubsub"
	"google.golang.org/grpc"
)

// replyPacket is the wire format of a reply. The field order is part of the
// protocol.
type replyPacket struct {
	Response   interface{} `json:"response"`
	Err        interface{} `json:"err,omitempty"`
	IsDisposed bool        `json:"isDisposed"`
}

func (s *Server) handleMessage(reg Registration, msg pubsub.Replier) {
	start := time.Now()

	err := s.respond(reg, msg)
	if err != nil {
		s.log.Errorf("Message %s: %v", msg.Subject(), err)
	}

	s.opt.metrics.RequestHandled(reg.Pattern, err)
	s.opt.metrics.HandlerDuration(reg.Pattern, KindMessage, time.Since(start))
}

// respond replies with the handler result. Nothing is sent if the handler
// fails; the caller times out.
func (s *Server) respond(reg Registration, msg pubsub.Replier) error {
	payload, err := reg.Handler.decode(s.opt.codec, msg.Data())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}

	transport := newReplyTransport(reg.Pattern)
	ctx := grpc.NewContextWithServerTransportStream(context.Background(), transport)

	resp, err := s.invoke(ctx, reg, payload, newContext(msg))
	if err != nil {
		return err
	}

	data, err := s.opt.codec.Encode(replyPacket{Response: result(resp), IsDisposed: true})
	if err != nil {
		return fmt.Errorf("failed to encode reply: %w", err)
	}

	if msg.ReplySubject() == "" {
		return ErrNoReplySubject
	}

	s.log.Debugf("Reply: subject => %v", msg.Subject())
	return msg.Reply(pubsub.Reply{
		Header: fromMD(transport.headers()),
		Data:   data,
	})
}

// result resolves a handler response. Channels are drained and yield their
// last value.
func result(resp interface{}) interface{} {
	switch ch := resp.(type) {
	case <-chan interface{}:
		return lastValue(ch)
	case chan interface{}:
		return lastValue(ch)
	}
	return resp
}

// lastValue drains ch and returns the last value received.
func lastValue(ch <-chan interface{}) interface{} {
	var last interface{}
	for v := range ch {
		last = v
	}
	return last
}
