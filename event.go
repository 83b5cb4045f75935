package jstransport

import (
	"context"
	"fmt"
	"time"

	"github.com/tehsphinx/jstransport/pubsub"
)

// handleEvent runs a durable message through the handler and settles it
// exactly once.
func (s *Server) handleEvent(reg Registration, msg pubsub.AckMsg) {
	start := time.Now()

	d := s.processEvent(reg, msg)
	s.settle(reg.Pattern, msg, d)

	s.opt.metrics.HandlerDuration(reg.Pattern, KindEvent, time.Since(start))
}

// processEvent decides the disposition of msg. It has no side effects on the
// message other than the in-progress signal.
func (s *Server) processEvent(reg Registration, msg pubsub.AckMsg) Disposition {
	if r := msg.InProgress(); r != nil {
		s.log.Warnf("Event %s: failed to signal progress: %v", msg.Subject(), r)
	}

	msgCtx := newContext(msg)
	payload, err := reg.Handler.decode(s.opt.codec, msg.Data())
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrDecode, err)
		s.log.Debugf("Event %s: %v", msg.Subject(), err)
		return s.opt.onError(err, msgCtx)
	}

	resp, err := s.invoke(context.Background(), reg, payload, msgCtx)
	if err != nil {
		s.log.Debugf("Event %s: handler failed: %v", msg.Subject(), err)
		return s.opt.onError(err, msgCtx)
	}

	if d, ok := result(resp).(Disposition); ok {
		return d
	}
	return Ack
}

func (s *Server) settle(pattern string, msg pubsub.AckMsg, d Disposition) {
	var err error
	switch d {
	case Nack:
		err = msg.Nak()
	case Term:
		err = msg.Term()
	default:
		d = Ack
		err = msg.Ack()
	}
	if err != nil {
		s.log.Errorf("Event %s: failed to %s: %v", msg.Subject(), d, err)
	}

	s.opt.metrics.EventSettled(pattern, d)
}
