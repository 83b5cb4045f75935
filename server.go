package jstransport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/tehsphinx/jstransport/pubsub"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Server binds the handlers of a Registry to NATS subscriptions.
type Server struct {
	registry Registry
	opt      options
	log      Logger

	subs     *subscriptions
	unaryInt grpc.UnaryServerInterceptor

	m    sync.Mutex
	conn pubsub.Conn
	js   pubsub.JetStream
}

// Run connects, reconciles the declared streams and subscribes all
// registered handlers. It returns once the subscriptions are in place.
// Lifecycle calls are not safe for concurrent use.
func (s *Server) Run(ctx context.Context) error {
	s.m.Lock()
	defer s.m.Unlock()

	if s.conn != nil {
		return ErrAlreadyRunning
	}

	conn, err := s.opt.dialer(ctx)
	if err != nil {
		return err
	}

	if r := s.start(ctx, conn); r != nil {
		s.subs.unsubscribeAll()
		if err := conn.Drain(ctx); err != nil {
			s.log.Debugf("failed to drain connection: %v", err)
		}
		return r
	}

	s.log.Infof("Connected to %s", conn.Server())
	return nil
}

func (s *Server) start(ctx context.Context, conn pubsub.Conn) error {
	js, err := conn.JetStream()
	if err != nil {
		return err
	}
	mgr, err := conn.StreamManager()
	if err != nil {
		return err
	}

	go watchStatus(conn.Status(), s.log, s.opt.metrics)

	if r := s.reconcileStreams(ctx, mgr, s.opt.streams); r != nil {
		return r
	}

	regs := s.registry.Registrations()
	if r := s.subscribeEvents(js, regs); r != nil {
		return r
	}
	if r := s.subscribeMessages(conn, regs); r != nil {
		return r
	}
	if r := conn.Flush(); r != nil {
		return r
	}

	s.conn = conn
	s.js = js
	return nil
}

// Listen runs the server and blocks until ctx is done. The connection is
// drained before Listen returns.
func (s *Server) Listen(ctx context.Context) error {
	if r := s.Run(ctx); r != nil {
		return r
	}

	<-ctx.Done()

	closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.Close(closeCtx)
}

// Close drains the connection and releases it. Handlers still running are
// not interrupted. Run may be called again afterwards.
func (s *Server) Close(ctx context.Context) error {
	s.m.Lock()
	defer s.m.Unlock()

	if s.conn == nil {
		return nil
	}

	err := s.conn.Drain(ctx)
	s.conn = nil
	s.js = nil
	s.subs.reset()
	return err
}

// Subscriptions returns the names of the active subscriptions.
func (s *Server) Subscriptions() []string {
	return s.subs.names()
}

func (s *Server) subscribeEvents(js pubsub.JetStream, regs []Registration) error {
	for _, reg := range regs {
		if !reg.Event {
			continue
		}
		reg := reg

		binding := s.consumerBinding(reg.Pattern)
		sub, err := js.Subscribe(reg.Pattern, binding, func(msg pubsub.AckMsg, err error) {
			if err != nil {
				s.log.Errorf("Event subscription %s: %v", reg.Pattern, err)
				return
			}
			go s.handleEvent(reg, msg)
		})
		if err != nil {
			if errors.Is(err, pubsub.ErrNoMatchingStream) {
				return &MissingStreamError{Pattern: reg.Pattern, Err: err}
			}
			return err
		}

		s.subs.register("event:"+reg.Pattern, sub)
		s.log.Infof("Subscribed to %s events", reg.Pattern)
	}
	return nil
}

// consumerBinding builds a fresh binding for pattern. The deliver subject and
// manual acknowledgment cannot be overridden.
func (s *Server) consumerBinding(pattern string) pubsub.ConsumerBinding {
	var binding pubsub.ConsumerBinding
	if s.opt.consumer != nil {
		s.opt.consumer(&binding)
	}
	if binding.Durable != "" {
		binding.Durable = DurableName(binding.Durable, pattern)
	}

	binding.DeliverSubject = nats.NewInbox()
	binding.ManualAck = true
	return binding
}

func (s *Server) subscribeMessages(conn pubsub.Subscriber, regs []Registration) error {
	for _, reg := range regs {
		if reg.Event {
			continue
		}
		reg := reg

		sub, err := conn.Subscribe(reg.Pattern, s.opt.queue, func(msg pubsub.Replier, err error) {
			if err != nil {
				s.log.Errorf("Message subscription %s: %v", reg.Pattern, err)
				return
			}
			go s.handleMessage(reg, msg)
		})
		if err != nil {
			return err
		}

		s.subs.register("message:"+reg.Pattern, sub)
		s.log.Infof("Subscribed to %s messages", reg.Pattern)
	}
	return nil
}

// invoke calls the handler through the interceptor chain. The message headers
// are passed as incoming metadata. Panics are returned as errors.
func (s *Server) invoke(ctx context.Context, reg Registration, payload interface{}, msgCtx *Context) (resp interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("server.invoke: panic recovered: %v", r)
		}
	}()

	ctx = metadata.NewIncomingContext(ctx, msgCtx.Metadata())
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return reg.Handler.call(ctx, req, msgCtx)
	}
	if s.unaryInt == nil {
		return handler(ctx, payload)
	}

	info := &grpc.UnaryServerInfo{
		Server:     s,
		FullMethod: reg.Pattern,
	}
	return s.unaryInt(ctx, payload, info, handler)
}
