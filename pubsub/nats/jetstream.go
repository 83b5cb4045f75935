package nats

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/tehsphinx/jstransport/pubsub"
)

// jetStream publishes through the jetstream API and subscribes through the
// JetStreamContext, which is the API offering push consumers.
type jetStream struct {
	legacy nats.JetStreamContext
	js     jetstream.JetStream
	errs   *errRoutes
}

var _ pubsub.JetStream = (*jetStream)(nil)

// Publish implements the pubsub.JetStream interface.
func (s *jetStream) Publish(ctx context.Context, msg pubsub.Message) error {
	_, err := s.js.PublishMsg(ctx, toNatsMsg(msg))
	return err
}

// Subscribe implements the pubsub.JetStream interface.
func (s *jetStream) Subscribe(subject string, binding pubsub.ConsumerBinding, handler pubsub.AckHandler) (pubsub.Subscription, error) {
	cb := func(msg *nats.Msg) {
		handler(ackMessage{message{msg: msg}}, nil)
	}
	opts := subOpts(binding)

	var (
		sub *nats.Subscription
		err error
	)
	if binding.DeliverGroup == "" {
		sub, err = s.legacy.Subscribe(subject, cb, opts...)
	} else {
		sub, err = s.legacy.QueueSubscribe(subject, binding.DeliverGroup, cb, opts...)
	}
	if err != nil {
		if errors.Is(err, nats.ErrNoMatchingStream) {
			return nil, fmt.Errorf("%w: %s", pubsub.ErrNoMatchingStream, subject)
		}
		return nil, err
	}

	s.errs.add(sub, func(err error) { handler(nil, err) })
	return &subscription{sub: sub, errs: s.errs}, nil
}

func subOpts(b pubsub.ConsumerBinding) []nats.SubOpt {
	var opts []nats.SubOpt

	if b.Durable != "" {
		opts = append(opts, nats.Durable(b.Durable))
	}
	if b.DeliverSubject != "" {
		opts = append(opts, nats.DeliverSubject(b.DeliverSubject))
	}
	if b.ManualAck {
		opts = append(opts, nats.ManualAck(), nats.AckExplicit())
	}

	switch b.DeliverPolicy {
	case pubsub.DeliverLast:
		opts = append(opts, nats.DeliverLast())
	case pubsub.DeliverNew:
		opts = append(opts, nats.DeliverNew())
	case pubsub.DeliverLastPerSubject:
		opts = append(opts, nats.DeliverLastPerSubject())
	default:
		opts = append(opts, nats.DeliverAll())
	}

	if b.AckWait > 0 {
		opts = append(opts, nats.AckWait(b.AckWait))
	}
	if b.MaxDeliver != 0 {
		opts = append(opts, nats.MaxDeliver(b.MaxDeliver))
	}
	if b.MaxAckPending != 0 {
		opts = append(opts, nats.MaxAckPending(b.MaxAckPending))
	}
	if b.Description != "" {
		opts = append(opts, nats.Description(b.Description))
	}
	return opts
}

type streamManager struct {
	js jetstream.JetStream
}

var _ pubsub.StreamManager = (*streamManager)(nil)

// StreamInfo implements the pubsub.StreamManager interface.
func (s *streamManager) StreamInfo(ctx context.Context, name string) (*jetstream.StreamConfig, error) {
	stream, err := s.js.Stream(ctx, name)
	if err != nil {
		if errors.Is(err, jetstream.ErrStreamNotFound) {
			return nil, fmt.Errorf("%w: %s", pubsub.ErrStreamNotFound, name)
		}
		return nil, err
	}

	cfg := stream.CachedInfo().Config
	return &cfg, nil
}

// CreateStream implements the pubsub.StreamManager interface.
func (s *streamManager) CreateStream(ctx context.Context, cfg jetstream.StreamConfig) error {
	_, err := s.js.CreateStream(ctx, cfg)
	return err
}

// UpdateStream implements the pubsub.StreamManager interface.
func (s *streamManager) UpdateStream(ctx context.Context, cfg jetstream.StreamConfig) error {
	_, err := s.js.UpdateStream(ctx, cfg)
	return err
}
