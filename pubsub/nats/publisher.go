package nats

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/tehsphinx/jstransport/pubsub"
)

// Publisher returns a NATS wrapper implementing the pubsub.Publisher interface.
func Publisher(nats *nats.Conn) pubsub.Publisher {
	return &publisher{nats: nats}
}

type publisher struct {
	nats *nats.Conn
}

// Publish implements the pubsub.Publisher interface.
func (s *publisher) Publish(msg pubsub.Message) error {
	return s.nats.PublishMsg(toNatsMsg(msg))
}

// Request implements the pubsub.Publisher interface.
func (s *publisher) Request(ctx context.Context, msg pubsub.Message) (pubsub.Message, error) {
	resp, err := s.nats.RequestMsgWithContext(ctx, toNatsMsg(msg))
	if err != nil {
		return pubsub.Message{}, err
	}

	return pubsub.Message{
		Subject: resp.Subject,
		Header:  pubsub.Header(resp.Header),
		Data:    resp.Data,
	}, nil
}
