package nats

import (
	"github.com/nats-io/nats.go"
	"github.com/tehsphinx/jstransport/pubsub"
)

type message struct {
	msg *nats.Msg
}

var _ pubsub.Replier = (*message)(nil)

// Subject implements the pubsub.Msg interface.
func (s message) Subject() string {
	return s.msg.Subject
}

// Data implements the pubsub.Msg interface.
func (s message) Data() []byte {
	return s.msg.Data
}

// Header implements the pubsub.Msg interface.
func (s message) Header() pubsub.Header {
	return pubsub.Header(s.msg.Header)
}

// ReplySubject implements the pubsub.Replier interface.
func (s message) ReplySubject() string {
	return s.msg.Reply
}

// Reply implements the pubsub.Replier interface.
func (s message) Reply(reply pubsub.Reply) error {
	return s.msg.RespondMsg(&nats.Msg{
		Header: nats.Header(reply.Header),
		Data:   reply.Data,
	})
}

type ackMessage struct {
	message
}

var _ pubsub.AckMsg = (*ackMessage)(nil)

// Ack implements the pubsub.AckMsg interface.
func (s ackMessage) Ack() error {
	return s.msg.Ack()
}

// Nak implements the pubsub.AckMsg interface.
func (s ackMessage) Nak() error {
	return s.msg.Nak()
}

// Term implements the pubsub.AckMsg interface.
func (s ackMessage) Term() error {
	return s.msg.Term()
}

// InProgress implements the pubsub.AckMsg interface.
func (s ackMessage) InProgress() error {
	return s.msg.InProgress()
}

// Unwrap returns the NATS message behind a message received through this package.
func Unwrap(msg pubsub.Msg) (*nats.Msg, bool) {
	switch m := msg.(type) {
	case message:
		return m.msg, true
	case ackMessage:
		return m.msg, true
	default:
		return nil, false
	}
}

func toNatsMsg(msg pubsub.Message) *nats.Msg {
	return &nats.Msg{
		Subject: msg.Subject,
		Reply:   msg.Reply,
		Header:  nats.Header(msg.Header),
		Data:    msg.Data,
	}
}
