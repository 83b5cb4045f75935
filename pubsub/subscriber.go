package pubsub

import (
	"time"
)

// Handler receives messages of a request/reply subscription. A non-nil
// error reports a delivery problem on the subscription (e.g. slow consumer)
// in which case msg is nil.
type Handler func(msg Replier, err error)

// AckHandler receives messages of a durable consumer subscription. A non-nil
// error reports a delivery problem in which case msg is nil.
type AckHandler func(msg AckMsg, err error)

// Subscriber subscribes on the base connection.
type Subscriber interface {
	// Subscribe subscribes to subject. Subscribers sharing a non-empty queue
	// group get the messages load balanced between them.
	Subscribe(subject, queue string, handler Handler) (Subscription, error)
	Flush() error
}

// Subscription is an active subscription.
type Subscription interface {
	Unsubscribe() error
}

// DeliverPolicy selects where a new consumer starts in the stream.
type DeliverPolicy int

// Deliver policies understood by ConsumerBinding.
const (
	DeliverAll DeliverPolicy = iota
	DeliverLast
	DeliverNew
	DeliverLastPerSubject
)

// ConsumerBinding configures the consumer created for one event subscription.
// It is built fresh per subscribe call.
type ConsumerBinding struct {
	// Durable names the consumer. Empty creates an ephemeral consumer.
	Durable string
	// DeliverSubject is the push target of the consumer.
	DeliverSubject string
	// DeliverGroup load balances the push delivery between subscribers.
	DeliverGroup string
	// ManualAck leaves the disposition of every message to the subscriber.
	ManualAck     bool
	DeliverPolicy DeliverPolicy
	AckWait       time.Duration
	MaxDeliver    int
	MaxAckPending int
	// Description is stored with the consumer.
	Description string
}
