package nats

import (
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/tehsphinx/jstransport/pubsub"
)

// Subscriber returns a NATS wrapper implementing the pubsub.Subscriber interface.
// Delivery errors of its subscriptions are only reported to the handlers if
// the connection was created with Dial.
func Subscriber(nats *nats.Conn) pubsub.Subscriber {
	return &subscriber{nats: nats, errs: newErrRoutes()}
}

type subscriber struct {
	nats *nats.Conn
	errs *errRoutes
}

// Subscribe implements the pubsub.Subscriber interface.
func (s *subscriber) Subscribe(subject, queue string, handler pubsub.Handler) (pubsub.Subscription, error) {
	cb := func(msg *nats.Msg) {
		handler(message{msg: msg}, nil)
	}

	var (
		sub *nats.Subscription
		err error
	)
	if queue == "" {
		sub, err = s.nats.Subscribe(subject, cb)
	} else {
		sub, err = s.nats.QueueSubscribe(subject, queue, cb)
	}
	if err != nil {
		return nil, err
	}

	s.errs.add(sub, func(err error) { handler(nil, err) })
	return &subscription{sub: sub, errs: s.errs}, nil
}

// Flush implements the pubsub.Subscriber interface.
func (s *subscriber) Flush() error {
	return s.nats.Flush()
}

type subscription struct {
	sub  *nats.Subscription
	errs *errRoutes
}

// Unsubscribe implements the pubsub.Subscription interface.
func (s *subscription) Unsubscribe() error {
	s.errs.remove(s.sub)
	return s.sub.Unsubscribe()
}

// errRoutes forwards asynchronous subscription errors (slow consumer etc.)
// to the handler of the affected subscription.
type errRoutes struct {
	m      sync.RWMutex
	routes map[*nats.Subscription]func(error)
}

func newErrRoutes() *errRoutes {
	return &errRoutes{routes: make(map[*nats.Subscription]func(error))}
}

func (r *errRoutes) add(sub *nats.Subscription, fn func(error)) {
	r.m.Lock()
	defer r.m.Unlock()

	r.routes[sub] = fn
}

func (r *errRoutes) remove(sub *nats.Subscription) {
	r.m.Lock()
	defer r.m.Unlock()

	delete(r.routes, sub)
}

func (r *errRoutes) route(sub *nats.Subscription, err error) {
	if sub == nil {
		return
	}

	r.m.RLock()
	fn, ok := r.routes[sub]
	r.m.RUnlock()

	if ok {
		fn(err)
	}
}
