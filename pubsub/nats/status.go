package nats

import (
	"errors"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/tehsphinx/jstransport/pubsub"
)

// statusFeed turns NATS connection callbacks into an ordered event channel.
// push never blocks so slow consumers cannot stall the NATS callback
// dispatcher. The channel is closed once the feed is closed and all queued
// events were delivered.
type statusFeed struct {
	m      sync.Mutex
	queue  []pubsub.Status
	closed bool

	notify chan struct{}
	out    chan pubsub.Status
}

func newStatusFeed() *statusFeed {
	f := &statusFeed{
		notify: make(chan struct{}, 1),
		out:    make(chan pubsub.Status),
	}
	go f.run()
	return f
}

func (f *statusFeed) push(st pubsub.Status) {
	f.m.Lock()
	if f.closed {
		f.m.Unlock()
		return
	}
	f.queue = append(f.queue, st)
	f.m.Unlock()

	f.wake()
}

func (f *statusFeed) close() {
	f.m.Lock()
	f.closed = true
	f.m.Unlock()

	f.wake()
}

func (f *statusFeed) wake() {
	select {
	case f.notify <- struct{}{}:
	default:
	}
}

func (f *statusFeed) run() {
	defer close(f.out)

	for {
		f.m.Lock()
		if len(f.queue) == 0 {
			closed := f.closed
			f.m.Unlock()

			if closed {
				return
			}
			<-f.notify
			continue
		}
		st := f.queue[0]
		f.queue = f.queue[1:]
		f.m.Unlock()

		f.out <- st
	}
}

// statusOptions hooks the connection callbacks up to the feed. They are
// appended after user supplied options and replace handlers set there.
func (c *conn) statusOptions() []nats.Option {
	return []nats.Option{
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if errors.Is(err, nats.ErrStaleConnection) {
				c.feed.push(pubsub.Status{Type: pubsub.StatusStaleConnection, Data: errText(err)})
				return
			}
			c.feed.push(pubsub.Status{Type: pubsub.StatusDisconnect, Data: errText(err)})
		}),
		nats.ReconnectErrHandler(func(_ *nats.Conn, err error) {
			c.feed.push(pubsub.Status{Type: pubsub.StatusReconnecting, Data: errText(err)})
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			c.feed.push(pubsub.Status{Type: pubsub.StatusReconnect, Data: nc.ConnectedUrlRedacted()})
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			c.feed.push(pubsub.Status{Type: pubsub.StatusError, Data: errText(err)})
			c.errs.route(sub, err)
		}),
		nats.LameDuckModeHandler(func(nc *nats.Conn) {
			c.feed.push(pubsub.Status{Type: pubsub.StatusLDM, Data: nc.ConnectedUrlRedacted()})
		}),
		nats.DiscoveredServersHandler(func(nc *nats.Conn) {
			c.feed.push(pubsub.Status{Type: pubsub.StatusUpdate, Data: c.serverUpdate(nc.Servers())})
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			c.closeOnce.Do(func() {
				close(c.closed)
				c.feed.close()
			})
		}),
	}
}

// serverUpdate diffs the server pool against the last known one.
func (c *conn) serverUpdate(servers []string) pubsub.ServerUpdate {
	c.m.Lock()
	defer c.m.Unlock()

	known := make(map[string]struct{}, len(c.servers))
	for _, s := range c.servers {
		known[s] = struct{}{}
	}

	update := pubsub.ServerUpdate{Added: []string{}, Deleted: []string{}}
	current := make(map[string]struct{}, len(servers))
	for _, s := range servers {
		current[s] = struct{}{}
		if _, ok := known[s]; !ok {
			update.Added = append(update.Added, s)
		}
	}
	for _, s := range c.servers {
		if _, ok := current[s]; !ok {
			update.Deleted = append(update.Deleted, s)
		}
	}

	c.servers = servers
	return update
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
