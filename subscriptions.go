package jstransport

import (
	"sort"
	"sync"

	"github.com/tehsphinx/jstransport/pubsub"
)

func newSubscriptions(log Logger) *subscriptions {
	return &subscriptions{
		log:  log,
		subs: make(map[string]pubsub.Subscription),
	}
}

// subscriptions tracks the active subscriptions of a server by name.
type subscriptions struct {
	log Logger

	m    sync.RWMutex
	subs map[string]pubsub.Subscription
}

func (s *subscriptions) register(name string, sub pubsub.Subscription) {
	s.m.Lock()
	defer s.m.Unlock()

	if subscr, ok := s.subs[name]; ok {
		_ = subscr.Unsubscribe()
		s.log.Infof("un-subscribed: subject => %v: subscription with same name", name)
	}
	s.subs[name] = sub
}

func (s *subscriptions) names() []string {
	s.m.RLock()
	defer s.m.RUnlock()

	names := make([]string, 0, len(s.subs))
	for name := range s.subs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// unsubscribeAll unsubscribes from everything. Used when startup fails after
// some subscriptions were made.
func (s *subscriptions) unsubscribeAll() {
	s.m.Lock()
	defer s.m.Unlock()

	for name, sub := range s.subs {
		if r := sub.Unsubscribe(); r != nil {
			s.log.Debugf("un-subscribe %v: %v", name, r)
		}
		delete(s.subs, name)
	}
}

// reset forgets all subscriptions. Draining the connection already removed them.
func (s *subscriptions) reset() {
	s.m.Lock()
	defer s.m.Unlock()

	s.subs = make(map[string]pubsub.Subscription)
}
