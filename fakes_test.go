package jstransport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/tehsphinx/jstransport/pubsub"
)

type fakeMsg struct {
	subject string
	header  pubsub.Header
	data    []byte
}

func (m *fakeMsg) Subject() string       { return m.subject }
func (m *fakeMsg) Data() []byte          { return m.data }
func (m *fakeMsg) Header() pubsub.Header { return m.header }

// fakeAckMsg records the calls made on it in order.
type fakeAckMsg struct {
	fakeMsg

	m     sync.Mutex
	calls []string
	done  chan struct{}
}

func newAckMsg(subject string, data []byte) *fakeAckMsg {
	return &fakeAckMsg{
		fakeMsg: fakeMsg{subject: subject, data: data},
		done:    make(chan struct{}),
	}
}

func (m *fakeAckMsg) record(call string) error {
	m.m.Lock()
	defer m.m.Unlock()

	settled := m.settled()
	m.calls = append(m.calls, call)
	if call != "working" && !settled {
		close(m.done)
	}
	return nil
}

func (m *fakeAckMsg) settled() bool {
	for _, c := range m.calls {
		if c != "working" {
			return true
		}
	}
	return false
}

func (m *fakeAckMsg) Ack() error        { return m.record("ack") }
func (m *fakeAckMsg) Nak() error        { return m.record("nak") }
func (m *fakeAckMsg) Term() error       { return m.record("term") }
func (m *fakeAckMsg) InProgress() error { return m.record("working") }

func (m *fakeAckMsg) Calls() []string {
	m.m.Lock()
	defer m.m.Unlock()
	return append([]string(nil), m.calls...)
}

type fakeReplier struct {
	fakeMsg
	reply string

	responses   chan []byte
	replyHeader pubsub.Header
}

func newReplier(subject string, data []byte) *fakeReplier {
	return &fakeReplier{
		fakeMsg:   fakeMsg{subject: subject, data: data},
		reply:     "_INBOX.test",
		responses: make(chan []byte, 1),
	}
}

func (m *fakeReplier) ReplySubject() string { return m.reply }

func (m *fakeReplier) Reply(reply pubsub.Reply) error {
	m.replyHeader = reply.Header
	m.responses <- reply.Data
	return nil
}

type fakeSubscription struct {
	unsubscribed bool
}

func (s *fakeSubscription) Unsubscribe() error {
	s.unsubscribed = true
	return nil
}

type eventSub struct {
	subject string
	binding pubsub.ConsumerBinding
	handler pubsub.AckHandler
}

type messageSub struct {
	subject string
	queue   string
	handler pubsub.Handler
}

// fakeConn records subscriptions and publishes. streams holds the subjects
// covered by a stream; a nil map covers everything.
type fakeConn struct {
	m sync.Mutex

	eventSubs   []eventSub
	messageSubs []messageSub
	published   []pubsub.Message
	requests    []pubsub.Message

	streams  map[string]bool
	mgr      *fakeStreamManager
	status   chan pubsub.Status
	reply    func(msg pubsub.Message) (pubsub.Message, error)
	drained  int
	flushErr error
}

var (
	_ pubsub.Conn          = (*fakeConn)(nil)
	_ pubsub.JetStream     = (*fakeJetStream)(nil)
	_ pubsub.StreamManager = (*fakeStreamManager)(nil)
)

func newFakeConn() *fakeConn {
	return &fakeConn{
		mgr:    newFakeStreamManager(),
		status: make(chan pubsub.Status),
	}
}

func (c *fakeConn) Publish(msg pubsub.Message) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeConn) Request(_ context.Context, msg pubsub.Message) (pubsub.Message, error) {
	c.m.Lock()
	c.requests = append(c.requests, msg)
	reply := c.reply
	c.m.Unlock()

	if reply == nil {
		return pubsub.Message{}, context.DeadlineExceeded
	}
	return reply(msg)
}

func (c *fakeConn) Subscribe(subject, queue string, handler pubsub.Handler) (pubsub.Subscription, error) {
	c.m.Lock()
	defer c.m.Unlock()
	c.messageSubs = append(c.messageSubs, messageSub{subject: subject, queue: queue, handler: handler})
	return &fakeSubscription{}, nil
}

func (c *fakeConn) Flush() error { return c.flushErr }

func (c *fakeConn) Server() string { return "nats://fake:4222" }

func (c *fakeConn) Status() <-chan pubsub.Status { return c.status }

func (c *fakeConn) Drain(context.Context) error {
	c.m.Lock()
	defer c.m.Unlock()

	c.drained++
	if c.drained == 1 {
		close(c.status)
	}
	return nil
}

func (c *fakeConn) JetStream() (pubsub.JetStream, error) {
	return &fakeJetStream{conn: c}, nil
}

func (c *fakeConn) StreamManager() (pubsub.StreamManager, error) {
	return c.mgr, nil
}

type fakeJetStream struct {
	conn *fakeConn
}

func (j *fakeJetStream) Publish(_ context.Context, msg pubsub.Message) error {
	return j.conn.Publish(msg)
}

func (j *fakeJetStream) Subscribe(subject string, binding pubsub.ConsumerBinding, handler pubsub.AckHandler) (pubsub.Subscription, error) {
	j.conn.m.Lock()
	defer j.conn.m.Unlock()

	if j.conn.streams != nil && !j.conn.streams[subject] {
		return nil, fmt.Errorf("%w: %s", pubsub.ErrNoMatchingStream, subject)
	}
	j.conn.eventSubs = append(j.conn.eventSubs, eventSub{subject: subject, binding: binding, handler: handler})
	return &fakeSubscription{}, nil
}

type fakeStreamManager struct {
	m       sync.Mutex
	streams map[string]jetstream.StreamConfig
	calls   []string
	infoErr error
}

func newFakeStreamManager() *fakeStreamManager {
	return &fakeStreamManager{streams: make(map[string]jetstream.StreamConfig)}
}

func (f *fakeStreamManager) StreamInfo(_ context.Context, name string) (*jetstream.StreamConfig, error) {
	f.m.Lock()
	defer f.m.Unlock()

	if f.infoErr != nil {
		return nil, f.infoErr
	}
	cfg, ok := f.streams[name]
	if !ok {
		return nil, pubsub.ErrStreamNotFound
	}
	return &cfg, nil
}

func (f *fakeStreamManager) CreateStream(_ context.Context, cfg jetstream.StreamConfig) error {
	f.m.Lock()
	defer f.m.Unlock()

	if _, ok := f.streams[cfg.Name]; ok {
		return errors.New("stream name already in use")
	}
	f.streams[cfg.Name] = cfg
	f.calls = append(f.calls, "add:"+cfg.Name)
	return nil
}

func (f *fakeStreamManager) UpdateStream(_ context.Context, cfg jetstream.StreamConfig) error {
	f.m.Lock()
	defer f.m.Unlock()

	f.streams[cfg.Name] = cfg
	f.calls = append(f.calls, "update:"+cfg.Name)
	return nil
}

func (f *fakeStreamManager) Calls() []string {
	f.m.Lock()
	defer f.m.Unlock()
	return append([]string(nil), f.calls...)
}

type logEntry struct {
	level string
	msg   string
}

// recordingLogger stores all log lines with their level.
type recordingLogger struct {
	m       sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level string, args ...interface{}) {
	l.m.Lock()
	defer l.m.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: sprint(args...)})
}

func (l *recordingLogger) Entries() []logEntry {
	l.m.Lock()
	defer l.m.Unlock()
	return append([]logEntry(nil), l.entries...)
}

func (l *recordingLogger) Verbose(args ...interface{}) { l.add("verbose", args...) }
func (l *recordingLogger) Verbosef(format string, args ...interface{}) {
	l.add("verbose", fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Debug(args ...interface{}) { l.add("debug", args...) }
func (l *recordingLogger) Debugf(format string, args ...interface{}) {
	l.add("debug", fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Info(args ...interface{}) { l.add("info", args...) }
func (l *recordingLogger) Infof(format string, args ...interface{}) {
	l.add("info", fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Warn(args ...interface{}) { l.add("warn", args...) }
func (l *recordingLogger) Warnf(format string, args ...interface{}) {
	l.add("warn", fmt.Sprintf(format, args...))
}
func (l *recordingLogger) Error(args ...interface{}) { l.add("error", args...) }
func (l *recordingLogger) Errorf(format string, args ...interface{}) {
	l.add("error", fmt.Sprintf(format, args...))
}

// fakeDialer counts dials and always returns conn.
type fakeDialer struct {
	m     sync.Mutex
	conn  *fakeConn
	dials int
}

func (d *fakeDialer) dial(context.Context) (pubsub.Conn, error) {
	d.m.Lock()
	defer d.m.Unlock()
	d.dials++
	return d.conn, nil
}
