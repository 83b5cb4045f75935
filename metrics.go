package jstransport

import (
	"time"

	"github.com/tehsphinx/jstransport/pubsub"
)

// Handler kinds reported to MetricsCollector.HandlerDuration.
const (
	KindEvent   = "event"
	KindMessage = "message"
)

// MetricsCollector receives transport measurements. See the metrics package
// for a Prometheus implementation.
type MetricsCollector interface {
	// EventSettled records the disposition applied to an event.
	EventSettled(pattern string, d Disposition)
	// RequestHandled records a handled request; err is nil if a reply was sent.
	RequestHandled(pattern string, err error)
	// HandlerDuration records the time spent on one message.
	HandlerDuration(pattern, kind string, d time.Duration)
	// StatusEvent records a connection health event.
	StatusEvent(t pubsub.StatusType)
}

var _ MetricsCollector = noopMetrics{}

type noopMetrics struct{}

func (noopMetrics) EventSettled(string, Disposition) {}

func (noopMetrics) RequestHandled(string, error) {}

func (noopMetrics) HandlerDuration(string, string, time.Duration) {}

func (noopMetrics) StatusEvent(pubsub.StatusType) {}
