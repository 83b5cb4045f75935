// Package metrics provides a Prometheus implementation of
// jstransport.MetricsCollector.
package metrics

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tehsphinx/jstransport"
	"github.com/tehsphinx/jstransport/pubsub"
)

// Request results reported by requests_total.
const (
	resultOK    = "ok"
	resultError = "error"
)

// Prometheus records transport metrics. The collectors are registered on
// first use. Collectors sharing a registerer and namespace share the
// underlying metrics.
type Prometheus struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	events   *prometheus.CounterVec
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	status   *prometheus.CounterVec
}

var _ jstransport.MetricsCollector = (*Prometheus)(nil)

// NewPrometheus creates a collector registering on reg (the default
// registerer if nil) under namespace ("jstransport" if empty).
func NewPrometheus(reg prometheus.Registerer, namespace string) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "jstransport"
	}

	return &Prometheus{reg: reg, namespace: namespace}
}

func (p *Prometheus) ensureRegistered() {
	p.once.Do(func() {
		p.events = register(p.reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "events_total",
			Help:      "Total events settled by pattern and disposition (ack,nak,term).",
		}, []string{"pattern", "disposition"}))

		p.requests = register(p.reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "requests_total",
			Help:      "Total requests handled by pattern and result (ok,error).",
		}, []string{"pattern", "result"}))

		p.duration = register(p.reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      "handler_duration_seconds",
			Help:      "Time spent handling a message in seconds by pattern and kind (event,message).",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms .. ~8s
		}, []string{"pattern", "kind"}))

		p.status = register(p.reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "status_events_total",
			Help:      "Total connection status events by type.",
		}, []string{"type"}))
	})
}

// register registers c on reg. If an equal collector is registered already
// that one is returned. Any other registration error panics.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	panic(err)
}

// EventSettled implements the jstransport.MetricsCollector interface.
func (p *Prometheus) EventSettled(pattern string, d jstransport.Disposition) {
	p.ensureRegistered()
	p.events.WithLabelValues(pattern, d.String()).Inc()
}

// RequestHandled implements the jstransport.MetricsCollector interface.
func (p *Prometheus) RequestHandled(pattern string, err error) {
	p.ensureRegistered()

	result := resultOK
	if err != nil {
		result = resultError
	}
	p.requests.WithLabelValues(pattern, result).Inc()
}

// HandlerDuration implements the jstransport.MetricsCollector interface.
func (p *Prometheus) HandlerDuration(pattern, kind string, d time.Duration) {
	p.ensureRegistered()
	p.duration.WithLabelValues(pattern, kind).Observe(d.Seconds())
}

// StatusEvent implements the jstransport.MetricsCollector interface.
func (p *Prometheus) StatusEvent(t pubsub.StatusType) {
	p.ensureRegistered()
	p.status.WithLabelValues(t.String()).Inc()
}
