package jstransport

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/tehsphinx/jstransport/pubsub"
	"google.golang.org/grpc"
)

// Option defines an option for configuring the server or client.
type Option func(opt *options)

func getOptions(opts []Option) options {
	opt := options{
		logger:         noopLogger{},
		codec:          JSONCodec{},
		url:            nats.DefaultURL,
		onError:        TermOnError,
		metrics:        noopMetrics{},
		requestTimeout: defaultRequestTimeout,
	}

	for _, o := range opts {
		o(&opt)
	}
	if opt.dialer == nil {
		opt.dialer = natsDialer(opt.url, opt.natsOpts)
	}
	return opt
}

type options struct {
	logger   Logger
	codec    Codec
	dialer   Dialer
	url      string
	natsOpts []nats.Option

	consumer  func(binding *pubsub.ConsumerBinding)
	queue     string
	streams   []StreamConfig
	onError   ErrorHandler
	unaryInts []grpc.UnaryServerInterceptor
	metrics   MetricsCollector

	requestTimeout time.Duration
}

// WithLogger sets the logger.
func WithLogger(log Logger) Option {
	return func(opt *options) {
		opt.logger = log
	}
}

// WithCodec sets the codec used for payloads. Defaults to JSONCodec.
func WithCodec(codec Codec) Option {
	return func(opt *options) {
		opt.codec = codec
	}
}

// WithURL sets the server url(s) used by the default dialer. Multiple urls
// are separated by comma.
func WithURL(url string) Option {
	return func(opt *options) {
		opt.url = url
	}
}

// WithNatsOptions adds connection options used by the default dialer.
func WithNatsOptions(opts ...nats.Option) Option {
	return func(opt *options) {
		opt.natsOpts = append(opt.natsOpts, opts...)
	}
}

// WithDialer replaces the default dialer.
func WithDialer(dialer Dialer) Option {
	return func(opt *options) {
		opt.dialer = dialer
	}
}

// WithConsumer customizes the consumer created for every event pattern.
// A durable name set here is suffixed with the pattern.
// The deliver subject and manual acknowledgment are always set by the server.
func WithConsumer(fn func(binding *pubsub.ConsumerBinding)) Option {
	return func(opt *options) {
		opt.consumer = fn
	}
}

// WithQueue sets the queue group of the message subscriptions.
func WithQueue(queue string) Option {
	return func(opt *options) {
		opt.queue = queue
	}
}

// WithStreams declares the streams reconciled before events are bound.
func WithStreams(streams ...StreamConfig) Option {
	return func(opt *options) {
		opt.streams = append(opt.streams, streams...)
	}
}

// WithErrorHandler decides the disposition of events whose handler failed.
// Defaults to TermOnError.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(opt *options) {
		opt.onError = fn
	}
}

// WithUnaryInterceptor adds interceptors wrapping every handler call.
// They are executed in the order given.
func WithUnaryInterceptor(ints ...grpc.UnaryServerInterceptor) Option {
	return func(opt *options) {
		opt.unaryInts = append(opt.unaryInts, ints...)
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(opt *options) {
		opt.metrics = m
	}
}

// WithRequestTimeout sets the timeout of client requests whose context has
// no deadline.
func WithRequestTimeout(d time.Duration) Option {
	return func(opt *options) {
		opt.requestTimeout = d
	}
}
