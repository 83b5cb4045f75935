// Package config loads the configuration of a transport from a YAML file and
// environment variables and turns it into transport options.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/nats-io/nats.go"
	"github.com/tehsphinx/jstransport"
	"github.com/tehsphinx/jstransport/pubsub"
	"gopkg.in/yaml.v3"
)

// Config represents the transport configuration.
type Config struct {
	NATS      NATSConfig                 `yaml:"nats"`
	Transport TransportConfig            `yaml:"transport"`
	Streams   []jstransport.StreamConfig `yaml:"streams" ignored:"true"`
	Logger    LoggerConfig               `yaml:"logger"`
	Metrics   MetricsConfig              `yaml:"metrics"`
}

// NATSConfig represents the connection configuration.
type NATSConfig struct {
	URL           string        `yaml:"url" envconfig:"NATS_URL"`
	Name          string        `yaml:"name" envconfig:"NATS_NAME"`
	MaxReconnects int           `yaml:"max_reconnects" envconfig:"NATS_MAX_RECONNECTS"`
	ReconnectWait time.Duration `yaml:"reconnect_wait" envconfig:"NATS_RECONNECT_WAIT"`

	// Authentication
	User     string `yaml:"user" envconfig:"NATS_USER"`
	Password string `yaml:"password" envconfig:"NATS_PASSWORD"`
	Token    string `yaml:"token" envconfig:"NATS_TOKEN"`
}

// TransportConfig represents the handler binding configuration.
type TransportConfig struct {
	Codec          string        `yaml:"codec" envconfig:"TRANSPORT_CODEC"`
	Queue          string        `yaml:"queue" envconfig:"TRANSPORT_QUEUE"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"TRANSPORT_REQUEST_TIMEOUT"`
	OnError        string        `yaml:"on_error" envconfig:"TRANSPORT_ON_ERROR"` // term or nak

	// Consumer defaults of event subscriptions
	Durable       string        `yaml:"durable" envconfig:"TRANSPORT_DURABLE"`
	DeliverPolicy string        `yaml:"deliver_policy" envconfig:"TRANSPORT_DELIVER_POLICY"` // all, last, new or last_per_subject
	AckWait       time.Duration `yaml:"ack_wait" envconfig:"TRANSPORT_ACK_WAIT"`
	MaxDeliver    int           `yaml:"max_deliver" envconfig:"TRANSPORT_MAX_DELIVER"`
	MaxAckPending int           `yaml:"max_ack_pending" envconfig:"TRANSPORT_MAX_ACK_PENDING"`
}

// LoggerConfig represents logger configuration.
type LoggerConfig struct {
	Level      string `yaml:"level" envconfig:"LOG_LEVEL"`   // verbose, debug, info, warn or error
	Format     string `yaml:"format" envconfig:"LOG_FORMAT"` // json or console
	OutputPath string `yaml:"output_path" envconfig:"LOG_OUTPUT_PATH"`
}

// MetricsConfig represents the metrics endpoint configuration.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled" envconfig:"METRICS_ENABLED"`
	Addr      string `yaml:"addr" envconfig:"METRICS_ADDR"`
	Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE"`
}

var deliverPolicies = map[string]pubsub.DeliverPolicy{
	"all":              pubsub.DeliverAll,
	"last":             pubsub.DeliverLast,
	"new":              pubsub.DeliverNew,
	"last_per_subject": pubsub.DeliverLastPerSubject,
}

var errorHandlers = map[string]jstransport.ErrorHandler{
	"term": jstransport.TermOnError,
	"nak":  jstransport.NackOnError,
}

// Default returns the configuration used for values neither the file nor
// the environment set.
func Default() *Config {
	return &Config{
		NATS: NATSConfig{
			URL:           nats.DefaultURL,
			MaxReconnects: nats.DefaultMaxReconnect,
			ReconnectWait: nats.DefaultReconnectWait,
		},
		Transport: TransportConfig{
			Codec:          "json",
			RequestTimeout: 5 * time.Second,
			OnError:        "term",
			DeliverPolicy:  "all",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Addr:      ":9090",
			Namespace: "jstransport",
		},
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := loadFromFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.NATS.URL == "" {
		return fmt.Errorf("nats url is required")
	}

	if _, err := jstransport.CodecByName(c.Transport.Codec); err != nil {
		return err
	}
	if _, ok := deliverPolicies[c.Transport.DeliverPolicy]; !ok {
		return fmt.Errorf("invalid deliver policy: %s (must be all, last, new or last_per_subject)", c.Transport.DeliverPolicy)
	}
	if _, ok := errorHandlers[c.Transport.OnError]; !ok {
		return fmt.Errorf("invalid on_error: %s (must be term or nak)", c.Transport.OnError)
	}
	if c.Transport.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}

	names := make(map[string]bool, len(c.Streams))
	for i, s := range c.Streams {
		if s.Name == "" {
			return fmt.Errorf("stream %d: name is required", i)
		}
		if names[s.Name] {
			return fmt.Errorf("stream %s: declared twice", s.Name)
		}
		names[s.Name] = true
	}

	if _, err := parseLevel(c.Logger.Level); err != nil {
		return err
	}
	if c.Logger.Format != "console" && c.Logger.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be console or json)", c.Logger.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics address is required when metrics are enabled")
	}

	return nil
}

// NatsOptions returns the connection options.
func (c NATSConfig) NatsOptions() []nats.Option {
	opts := []nats.Option{
		nats.MaxReconnects(c.MaxReconnects),
		nats.ReconnectWait(c.ReconnectWait),
	}
	if c.Name != "" {
		opts = append(opts, nats.Name(c.Name))
	}
	if c.User != "" {
		opts = append(opts, nats.UserInfo(c.User, c.Password))
	}
	if c.Token != "" {
		opts = append(opts, nats.Token(c.Token))
	}
	return opts
}

// Options returns the transport options for a server or client. The
// configuration must be valid.
func (c *Config) Options(log jstransport.Logger, metrics jstransport.MetricsCollector) ([]jstransport.Option, error) {
	codec, err := jstransport.CodecByName(c.Transport.Codec)
	if err != nil {
		return nil, err
	}

	opts := []jstransport.Option{
		jstransport.WithURL(c.NATS.URL),
		jstransport.WithNatsOptions(c.NATS.NatsOptions()...),
		jstransport.WithCodec(codec),
		jstransport.WithQueue(c.Transport.Queue),
		jstransport.WithRequestTimeout(c.Transport.RequestTimeout),
		jstransport.WithErrorHandler(errorHandlers[c.Transport.OnError]),
		jstransport.WithConsumer(c.Transport.configureConsumer),
		jstransport.WithStreams(c.Streams...),
	}
	if log != nil {
		opts = append(opts, jstransport.WithLogger(log))
	}
	if metrics != nil {
		opts = append(opts, jstransport.WithMetrics(metrics))
	}
	return opts, nil
}

func (c TransportConfig) configureConsumer(binding *pubsub.ConsumerBinding) {
	binding.Durable = c.Durable
	binding.DeliverPolicy = deliverPolicies[c.DeliverPolicy]
	binding.AckWait = c.AckWait
	binding.MaxDeliver = c.MaxDeliver
	binding.MaxAckPending = c.MaxAckPending
}
