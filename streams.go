package jstransport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/tehsphinx/jstransport/pubsub"
	"golang.org/x/sync/errgroup"
)

// StreamConfig declares a stream the server creates or updates on startup.
type StreamConfig struct {
	Name string `yaml:"name"`
	// Overrides holds stream configuration fields in their JetStream API JSON
	// form (e.g. "subjects", "max_age" in nanoseconds, "retention"). Only
	// fields present here change the existing configuration.
	Overrides map[string]interface{} `yaml:"config"`
	// Configure is applied after Overrides.
	Configure func(cfg *jetstream.StreamConfig) `yaml:"-"`
}

// apply merges the declaration into base. Declared fields win.
func (c StreamConfig) apply(base jetstream.StreamConfig) (jetstream.StreamConfig, error) {
	if len(c.Overrides) != 0 {
		b, err := json.Marshal(c.Overrides)
		if err != nil {
			return base, fmt.Errorf("invalid configuration of stream %s: %w", c.Name, err)
		}
		if r := json.Unmarshal(b, &base); r != nil {
			return base, fmt.Errorf("invalid configuration of stream %s: %w", c.Name, r)
		}
	}
	if c.Configure != nil {
		c.Configure(&base)
	}

	base.Name = c.Name
	return base, nil
}

// reconcileStreams upserts all declared streams concurrently.
func (s *Server) reconcileStreams(ctx context.Context, mgr pubsub.StreamManager, streams []StreamConfig) error {
	var g errgroup.Group
	for _, cfg := range streams {
		cfg := cfg
		g.Go(func() error {
			return s.upsertStream(ctx, mgr, cfg)
		})
	}
	return g.Wait()
}

// upsertStream updates the stream if it exists and creates it otherwise.
func (s *Server) upsertStream(ctx context.Context, mgr pubsub.StreamManager, decl StreamConfig) error {
	current, err := mgr.StreamInfo(ctx, decl.Name)
	if err != nil {
		if !errors.Is(err, pubsub.ErrStreamNotFound) {
			return fmt.Errorf("failed to get stream %s: %w", decl.Name, err)
		}

		cfg, err := decl.apply(jetstream.StreamConfig{})
		if err != nil {
			return err
		}
		if r := mgr.CreateStream(ctx, cfg); r != nil {
			return fmt.Errorf("failed to create stream %s: %w", decl.Name, r)
		}

		s.log.Infof("Created stream %s", decl.Name)
		return nil
	}

	cfg, err := decl.apply(*current)
	if err != nil {
		return err
	}
	if r := mgr.UpdateStream(ctx, cfg); r != nil {
		return fmt.Errorf("failed to update stream %s: %w", decl.Name, r)
	}

	s.log.Infof("Updated stream %s", decl.Name)
	return nil
}
