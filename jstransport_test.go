package jstransport_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/tehsphinx/jstransport"
	"github.com/tehsphinx/jstransport/pubsub"
	"google.golang.org/grpc/metadata"

	"github.com/tehsphinx/jstransport/internal/natstest"
)

type order struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
}

type greeting struct {
	Hello string `json:"hello"`
}

type farewell struct {
	Goodbye string `json:"goodbye"`
}

func ordersStream() jstransport.StreamConfig {
	return jstransport.StreamConfig{
		Name: "ORDERS",
		Configure: func(cfg *jetstream.StreamConfig) {
			cfg.Subjects = []string{"orders.>"}
		},
	}
}

func TestEndToEnd(t *testing.T) {
	asrt := is.New(t)
	ctxMain := context.Background()
	logger := jstransport.StandardLogger{}

	ns := natstest.NewServer(t)

	var (
		m        sync.Mutex
		received []string
		attempts = map[string]int{}
	)
	settled := make(chan string, 10)

	router := jstransport.NewRouter().
		Event("orders.created", jstransport.Handle(func(ctx context.Context, o order, msg *jstransport.Context) (interface{}, error) {
			m.Lock()
			defer m.Unlock()

			attempts[o.ID]++
			defer func() { settled <- o.ID }()

			switch o.ID {
			case "retry":
				if attempts[o.ID] == 1 {
					return jstransport.Nack, nil
				}
			case "poison":
				return nil, errors.New("cannot process")
			}
			received = append(received, o.ID+":"+jstransport.RequestID(ctx))
			return nil, nil
		})).
		Message("greet", jstransport.Handle(func(ctx context.Context, g greeting, msg *jstransport.Context) (interface{}, error) {
			md, _ := metadata.FromIncomingContext(ctx)
			return farewell{Goodbye: g.Hello + md.Get("tenant")[0]}, nil
		}))

	server := jstransport.NewServer(router,
		jstransport.WithURL(ns.ClientURL()),
		jstransport.WithLogger(logger),
		jstransport.WithStreams(ordersStream()),
		jstransport.WithUnaryInterceptor(jstransport.RequestContext()),
	)
	asrt.NoErr(server.Run(ctxMain))
	defer func() { _ = server.Close(ctxMain) }()

	client := jstransport.NewClient(jstransport.WithURL(ns.ClientURL()), jstransport.WithLogger(logger))
	_, err := client.Connect(ctxMain)
	asrt.NoErr(err)
	defer func() { _ = client.Close(ctxMain) }()

	t.Run("request", func(t *testing.T) {
		asrt := asrt.New(t)
		ctx, cancel := context.WithTimeout(ctxMain, 2*time.Second)
		defer cancel()
		ctx = metadata.AppendToOutgoingContext(ctx, "tenant", "!")

		var resp farewell
		asrt.NoErr(client.Send(ctx, "greet", greeting{Hello: "world"}, &resp))
		asrt.Equal(resp.Goodbye, "world!")
	})

	t.Run("events", func(t *testing.T) {
		asrt := asrt.New(t)
		ctx, cancel := context.WithTimeout(ctxMain, 5*time.Second)
		defer cancel()

		asrt.NoErr(client.Emit(jstransport.WithRequestID(ctx, "r1"), "orders.created", order{ID: "ok", Amount: 1}))
		asrt.NoErr(client.Emit(ctx, "orders.created", order{ID: "retry", Amount: 1}))
		asrt.NoErr(client.Emit(ctx, "orders.created", order{ID: "poison", Amount: 1}))

		// ok, retry twice, poison once
		for i := 0; i < 4; i++ {
			select {
			case <-settled:
			case <-ctx.Done():
				t.Fatal("events not handled")
			}
		}

		// give a terminated message the chance to be redelivered
		time.Sleep(100 * time.Millisecond)

		m.Lock()
		defer m.Unlock()
		asrt.Equal(attempts["ok"], 1)
		asrt.Equal(attempts["retry"], 2)
		asrt.Equal(attempts["poison"], 1)
		asrt.Equal(len(received), 2)
		asrt.True(received[0] == "ok:r1" || received[1] == "ok:r1")
	})
}

func TestServerRestartIsIdempotent(t *testing.T) {
	asrt := is.New(t)
	ctx := context.Background()

	ns := natstest.NewServer(t)
	router := jstransport.NewRouter().
		Event("orders.created", jstransport.Handle(func(context.Context, order, *jstransport.Context) (interface{}, error) {
			return nil, nil
		}))
	opts := []jstransport.Option{
		jstransport.WithURL(ns.ClientURL()),
		jstransport.WithStreams(ordersStream()),
		jstransport.WithConsumer(func(b *pubsub.ConsumerBinding) {
			b.Durable = "orders-service"
		}),
	}

	server := jstransport.NewServer(router, opts...)
	asrt.NoErr(server.Run(ctx))
	asrt.NoErr(server.Close(ctx))

	asrt.NoErr(server.Run(ctx))
	asrt.NoErr(server.Close(ctx))
}

func TestMissingStreamOnBroker(t *testing.T) {
	asrt := is.New(t)
	ctx := context.Background()

	ns := natstest.NewServer(t)
	router := jstransport.NewRouter().
		Event("payments.received", jstransport.Handle(func(context.Context, order, *jstransport.Context) (interface{}, error) {
			return nil, nil
		}))

	server := jstransport.NewServer(router,
		jstransport.WithURL(ns.ClientURL()),
		jstransport.WithStreams(ordersStream()),
	)
	err := server.Run(ctx)

	var missing *jstransport.MissingStreamError
	asrt.True(errors.As(err, &missing))
	asrt.Equal(missing.Pattern, "payments.received")
}
