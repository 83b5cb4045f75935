// Command jsbridge runs a transport server with sample handlers. It serves
// Prometheus metrics if enabled in the configuration.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tehsphinx/jstransport"
	"github.com/tehsphinx/jstransport/config"
	"github.com/tehsphinx/jstransport/metrics"
	"go.uber.org/zap"
)

type greeting struct {
	Hello string `json:"hello"`
}

type farewell struct {
	Goodbye string `json:"goodbye"`
}

type order struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
}

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := config.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if r := run(cfg, zl); r != nil {
		zl.Fatal("Server failed", zap.Error(r))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var collector jstransport.MetricsCollector
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		collector = metrics.NewPrometheus(reg, cfg.Metrics.Namespace)

		srv := serveMetrics(cfg.Metrics.Addr, reg, zl)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if len(cfg.Streams) == 0 {
		cfg.Streams = []jstransport.StreamConfig{{
			Name: "ORDERS",
			Configure: func(sc *jetstream.StreamConfig) {
				sc.Subjects = []string{"orders.>"}
			},
		}}
	}

	opts, err := cfg.Options(jstransport.NewZapLogger(zl), collector)
	if err != nil {
		return err
	}
	opts = append(opts, jstransport.WithUnaryInterceptor(jstransport.RequestContext()))

	server := jstransport.NewServer(router(zl), opts...)
	return server.Listen(ctx)
}

func router(zl *zap.Logger) *jstransport.Router {
	return jstransport.NewRouter().
		Message("greet", jstransport.Handle(func(ctx context.Context, g greeting, _ *jstransport.Context) (interface{}, error) {
			return farewell{Goodbye: g.Hello}, nil
		})).
		Event("orders.created", jstransport.Handle(func(ctx context.Context, o order, msg *jstransport.Context) (interface{}, error) {
			if o.ID == "" {
				return nil, errors.New("order without id")
			}
			if o.Amount <= 0 {
				return jstransport.Term, nil
			}

			zl.Info("Order created",
				zap.String("id", o.ID),
				zap.Float64("amount", o.Amount),
				zap.String("request_id", jstransport.RequestID(ctx)),
				zap.String("subject", msg.Subject()),
			)
			return nil, nil
		}))
}

func serveMetrics(addr string, reg *prometheus.Registry, zl *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintln(w, "ok")
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zl.Info("Serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("Metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
