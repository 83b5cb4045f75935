// Package natstest runs an in-process NATS server with JetStream for tests.
package natstest

import (
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
)

// NewServer starts a JetStream enabled server on a random port. The server is
// shut down when the test completes.
func NewServer(t testing.TB) *server.Server {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
		NoLog:     true,
		NoSigs:    true,
	}
	ns, err := server.NewServer(opts)
	if err != nil {
		t.Fatalf("failed to create nats server: %v", err)
	}

	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		ns.Shutdown()
		t.Fatal("nats server not ready")
	}

	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return ns
}

// NewConn starts a server and returns a connection to it. The connection is
// closed when the test completes.
func NewConn(t testing.TB) (*server.Server, *nats.Conn) {
	t.Helper()

	ns := NewServer(t)
	nc, err := nats.Connect(ns.ClientURL())
	if err != nil {
		t.Fatalf("failed to connect to nats server: %v", err)
	}
	if r := nc.Flush(); r != nil {
		t.Fatalf("failed to reach nats server: %v", r)
	}

	t.Cleanup(nc.Close)
	return ns, nc
}
