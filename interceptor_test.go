package jstransport

import (
	"bytes"
	"context"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/matryer/is"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func TestChainUnaryInterceptors(t *testing.T) {
	asrt := is.New(t)

	var order []string
	tracer := func(name string) grpc.UnaryServerInterceptor {
		return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
			order = append(order, name+":"+info.FullMethod)
			resp, err := handler(ctx, req)
			order = append(order, name+":done")
			return resp, err
		}
	}

	reg := Registration{
		Pattern: "greet",
		Handler: Handle(func(context.Context, hello, *Context) (interface{}, error) {
			order = append(order, "handler")
			return nil, nil
		}),
	}
	s := NewServer(NewRouter(), WithUnaryInterceptor(tracer("a"), tracer("b")), WithUnaryInterceptor(tracer("c")))

	_, err := s.invoke(context.Background(), reg, hello{}, newContext(&fakeMsg{}))
	asrt.NoErr(err)
	asrt.Equal(order, []string{"a:greet", "b:greet", "c:greet", "handler", "c:done", "b:done", "a:done"})
}

func TestRequestContextGeneratesID(t *testing.T) {
	asrt := is.New(t)

	var id string
	handler := func(ctx context.Context, _ interface{}) (interface{}, error) {
		id = RequestID(ctx)
		return nil, nil
	}

	_, err := RequestContext()(context.Background(), nil, &grpc.UnaryServerInfo{}, handler)
	asrt.NoErr(err)
	_, err = uuid.Parse(id)
	asrt.NoErr(err)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "given"))
	_, err = RequestContext()(ctx, nil, &grpc.UnaryServerInfo{}, handler)
	asrt.NoErr(err)
	asrt.Equal(id, "given")
}

func TestInvokeMetadata(t *testing.T) {
	asrt := is.New(t)

	var md metadata.MD
	reg := Registration{
		Pattern: "greet",
		Handler: Handle(func(ctx context.Context, _ hello, _ *Context) (interface{}, error) {
			md, _ = metadata.FromIncomingContext(ctx)
			return nil, nil
		}),
	}
	msg := &fakeMsg{header: map[string][]string{"Tenant": {"acme"}}}

	_, err := NewServer(NewRouter()).invoke(context.Background(), reg, hello{}, newContext(msg))
	asrt.NoErr(err)
	asrt.Equal(md.Get("tenant"), []string{"acme"})
}

func TestZapLogger(t *testing.T) {
	asrt := is.New(t)

	core, logs := observer.New(VerboseLevel)
	zl := NewZapLogger(zap.New(core))

	zl.Verbosef("(%s): %s", "update", "{}")
	zl.Debug("debug")
	zl.Info("info")
	zl.Warnf("warn %d", 1)
	zl.Error("error")

	entries := logs.AllUntimed()
	asrt.Equal(len(entries), 5)
	asrt.Equal(entries[0].Level, VerboseLevel)
	asrt.Equal(entries[0].Message, "(update): {}")
	asrt.Equal(entries[1].Level, zapcore.DebugLevel)
	asrt.Equal(entries[3].Message, "warn 1")
	asrt.Equal(entries[4].Level, zapcore.ErrorLevel)

	core, logs = observer.New(zapcore.DebugLevel)
	NewZapLogger(zap.New(core)).Verbose("hidden")
	asrt.Equal(logs.Len(), 0)
}

func TestStandardLogger(t *testing.T) {
	asrt := is.New(t)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	StandardLogger{}.Warnf("ldm %s", "nats://a:4222")
	asrt.True(strings.Contains(buf.String(), "ldm nats://a:4222"))
}
