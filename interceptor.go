package jstransport

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// chainUnaryInterceptors composes ints so that the first one is the outermost.
func chainUnaryInterceptors(ints []grpc.UnaryServerInterceptor) grpc.UnaryServerInterceptor {
	switch len(ints) {
	case 0:
		return nil
	case 1:
		return ints[0]
	}

	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		return ints[0](ctx, req, info, chainedHandler(ints, 0, info, handler))
	}
}

func chainedHandler(ints []grpc.UnaryServerInterceptor, curr int, info *grpc.UnaryServerInfo, final grpc.UnaryHandler) grpc.UnaryHandler {
	if curr == len(ints)-1 {
		return final
	}
	return func(ctx context.Context, req interface{}) (interface{}, error) {
		return ints[curr+1](ctx, req, info, chainedHandler(ints, curr+1, info, final))
	}
}

type requestIDKey struct{}

// RequestContext returns an interceptor storing a request id in the handler
// context. The id is taken from the X-Request-Id header or generated.
func RequestContext() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		var id string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(RequestIDHeader); len(v) != 0 {
				id = v[0]
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		return handler(WithRequestID(ctx, id), req)
	}
}

// WithRequestID stores id in ctx. The client forwards it as X-Request-Id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
