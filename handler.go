package jstransport

import (
	"context"
	"reflect"
	"sort"
	"sync"
)

// HandlerFunc handles one message with a decoded payload of type T.
//
// Event handlers may return Nack or Term to override the acknowledgment of a
// successfully handled message; any other result acknowledges it.
// Request handlers return the response.
// A result of type chan interface{} or <-chan interface{} is drained and its
// last value is used instead. The handler must close the channel.
type HandlerFunc[T any] func(ctx context.Context, payload T, msg *Context) (interface{}, error)

// Handler is a handler bound to a payload type. Create it with Handle.
type Handler interface {
	decode(codec Codec, data []byte) (interface{}, error)
	call(ctx context.Context, payload interface{}, msg *Context) (interface{}, error)
}

// Handle creates a handler decoding payloads into T before calling fn.
// T may be a pointer type (e.g. a protobuf message), which is allocated
// before decoding.
func Handle[T any](fn HandlerFunc[T]) Handler {
	return handler[T]{fn: fn}
}

type handler[T any] struct {
	fn HandlerFunc[T]
}

func (h handler[T]) decode(codec Codec, data []byte) (interface{}, error) {
	var payload T
	target := interface{}(&payload)
	if t := reflect.TypeOf(payload); t != nil && t.Kind() == reflect.Pointer {
		payload = reflect.New(t.Elem()).Interface().(T)
		target = payload
	}

	if r := codec.Decode(data, target); r != nil {
		return nil, r
	}
	return payload, nil
}

func (h handler[T]) call(ctx context.Context, payload interface{}, msg *Context) (interface{}, error) {
	p, _ := payload.(T)
	return h.fn(ctx, p, msg)
}

// Registration binds a subject pattern to a handler. Patterns follow the NATS
// wildcard rules (`*` one token, `>` one or more trailing tokens).
type Registration struct {
	Pattern string
	Handler Handler
	// Event selects a durable JetStream subscription. Otherwise the pattern
	// is subscribed for requests on the base connection.
	Event bool
}

// Registry provides the handlers a server binds.
type Registry interface {
	Registrations() []Registration
}

// Router is a Registry keyed by pattern.
type Router struct {
	m      sync.RWMutex
	routes map[string]Registration
}

var _ Registry = (*Router)(nil)

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{routes: make(map[string]Registration)}
}

// Event registers an event handler for pattern, replacing an earlier one.
func (r *Router) Event(pattern string, h Handler) *Router {
	return r.add(Registration{Pattern: pattern, Handler: h, Event: true})
}

// Message registers a request handler for pattern, replacing an earlier one.
func (r *Router) Message(pattern string, h Handler) *Router {
	return r.add(Registration{Pattern: pattern, Handler: h})
}

func (r *Router) add(reg Registration) *Router {
	r.m.Lock()
	defer r.m.Unlock()

	r.routes[reg.Pattern] = reg
	return r
}

// Registrations implements the Registry interface. The result is sorted by pattern.
func (r *Router) Registrations() []Registration {
	r.m.RLock()
	defer r.m.RUnlock()

	regs := make([]Registration, 0, len(r.routes))
	for _, reg := range r.routes {
		regs = append(regs, reg)
	}
	sort.Slice(regs, func(i, j int) bool {
		return regs[i].Pattern < regs[j].Pattern
	})
	return regs
}
