package jstransport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type hello struct {
	Hello string `json:"hello"`
}

type goodbye struct {
	Goodbye string `json:"goodbye"`
}

func TestRequestReply(t *testing.T) {
	asrt := is.New(t)

	var got hello
	reg := Registration{
		Pattern: "greet",
		Handler: Handle(func(_ context.Context, h hello, _ *Context) (interface{}, error) {
			got = h
			return goodbye{Goodbye: "world"}, nil
		}),
	}
	msg := newReplier("greet", []byte(`{"hello":"world"}`))

	NewServer(NewRouter()).handleMessage(reg, msg)

	asrt.Equal(got.Hello, "world")
	asrt.Equal(string(<-msg.responses), `{"response":{"goodbye":"world"},"isDisposed":true}`)
}

func TestRequestReplyLastValue(t *testing.T) {
	asrt := is.New(t)

	reg := Registration{
		Pattern: "count",
		Handler: Handle(func(context.Context, interface{}, *Context) (interface{}, error) {
			ch := make(chan interface{}, 3)
			ch <- 1
			ch <- 2
			ch <- 3
			close(ch)
			return (<-chan interface{})(ch), nil
		}),
	}
	msg := newReplier("count", []byte(`null`))

	NewServer(NewRouter()).handleMessage(reg, msg)

	asrt.Equal(string(<-msg.responses), `{"response":3,"isDisposed":true}`)
}

func TestRequestReplyBidirectionalChannel(t *testing.T) {
	asrt := is.New(t)

	reg := Registration{
		Pattern: "count",
		Handler: Handle(func(context.Context, interface{}, *Context) (interface{}, error) {
			ch := make(chan interface{}, 2)
			ch <- "first"
			ch <- "last"
			close(ch)
			return ch, nil
		}),
	}
	msg := newReplier("count", []byte(`null`))

	NewServer(NewRouter()).handleMessage(reg, msg)

	asrt.Equal(string(<-msg.responses), `{"response":"last","isDisposed":true}`)
}

func TestRequestNoReplyOnError(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		handler HandlerFunc[hello]
		reply   string
		wantErr error
	}{
		{
			name: "handler error",
			data: `{"hello":"world"}`,
			handler: func(context.Context, hello, *Context) (interface{}, error) {
				return nil, errors.New("boom")
			},
			reply: "_INBOX.test",
		},
		{
			name: "decode error",
			data: `{`,
			handler: func(context.Context, hello, *Context) (interface{}, error) {
				return nil, nil
			},
			reply:   "_INBOX.test",
			wantErr: ErrDecode,
		},
		{
			name: "no reply subject",
			data: `{"hello":"world"}`,
			handler: func(context.Context, hello, *Context) (interface{}, error) {
				return goodbye{}, nil
			},
			wantErr: ErrNoReplySubject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asrt := is.New(t)

			reg := Registration{Pattern: "greet", Handler: Handle(tt.handler)}
			msg := newReplier("greet", []byte(tt.data))
			msg.reply = tt.reply

			err := NewServer(NewRouter()).respond(reg, msg)
			asrt.True(err != nil)
			if tt.wantErr != nil {
				asrt.True(errors.Is(err, tt.wantErr))
			}

			select {
			case <-msg.responses:
				t.Fatal("unexpected reply")
			case <-time.After(10 * time.Millisecond):
			}
		})
	}
}

func TestRequestMetadata(t *testing.T) {
	asrt := is.New(t)

	var id string
	reg := Registration{
		Pattern: "greet",
		Handler: Handle(func(ctx context.Context, _ hello, msg *Context) (interface{}, error) {
			id = RequestID(ctx)
			return msg.Headers().Get("X-Request-Id"), nil
		}),
	}
	msg := newReplier("greet", []byte(`{}`))
	msg.header = map[string][]string{"X-Request-Id": {"abc"}}

	s := NewServer(NewRouter(), WithUnaryInterceptor(RequestContext()))
	s.handleMessage(reg, msg)

	asrt.Equal(id, "abc")
	asrt.Equal(string(<-msg.responses), `{"response":"abc","isDisposed":true}`)
}

func TestRequestReplyHeader(t *testing.T) {
	asrt := is.New(t)

	reg := Registration{
		Pattern: "greet",
		Handler: Handle(func(ctx context.Context, _ hello, _ *Context) (interface{}, error) {
			if err := grpc.SetHeader(ctx, metadata.Pairs("served-by", "worker-1")); err != nil {
				return nil, err
			}
			if err := grpc.SetTrailer(ctx, metadata.Pairs("cost", "3")); err != nil {
				return nil, err
			}
			return goodbye{Goodbye: "world"}, nil
		}),
	}
	msg := newReplier("greet", []byte(`{}`))

	NewServer(NewRouter()).handleMessage(reg, msg)

	<-msg.responses
	asrt.Equal(msg.replyHeader.Get("served-by"), "worker-1")
	asrt.Equal(msg.replyHeader.Get("cost"), "3")
}

func TestRequestReplyWithoutHeader(t *testing.T) {
	asrt := is.New(t)

	reg := Registration{
		Pattern: "greet",
		Handler: Handle(func(context.Context, hello, *Context) (interface{}, error) {
			return nil, nil
		}),
	}
	msg := newReplier("greet", []byte(`{}`))

	NewServer(NewRouter()).handleMessage(reg, msg)

	asrt.Equal(string(<-msg.responses), `{"response":null,"isDisposed":true}`)
	asrt.Equal(len(msg.replyHeader), 0)
}
