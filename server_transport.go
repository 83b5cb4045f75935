package jstransport

import (
	"sync"

	"google.golang.org/grpc/metadata"
)

func newReplyTransport(pattern string) *replyTransport {
	return &replyTransport{
		pattern: pattern,
	}
}

// replyTransport collects the headers a request handler sets with
// grpc.SetHeader, grpc.SendHeader or grpc.SetTrailer. They are sent with the
// reply. Trailers are merged into the headers.
type replyTransport struct {
	pattern string

	m      sync.Mutex
	header metadata.MD
}

// Method implements grpc.ServerTransportStream interface.
func (s *replyTransport) Method() string {
	return s.pattern
}

// SetHeader implements grpc.ServerTransportStream interface.
func (s *replyTransport) SetHeader(md metadata.MD) error {
	s.m.Lock()
	defer s.m.Unlock()

	s.header = metadata.Join(s.header, md)
	return nil
}

// SendHeader implements grpc.ServerTransportStream interface.
// Headers are only sent with the reply.
func (s *replyTransport) SendHeader(md metadata.MD) error {
	return s.SetHeader(md)
}

// SetTrailer implements grpc.ServerTransportStream interface.
func (s *replyTransport) SetTrailer(md metadata.MD) error {
	return s.SetHeader(md)
}

func (s *replyTransport) headers() metadata.MD {
	s.m.Lock()
	defer s.m.Unlock()

	return s.header
}
