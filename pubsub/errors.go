package pubsub

import "errors"

var (
	// ErrStreamNotFound is returned by StreamManager.StreamInfo for unknown streams.
	ErrStreamNotFound = errors.New("stream not found")
	// ErrNoMatchingStream is returned by JetStream.Subscribe if no stream
	// captures the subject.
	ErrNoMatchingStream = errors.New("no stream matches subject")
)
