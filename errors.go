package jstransport

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned by client calls before Connect.
	ErrNotConnected = errors.New("jstransport: not connected")
	// ErrAlreadyRunning is returned by Run if the server holds a connection.
	ErrAlreadyRunning = errors.New("jstransport: server already running")
	// ErrUnsupportedValue is returned by codecs for values they cannot handle.
	ErrUnsupportedValue = errors.New("jstransport: unsupported value")
	// ErrDecode wraps payload decoding failures.
	ErrDecode = errors.New("jstransport: failed to decode payload")
	// ErrNoReplySubject is reported for messages of request handlers that
	// carry no reply subject.
	ErrNoReplySubject = errors.New("jstransport: message has no reply subject")
)

// MissingStreamError is returned by Run if no stream captures an event pattern.
type MissingStreamError struct {
	Pattern string
	Err     error
}

// Error implements the error interface.
func (e *MissingStreamError) Error() string {
	return fmt.Sprintf("cannot find stream with the %s event pattern", e.Pattern)
}

// Unwrap returns the broker error.
func (e *MissingStreamError) Unwrap() error {
	return e.Err
}

// RemoteError is returned by Client.Send if the server replied with an error.
type RemoteError struct {
	// Err is the decoded err field of the reply.
	Err interface{}
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	switch v := e.Err.(type) {
	case string:
		return "remote error: " + v
	case map[string]interface{}:
		if msg, ok := v["message"].(string); ok {
			return "remote error: " + msg
		}
	}

	b, err := json.Marshal(e.Err)
	if err != nil {
		return fmt.Sprintf("remote error: %v", e.Err)
	}
	return "remote error: " + string(b)
}
