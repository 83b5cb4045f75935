package pubsub

// Header carries message headers. It mirrors the NATS header layout
// (canonical keys, multiple values per key).
type Header map[string][]string

// Get returns the first value for key.
func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	if v := h[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Message defines an outbound pubsub message.
type Message struct {
	Subject string
	Reply   string
	Header  Header
	Data    []byte
}

// Reply defines the answer to a request.
type Reply struct {
	Header Header
	Data   []byte
}

// Msg is a received message.
type Msg interface {
	Subject() string
	Data() []byte
	Header() Header
}

// Replier is a message received on a request/reply subscription.
type Replier interface {
	Msg

	// ReplySubject is empty if the sender does not wait for an answer.
	ReplySubject() string
	Reply(reply Reply) error
}

// AckMsg is a durable message delivered by a stream consumer. Exactly one of
// Ack, Nak or Term has to be called per delivery.
type AckMsg interface {
	Msg

	Ack() error
	Nak() error
	Term() error
	// InProgress resets the redelivery timer of the consumer.
	InProgress() error
}
