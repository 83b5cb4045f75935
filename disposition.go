package jstransport

// Disposition is the terminal outcome of a durable message.
// An event handler returns Nack or Term as its result to override the
// default acknowledgment.
type Disposition int

const (
	// Ack removes the message from redelivery.
	Ack Disposition = iota
	// Nack makes the message eligible for redelivery. Backoff and delivery
	// limits are left to the consumer configuration.
	Nack
	// Term drops the message permanently.
	Term
)

// String implements fmt.Stringer.
func (d Disposition) String() string {
	switch d {
	case Ack:
		return "ack"
	case Nack:
		return "nak"
	case Term:
		return "term"
	default:
		return "unknown"
	}
}

// ErrorHandler decides the disposition of an event whose payload could not be
// decoded or whose handler returned an error or panicked.
type ErrorHandler func(err error, ctx *Context) Disposition

// TermOnError terminates failed events. Poison messages are dropped instead
// of being redelivered forever.
func TermOnError(error, *Context) Disposition {
	return Term
}

// NackOnError hands failed events back for redelivery.
func NackOnError(error, *Context) Disposition {
	return Nack
}
