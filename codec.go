package jstransport

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/protobuf/proto"
)

// Codec converts payloads from and to bytes. Decode(Encode(v)) must
// reproduce v for the values the codec supports.
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
}

var (
	_ Codec = JSONCodec{}
	_ Codec = StringCodec{}
	_ Codec = ProtoCodec{}
)

// CodecByName returns the codec registered under name: "json", "string" or "proto".
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSONCodec{}, nil
	case "string":
		return StringCodec{}, nil
	case "proto", "protobuf":
		return ProtoCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// JSONCodec encodes payloads as JSON.
type JSONCodec struct{}

// Encode implements the Codec interface.
func (JSONCodec) Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Decode implements the Codec interface.
func (JSONCodec) Decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// StringCodec passes text payloads through unchanged.
// It encodes strings, byte slices and fmt.Stringer values and decodes into
// *string, *[]byte or *interface{}.
type StringCodec struct{}

// Encode implements the Codec interface.
func (StringCodec) Encode(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return []byte(val), nil
	case []byte:
		return val, nil
	case fmt.Stringer:
		return []byte(val.String()), nil
	default:
		return nil, fmt.Errorf("%w: string codec cannot encode %T", ErrUnsupportedValue, v)
	}
}

// Decode implements the Codec interface.
func (StringCodec) Decode(data []byte, v interface{}) error {
	switch target := v.(type) {
	case *string:
		*target = string(data)
	case *[]byte:
		*target = append((*target)[:0], data...)
	case *interface{}:
		*target = string(data)
	default:
		return fmt.Errorf("%w: string codec cannot decode into %T", ErrUnsupportedValue, v)
	}
	return nil
}

// ProtoCodec encodes protobuf messages in their binary wire format.
// Only proto.Message values are supported, so replies to requests, which
// are wrapped in a packet, cannot be encoded with it.
type ProtoCodec struct{}

// Encode implements the Codec interface.
func (ProtoCodec) Encode(v interface{}) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("%w: proto codec cannot encode %T", ErrUnsupportedValue, v)
	}
	return proto.Marshal(msg)
}

// Decode implements the Codec interface.
func (ProtoCodec) Decode(data []byte, v interface{}) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("%w: proto codec cannot decode into %T", ErrUnsupportedValue, v)
	}
	return proto.Unmarshal(data, msg)
}
