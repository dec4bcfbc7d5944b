package codec

import (
	"errors"

	"github.com/Suhaibinator/gazelle/pkg/common"
	"google.golang.org/protobuf/proto"
)

// ErrNilMessage is returned when a ProtoCodec is asked to encode a nil message.
var ErrNilMessage = errors.New("codec: nil proto message")

// Indirection for tests.
var (
	protoMarshal   = proto.Marshal
	protoUnmarshal = proto.Unmarshal
)

// ProtoCodec is a codec that uses Protocol Buffers for marshaling and unmarshaling.
// T and U must be proto.Message types, typically pointers to generated structs.
// It implements the router.Codec interface for encoding responses and decoding requests.
type ProtoCodec[T proto.Message, U proto.Message] struct {
	// newRequest creates an empty T to unmarshal into; a nil *T zero value
	// can't be unmarshaled into directly.
	newRequest func() T
}

// Decode decodes the request body into a new T.
func (c *ProtoCodec[T, U]) Decode(req common.Request) (T, error) {
	msg := c.newRequest()
	if err := protoUnmarshal(req.Body(), msg); err != nil {
		var zero T
		return zero, err
	}
	return msg, nil
}

// Encode marshals resp into base and sets the protobuf content type.
func (c *ProtoCodec[T, U]) Encode(base common.Response, resp U) (common.Response, error) {
	if !resp.ProtoReflect().IsValid() {
		return base, ErrNilMessage
	}

	body, err := protoMarshal(resp)
	if err != nil {
		return base, err
	}

	return base.WithHeader("Content-Type", "application/x-protobuf").WithBody(body), nil
}

// NewProtoCodec creates a new ProtoCodec. newRequest must return a fresh,
// non-nil T for every call, e.g. func() *pb.User { return &pb.User{} }.
func NewProtoCodec[T proto.Message, U proto.Message](newRequest func() T) *ProtoCodec[T, U] {
	return &ProtoCodec[T, U]{newRequest: newRequest}
}
