// Package codec provides encoding and decoding functionality for different data formats.
package codec

import (
	"encoding/json"

	"github.com/Suhaibinator/gazelle/pkg/common"
)

// JSONCodec is a codec that uses JSON for marshaling and unmarshaling.
// It implements the router.Codec interface for encoding responses and decoding requests.
type JSONCodec[T any, U any] struct {
	// DisallowEmptyBody makes Decode fail on an empty body instead of
	// returning the zero value of T.
	DisallowEmptyBody bool
}

// Decode decodes the request body into a value of type T.
func (c *JSONCodec[T, U]) Decode(req common.Request) (T, error) {
	var data T

	body := req.Body()
	if len(body) == 0 && !c.DisallowEmptyBody {
		return data, nil
	}

	// Unmarshal the JSON
	if err := json.Unmarshal(body, &data); err != nil {
		return data, err
	}
	return data, nil
}

// Encode encodes a value of type U into base.
// It marshals the value to JSON and sets the appropriate content type.
func (c *JSONCodec[T, U]) Encode(base common.Response, resp U) (common.Response, error) {
	// Marshal the response
	body, err := json.Marshal(resp)
	if err != nil {
		return base, err
	}

	return base.WithHeader("Content-Type", "application/json").WithBody(body), nil
}

// NewJSONCodec creates a new JSONCodec instance for the specified types.
// T represents the request type and U represents the response type.
func NewJSONCodec[T any, U any]() *JSONCodec[T, U] {
	return &JSONCodec[T, U]{}
}
