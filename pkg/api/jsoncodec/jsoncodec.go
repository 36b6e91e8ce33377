// Package jsoncodec provides a connect.Codec backed by encoding/json, so the
// Connect handlers can serve the plain structs in pkg/api without protobuf
// code generation.
package jsoncodec

import "encoding/json"

// Codec implements connect.Codec over encoding/json. Registering it under
// the name "json" replaces Connect's default protobuf-backed JSON codec for
// the handlers and clients it is applied to.
type Codec struct{}

// New returns the codec.
func New() Codec { return Codec{} }

// Name returns the codec name, which doubles as the content-type suffix
// (application/json).
func (Codec) Name() string { return "json" }

// Marshal encodes a message.
func (Codec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

// Unmarshal decodes a message.
func (Codec) Unmarshal(data []byte, message any) error {
	return json.Unmarshal(data, message)
}
