package llmclient

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec lets the gRPC transport carry plain JSON-tagged Go structs
// instead of generated protobuf messages. Registered under the
// "json" subtype; calls opt into it with grpc.CallContentSubtype("json").
//
// The teacher's pkg/agent/llm_grpc.go rides the same gRPC boundary using
// protoc-generated messages from its own proto/ package. That generated
// package isn't something this exercise can reproduce without invoking
// protoc, so the wire encoding here is JSON instead of protobuf binary —
// same transport (HTTP/2, streaming, deadlines, codes), same boundary
// shape, different payload codec.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "json"
}

func registerJSONCodec() {
	encoding.RegisterCodec(jsonCodec{})
}
