package rpc

import "encoding/json"

// jsonCodec marshals gRPC messages as JSON instead of protobuf wire format,
// so the RunCommand/WriteFile/ReadFile/SetEnv/SetCwd messages can be the
// plain Go structs in messages.go instead of protoc-generated types. Installed on both ends via grpc.ForceServerCodec
// and grpc.ForceCodec so no content-subtype negotiation is needed.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string { return "json" }
