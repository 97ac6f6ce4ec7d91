// Package api defines the request and response messages of the settleup.v1
// Connect services and the codec used to put them on the wire.
package api

import (
	"encoding/json"
	"fmt"
)

// CodecName is registered under the name Connect uses for
// "application/json", replacing the default protobuf JSON codec.
const CodecName = "json"

// Codec marshals plain Go message structs as JSON.
type Codec struct{}

// Name implements connect.Codec.
func (Codec) Name() string { return CodecName }

// Marshal implements connect.Codec.
func (Codec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", msg, err)
	}
	return data, nil
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero message.
func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}
