// Package apiconnect binds the settleup.v1 services to Connect handlers and
// clients. It mirrors the layout of protoc-gen-connect-go output so callers
// use it the same way, but the messages are plain structs from package api
// carried by api.Codec.
package apiconnect

import (
	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// Package is the namespace shared by every settleup service path.
const Package = "settleup.v1"

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
}
