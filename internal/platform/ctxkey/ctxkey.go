// Copyright (c) 2026 Vizion. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxkey holds the context keys read by the transport. The key type
// is unexported so no other package can collide with them.
package ctxkey

type key string

const (
	// KeyRequestID carries the X-Request-ID sent with every API call.
	KeyRequestID key = "request_id"

	// KeyLogger carries the logger of one command.
	KeyLogger key = "logger"
)
