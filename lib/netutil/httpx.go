// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides bounded HTTP response reading.
//
// The protocol endpoints answer with small script fragments, XML
// documents, and JSON envelopes. None of them legitimately approach
// MaxResponseSize; the bound only keeps a misbehaving server from
// exhausting memory.
package netutil

import "io"

// MaxResponseSize bounds every response body read: 64 MB.
const MaxResponseSize int64 = 64 << 20

// ReadResponse reads a response body up to MaxResponseSize bytes. Use
// instead of io.ReadAll on HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DrainAndClose discards what is left of body (bounded) and closes it
// so the underlying connection can be reused.
func DrainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, MaxResponseSize))
	_ = body.Close()
}
