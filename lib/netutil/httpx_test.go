// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadResponse(t *testing.T) {
	t.Run("normal body", func(t *testing.T) {
		data, err := ReadResponse(strings.NewReader(`window.code=408;`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `window.code=408;` {
			t.Fatalf("got %q", data)
		}
	})

	t.Run("read error propagates", func(t *testing.T) {
		_, err := ReadResponse(failReader{})
		if err == nil {
			t.Fatal("expected error from failing reader")
		}
	})
}

func TestDrainAndClose(t *testing.T) {
	body := &trackingBody{Reader: strings.NewReader("leftover")}
	DrainAndClose(body)
	if !body.closed {
		t.Fatal("body not closed")
	}
	if remaining, _ := io.ReadAll(body.Reader); len(remaining) != 0 {
		t.Fatalf("body not drained, %d bytes left", len(remaining))
	}
}

type failReader struct{}

func (failReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}
