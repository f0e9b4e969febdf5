// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

// recordingFataler captures Fatalf instead of stopping the test. Fatalf
// panics so the helper under test stops where testing.T would.
type recordingFataler struct {
	message string
}

func (r *recordingFataler) Helper() {}

func (r *recordingFataler) Fatalf(format string, args ...any) {
	r.message = fmt.Sprintf(format, args...)
	panic(r)
}

// capture runs call and returns the Fatalf message, or "" if none.
func capture(call func(Fataler)) (message string) {
	recorder := &recordingFataler{}
	defer func() {
		if recovered := recover(); recovered != nil {
			if recovered != recorder {
				panic(recovered)
			}
			message = recorder.message
		}
	}()
	call(recorder)
	return ""
}

func TestRequireReceive(t *testing.T) {
	t.Run("value", func(t *testing.T) {
		values := make(chan string, 1)
		values <- "gYmgd1grLg=="
		if got := RequireReceive(t, values, time.Second, "uuid"); got != "gYmgd1grLg==" {
			t.Errorf("RequireReceive = %q", got)
		}
	})

	t.Run("closed", func(t *testing.T) {
		values := make(chan string)
		close(values)
		message := capture(func(fataler Fataler) { RequireReceive(fataler, values, time.Second, "waiting for %s", "uuid") })
		if message != "channel closed without sending a value: waiting for uuid" {
			t.Errorf("message = %q", message)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		message := capture(func(fataler Fataler) { RequireReceive(fataler, make(chan string), time.Millisecond) })
		if message != "timed out after 1ms: (no message)" {
			t.Errorf("message = %q", message)
		}
	})
}

func TestRequireError(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		results := make(chan error, 1)
		results <- nil
		if message := capture(func(fataler Fataler) { RequireError(fataler, results, time.Second, "Login") }); message != "" {
			t.Errorf("unexpected failure: %q", message)
		}
	})

	t.Run("error", func(t *testing.T) {
		results := make(chan error, 1)
		results <- errors.New("login timed out")
		message := capture(func(fataler Fataler) { RequireError(fataler, results, time.Second, "Login") })
		if message != "Login: login timed out" {
			t.Errorf("message = %q", message)
		}
	})
}
