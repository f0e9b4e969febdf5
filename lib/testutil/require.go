// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// RequireReceive and RequireError wrap the select-with-timeout pattern
// so individual tests never call time.After themselves. They are the
// only place in the test suite that uses real wall-clock timeouts; all
// engine timing in tests goes through a fake clock.
package testutil

import (
	"fmt"
	"time"
)

// Fataler is the subset of testing.TB used by these helpers.
type Fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

// RequireReceive reads one value from ch within timeout, or fails the
// test.
//
//	uuid := testutil.RequireReceive(t, uuids, 5*time.Second, "waiting for uuid callback")
func RequireReceive[T any](t Fataler, ch <-chan T, timeout time.Duration, msgAndArgs ...any) T {
	t.Helper()
	select {
	case value, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed without sending a value: %s", formatMessage(msgAndArgs))
		}
		return value
	case <-time.After(timeout):
		t.Fatalf("timed out after %v: %s", timeout, formatMessage(msgAndArgs))
	}
	panic("unreachable")
}

// RequireError receives an error from ch within timeout and fails the
// test if it is non-nil. Use it to join goroutines that run engine
// calls against a fake clock.
func RequireError(t Fataler, ch <-chan error, timeout time.Duration, msgAndArgs ...any) {
	t.Helper()
	if err := RequireReceive(t, ch, timeout, msgAndArgs...); err != nil {
		t.Fatalf("%s: %v", formatMessage(msgAndArgs), err)
	}
}

func formatMessage(msgAndArgs []any) string {
	if len(msgAndArgs) == 0 {
		return "(no message)"
	}
	if format, ok := msgAndArgs[0].(string); ok {
		if len(msgAndArgs) == 1 {
			return format
		}
		return fmt.Sprintf(format, msgAndArgs[1:]...)
	}
	return fmt.Sprint(msgAndArgs...)
}
