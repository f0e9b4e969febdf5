// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Code that sleeps between polls or compares cookie expiry against the
// current time takes a Clock instead of calling the time package
// directly. Production code passes Real(); tests pass Fake() and move
// time forward explicitly with Advance:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go loop.Run(ctx)          // sleeps on fake.After(time.Second)
//	fake.WaitForTimers(1)     // block until the sleep is registered
//	fake.Advance(time.Second) // release it
//
// WaitForTimers closes the race between a goroutine registering a
// timer and the test advancing past it.
package clock
