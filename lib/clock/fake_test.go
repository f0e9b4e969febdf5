// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeNowStandsStill(t *testing.T) {
	fake := Fake(epoch)
	if !fake.Now().Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", fake.Now(), epoch)
	}
	fake.Advance(90 * time.Second)
	if want := epoch.Add(90 * time.Second); !fake.Now().Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", fake.Now(), want)
	}
}

func TestFakeAfter(t *testing.T) {
	t.Run("fires at deadline", func(t *testing.T) {
		fake := Fake(epoch)
		channel := fake.After(time.Second)

		fake.Advance(500 * time.Millisecond)
		select {
		case <-channel:
			t.Fatal("fired before deadline")
		default:
		}

		fake.Advance(500 * time.Millisecond)
		select {
		case fired := <-channel:
			if want := epoch.Add(time.Second); !fired.Equal(want) {
				t.Errorf("fired at %v, want %v", fired, want)
			}
		default:
			t.Fatal("did not fire at deadline")
		}
		if fake.PendingCount() != 0 {
			t.Errorf("PendingCount() = %d, want 0", fake.PendingCount())
		}
	})

	t.Run("non-positive duration is ready immediately", func(t *testing.T) {
		fake := Fake(epoch)
		select {
		case <-fake.After(0):
		default:
			t.Fatal("After(0) not ready")
		}
		if fake.PendingCount() != 0 {
			t.Errorf("After(0) registered a waiter")
		}
	})
}

func TestFakeSleep(t *testing.T) {
	fake := Fake(epoch)
	done := make(chan struct{})
	go func() {
		fake.Sleep(time.Second)
		close(done)
	}()

	fake.WaitForTimers(1)
	fake.Advance(time.Second)
	<-done
}
