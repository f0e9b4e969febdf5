// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package webwx

import (
	"fmt"
	"strings"
)

// Mode selects which client the login calls present as.
type Mode int

const (
	// ModeNormal is the browser web client.
	ModeNormal Mode = iota

	// ModeDesktop is the desktop client. It adds "mod=desktop" to the
	// login URLs and device headers to the credential exchange.
	ModeDesktop
)

// String returns "normal" or "desktop".
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeDesktop:
		return "desktop"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses the String form of a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return ModeNormal, nil
	case "desktop":
		return ModeDesktop, nil
	default:
		return 0, fmt.Errorf("webwx: unknown mode %q (want normal or desktop)", s)
	}
}
