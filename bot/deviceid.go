// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"math/rand/v2"
	"strings"
)

// NewDeviceID returns a device id in the web client's format: "e"
// followed by 15 random decimal digits.
func NewDeviceID() string {
	var builder strings.Builder
	builder.Grow(16)
	builder.WriteByte('e')
	for range 15 {
		builder.WriteByte(byte('0' + rand.IntN(10)))
	}
	return builder.String()
}
