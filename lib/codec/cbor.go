// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Digest is a BLAKE3-256 hash of a deterministic encoding.
type Digest [32]byte

// String returns the hex encoding of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether the digest is unset.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Fingerprint returns the BLAKE3 digest of v's deterministic CBOR
// encoding.
func Fingerprint(v any) (Digest, error) {
	data, err := Marshal(v)
	if err != nil {
		return Digest{}, fmt.Errorf("codec: encoding value for fingerprint: %w", err)
	}
	return Digest(blake3.Sum256(data)), nil
}
