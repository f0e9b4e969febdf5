// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the engine's deterministic binary encoding.
//
// The wire protocol and the snapshot file are JSON. CBOR appears only
// where byte-for-byte reproducibility matters: Fingerprint encodes a
// value with Core Deterministic Encoding (RFC 8949 §4.2: sorted map
// keys, smallest integer encoding, no indefinite lengths) and hashes
// the result with BLAKE3, so equal values always produce equal
// digests regardless of map iteration order.
//
// Types carrying only `json` struct tags are handled as well:
// fxamacker/cbor falls back to `json` tags when `cbor` tags are absent.
package codec
