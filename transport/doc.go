// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport executes HTTP requests against the web messaging
// endpoints and keeps the session's cookies.
//
// [Transport.Execute] runs every outbound call: it applies the
// configured [Hook] chain, attaches the cookies the jar holds for the
// request URL, and issues the request up to [MaxAttempts] times on
// transport-level failure. Each attempt sends a fresh clone of the
// request, so request bodies must be replayable (http.NewRequest sets
// GetBody for the common body types). HTTP error statuses are returned
// to the caller untouched and never retried. Redirects are not
// followed: the credential exchange depends on seeing the 301 itself.
//
// Cookies from each successful response are stored in a [CookieJar]
// keyed by "scheme://host/path" of the request URL. A later response
// for the same key replaces the whole entry. Expired and session-only
// cookies are kept in the jar so that a persisted snapshot restores
// exactly what was received; expired cookies are never sent.
//
// The jar serializes to a map from key to the JSON text of one
// [CookieCollection], which is the layout of the "cookies" field in a
// hot-reload snapshot.
package transport
