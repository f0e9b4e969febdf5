// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"

	"github.com/bureau-foundation/webwx/transport"
	"github.com/bureau-foundation/webwx/webwx"
)

// ErrNoSnapshot is returned by Fetch when nothing has been stored.
var ErrNoSnapshot = errors.New("session: no snapshot stored")

// Snapshot is the persisted form of a session.
type Snapshot struct {
	// Cookies is the transport jar, including expired and session-only
	// cookies.
	Cookies transport.CookieJar `json:"cookies"`

	BaseRequest *webwx.BaseRequest `json:"base_request,omitempty"`
	LoginInfo   *webwx.LoginInfo   `json:"login_info,omitempty"`
	Domain      webwx.Domain       `json:"wechat_domain,omitempty"`
	UUID        string             `json:"uuid,omitempty"`
}

// HasCredentials reports whether the snapshot carries enough to try
// resuming the session without a new QR login.
func (s *Snapshot) HasCredentials() bool {
	return s.BaseRequest != nil && s.LoginInfo != nil && s.Domain != ""
}

// Store reads and writes the durable snapshot.
type Store interface {
	// Fetch returns the stored snapshot, or ErrNoSnapshot.
	Fetch() (*Snapshot, error)

	// Dump replaces the stored snapshot.
	Dump(snapshot *Snapshot) error
}
