// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"github.com/bureau-foundation/webwx/transport"
	"github.com/bureau-foundation/webwx/webwx"
)

// Authenticated is a logged-in session ready for the sync loop.
type Authenticated struct {
	LoginInfo   webwx.LoginInfo
	BaseRequest webwx.BaseRequest
	Init        *webwx.WebInitResponse

	// SyncKey starts as Init.SyncKey and is replaced by each
	// SyncMessage response.
	SyncKey webwx.SyncKey
}

// NewAuthenticated assembles a session from the results of the login
// calls. The SyncKey is taken from initResponse.
func NewAuthenticated(info *webwx.LoginInfo, base webwx.BaseRequest, initResponse *webwx.WebInitResponse) *Authenticated {
	return &Authenticated{
		LoginInfo:   *info,
		BaseRequest: base,
		Init:        initResponse,
		SyncKey:     initResponse.SyncKey.Clone(),
	}
}

// Clone returns a copy whose SyncKey can be replaced independently.
// Init is shared; it is never modified after login.
func (a *Authenticated) Clone() *Authenticated {
	clone := *a
	clone.SyncKey = a.SyncKey.Clone()
	return &clone
}

// Snapshot returns the durable form of the session around jar.
func (a *Authenticated) Snapshot(jar transport.CookieJar, domain webwx.Domain, uuid string) *Snapshot {
	base := a.BaseRequest
	info := a.LoginInfo
	return &Snapshot{
		Cookies:     jar,
		BaseRequest: &base,
		LoginInfo:   &info,
		Domain:      domain,
		UUID:        uuid,
	}
}
