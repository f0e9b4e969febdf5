// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"encoding/json"

	"github.com/bureau-foundation/webwx/webwx"
)

// Handler receives bot events. Methods are called synchronously from
// the goroutine running the bot; a slow handler delays the next poll.
type Handler interface {
	// OnUUID is called with each new login UUID. The QR code to show
	// the user encodes Caller.QRCodeURL(uuid).
	OnUUID(uuid string)

	// OnScan is called each time a poll reports the QR code scanned
	// but not yet confirmed.
	OnScan(response *webwx.CheckLoginResponse)

	// OnLogin is called once the session is established.
	OnLogin(response *webwx.CheckLoginResponse)

	// OnSyncCheck is called with every successful sync check.
	OnSyncCheck(response *webwx.SyncCheckResponse)

	// OnMessage is called with each added message, undecoded.
	OnMessage(message json.RawMessage)
}

// HandlerFuncs adapts functions to a Handler. Nil fields ignore the
// event.
type HandlerFuncs struct {
	UUID      func(uuid string)
	Scan      func(response *webwx.CheckLoginResponse)
	Login     func(response *webwx.CheckLoginResponse)
	SyncCheck func(response *webwx.SyncCheckResponse)
	Message   func(message json.RawMessage)
}

func (h HandlerFuncs) OnUUID(uuid string) {
	if h.UUID != nil {
		h.UUID(uuid)
	}
}

func (h HandlerFuncs) OnScan(response *webwx.CheckLoginResponse) {
	if h.Scan != nil {
		h.Scan(response)
	}
}

func (h HandlerFuncs) OnLogin(response *webwx.CheckLoginResponse) {
	if h.Login != nil {
		h.Login(response)
	}
}

func (h HandlerFuncs) OnSyncCheck(response *webwx.SyncCheckResponse) {
	if h.SyncCheck != nil {
		h.SyncCheck(response)
	}
}

func (h HandlerFuncs) OnMessage(message json.RawMessage) {
	if h.Message != nil {
		h.Message(message)
	}
}
