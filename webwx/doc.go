// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package webwx implements the individual calls of the web messaging
// login and sync protocol.
//
// A [Caller] issues one protocol call per method and returns typed
// results. It holds no session state beyond the service [Domain],
// which [Caller.GetLoginInfo] learns from the login redirect and every
// later call derives its host from. Callers supply credentials
// ([LoginInfo], [BaseRequest], [SyncKey]) explicitly on each call; the
// bot package owns sequencing and persistence.
//
// The login flow is:
//
//	uuid    := GetLoginUUID          (QR code payload)
//	status  := CheckLogin(uuid)      (poll until StatusSuccess)
//	info    := GetLoginInfo(status.RedirectURI())
//	init    := WebInit(NewBaseRequest(info, deviceID))
//	           StatusNotify(..., init.User.UserName, info)
//
// after which SyncCheck and SyncMessage form the receive loop.
//
// Three response encodings appear: JavaScript assignments (uuid, login
// status, sync check), an XML document delivered with the login
// redirect, and JSON envelopes carrying a [BaseResponse]. A malformed
// body is a [*ParseError]; a well-formed body reporting a non-zero
// result code is a [*ProtocolError].
//
// [ModeDesktop] makes the login calls present as the desktop client,
// which the service accepts for accounts that the web client is
// refused for.
package webwx
