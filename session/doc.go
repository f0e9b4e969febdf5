// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session holds the state of an authenticated login and
// persists it for hot reload.
//
// [Authenticated] is the in-memory session: credentials, signing
// tuple, the WebInit payload, and the current SyncKey. It only exists
// once login has completed, so holders use a nil *Authenticated to
// mean "not logged in" instead of checking individual fields.
//
// [Snapshot] is the durable form: the transport's cookie jar plus the
// credentials, service domain and login UUID. It is one JSON document:
//
//	{
//	  "cookies": {"https://wx.qq.com/cgi-bin/...": "<collection JSON>", ...},
//	  "base_request": {"Uin": 1001, "Sid": "...", "Skey": "...", "DeviceID": "e..."},
//	  "login_info": {"ret": 0, "wxuin": 1001, ...},
//	  "wechat_domain": "wx2.qq.com",
//	  "uuid": "gYmgd1grLg=="
//	}
//
// A [Store] reads and writes snapshots. [FileStore] keeps one open,
// exclusively locked file for the life of the process and rewrites it
// in full on each Dump, optionally encrypted with a passphrase.
// [MemoryStore] keeps the document in memory.
package session
