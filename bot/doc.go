// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bot drives a single account through login and the sync loop.
//
// [Bot.HotLogin] resumes the session saved in a [session.Store] and
// falls back to a QR login when the snapshot is missing, unreadable, or
// rejected by the server. [Bot.Login] always starts a new QR login:
//
//	GetLoginUUID -> Handler.OnUUID
//	CheckLogin   -> wait / scanned (Handler.OnScan) ... success
//	GetLoginInfo -> snapshot Dump -> WebInit -> StatusNotify
//	             -> Handler.OnLogin
//
// Polls for a pending login are separated by Config.LoginPollInterval.
//
// Once logged in, [Bot.SyncOnce] runs one detection cycle: a sync check
// long-poll and, when it reports changes, a sync message fetch whose
// SyncKey replaces the session's. [Bot.Run] repeats SyncOnce until the
// context ends or a cycle fails. Every cycle ends with a pause of
// Config.SyncInterval.
//
// All waiting goes through the configured clock, so tests drive the
// bot with a fake clock instead of sleeping.
package bot
