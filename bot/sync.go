// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"errors"

	"github.com/bureau-foundation/webwx/webwx"
)

// SyncOnce runs one detection cycle and then pauses for the sync
// interval. A failed sync check ends the cycle without fetching
// messages.
func (b *Bot) SyncOnce(ctx context.Context) error {
	current := b.Session()
	if current == nil {
		return ErrMissingSession
	}

	check, err := b.caller.SyncCheck(ctx, current.BaseRequest.DeviceID, current.SyncKey, &current.LoginInfo)
	if err != nil {
		return err
	}
	b.handler.OnSyncCheck(check)

	if check.Selector != webwx.SelectorNormal {
		delta, err := b.caller.SyncMessage(ctx, current.BaseRequest, current.SyncKey, &current.LoginInfo)
		if err != nil {
			return err
		}
		b.replaceSyncKey(delta.SyncKey)
		b.logger.Debug("sync delta",
			"selector", check.Selector.String(),
			"messages", len(delta.AddMsgList),
			"sync_key", delta.SyncKey.String(),
		)
		for _, message := range delta.AddMsgList {
			b.handler.OnMessage(message)
		}
		if err := b.persist(); err != nil {
			b.logger.Warn("saving session failed", "error", err)
		}
	}

	return b.sleep(ctx, b.syncInterval)
}

// Run repeats SyncOnce until ctx ends, which returns nil, or a cycle
// fails, which returns its error.
func (b *Bot) Run(ctx context.Context) error {
	for {
		if err := b.SyncOnce(ctx); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				return nil
			}
			var protocolError *webwx.ProtocolError
			if errors.As(err, &protocolError) && protocolError.Code.LoggedOut() {
				b.logger.Warn("session logged out", "code", int(protocolError.Code), "reason", protocolError.Code.String())
			}
			return err
		}
	}
}

// replaceSyncKey installs the server's SyncKey as the session cursor.
func (b *Bot) replaceSyncKey(key webwx.SyncKey) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session != nil {
		b.session.SyncKey = key.Clone()
	}
}
