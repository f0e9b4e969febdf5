// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/webwx/session"
	"github.com/bureau-foundation/webwx/webwx"
)

// HotLogin resumes the persisted session. When the store has no usable
// snapshot, or the server rejects the restored credentials, it falls
// back to Login. A resumed session does not repeat StatusNotify.
func (b *Bot) HotLogin(ctx context.Context) error {
	snapshot, err := b.store.Fetch()
	if err != nil {
		if errors.Is(err, session.ErrNoSnapshot) {
			b.logger.Info("no saved session, starting QR login")
		} else {
			b.logger.Warn("saved session unreadable, starting QR login", "error", err)
		}
		return b.Login(ctx)
	}

	b.restore(snapshot)
	if !snapshot.HasCredentials() {
		b.logger.Info("saved session has no credentials, starting QR login")
		return b.Login(ctx)
	}

	initResponse, err := b.caller.WebInit(ctx, *snapshot.BaseRequest)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.logger.Warn("saved session rejected, starting QR login", "error", err)
		return b.Login(ctx)
	}

	b.setSession(session.NewAuthenticated(snapshot.LoginInfo, *snapshot.BaseRequest, initResponse))
	b.logger.Info("session restored",
		"user", initResponse.User.UserName,
		"domain", string(b.caller.Domain()),
	)
	return nil
}

// restore loads the snapshot's cookies, domain, UUID, and device id
// into the bot and its caller. A saved device id replaces any preset
// one so the restored BaseRequest and DeviceID agree.
func (b *Bot) restore(snapshot *session.Snapshot) {
	if snapshot.Cookies != nil {
		b.cookies.SetCookies(snapshot.Cookies)
	}
	if snapshot.Domain != "" {
		b.caller.SetDomain(snapshot.Domain)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.uuid = snapshot.UUID
	if snapshot.BaseRequest != nil && snapshot.BaseRequest.DeviceID != "" {
		b.deviceID = snapshot.BaseRequest.DeviceID
	}
}

// Login runs a full QR login with a fresh UUID.
func (b *Bot) Login(ctx context.Context) error {
	uuid, err := b.caller.GetLoginUUID(ctx)
	if err != nil {
		return fmt.Errorf("bot: requesting login uuid: %w", err)
	}
	return b.LoginWithUUID(ctx, uuid)
}

// LoginWithUUID runs a QR login for an already issued UUID. It polls
// until the user confirms, the QR code expires (webwx.ErrLoginTimeout),
// or the server reports a status it does not recognize
// (*webwx.UnknownStatusError).
func (b *Bot) LoginWithUUID(ctx context.Context, uuid string) error {
	b.setUUID(uuid)
	b.handler.OnUUID(uuid)
	b.logger.Info("waiting for QR scan", "uuid", uuid)

	for {
		response, err := b.caller.CheckLogin(ctx, uuid)
		if err != nil {
			return fmt.Errorf("bot: polling login: %w", err)
		}

		switch response.Status {
		case webwx.StatusSuccess:
			redirectURI, err := response.RedirectURI()
			if err != nil {
				return err
			}
			if err := b.handleLogin(ctx, redirectURI); err != nil {
				return err
			}
			b.handler.OnLogin(response)
			return nil
		case webwx.StatusScanned:
			b.logger.Info("QR code scanned, waiting for confirmation")
			b.handler.OnScan(response)
		case webwx.StatusWait:
		case webwx.StatusTimeout:
			return webwx.ErrLoginTimeout
		default:
			return &webwx.UnknownStatusError{Code: response.Code}
		}

		if err := b.sleep(ctx, b.loginPollInterval); err != nil {
			return err
		}
	}
}

// handleLogin turns a confirmed login into an authenticated session.
// The snapshot is saved before WebInit so that credentials survive a
// crash during the remaining calls.
func (b *Bot) handleLogin(ctx context.Context, redirectURI string) error {
	info, err := b.caller.GetLoginInfo(ctx, redirectURI)
	if err != nil {
		return fmt.Errorf("bot: exchanging login ticket: %w", err)
	}
	base := webwx.NewBaseRequest(info, b.ensureDeviceID())

	snapshot := &session.Snapshot{
		Cookies:     b.cookies.Cookies(),
		BaseRequest: &base,
		LoginInfo:   info,
		Domain:      b.caller.Domain(),
		UUID:        b.UUID(),
	}
	if err := b.store.Dump(snapshot); err != nil {
		return fmt.Errorf("bot: saving session: %w", err)
	}

	initResponse, err := b.caller.WebInit(ctx, base)
	if err != nil {
		return fmt.Errorf("bot: initializing session: %w", err)
	}
	b.setSession(session.NewAuthenticated(info, base, initResponse))

	if _, err := b.caller.StatusNotify(ctx, base, initResponse.User.UserName, info); err != nil {
		return fmt.Errorf("bot: notifying status: %w", err)
	}

	b.logger.Info("logged in",
		"user", initResponse.User.UserName,
		"nickname", initResponse.User.NickName,
		"domain", string(b.caller.Domain()),
	)
	return nil
}
