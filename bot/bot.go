// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/webwx/lib/clock"
	"github.com/bureau-foundation/webwx/session"
	"github.com/bureau-foundation/webwx/transport"
	"github.com/bureau-foundation/webwx/webwx"
)

// ErrMissingSession is returned by SyncOnce before a login has
// completed.
var ErrMissingSession = errors.New("bot: no authenticated session")

// Default intervals.
const (
	DefaultLoginPollInterval = time.Second
	DefaultSyncInterval      = time.Second
)

// CookieJar is the part of the transport the bot persists.
// *transport.Transport implements it.
type CookieJar interface {
	Cookies() transport.CookieJar
	SetCookies(jar transport.CookieJar)
}

// Config holds the parameters for creating a Bot.
type Config struct {
	// Caller issues the protocol calls. Required.
	Caller *webwx.Caller

	// Cookies is the jar of the transport Caller uses. Required.
	Cookies CookieJar

	// Store persists the session for hot reload. Required.
	Store session.Store

	// Handler receives events. Nil ignores them.
	Handler Handler

	// Clock drives poll and sync pauses. Defaults to the real clock.
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// LoginPollInterval separates login status polls. Default: 1s
	LoginPollInterval time.Duration

	// SyncInterval is the pause at the end of each sync cycle.
	// Default: 1s
	SyncInterval time.Duration

	// DeviceID presets the device id for a fresh login. When empty, a
	// fresh login generates one. A hot reload always uses the id saved
	// with the session.
	DeviceID string
}

// Bot runs one account. Login and sync calls must not run
// concurrently with each other; accessors are safe from any goroutine.
type Bot struct {
	caller            *webwx.Caller
	cookies           CookieJar
	store             session.Store
	handler           Handler
	clock             clock.Clock
	logger            *slog.Logger
	loginPollInterval time.Duration
	syncInterval      time.Duration

	mu       sync.Mutex
	uuid     string
	deviceID string
	session  *session.Authenticated
}

// New creates a Bot.
func New(config Config) (*Bot, error) {
	if config.Caller == nil {
		return nil, fmt.Errorf("bot: Caller is required")
	}
	if config.Cookies == nil {
		return nil, fmt.Errorf("bot: Cookies is required")
	}
	if config.Store == nil {
		return nil, fmt.Errorf("bot: Store is required")
	}
	handler := config.Handler
	if handler == nil {
		handler = HandlerFuncs{}
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loginPollInterval := config.LoginPollInterval
	if loginPollInterval <= 0 {
		loginPollInterval = DefaultLoginPollInterval
	}
	syncInterval := config.SyncInterval
	if syncInterval <= 0 {
		syncInterval = DefaultSyncInterval
	}
	return &Bot{
		caller:            config.Caller,
		cookies:           config.Cookies,
		store:             config.Store,
		handler:           handler,
		clock:             clk,
		logger:            logger,
		loginPollInterval: loginPollInterval,
		syncInterval:      syncInterval,
		deviceID:          config.DeviceID,
	}, nil
}

// Session returns a copy of the authenticated session, or nil before
// login.
func (b *Bot) Session() *session.Authenticated {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return nil
	}
	return b.session.Clone()
}

// DeviceID returns the device id, or "" before one is assigned.
func (b *Bot) DeviceID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.deviceID
}

// UUID returns the login UUID of the current or restored session.
func (b *Bot) UUID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uuid
}

func (b *Bot) setSession(state *session.Authenticated) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session = state
}

func (b *Bot) setUUID(uuid string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uuid = uuid
}

// ensureDeviceID returns the device id, generating it on first use.
func (b *Bot) ensureDeviceID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deviceID == "" {
		b.deviceID = NewDeviceID()
	}
	return b.deviceID
}

// persist writes the current session to the store.
func (b *Bot) persist() error {
	b.mu.Lock()
	state := b.session
	uuid := b.uuid
	b.mu.Unlock()
	if state == nil {
		return ErrMissingSession
	}
	return b.store.Dump(state.Snapshot(b.cookies.Cookies(), b.caller.Domain(), uuid))
}

// sleep waits d on the bot's clock, returning early with the context's
// error if ctx ends first.
func (b *Bot) sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-b.clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
