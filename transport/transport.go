// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bureau-foundation/webwx/lib/clock"
)

const (
	// MaxAttempts bounds the number of times one request is sent.
	MaxAttempts = 3

	// RequestTimeout applies to each attempt, including reading the
	// response body.
	RequestTimeout = 30 * time.Second
)

// ErrRequestClone is returned when a request carries a body that cannot
// be replayed for a retry. It is never retried itself.
var ErrRequestClone = errors.New("transport: request body cannot be cloned (GetBody is nil)")

// Config holds the parameters for creating a Transport.
type Config struct {
	// RoundTripper sends individual HTTP requests. Defaults to
	// http.DefaultTransport. Tests substitute httptest server clients
	// or in-process fakes.
	RoundTripper http.RoundTripper

	// Hooks run in order around every request.
	Hooks []Hook

	// Clock is the time source for cookie expiry. Defaults to the
	// real clock.
	Clock clock.Clock

	// Logger receives retry warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// Transport executes requests with bounded retry and owns the cookie
// jar. Safe for concurrent use.
type Transport struct {
	client *http.Client
	hooks  []Hook
	clock  clock.Clock
	logger *slog.Logger
	jar    *cookieStore
}

// New creates a Transport.
func New(config Config) *Transport {
	roundTripper := config.RoundTripper
	if roundTripper == nil {
		roundTripper = http.DefaultTransport
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hooks := make([]Hook, len(config.Hooks))
	copy(hooks, config.Hooks)

	return &Transport{
		client: &http.Client{
			Transport: roundTripper,
			Timeout:   RequestTimeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		hooks:  hooks,
		clock:  clk,
		logger: logger,
		jar:    newCookieStore(),
	}
}

// Execute sends request and returns the response. The caller must close
// the response body.
//
// Transport-level failures (connection refused, reset, timeout) are
// retried up to MaxAttempts total; when every attempt fails the last
// error is returned. A response with any status code counts as success.
// Cancelling ctx stops further attempts.
func (t *Transport) Execute(ctx context.Context, request *http.Request) (*http.Response, error) {
	prepared := request.Clone(ctx)
	for _, hook := range t.hooks {
		hook.BeforeRequest(prepared)
	}
	for _, cookie := range t.jar.matching(prepared.URL, t.clock.Now()) {
		prepared.AddCookie(cookie)
	}

	target := redactedURL(prepared)
	var lastErr error
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		attemptRequest, err := cloneForAttempt(ctx, prepared, attempt)
		if err != nil {
			return nil, err
		}

		response, err := t.client.Do(attemptRequest)
		if err == nil {
			return t.finish(attemptRequest, response)
		}

		lastErr = err
		t.logger.Warn("request attempt failed",
			"method", prepared.Method,
			"url", target,
			"attempt", attempt,
			"error", err,
		)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("transport: %s %s: %w", prepared.Method, target, lastErr)
}

func (t *Transport) finish(request *http.Request, response *http.Response) (*http.Response, error) {
	for _, hook := range t.hooks {
		if err := hook.AfterResponse(response); err != nil {
			response.Body.Close()
			return nil, fmt.Errorf("transport: response hook for %s: %w", redactedURL(request), err)
		}
	}
	t.jar.store(request.URL, response.Cookies(), t.clock.Now())
	return response, nil
}

// Cookies returns a deep copy of the jar.
func (t *Transport) Cookies() CookieJar {
	return t.jar.snapshot()
}

// SetCookies replaces the jar contents with a copy of jar.
func (t *Transport) SetCookies(jar CookieJar) {
	t.jar.replace(jar)
}

// AddCookies stores collection under key, replacing any existing entry.
func (t *Transport) AddCookies(key string, collection CookieCollection) {
	t.jar.put(key, collection)
}

// cloneForAttempt returns a copy of request with a fresh body. The
// first attempt may reuse the original body; later attempts need
// GetBody since the previous attempt consumed it.
func cloneForAttempt(ctx context.Context, request *http.Request, attempt int) (*http.Request, error) {
	clone := request.Clone(ctx)
	if request.Body == nil || request.Body == http.NoBody {
		return clone, nil
	}
	if request.GetBody == nil {
		return nil, ErrRequestClone
	}
	if attempt == 1 {
		return clone, nil
	}
	body, err := request.GetBody()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestClone, err)
	}
	clone.Body = body
	return clone, nil
}

// redactedURL drops the query string, which carries session keys and
// pass tickets.
func redactedURL(request *http.Request) string {
	return request.URL.Scheme + "://" + request.URL.Host + request.URL.Path
}
