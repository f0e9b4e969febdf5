// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package webwx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/bureau-foundation/webwx/lib/clock"
	"github.com/bureau-foundation/webwx/lib/netutil"
)

// Executor sends one HTTP request. *transport.Transport implements it.
type Executor interface {
	Execute(ctx context.Context, request *http.Request) (*http.Response, error)
}

// Config holds the parameters for creating a Caller.
type Config struct {
	// Transport sends requests. Required.
	Transport Executor

	// Mode selects the client the login calls present as.
	Mode Mode

	// Endpoints overrides the pre-login URLs. Empty fields take the
	// production defaults.
	Endpoints Endpoints

	// Desktop overrides the ModeDesktop headers. Empty fields take
	// DefaultDesktopIdentity.
	Desktop DesktopIdentity

	// Clock supplies the timestamps embedded in queries. Defaults to
	// the real clock.
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Caller issues protocol calls. Safe for concurrent use.
type Caller struct {
	transport Executor
	mode      Mode
	endpoints Endpoints
	desktop   DesktopIdentity
	clock     clock.Clock
	logger    *slog.Logger

	mu     sync.RWMutex
	domain Domain
}

// New creates a Caller.
func New(config Config) (*Caller, error) {
	if config.Transport == nil {
		return nil, fmt.Errorf("webwx: Transport is required")
	}
	if config.Mode != ModeNormal && config.Mode != ModeDesktop {
		return nil, fmt.Errorf("webwx: invalid mode %v", config.Mode)
	}
	desktop := DefaultDesktopIdentity()
	if config.Desktop.ClientVersion != "" {
		desktop.ClientVersion = config.Desktop.ClientVersion
	}
	if config.Desktop.ExtSpam != "" {
		desktop.ExtSpam = config.Desktop.ExtSpam
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Caller{
		transport: config.Transport,
		mode:      config.Mode,
		endpoints: config.Endpoints.withDefaults(),
		desktop:   desktop,
		clock:     clk,
		logger:    logger,
	}, nil
}

// Mode returns the configured mode.
func (c *Caller) Mode() Mode { return c.mode }

// Domain returns the current service domain, or "" before the
// credential exchange or a snapshot restore.
func (c *Caller) Domain() Domain {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.domain
}

// SetDomain replaces the service domain. Used to restore a snapshot.
func (c *Caller) SetDomain(domain Domain) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.domain = domain
}

// QRCodeURL returns the URL of the QR code image for uuid.
func (c *Caller) QRCodeURL(uuid string) string {
	return c.endpoints.QRCode + uuid
}

func (c *Caller) baseHost() (string, error) {
	domain := c.Domain()
	if domain == "" {
		return "", ErrNoDomain
	}
	return domain.BaseHost(), nil
}

// response is a fully read HTTP response.
type response struct {
	status int
	header http.Header
	body   []byte
}

// do sends one request and reads the whole body. payload, when non-nil,
// is encoded as the JSON request body.
func (c *Caller) do(ctx context.Context, operation, method, endpoint string, query url.Values, header http.Header, payload any) (*response, error) {
	requestURL := endpoint
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("webwx: %s: encoding request body: %w", operation, err)
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("webwx: %s: creating request: %w", operation, err)
	}
	for key, values := range header {
		for _, value := range values {
			request.Header.Add(key, value)
		}
	}
	if payload != nil {
		request.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	httpResponse, err := c.transport.Execute(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("webwx: %s: %w", operation, err)
	}
	defer netutil.DrainAndClose(httpResponse.Body)

	responseBody, err := netutil.ReadResponse(httpResponse.Body)
	if err != nil {
		return nil, fmt.Errorf("webwx: %s: reading response body: %w", operation, err)
	}
	c.logger.Debug("protocol call",
		"operation", operation,
		"status", httpResponse.StatusCode,
		"bytes", len(responseBody),
	)
	return &response{
		status: httpResponse.StatusCode,
		header: httpResponse.Header,
		body:   responseBody,
	}, nil
}

// doOK is do for calls that must answer 2xx.
func (c *Caller) doOK(ctx context.Context, operation, method, endpoint string, query url.Values, header http.Header, payload any) ([]byte, error) {
	result, err := c.do(ctx, operation, method, endpoint, query, header, payload)
	if err != nil {
		return nil, err
	}
	if result.status < 200 || result.status >= 300 {
		return nil, fmt.Errorf("webwx: %s: unexpected HTTP status %d", operation, result.status)
	}
	return result.body, nil
}

// postJSON sends payload and decodes the JSON answer into out, which
// must embed a BaseResponse reachable through envelope.
func (c *Caller) postJSON(ctx context.Context, operation, endpoint string, query url.Values, payload, out any, envelope func() BaseResponse) error {
	body, err := c.doOK(ctx, operation, http.MethodPost, endpoint, query, nil, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &ParseError{Operation: operation, Body: string(body), Err: err}
	}
	return envelope().Err(operation)
}
