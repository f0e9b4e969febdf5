// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package webwx

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// GetLoginUUID requests a new login UUID, the payload of the QR code
// the user scans.
func (c *Caller) GetLoginUUID(ctx context.Context) (string, error) {
	const operation = "get login uuid"

	redirect, err := url.Parse(c.endpoints.NewLoginPage)
	if err != nil {
		return "", fmt.Errorf("webwx: %s: parsing login page url: %w", operation, err)
	}
	if c.mode == ModeDesktop {
		redirectQuery := redirect.Query()
		redirectQuery.Set("mod", ModeDesktop.String())
		redirect.RawQuery = redirectQuery.Encode()
	}

	query := url.Values{
		"redirect_uri": {redirect.String()},
		"appid":        {AppID},
		"fun":          {"new"},
		"lang":         {"zh_CN"},
		"_":            {strconv.FormatInt(c.clock.Now().UnixMilli(), 10)},
	}
	if c.mode == ModeDesktop {
		query.Set("mod", ModeDesktop.String())
	}

	body, err := c.doOK(ctx, operation, http.MethodGet, c.endpoints.JSLogin, query, nil, nil)
	if err != nil {
		return "", err
	}
	match := uuidPattern.FindSubmatch(body)
	if match == nil {
		return "", &ParseError{Operation: operation, Body: string(body), Err: errors.New("no uuid assignment")}
	}
	return string(match[1]), nil
}

// CheckLogin polls the scan status of uuid.
func (c *Caller) CheckLogin(ctx context.Context, uuid string) (*CheckLoginResponse, error) {
	const operation = "check login"

	now := c.clock.Now().UnixMilli()
	query := url.Values{
		"loginicon": {"true"},
		"uuid":      {uuid},
		"tip":       {"0"},
		"r":         {strconv.FormatInt(now/1579, 10)},
		"_":         {strconv.FormatInt(now, 10)},
	}

	body, err := c.doOK(ctx, operation, http.MethodGet, c.endpoints.Login, query, nil, nil)
	if err != nil {
		return nil, err
	}
	raw := string(body)
	match := statusCodePattern.FindStringSubmatch(raw)
	if match == nil {
		return nil, &ParseError{Operation: operation, Body: raw, Err: errors.New("no window.code assignment")}
	}
	code, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, &ParseError{Operation: operation, Body: raw, Err: err}
	}
	return &CheckLoginResponse{Status: StatusFromCode(code), Code: code, Raw: raw}, nil
}

// GetLoginInfo exchanges the redirect URI from a successful poll for
// session credentials. It sets the service domain from the URI's host.
//
// The exchange must answer 301 with the credentials as XML in the
// body; any other status returns ErrForbidden, whatever the body holds.
func (c *Caller) GetLoginInfo(ctx context.Context, redirectURI string) (*LoginInfo, error) {
	const operation = "get login info"

	domain, err := DomainFromURL(redirectURI)
	if err != nil {
		return nil, err
	}
	c.SetDomain(domain)

	var header http.Header
	if c.mode == ModeDesktop {
		header = http.Header{}
		header.Set("client-version", c.desktop.ClientVersion)
		header.Set("extspam", c.desktop.ExtSpam)
	}

	result, err := c.do(ctx, operation, http.MethodGet, redirectURI, nil, header, nil)
	if err != nil {
		return nil, err
	}
	if result.status != http.StatusMovedPermanently {
		c.logger.Debug("credential exchange refused",
			"status", result.status,
			"mode", c.mode.String(),
		)
		return nil, fmt.Errorf("%w (status %d)", ErrForbidden, result.status)
	}

	var info LoginInfo
	if err := xml.Unmarshal(result.body, &info); err != nil {
		return nil, &ParseError{Operation: operation, Body: string(result.body), Err: err}
	}
	if info.Ret != RetOK {
		return nil, &ProtocolError{Operation: operation, Code: info.Ret, Message: info.Message}
	}
	return &info, nil
}
