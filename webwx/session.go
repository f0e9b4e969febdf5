// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package webwx

import (
	"context"
	"net/url"
	"strconv"
)

// WebInit bootstraps the session: account profile, initial SyncKey and
// recent contacts. A non-zero result code is a *ProtocolError.
func (c *Caller) WebInit(ctx context.Context, base BaseRequest) (*WebInitResponse, error) {
	const operation = "web init"

	host, err := c.baseHost()
	if err != nil {
		return nil, err
	}
	query := url.Values{
		"_": {strconv.FormatInt(c.clock.Now().Unix(), 10)},
	}
	payload := map[string]any{"BaseRequest": base}

	var result WebInitResponse
	if err := c.postJSON(ctx, operation, host+PathWebInit, query, payload, &result, func() BaseResponse {
		return result.BaseResponse
	}); err != nil {
		return nil, err
	}
	return &result, nil
}

// StatusNotify marks the session online. userName is the account's own
// UserName from WebInit. Failure is reported in the response envelope,
// not the HTTP status.
func (c *Caller) StatusNotify(ctx context.Context, base BaseRequest, userName string, info *LoginInfo) (*StatusNotifyResponse, error) {
	const operation = "status notify"

	host, err := c.baseHost()
	if err != nil {
		return nil, err
	}
	query := url.Values{
		"lang":        {"zh_CN"},
		"pass_ticket": {info.PassTicket},
	}
	payload := map[string]any{
		"BaseRequest":  base,
		"ClientMsgId":  c.clock.Now().Unix(),
		"Code":         3,
		"FromUserName": userName,
		"ToUserName":   userName,
	}

	var result StatusNotifyResponse
	if err := c.postJSON(ctx, operation, host+PathStatusNotify, query, payload, &result, func() BaseResponse {
		return result.BaseResponse
	}); err != nil {
		return nil, err
	}
	return &result, nil
}
