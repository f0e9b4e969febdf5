// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package webwx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// SyncCheck long-polls for pending changes. It returns the decoded
// response even when the result code is non-zero, together with a
// *ProtocolError.
func (c *Caller) SyncCheck(ctx context.Context, deviceID string, key SyncKey, info *LoginInfo) (*SyncCheckResponse, error) {
	const operation = "sync check"

	host, err := c.baseHost()
	if err != nil {
		return nil, err
	}
	timestamp := strconv.FormatInt(c.clock.Now().Unix(), 10)
	query := url.Values{
		"r":        {timestamp},
		"skey":     {info.Skey},
		"sid":      {info.WxSid},
		"uin":      {strconv.FormatInt(info.WxUin, 10)},
		"deviceid": {deviceID},
		"_":        {timestamp},
		"synckey":  {key.String()},
	}

	body, err := c.doOK(ctx, operation, http.MethodGet, host+PathSyncCheck, query, nil, nil)
	if err != nil {
		return nil, err
	}
	result, err := parseSyncCheck(body)
	if err != nil {
		return nil, &ParseError{Operation: operation, Body: string(body), Err: err}
	}
	if result.RetCode != "0" {
		code, err := strconv.Atoi(result.RetCode)
		if err != nil {
			return nil, &ParseError{Operation: operation, Body: string(body), Err: err}
		}
		return result, &ProtocolError{Operation: operation, Code: Ret(code)}
	}
	return result, nil
}

// parseSyncCheck binds the object in
//
//	window.synccheck={retcode:"0",selector:"2"}
//
// to a SyncCheckResponse. The object's keys are unquoted in the script
// form; plain JSON is accepted as well.
func parseSyncCheck(body []byte) (*SyncCheckResponse, error) {
	text := string(body)
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return nil, errors.New("no synccheck object")
	}
	object := bareKeyPattern.ReplaceAllString(text[start:end+1], `$1"$2":`)

	var result SyncCheckResponse
	if err := json.Unmarshal([]byte(object), &result); err != nil {
		return nil, err
	}
	if result.RetCode == "" {
		return nil, errors.New("synccheck object has no retcode")
	}
	return &result, nil
}

// SyncMessage fetches the pending delta. The returned SyncKey replaces
// the one passed in.
func (c *Caller) SyncMessage(ctx context.Context, base BaseRequest, key SyncKey, info *LoginInfo) (*SyncMessageResponse, error) {
	const operation = "sync message"

	host, err := c.baseHost()
	if err != nil {
		return nil, err
	}
	query := url.Values{
		"sid":         {info.WxSid},
		"skey":        {info.Skey},
		"pass_ticket": {info.PassTicket},
	}
	payload := map[string]any{
		"BaseRequest": base,
		"SyncKey":     key,
		"rr":          c.clock.Now().Unix(),
	}

	var result SyncMessageResponse
	if err := c.postJSON(ctx, operation, host+PathSync, query, payload, &result, func() BaseResponse {
		return result.BaseResponse
	}); err != nil {
		return nil, err
	}
	return &result, nil
}
