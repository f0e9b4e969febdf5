// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package webwx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"
)

var testBaseRequest = BaseRequest{Uin: 1001, Sid: "sid-1", Skey: "@crypt_skey", DeviceID: "e123456789012345"}

func TestPostLoginCallsRequireDomain(t *testing.T) {
	caller, _ := newTestCaller(t, ModeNormal, func(writer http.ResponseWriter, request *http.Request) {
		t.Errorf("unexpected request to %s", request.URL.Path)
	})
	ctx := context.Background()

	if _, err := caller.WebInit(ctx, testBaseRequest); !errors.Is(err, ErrNoDomain) {
		t.Errorf("WebInit error = %v, want ErrNoDomain", err)
	}
	if _, err := caller.StatusNotify(ctx, testBaseRequest, "@self", testLoginInfo()); !errors.Is(err, ErrNoDomain) {
		t.Errorf("StatusNotify error = %v, want ErrNoDomain", err)
	}
	if _, err := caller.SyncCheck(ctx, "e123456789012345", SyncKey{}, testLoginInfo()); !errors.Is(err, ErrNoDomain) {
		t.Errorf("SyncCheck error = %v, want ErrNoDomain", err)
	}
	if _, err := caller.SyncMessage(ctx, testBaseRequest, SyncKey{}, testLoginInfo()); !errors.Is(err, ErrNoDomain) {
		t.Errorf("SyncMessage error = %v, want ErrNoDomain", err)
	}
}

func TestWebInit(t *testing.T) {
	caller, server := newTestCaller(t, ModeNormal, func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost || request.URL.Path != PathWebInit {
			t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
		}
		if request.URL.Query().Get("_") != strconv.FormatInt(epoch.Unix(), 10) {
			t.Errorf("_ = %q", request.URL.Query().Get("_"))
		}
		var body struct {
			BaseRequest BaseRequest
		}
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if body.BaseRequest != testBaseRequest {
			t.Errorf("BaseRequest = %+v", body.BaseRequest)
		}
		writeJSON(t, writer, map[string]any{
			"BaseResponse": map[string]any{"Ret": 0, "ErrMsg": ""},
			"Count":        1,
			"ContactList":  []any{map[string]any{"UserName": "filehelper"}},
			"SyncKey":      map[string]any{"Count": 2, "List": []any{map[string]any{"Key": 1, "Val": 100}, map[string]any{"Key": 2, "Val": 200}}},
			"User":         map[string]any{"Uin": 1001, "UserName": "@self", "NickName": "bot"},
			"SKey":         "@crypt_skey",
		})
	})
	caller.SetDomain(serverDomain(server))

	initResponse, err := caller.WebInit(context.Background(), testBaseRequest)
	if err != nil {
		t.Fatalf("WebInit failed: %v", err)
	}
	if initResponse.User.UserName != "@self" || initResponse.User.NickName != "bot" {
		t.Errorf("User = %+v", initResponse.User)
	}
	if initResponse.SyncKey.String() != "1_100|2_200" {
		t.Errorf("SyncKey = %q", initResponse.SyncKey.String())
	}
	if len(initResponse.ContactList) != 1 {
		t.Errorf("ContactList has %d entries", len(initResponse.ContactList))
	}
}

func TestWebInitProtocolError(t *testing.T) {
	caller, server := newTestCaller(t, ModeNormal, func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(t, writer, map[string]any{
			"BaseResponse": map[string]any{"Ret": 1101, "ErrMsg": ""},
		})
	})
	caller.SetDomain(serverDomain(server))

	_, err := caller.WebInit(context.Background(), testBaseRequest)
	var protocolErr *ProtocolError
	if !errors.As(err, &protocolErr) {
		t.Fatalf("error = %v, want *ProtocolError", err)
	}
	if protocolErr.Code != RetFailedLoginCheck || !protocolErr.Code.LoggedOut() {
		t.Errorf("code = %v", protocolErr.Code)
	}
}

func TestStatusNotify(t *testing.T) {
	var body map[string]any
	caller, server := newTestCaller(t, ModeNormal, func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != PathStatusNotify {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		query := request.URL.Query()
		if query.Get("lang") != "zh_CN" || query.Get("pass_ticket") != "ticket%2B1" {
			t.Errorf("unexpected query: %v", query)
		}
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		writeJSON(t, writer, map[string]any{
			"BaseResponse": map[string]any{"Ret": 0, "ErrMsg": ""},
			"MsgID":        "5001",
		})
	})
	caller.SetDomain(serverDomain(server))

	response, err := caller.StatusNotify(context.Background(), testBaseRequest, "@self", testLoginInfo())
	if err != nil {
		t.Fatalf("StatusNotify failed: %v", err)
	}
	if response.MsgID != "5001" {
		t.Errorf("MsgID = %q", response.MsgID)
	}
	if body["Code"] != float64(3) {
		t.Errorf("Code = %v, want 3", body["Code"])
	}
	if body["FromUserName"] != "@self" || body["ToUserName"] != "@self" {
		t.Errorf("user names = %v / %v", body["FromUserName"], body["ToUserName"])
	}
	if body["ClientMsgId"] != float64(epoch.Unix()) {
		t.Errorf("ClientMsgId = %v", body["ClientMsgId"])
	}
}

func TestStatusNotifyFailure(t *testing.T) {
	caller, server := newTestCaller(t, ModeNormal, func(writer http.ResponseWriter, request *http.Request) {
		writeJSON(t, writer, map[string]any{
			"BaseResponse": map[string]any{"Ret": -1, "ErrMsg": "system busy"},
			"MsgID":        "",
		})
	})
	caller.SetDomain(serverDomain(server))

	_, err := caller.StatusNotify(context.Background(), testBaseRequest, "@self", testLoginInfo())
	if !IsProtocolError(err, RetSystemError) {
		t.Fatalf("error = %v, want ProtocolError -1", err)
	}
}

func TestSyncCheck(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		selector Selector
	}{
		{"script object", `window.synccheck={retcode:"0",selector:"2"}`, SelectorNewMessage},
		{"spaced script object", `window.synccheck={ retcode : "0", selector : "7" };`, SelectorModChatroom},
		{"json", `{"retcode":"0","selector":"0"}`, SelectorNormal},
		{"numeric selector", `window.synccheck={retcode:"0",selector:4}`, SelectorModContact},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			caller, server := newTestCaller(t, ModeNormal, func(writer http.ResponseWriter, request *http.Request) {
				if request.URL.Path != PathSyncCheck {
					t.Errorf("unexpected path: %s", request.URL.Path)
				}
				query := request.URL.Query()
				timestamp := strconv.FormatInt(epoch.Unix(), 10)
				if query.Get("r") != timestamp || query.Get("_") != timestamp {
					t.Errorf("timestamps r=%q _=%q", query.Get("r"), query.Get("_"))
				}
				if query.Get("skey") != "@crypt_skey" || query.Get("sid") != "sid-1" || query.Get("uin") != "1001" {
					t.Errorf("credentials in query: %v", query)
				}
				if query.Get("deviceid") != "e123456789012345" {
					t.Errorf("deviceid = %q", query.Get("deviceid"))
				}
				if query.Get("synckey") != "1_100|2_200" {
					t.Errorf("synckey = %q", query.Get("synckey"))
				}
				fmt.Fprint(writer, test.body)
			})
			caller.SetDomain(serverDomain(server))

			key := SyncKey{Count: 2, List: []KeyVal{{"1", "100"}, {"2", "200"}}}
			response, err := caller.SyncCheck(context.Background(), "e123456789012345", key, testLoginInfo())
			if err != nil {
				t.Fatalf("SyncCheck failed: %v", err)
			}
			if response.RetCode != "0" || response.Selector != test.selector {
				t.Errorf("response = %+v, want selector %v", response, test.selector)
			}
		})
	}
}

func TestSyncCheckNonZeroRetCode(t *testing.T) {
	caller, server := newTestCaller(t, ModeNormal, func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, `window.synccheck={retcode:"1203",selector:"0"}`)
	})
	caller.SetDomain(serverDomain(server))

	response, err := caller.SyncCheck(context.Background(), "e123456789012345", SyncKey{}, testLoginInfo())
	if !IsProtocolError(err, RetLoginEnvironmentAbnormal) {
		t.Fatalf("error = %v, want ProtocolError 1203", err)
	}
	if response == nil || response.RetCode != "1203" {
		t.Errorf("response = %+v, want the decoded result alongside the error", response)
	}
}

func TestSyncCheckMalformed(t *testing.T) {
	bodies := map[string]string{
		"no object":        `window.synccheck=`,
		"unknown selector": `window.synccheck={retcode:"0",selector:"3"}`,
		"missing retcode":  `window.synccheck={selector:"0"}`,
		"non-numeric code": `window.synccheck={retcode:"bad",selector:"0"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			caller, server := newTestCaller(t, ModeNormal, func(writer http.ResponseWriter, request *http.Request) {
				fmt.Fprint(writer, body)
			})
			caller.SetDomain(serverDomain(server))

			_, err := caller.SyncCheck(context.Background(), "e123456789012345", SyncKey{}, testLoginInfo())
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("error = %v, want *ParseError", err)
			}
		})
	}
}

func TestSyncMessage(t *testing.T) {
	caller, server := newTestCaller(t, ModeNormal, func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost || request.URL.Path != PathSync {
			t.Errorf("unexpected request: %s %s", request.Method, request.URL.Path)
		}
		query := request.URL.Query()
		if query.Get("sid") != "sid-1" || query.Get("skey") != "@crypt_skey" || query.Get("pass_ticket") != "ticket%2B1" {
			t.Errorf("unexpected query: %v", query)
		}
		var body struct {
			BaseRequest BaseRequest
			SyncKey     SyncKey
			RR          int64 `json:"rr"`
		}
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if body.SyncKey.String() != "1_100" || body.BaseRequest != testBaseRequest {
			t.Errorf("request body = %+v", body)
		}
		if body.RR != epoch.Unix() {
			t.Errorf("rr = %d", body.RR)
		}
		writeJSON(t, writer, map[string]any{
			"BaseResponse": map[string]any{"Ret": 0, "ErrMsg": ""},
			"AddMsgCount":  2,
			"AddMsgList":   []any{map[string]any{"MsgId": "1"}, map[string]any{"MsgId": "2"}},
			"SyncKey":      map[string]any{"Count": 1, "List": []any{map[string]any{"Key": 1, "Val": 101}}},
			"SyncCheckKey": map[string]any{"Count": 1, "List": []any{map[string]any{"Key": 1, "Val": 102}}},
			"Profile":      map[string]any{"UserName": map[string]any{"Buff": ""}},
		})
	})
	caller.SetDomain(serverDomain(server))

	key := SyncKey{Count: 1, List: []KeyVal{{"1", "100"}}}
	response, err := caller.SyncMessage(context.Background(), testBaseRequest, key, testLoginInfo())
	if err != nil {
		t.Fatalf("SyncMessage failed: %v", err)
	}
	if response.SyncKey.String() != "1_101" {
		t.Errorf("SyncKey = %q", response.SyncKey.String())
	}
	if len(response.AddMsgList) != 2 {
		t.Errorf("AddMsgList has %d entries", len(response.AddMsgList))
	}
}

func TestSyncMessageMalformed(t *testing.T) {
	caller, server := newTestCaller(t, ModeNormal, func(writer http.ResponseWriter, request *http.Request) {
		fmt.Fprint(writer, `<html>maintenance</html>`)
	})
	caller.SetDomain(serverDomain(server))

	_, err := caller.SyncMessage(context.Background(), testBaseRequest, SyncKey{}, testLoginInfo())
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
}
