// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package webwx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// LoginInfo holds the credentials returned by the login redirect. The
// service delivers them as an XML document rooted at <error>.
type LoginInfo struct {
	Ret         Ret    `xml:"ret" json:"ret"`
	WxUin       int64  `xml:"wxuin" json:"wxuin"`
	IsGrayScale int    `xml:"isgrayscale" json:"isgrayscale"`
	Message     string `xml:"message" json:"message"`
	Skey        string `xml:"skey" json:"skey"`
	WxSid       string `xml:"wxsid" json:"wxsid"`
	PassTicket  string `xml:"pass_ticket" json:"pass_ticket"`
}

// BaseRequest authenticates nearly every call after login.
type BaseRequest struct {
	Uin      int64  `json:"Uin"`
	Sid      string `json:"Sid"`
	Skey     string `json:"Skey"`
	DeviceID string `json:"DeviceID"`
}

// NewBaseRequest builds the signing tuple from login credentials.
func NewBaseRequest(info *LoginInfo, deviceID string) BaseRequest {
	return BaseRequest{
		Uin:      info.WxUin,
		Sid:      info.WxSid,
		Skey:     info.Skey,
		DeviceID: deviceID,
	}
}

// Domain is the service host discovered from the login redirect, such
// as "wx2.qq.com". Every post-login endpoint derives from it.
type Domain string

// BaseHost is the API origin.
func (d Domain) BaseHost() string { return "https://" + string(d) }

// FileHost is the media origin.
func (d Domain) FileHost() string { return "https://file." + string(d) }

// SyncHost is the push origin.
func (d Domain) SyncHost() string { return "https://webpush." + string(d) }

// DomainFromURL returns the Domain of rawURL.
func DomainFromURL(rawURL string) (Domain, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("webwx: parsing redirect uri %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("webwx: redirect uri %q has no host", rawURL)
	}
	return Domain(strings.ToLower(u.Host)), nil
}

// CursorValue is one field of a SyncKey pair. It holds the JSON token
// the server sent, a number such as 100 or a string such as "100", and
// marshals back to the same token.
type CursorValue string

// String returns the value as text, without string quoting.
func (v CursorValue) String() string {
	if len(v) >= 2 && v[0] == '"' {
		var text string
		if err := json.Unmarshal([]byte(v), &text); err == nil {
			return text
		}
	}
	return string(v)
}

func (v CursorValue) MarshalJSON() ([]byte, error) {
	if v == "" {
		return []byte("null"), nil
	}
	if !json.Valid([]byte(v)) {
		return nil, fmt.Errorf("webwx: cursor value %q is not a JSON token", string(v))
	}
	return []byte(v), nil
}

func (v *CursorValue) UnmarshalJSON(data []byte) error {
	token := bytes.TrimSpace(data)
	decoder := json.NewDecoder(bytes.NewReader(token))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return err
	}
	switch value.(type) {
	case nil:
		return nil
	case json.Number, string:
		*v = CursorValue(token)
		return nil
	default:
		return fmt.Errorf("webwx: cursor value must be a number or a string, got %s", token)
	}
}

// KeyVal is one element of a SyncKey.
type KeyVal struct {
	Key CursorValue `json:"Key"`
	Val CursorValue `json:"Val"`
}

// SyncKey is the server-issued position in the event stream. Each
// SyncMessage response carries a replacement; keys are never merged
// across responses. Pairs are kept as received and sent back unchanged.
type SyncKey struct {
	Count int      `json:"Count"`
	List  []KeyVal `json:"List"`
}

// String renders the key for the synccheck query: "Key_Val" pairs
// joined by "|", the form the service's own web client sends.
func (k SyncKey) String() string {
	pairs := make([]string, len(k.List))
	for i, pair := range k.List {
		pairs[i] = pair.Key.String() + "_" + pair.Val.String()
	}
	return strings.Join(pairs, "|")
}

// Clone returns a copy that shares no memory with k.
func (k SyncKey) Clone() SyncKey {
	list := make([]KeyVal, len(k.List))
	copy(list, k.List)
	return SyncKey{Count: k.Count, List: list}
}

// BaseResponse is the result envelope of every JSON call.
type BaseResponse struct {
	Ret    Ret    `json:"Ret"`
	ErrMsg string `json:"ErrMsg"`
}

// Err returns a *ProtocolError for a non-zero result, or nil.
func (r BaseResponse) Err(operation string) error {
	if r.Ret == RetOK {
		return nil
	}
	return &ProtocolError{Operation: operation, Code: r.Ret, Message: r.ErrMsg}
}

// User is the logged-in account as reported by WebInit.
type User struct {
	Uin               int64  `json:"Uin"`
	UserName          string `json:"UserName"`
	NickName          string `json:"NickName"`
	HeadImgURL        string `json:"HeadImgUrl"`
	RemarkName        string `json:"RemarkName"`
	PYInitial         string `json:"PYInitial"`
	PYQuanPin         string `json:"PYQuanPin"`
	RemarkPYInitial   string `json:"RemarkPYInitial"`
	RemarkPYQuanPin   string `json:"RemarkPYQuanPin"`
	HideInputBarFlag  int    `json:"HideInputBarFlag"`
	StarFriend        int    `json:"StarFriend"`
	Sex               int    `json:"Sex"`
	Signature         string `json:"Signature"`
	AppAccountFlag    int    `json:"AppAccountFlag"`
	VerifyFlag        int    `json:"VerifyFlag"`
	ContactFlag       int    `json:"ContactFlag"`
	WebWxPluginSwitch int    `json:"WebWxPluginSwitch"`
	HeadImgFlag       int    `json:"HeadImgFlag"`
	SnsFlag           int    `json:"SnsFlag"`
}

// WebInitResponse is the session bootstrap payload. Contact entries are
// left undecoded.
type WebInitResponse struct {
	BaseResponse        BaseResponse      `json:"BaseResponse"`
	Count               int               `json:"Count"`
	ContactList         []json.RawMessage `json:"ContactList"`
	SyncKey             SyncKey           `json:"SyncKey"`
	User                User              `json:"User"`
	ChatSet             string            `json:"ChatSet"`
	SKey                string            `json:"SKey"`
	ClientVersion       int64             `json:"ClientVersion"`
	SystemTime          int64             `json:"SystemTime"`
	GrayScale           int64             `json:"GrayScale"`
	InviteStartCount    int64             `json:"InviteStartCount"`
	MPSubscribeMsgCount int64             `json:"MPSubscribeMsgCount"`
	MPSubscribeMsgList  []json.RawMessage `json:"MPSubscribeMsgList"`
	ClickReportInterval int64             `json:"ClickReportInterval"`
}

// StatusNotifyResponse acknowledges a status notification.
type StatusNotifyResponse struct {
	BaseResponse BaseResponse `json:"BaseResponse"`
	MsgID        string       `json:"MsgID"`
}

// SyncCheckResponse is the result of one long-poll.
type SyncCheckResponse struct {
	RetCode  string   `json:"retcode"`
	Selector Selector `json:"selector"`
}

// BuffData wraps a string field of a Profile.
type BuffData struct {
	Buff string `json:"Buff"`
}

// Profile reports changes to the logged-in account.
type Profile struct {
	BitFlag           int64    `json:"BitFlag"`
	UserName          BuffData `json:"UserName"`
	NickName          BuffData `json:"NickName"`
	BindUin           int64    `json:"BindUin"`
	BindEmail         BuffData `json:"BindEmail"`
	BindMobile        BuffData `json:"BindMobile"`
	Status            int64    `json:"Status"`
	Sex               int64    `json:"Sex"`
	PersonalCard      int64    `json:"PersonalCard"`
	Alias             string   `json:"Alias"`
	HeadImgUpdateFlag int64    `json:"HeadImgUpdateFlag"`
	HeadImgURL        string   `json:"HeadImgUrl"`
	Signature         string   `json:"Signature"`
}

// SyncMessageResponse is one event delta. The lists are left undecoded
// for the embedding application.
type SyncMessageResponse struct {
	BaseResponse           BaseResponse      `json:"BaseResponse"`
	AddMsgCount            int               `json:"AddMsgCount"`
	AddMsgList             []json.RawMessage `json:"AddMsgList"`
	ModContactCount        int               `json:"ModContactCount"`
	ModContactList         []json.RawMessage `json:"ModContactList"`
	DelContactCount        int               `json:"DelContactCount"`
	DelContactList         []json.RawMessage `json:"DelContactList"`
	ModChatRoomMemberCount int               `json:"ModChatRoomMemberCount"`
	ModChatRoomMemberList  []json.RawMessage `json:"ModChatRoomMemberList"`
	Profile                Profile           `json:"Profile"`
	ContinueFlag           int64             `json:"ContinueFlag"`
	SyncKey                SyncKey           `json:"SyncKey"`
	SKey                   string            `json:"SKey"`
	SyncCheckKey           SyncKey           `json:"SyncCheckKey"`
}
