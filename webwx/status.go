// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package webwx

import (
	"bytes"
	"fmt"
	"strconv"
)

// Status is the scan state of a login UUID.
type Status int

const (
	// StatusUnknown covers every code the client does not recognize.
	StatusUnknown Status = iota
	StatusSuccess
	StatusScanned
	StatusTimeout
	StatusWait
)

// Login status codes reported in "window.code=<n>;".
const (
	CodeSuccess = 200
	CodeScanned = 201
	CodeTimeout = 400
	CodeWait    = 408
)

// StatusFromCode maps a login status code. Every code maps to some
// Status; unrecognized codes map to StatusUnknown.
func StatusFromCode(code int) Status {
	switch code {
	case CodeSuccess:
		return StatusSuccess
	case CodeScanned:
		return StatusScanned
	case CodeTimeout:
		return StatusTimeout
	case CodeWait:
		return StatusWait
	default:
		return StatusUnknown
	}
}

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusScanned:
		return "scanned"
	case StatusTimeout:
		return "timeout"
	case StatusWait:
		return "wait"
	default:
		return "unknown"
	}
}

// CheckLoginResponse is one login status poll.
type CheckLoginResponse struct {
	Status Status

	// Code is the numeric status as reported, kept for StatusUnknown.
	Code int

	// Raw is the full response body. On success it carries the
	// redirect URI; after a scan it carries the account avatar.
	Raw string
}

// RedirectURI extracts the credential exchange URL from a successful
// poll. The body must contain exactly one redirect assignment.
func (r *CheckLoginResponse) RedirectURI() (string, error) {
	matches := redirectURIPattern.FindAllStringSubmatch(r.Raw, -1)
	if len(matches) != 1 {
		return "", &ParseError{
			Operation: "check login",
			Body:      r.Raw,
			Err:       fmt.Errorf("want exactly one window.redirect_uri, found %d", len(matches)),
		}
	}
	return matches[0][1], nil
}

// Selector classifies what a sync check detected.
type Selector int

const (
	SelectorNormal          Selector = 0
	SelectorNewMessage      Selector = 2
	SelectorModContact      Selector = 4
	SelectorAddOrDelContact Selector = 6
	SelectorModChatroom     Selector = 7
)

// ParseSelector parses the decimal form the service sends.
func ParseSelector(s string) (Selector, error) {
	value, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("webwx: invalid selector %q", s)
	}
	switch selector := Selector(value); selector {
	case SelectorNormal, SelectorNewMessage, SelectorModContact, SelectorAddOrDelContact, SelectorModChatroom:
		return selector, nil
	default:
		return 0, fmt.Errorf("webwx: unknown selector %q", s)
	}
}

func (s Selector) String() string {
	switch s {
	case SelectorNormal:
		return "normal"
	case SelectorNewMessage:
		return "new-message"
	case SelectorModContact:
		return "mod-contact"
	case SelectorAddOrDelContact:
		return "add-or-del-contact"
	case SelectorModChatroom:
		return "mod-chatroom"
	default:
		return "selector(" + strconv.Itoa(int(s)) + ")"
	}
}

// MarshalText encodes the selector as its decimal code.
func (s Selector) MarshalText() ([]byte, error) {
	return []byte(strconv.Itoa(int(s))), nil
}

// UnmarshalText accepts the decimal codes of known selectors only.
func (s *Selector) UnmarshalText(text []byte) error {
	selector, err := ParseSelector(string(text))
	if err != nil {
		return err
	}
	*s = selector
	return nil
}

// UnmarshalJSON accepts the code as a JSON string or number.
func (s *Selector) UnmarshalJSON(data []byte) error {
	return s.UnmarshalText(bytes.Trim(data, `"`))
}

// Ret is a server result code.
type Ret int

const (
	RetOK                       Ret = 0
	RetTicketError              Ret = -14
	RetLogicError               Ret = -2
	RetSystemError              Ret = -1
	RetParamError               Ret = 1
	RetFailedLoginWarn          Ret = 1100
	RetFailedLoginCheck         Ret = 1101
	RetCookieInvalid            Ret = 1102
	RetLoginEnvironmentAbnormal Ret = 1203
	RetOperateTooOften          Ret = 1205
)

func (r Ret) String() string {
	switch r {
	case RetOK:
		return "ok"
	case RetTicketError:
		return "ticket error"
	case RetLogicError:
		return "logic error"
	case RetSystemError:
		return "system error"
	case RetParamError:
		return "param error"
	case RetFailedLoginWarn:
		return "failed login warn"
	case RetFailedLoginCheck:
		return "failed login check"
	case RetCookieInvalid:
		return "cookie invalid"
	case RetLoginEnvironmentAbnormal:
		return "login environment abnormal"
	case RetOperateTooOften:
		return "operate too often"
	default:
		return "ret " + strconv.Itoa(int(r))
	}
}

// LoggedOut reports whether the code means the session has ended
// server-side and a new login is required.
func (r Ret) LoggedOut() bool {
	switch r {
	case RetFailedLoginWarn, RetFailedLoginCheck, RetCookieInvalid:
		return true
	}
	return false
}
