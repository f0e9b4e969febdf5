// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package webwx

import "regexp"

// AppID identifies the web client to the login service.
const AppID = "wx782c26e4c19acffb"

// Paths on the service domain.
const (
	PathWebInit      = "/cgi-bin/mmwebwx-bin/webwxinit"
	PathStatusNotify = "/cgi-bin/mmwebwx-bin/webwxstatusnotify"
	PathSync         = "/cgi-bin/mmwebwx-bin/webwxsync"
	PathSyncCheck    = "/cgi-bin/mmwebwx-bin/synccheck"
)

// Endpoints are the fixed URLs used before the service domain is
// known.
type Endpoints struct {
	// JSLogin issues the login UUID.
	JSLogin string

	// Login reports the scan status of a UUID.
	Login string

	// NewLoginPage is the redirect target embedded in the UUID request.
	NewLoginPage string

	// QRCode is the prefix of the QR code image URL; the UUID is
	// appended.
	QRCode string
}

// DefaultEndpoints returns the production endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		JSLogin:      "https://login.wx.qq.com/jslogin",
		Login:        "https://login.wx.qq.com/cgi-bin/mmwebwx-bin/login",
		NewLoginPage: "https://wx.qq.com/cgi-bin/mmwebwx-bin/webwxnewloginpage",
		QRCode:       "https://login.weixin.qq.com/qrcode/",
	}
}

func (e Endpoints) withDefaults() Endpoints {
	defaults := DefaultEndpoints()
	if e.JSLogin == "" {
		e.JSLogin = defaults.JSLogin
	}
	if e.Login == "" {
		e.Login = defaults.Login
	}
	if e.NewLoginPage == "" {
		e.NewLoginPage = defaults.NewLoginPage
	}
	if e.QRCode == "" {
		e.QRCode = defaults.QRCode
	}
	return e
}

// DesktopIdentity holds the headers ModeDesktop sends with the
// credential exchange.
type DesktopIdentity struct {
	ClientVersion string
	ExtSpam       string
}

// DefaultDesktopIdentity returns the identity of the Linux desktop
// client build the service accepts.
func DefaultDesktopIdentity() DesktopIdentity {
	return DesktopIdentity{
		ClientVersion: "2.0.0",
		ExtSpam: "Go8FCIkFEokFCggwMDAwMDAwMRAGGvAESySibk50w5Wb3uTl2c2h64jVVrV7gNs06GFlWplHQbY/5FfiO++1yH4ykC" +
			"yNPWKXmco+wfQzK5R98D3so7rJ5LSGn9d4P+0WAW3kcmNoSIDqbp4YgO4Ks0bFTn1gt7shdVjbHyqr+iyB4+nS+3H0XhBdax" +
			"h7tWnr6oaHbuCxX7o0fE2qK2u6D2VuXyBHiODSw8xv0g9+RUTW2R3UZTqlYSmXOd+mN9nrqnqH5sfd8xtfU6hU3ggsgszbMzKR" +
			"Rh3KtzpXyM2kVbL3J5VmQ9zM/6kXY96xHlVLpIYaBl7lSHT9tD5fu0c1TyQlwI3ZhrCmHqXf38xdsOSK4pXoeYmfm/F0NkkK+Zd" +
			"A9VrEvcYZibG4dWl59wNv9uOr2cg8mbyn4UxIlGdtVtJbINQV12+qcRRkmFvfEbq/x8qU8g1UHTDjh18IDZPQ8uNnoi1XSgdqRE" +
			"8pq0p7+1B2v1ilBaIPAEKJpLsNKr3CaELNIm+cW1tA5fOv5KjC/s+hHKR+FGwYzWFsjF52AgPUWp6Iw6lnDT3mP4ARz6GftFEJ0" +
			"rqAqlgZh4aE0PrnDnlcdJsxntDWMSG7mPrtlW8FUpZfFq8yU8Ht2iPcs3nUM9Z0uuqAIqKRHAv0tKiWK2xqN/rJXe2zHSSm5+yq" +
			"fygt5f17oo2BNw3f5WWwZ8tadL6z52IVaGmKLRX6kS3J/5GK+Lb47h5qnaGCCwNlTZOGp3i6SpAWZ1EE2WvwULTLXH+Q6zQR2O/" +
			"hNHP98JX+mcZc4Z6n+vk70QIDk8FCNV6D58T0NyXQ5XlAoU2mO6XbR/pb9gkEPQOh7uLPyFq/uPuNTs6FXz45Z4T9Z7B6fAJc10" +
			"YVcgmsDW2J44sRbhIMW7i+dnzTu3npoP1szTMMQ8pJ85dBrKWwI2wn2Kxj0zjn+h6G6SvrhZEz2SVaxmRLT/ws6rdo0RVtZzkUj" +
			"HnGkRDjjr/7+aLKtRSifVCc2Dl69YMR5MfCE0vMRVymnRNzU0SAS6SGlSwgJvpvMTI2xLaPLtoSadMIBdWSxe+jDhhd+Q0XFn0f" +
			"RMvSklEAULuBJ9Io/DdMFxkX67vmQ86uK2r7ywqEx3qchwT6owrYBSb5UTlrChDeNRWwfYAe5HVTPQJC6uH6pu/4I+CaBWmwhGH" +
			"IYmGs+NtZ8SRxeVlXS1tedw8Mbd2C4kWGlo5t2p8G00ydrEbALeFxXbGfzqMiGqUbWdwuqoxWzapdyDRuqUdASE9EL8Ps2OhqjlmiN" +
			"Ydc+TE=",
	}
}

// Response patterns, compiled once.
var (
	uuidPattern        = regexp.MustCompile(`uuid = "(.*?)";`)
	statusCodePattern  = regexp.MustCompile(`window\.code=(\d+);`)
	redirectURIPattern = regexp.MustCompile(`window\.redirect_uri="(.*?)"`)
	bareKeyPattern     = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)
