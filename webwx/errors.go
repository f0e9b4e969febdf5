// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package webwx

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden is returned when the credential exchange does not
	// answer with a redirect. The service refuses the web client for
	// some accounts; retrying in ModeDesktop usually succeeds.
	ErrForbidden = errors.New("webwx: login forbidden: try to login with desktop mode")

	// ErrNoDomain is returned by post-login calls before the service
	// domain is known.
	ErrNoDomain = errors.New("webwx: service domain unknown")

	// ErrLoginTimeout is returned when the QR code expires before it is
	// confirmed.
	ErrLoginTimeout = errors.New("webwx: login timed out waiting for QR confirmation")
)

// ProtocolError is a well-formed response reporting a non-zero result
// code. Callers can use errors.As to extract it:
//
//	var protocolErr *ProtocolError
//	if errors.As(err, &protocolErr) && protocolErr.Code.LoggedOut() { ... }
type ProtocolError struct {
	// Operation names the call, such as "sync check".
	Operation string
	// Code is the server result code.
	Code Ret
	// Message is the server-provided description, often empty.
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("webwx: %s: %d (%s)", e.Operation, int(e.Code), e.Code)
	}
	return fmt.Sprintf("webwx: %s: %d (%s): %s", e.Operation, int(e.Code), e.Code, e.Message)
}

// IsProtocolError checks whether err is a *ProtocolError with the given
// code.
func IsProtocolError(err error, code Ret) bool {
	var protocolErr *ProtocolError
	if errors.As(err, &protocolErr) {
		return protocolErr.Code == code
	}
	return false
}

// maxErrorBody bounds how much of a response body a ParseError prints.
const maxErrorBody = 256

// ParseError is a response body that could not be decoded.
type ParseError struct {
	Operation string
	Body      string
	Err       error
}

func (e *ParseError) Error() string {
	body := e.Body
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return fmt.Sprintf("webwx: %s: parsing response %q: %v", e.Operation, body, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// UnknownStatusError is a login poll with an unrecognized status code.
type UnknownStatusError struct {
	Code int
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("webwx: unknown login status code %d", e.Code)
}
