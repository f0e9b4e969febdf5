// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// DefaultUserAgent is the desktop browser the web client presents as.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/89.0.4389.114 Safari/537.36"

// Hook observes or adjusts every request a Transport sends.
type Hook interface {
	// BeforeRequest runs once per Execute, before cookies are attached
	// and before the first attempt.
	BeforeRequest(request *http.Request)

	// AfterResponse runs once on the successful response, before its
	// cookies are stored. An error fails the Execute call.
	AfterResponse(response *http.Response) error
}

// DefaultHooks returns the hook chain used against the production
// endpoints: browser user agent, browser headers, and body
// decompression.
func DefaultHooks() []Hook {
	return []Hook{UserAgentHook{}, BrowserHeadersHook{}, DecompressHook{}}
}

// UserAgentHook sets the User-Agent header on every request.
type UserAgentHook struct {
	// UserAgent overrides DefaultUserAgent when non-empty.
	UserAgent string
}

func (h UserAgentHook) BeforeRequest(request *http.Request) {
	userAgent := h.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	request.Header.Set("User-Agent", userAgent)
}

func (UserAgentHook) AfterResponse(*http.Response) error { return nil }

// BrowserHeadersHook fills in the Accept headers a browser sends, unless
// the request already carries them. Accept-Encoding is set explicitly,
// which disables net/http's transparent gzip handling; pair it with
// DecompressHook.
type BrowserHeadersHook struct{}

func (BrowserHeadersHook) BeforeRequest(request *http.Request) {
	setDefault(request.Header, "Accept", "*/*")
	setDefault(request.Header, "Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
	setDefault(request.Header, "Accept-Encoding", "gzip, deflate")
}

func (BrowserHeadersHook) AfterResponse(*http.Response) error { return nil }

func setDefault(header http.Header, key, value string) {
	if header.Get(key) == "" {
		header.Set(key, value)
	}
}

// DecompressHook replaces gzip and deflate encoded response bodies with
// their decoded content.
type DecompressHook struct{}

func (DecompressHook) BeforeRequest(*http.Request) {}

func (DecompressHook) AfterResponse(response *http.Response) error {
	encoding := strings.ToLower(strings.TrimSpace(response.Header.Get("Content-Encoding")))
	if encoding == "" || encoding == "identity" || response.Body == nil || response.Body == http.NoBody {
		return nil
	}

	var decoder io.ReadCloser
	var err error
	switch encoding {
	case "gzip", "x-gzip":
		decoder, err = gzip.NewReader(response.Body)
	case "deflate":
		decoder, err = zlib.NewReader(response.Body)
	default:
		return nil
	}
	if errors.Is(err, io.EOF) {
		// Empty encoded body.
		decoder, err = io.NopCloser(strings.NewReader("")), nil
	}
	if err != nil {
		return fmt.Errorf("decoding %s body: %w", encoding, err)
	}

	response.Body = &decodedBody{decoder: decoder, raw: response.Body}
	response.Header.Del("Content-Encoding")
	response.Header.Del("Content-Length")
	response.ContentLength = -1
	response.Uncompressed = true
	return nil
}

type decodedBody struct {
	decoder io.ReadCloser
	raw     io.ReadCloser
}

func (b *decodedBody) Read(p []byte) (int, error) { return b.decoder.Read(p) }

func (b *decodedBody) Close() error {
	decoderErr := b.decoder.Close()
	if err := b.raw.Close(); err != nil {
		return err
	}
	return decoderErr
}
