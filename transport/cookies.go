// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// StoredCookie is one cookie as received, with its scope resolved
// against the URL that set it.
type StoredCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`

	// Domain is the lowercase domain without a leading dot. When
	// HostOnly is set the cookie matches this exact host only;
	// otherwise it also matches every subdomain.
	Domain   string `json:"domain"`
	HostOnly bool   `json:"host_only,omitempty"`

	Path string `json:"path"`

	// Expires is nil for session cookies. Max-Age is converted to an
	// absolute time when the cookie is stored.
	Expires *time.Time `json:"expires,omitempty"`

	Secure   bool `json:"secure,omitempty"`
	HTTPOnly bool `json:"http_only,omitempty"`
}

// Expired reports whether the cookie must no longer be sent at now.
// Session cookies never expire.
func (c StoredCookie) Expired(now time.Time) bool {
	return c.Expires != nil && !c.Expires.After(now)
}

func (c StoredCookie) matches(host, path string, secure bool, now time.Time) bool {
	if c.Secure && !secure {
		return false
	}
	if c.Expired(now) {
		return false
	}
	if c.HostOnly {
		if host != c.Domain {
			return false
		}
	} else if !domainMatch(host, c.Domain) {
		return false
	}
	return pathMatch(path, c.Path)
}

// CookieCollection is the set of cookies one response delivered.
// Sequence orders collections by arrival: when two collections hold a
// cookie with the same name for a request, the higher Sequence wins.
type CookieCollection struct {
	Sequence uint64         `json:"sequence"`
	Cookies  []StoredCookie `json:"cookies"`
}

func (c CookieCollection) clone() CookieCollection {
	cookies := make([]StoredCookie, len(c.Cookies))
	for i, cookie := range c.Cookies {
		if cookie.Expires != nil {
			expires := *cookie.Expires
			cookie.Expires = &expires
		}
		cookies[i] = cookie
	}
	return CookieCollection{Sequence: c.Sequence, Cookies: cookies}
}

// CookieJar maps "scheme://host/path" to the collection most recently
// received for that URL.
//
// In JSON a jar is an object whose values are strings, each holding the
// JSON text of one CookieCollection.
type CookieJar map[string]CookieCollection

// Clone returns a deep copy of the jar.
func (j CookieJar) Clone() CookieJar {
	clone := make(CookieJar, len(j))
	for key, collection := range j {
		clone[key] = collection.clone()
	}
	return clone
}

// MarshalJSON encodes each collection to its own JSON string.
func (j CookieJar) MarshalJSON() ([]byte, error) {
	encoded := make(map[string]string, len(j))
	for key, collection := range j {
		data, err := json.Marshal(collection)
		if err != nil {
			return nil, fmt.Errorf("encoding cookies for %s: %w", key, err)
		}
		encoded[key] = string(data)
	}
	return json.Marshal(encoded)
}

// UnmarshalJSON decodes the string-per-collection form.
func (j *CookieJar) UnmarshalJSON(data []byte) error {
	var encoded map[string]string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return err
	}
	jar := make(CookieJar, len(encoded))
	for key, text := range encoded {
		var collection CookieCollection
		if err := json.Unmarshal([]byte(text), &collection); err != nil {
			return fmt.Errorf("decoding cookies for %s: %w", key, err)
		}
		jar[key] = collection
	}
	*j = jar
	return nil
}

// JarKey returns the jar key for u: scheme, host and path.
func JarKey(u *url.URL) string {
	path := u.Path
	if path == "" {
		path = "/"
	}
	return u.Scheme + "://" + u.Hostname() + path
}

type cookieStore struct {
	mu       sync.Mutex
	entries  CookieJar
	sequence uint64
}

func newCookieStore() *cookieStore {
	return &cookieStore{entries: make(CookieJar)}
}

// store replaces the entry for u with the cookies one response set.
func (s *cookieStore) store(u *url.URL, cookies []*http.Cookie, now time.Time) {
	host := strings.ToLower(u.Hostname())
	collection := CookieCollection{Cookies: make([]StoredCookie, 0, len(cookies))}
	for _, cookie := range cookies {
		stored, ok := resolveCookie(cookie, host, u.Path, now)
		if !ok {
			continue
		}
		collection.Cookies = append(collection.Cookies, stored)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence++
	collection.Sequence = s.sequence
	s.entries[JarKey(u)] = collection
}

func (s *cookieStore) put(key string, collection CookieCollection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = collection.clone()
	s.sequence = max(s.sequence, collection.Sequence)
}

func (s *cookieStore) replace(jar CookieJar) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = jar.Clone()
	s.sequence = 0
	for _, collection := range s.entries {
		s.sequence = max(s.sequence, collection.Sequence)
	}
}

func (s *cookieStore) snapshot() CookieJar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Clone()
}

// matching returns the cookies to send to u, one per name, ordered by
// name.
func (s *cookieStore) matching(u *url.URL, now time.Time) []*http.Cookie {
	host := strings.ToLower(u.Hostname())
	path := u.Path
	if path == "" {
		path = "/"
	}
	secure := u.Scheme == "https"

	type candidate struct {
		sequence uint64
		cookie   StoredCookie
	}
	chosen := make(map[string]candidate)

	s.mu.Lock()
	for _, collection := range s.entries {
		for _, cookie := range collection.Cookies {
			if !cookie.matches(host, path, secure, now) {
				continue
			}
			if existing, ok := chosen[cookie.Name]; ok && existing.sequence > collection.Sequence {
				continue
			}
			chosen[cookie.Name] = candidate{sequence: collection.Sequence, cookie: cookie}
		}
	}
	s.mu.Unlock()

	names := make([]string, 0, len(chosen))
	for name := range chosen {
		names = append(names, name)
	}
	sort.Strings(names)

	cookies := make([]*http.Cookie, 0, len(names))
	for _, name := range names {
		stored := chosen[name].cookie
		cookies = append(cookies, &http.Cookie{Name: stored.Name, Value: stored.Value})
	}
	return cookies
}

// resolveCookie applies a Set-Cookie received from host. It reports
// false when the cookie's Domain attribute does not cover host (RFC 6265
// 5.3 step 6); such cookies are ignored.
func resolveCookie(cookie *http.Cookie, host, requestPath string, now time.Time) (StoredCookie, bool) {
	stored := StoredCookie{
		Name:     cookie.Name,
		Value:    cookie.Value,
		Domain:   host,
		HostOnly: true,
		Path:     cookie.Path,
		Secure:   cookie.Secure,
		HTTPOnly: cookie.HttpOnly,
	}
	if domain := strings.TrimPrefix(strings.ToLower(cookie.Domain), "."); domain != "" {
		if !domainMatch(host, domain) {
			return StoredCookie{}, false
		}
		stored.Domain = domain
		stored.HostOnly = false
	}
	if !strings.HasPrefix(stored.Path, "/") {
		stored.Path = defaultPath(requestPath)
	}

	switch {
	case cookie.MaxAge > 0:
		expires := now.Add(time.Duration(cookie.MaxAge) * time.Second)
		stored.Expires = &expires
	case cookie.MaxAge < 0:
		// "Max-Age=0" or negative: delete. Kept as already expired.
		expires := now.Add(-time.Second)
		stored.Expires = &expires
	case !cookie.Expires.IsZero():
		expires := cookie.Expires
		stored.Expires = &expires
	}
	return stored, true
}

// domainMatch implements RFC 6265 5.1.3 domain-match. An IP address
// only matches itself.
func domainMatch(host, domain string) bool {
	if host == domain {
		return true
	}
	if net.ParseIP(host) != nil {
		return false
	}
	return strings.HasSuffix(host, "."+domain)
}

// defaultPath is the directory of the request path (RFC 6265 5.1.4).
func defaultPath(requestPath string) string {
	if !strings.HasPrefix(requestPath, "/") {
		return "/"
	}
	last := strings.LastIndex(requestPath, "/")
	if last == 0 {
		return "/"
	}
	return requestPath[:last]
}

// pathMatch implements RFC 6265 5.1.4 path-match.
func pathMatch(requestPath, cookiePath string) bool {
	if requestPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || requestPath[len(cookiePath)] == '/'
}
