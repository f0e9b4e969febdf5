// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/webwx/transport"
	"github.com/bureau-foundation/webwx/webwx"
)

func testSnapshot() *Snapshot {
	expired := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	persistent := time.Date(2035, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Snapshot{
		Cookies: transport.CookieJar{
			"https://wx2.qq.com/cgi-bin/mmwebwx-bin/webwxnewloginpage": {
				Sequence: 3,
				Cookies: []transport.StoredCookie{
					{Name: "wxuin", Value: "1001", Domain: "wx2.qq.com", Path: "/"},
					{Name: "webwx_data_ticket", Value: "ticket", Domain: "qq.com", Path: "/", Expires: &persistent},
					{Name: "wxloadtime", Value: "1", Domain: "wx2.qq.com", HostOnly: true, Path: "/", Expires: &expired},
				},
			},
		},
		BaseRequest: &webwx.BaseRequest{Uin: 1001, Sid: "sid-1", Skey: "@crypt_skey", DeviceID: "e123456789012345"},
		LoginInfo:   &webwx.LoginInfo{WxUin: 1001, Skey: "@crypt_skey", WxSid: "sid-1", PassTicket: "pass"},
		Domain:      "wx2.qq.com",
		UUID:        "gYmgd1grLg==",
	}
}

func newTestFileStore(t *testing.T, path, passphrase string) *FileStore {
	t.Helper()
	store, err := NewFileStore(FileStoreConfig{Path: path, Passphrase: passphrase, ScryptWorkFactor: 10})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore(FileStoreConfig{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	store := newTestFileStore(t, path, "")

	if _, err := store.Fetch(); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("Fetch error = %v, want ErrNoSnapshot", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("snapshot file not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	writer := newTestFileStore(t, path, "")
	want := testSnapshot()
	if err := writer.Dump(want); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reader := newTestFileStore(t, path, "")
	got, err := reader.Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fetch() = %+v\nwant %+v", got, want)
	}
}

func TestFileStoreDocumentLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	store := newTestFileStore(t, path, "")
	if err := store.Dump(testSnapshot()); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	var document struct {
		Cookies     map[string]string `json:"cookies"`
		BaseRequest map[string]any    `json:"base_request"`
		LoginInfo   map[string]any    `json:"login_info"`
		Domain      string            `json:"wechat_domain"`
		UUID        string            `json:"uuid"`
	}
	if err := json.Unmarshal(data, &document); err != nil {
		t.Fatalf("snapshot is not the expected document: %v", err)
	}
	collection := document.Cookies["https://wx2.qq.com/cgi-bin/mmwebwx-bin/webwxnewloginpage"]
	if !strings.Contains(collection, "wxloadtime") {
		t.Errorf("expired cookie missing from collection %q", collection)
	}
	if document.BaseRequest["DeviceID"] != "e123456789012345" {
		t.Errorf("base_request = %v", document.BaseRequest)
	}
	if document.LoginInfo["wxsid"] != "sid-1" {
		t.Errorf("login_info = %v", document.LoginInfo)
	}
	if document.Domain != "wx2.qq.com" || document.UUID != "gYmgd1grLg==" {
		t.Errorf("domain = %q, uuid = %q", document.Domain, document.UUID)
	}
}

func TestFileStoreTruncatesOnDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	store := newTestFileStore(t, path, "")

	large := testSnapshot()
	large.UUID = strings.Repeat("x", 4096)
	if err := store.Dump(large); err != nil {
		t.Fatalf("Dump(large) failed: %v", err)
	}
	small := &Snapshot{UUID: "short"}
	if err := store.Dump(small); err != nil {
		t.Fatalf("Dump(small) failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	want, _ := json.Marshal(small)
	if !bytes.Equal(data, want) {
		t.Errorf("file holds %d bytes %q, want exactly %q", len(data), data, want)
	}

	got, err := store.Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got.UUID != "short" || got.BaseRequest != nil {
		t.Errorf("Fetch() = %+v", got)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte(`{"cookies": {"https://wx.qq.com/": 12`), 0600); err != nil {
		t.Fatalf("writing corrupt file: %v", err)
	}
	store := newTestFileStore(t, path, "")

	_, err := store.Fetch()
	if err == nil {
		t.Fatal("expected error for corrupt snapshot")
	}
	if errors.Is(err, ErrNoSnapshot) {
		t.Error("corrupt snapshot reported as missing")
	}
}

func TestFileStoreExclusiveLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	first := newTestFileStore(t, path, "")
	if err := first.Dump(testSnapshot()); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	second := newTestFileStore(t, path, "")
	if _, err := second.Fetch(); !errors.Is(err, ErrStoreLocked) {
		t.Fatalf("second store Fetch error = %v, want ErrStoreLocked", err)
	}

	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := second.Fetch(); err != nil {
		t.Fatalf("Fetch after release failed: %v", err)
	}
}

func TestFileStoreSkipsUnchangedSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	store := newTestFileStore(t, path, "")
	snapshot := testSnapshot()
	if err := store.Dump(snapshot); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}

	// Advisory locks do not stop a direct write; it stands in for a
	// write the store would have made.
	if err := os.WriteFile(path, []byte("sentinel"), 0600); err != nil {
		t.Fatalf("overwriting file: %v", err)
	}
	if err := store.Dump(testSnapshot()); err != nil {
		t.Fatalf("second Dump failed: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "sentinel" {
		t.Errorf("unchanged snapshot was rewritten: %q", data)
	}

	changed := testSnapshot()
	changed.BaseRequest.Skey = "@rotated"
	if err := store.Dump(changed); err != nil {
		t.Fatalf("third Dump failed: %v", err)
	}
	got, err := store.Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got.BaseRequest.Skey != "@rotated" {
		t.Errorf("Skey = %q after changed Dump", got.BaseRequest.Skey)
	}
}

func TestFileStoreEncrypted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.age")
	writer := newTestFileStore(t, path, "correct horse")
	want := testSnapshot()
	if err := writer.Dump(want); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("age-encryption.org/v1")) {
		t.Errorf("file is not an age file: %q", data[:min(len(data), 32)])
	}
	if bytes.Contains(data, []byte("sid-1")) {
		t.Error("plaintext session id found in encrypted file")
	}

	wrong := newTestFileStore(t, path, "wrong passphrase")
	if _, err := wrong.Fetch(); err == nil {
		t.Error("expected error with wrong passphrase")
	}
	wrong.Close()

	reader := newTestFileStore(t, path, "correct horse")
	got, err := reader.Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fetch() = %+v\nwant %+v", got, want)
	}
}
