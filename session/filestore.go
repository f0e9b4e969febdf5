// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"filippo.io/age"
	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/webwx/lib/codec"
)

// ErrStoreLocked is returned when another FileStore, in this process or
// another, holds the snapshot file.
var ErrStoreLocked = errors.New("session: snapshot file is locked by another store")

// DefaultScryptWorkFactor is the scrypt log2(N) used to encrypt
// snapshots when FileStoreConfig.ScryptWorkFactor is zero.
const DefaultScryptWorkFactor = 15

// maxSnapshotSize bounds how much of the file Fetch reads.
const maxSnapshotSize = 16 << 20

// FileStoreConfig holds the parameters for creating a FileStore.
type FileStoreConfig struct {
	// Path is the snapshot file. Created with mode 0600 if missing.
	Path string

	// Passphrase, when non-empty, encrypts the file with age (scrypt).
	// A snapshot written without a passphrase cannot be read with one,
	// and vice versa.
	Passphrase string

	// ScryptWorkFactor overrides DefaultScryptWorkFactor.
	ScryptWorkFactor int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// FileStore persists snapshots to a single file. The file is opened
// and locked on first use and stays open until Close; every Dump
// truncates and rewrites it, then syncs it to disk.
//
// Dump skips the write when the snapshot is identical to the last one
// read or written.
type FileStore struct {
	path             string
	passphrase       string
	scryptWorkFactor int
	logger           *slog.Logger

	mu   sync.Mutex
	file *os.File
	// last is the fingerprint of the snapshot currently on disk, zero
	// when unknown.
	last codec.Digest
}

// NewFileStore creates a FileStore. The file is not touched until the
// first Fetch or Dump.
func NewFileStore(config FileStoreConfig) (*FileStore, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("session: FileStore Path is required")
	}
	workFactor := config.ScryptWorkFactor
	if workFactor == 0 {
		workFactor = DefaultScryptWorkFactor
	}
	if workFactor < 1 || workFactor > 30 {
		return nil, fmt.Errorf("session: scrypt work factor %d out of range", workFactor)
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		path:             config.Path,
		passphrase:       config.Passphrase,
		scryptWorkFactor: workFactor,
		logger:           logger,
	}, nil
}

// Path returns the snapshot file path.
func (s *FileStore) Path() string { return s.path }

// Fetch reads the snapshot. An empty or missing file returns
// ErrNoSnapshot.
func (s *FileStore) Fetch() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.openLocked()
	if err != nil {
		return nil, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("session: seeking %s: %w", s.path, err)
	}
	data, err := io.ReadAll(io.LimitReader(file, maxSnapshotSize))
	if err != nil {
		return nil, fmt.Errorf("session: reading %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoSnapshot
	}

	if s.passphrase != "" {
		data, err = s.decrypt(data)
		if err != nil {
			return nil, err
		}
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("session: decoding snapshot %s: %w", s.path, err)
	}

	if digest, err := codec.Fingerprint(&snapshot); err == nil {
		s.last = digest
	}
	return &snapshot, nil
}

// Dump replaces the file contents with snapshot.
func (s *FileStore) Dump(snapshot *Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("session: Dump called with nil snapshot")
	}
	digest, err := codec.Fingerprint(snapshot)
	if err != nil {
		return fmt.Errorf("session: fingerprinting snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if digest == s.last {
		s.logger.Debug("snapshot unchanged, skipping write", "path", s.path)
		return nil
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("session: encoding snapshot: %w", err)
	}
	if s.passphrase != "" {
		data, err = s.encrypt(data)
		if err != nil {
			return err
		}
	}

	file, err := s.openLocked()
	if err != nil {
		return err
	}
	// The previous snapshot may be longer; truncate before writing so
	// no trailing bytes survive.
	s.last = codec.Digest{}
	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("session: truncating %s: %w", s.path, err)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("session: seeking %s: %w", s.path, err)
	}
	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("session: writing %s: %w", s.path, err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("session: syncing %s: %w", s.path, err)
	}
	s.last = digest

	s.logger.Debug("snapshot written", "path", s.path, "bytes", len(data), "fingerprint", digest.String())
	return nil
}

// Close releases the lock and closes the file. The store must not be
// used afterwards.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	file := s.file
	s.file = nil
	if err := unix.Flock(int(file.Fd()), unix.LOCK_UN); err != nil {
		file.Close()
		return fmt.Errorf("session: unlocking %s: %w", s.path, err)
	}
	return file.Close()
}

// openLocked returns the store's file, opening and locking it on first
// use. Caller must hold s.mu.
func (s *FileStore) openLocked() (*os.File, error) {
	if s.file != nil {
		return s.file, nil
	}
	file, err := os.OpenFile(s.path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("session: opening %s: %w", s.path, err)
	}
	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w: %s", ErrStoreLocked, s.path)
		}
		return nil, fmt.Errorf("session: locking %s: %w", s.path, err)
	}
	s.file = file
	return file, nil
}

func (s *FileStore) encrypt(plaintext []byte) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(s.passphrase)
	if err != nil {
		return nil, fmt.Errorf("session: creating scrypt recipient: %w", err)
	}
	recipient.SetWorkFactor(s.scryptWorkFactor)

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipient)
	if err != nil {
		return nil, fmt.Errorf("session: creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return nil, fmt.Errorf("session: encrypting snapshot: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("session: finalizing snapshot encryption: %w", err)
	}
	return ciphertext.Bytes(), nil
}

func (s *FileStore) decrypt(ciphertext []byte) ([]byte, error) {
	identity, err := age.NewScryptIdentity(s.passphrase)
	if err != nil {
		return nil, fmt.Errorf("session: creating scrypt identity: %w", err)
	}
	identity.SetMaxWorkFactor(max(s.scryptWorkFactor, DefaultScryptWorkFactor))

	reader, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, fmt.Errorf("session: decrypting snapshot %s: %w", s.path, err)
	}
	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("session: reading decrypted snapshot %s: %w", s.path, err)
	}
	return plaintext, nil
}
