// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps the snapshot document in memory. Snapshots are
// stored in their JSON form, so Fetch never aliases a dumped value.
type MemoryStore struct {
	mu       sync.Mutex
	document []byte
	dumps    int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Fetch decodes the stored document, or returns ErrNoSnapshot.
func (m *MemoryStore) Fetch() (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.document) == 0 {
		return nil, ErrNoSnapshot
	}
	var snapshot Snapshot
	if err := json.Unmarshal(m.document, &snapshot); err != nil {
		return nil, fmt.Errorf("session: decoding snapshot: %w", err)
	}
	return &snapshot, nil
}

// Dump encodes and stores snapshot.
func (m *MemoryStore) Dump(snapshot *Snapshot) error {
	document, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("session: encoding snapshot: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.document = document
	m.dumps++
	return nil
}

// Dumps returns how many times Dump succeeded.
func (m *MemoryStore) Dumps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dumps
}

// Document returns a copy of the stored JSON document.
func (m *MemoryStore) Document() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.document...)
}
