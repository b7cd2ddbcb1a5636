// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	record    Record
	expiresAt time.Time
}

// MemoryStore is an in-process [Store] for tests and single-node development.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get implements [Store].
func (store *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	entry, ok := store.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !store.now().Before(entry.expiresAt) {
		delete(store.entries, id)
		return nil, ErrNotFound
	}

	record := entry.record
	record.Flashes = append([]Flash(nil), entry.record.Flashes...)
	return &record, nil
}

// Save implements [Store].
func (store *MemoryStore) Save(_ context.Context, record *Record, ttl time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	stored := *record
	stored.Flashes = append([]Flash(nil), record.Flashes...)
	store.entries[record.ID] = memoryEntry{record: stored, expiresAt: store.now().Add(ttl)}
	return nil
}

// Delete implements [Store].
func (store *MemoryStore) Delete(_ context.Context, id string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.entries, id)
	return nil
}

// Len returns the number of live entries.
func (store *MemoryStore) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.entries)
}
