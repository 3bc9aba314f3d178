// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps saves in memory. The zero value is not usable; call
// NewMemoryStore.
type MemoryStore struct {
	mu    sync.RWMutex
	saves map[ulid.ULID]*SaveGame
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		saves: make(map[ulid.ULID]*SaveGame),
		now:   time.Now,
	}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context, profileID ulid.ULID) (*SaveGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	save, ok := s.saves[profileID]
	if !ok {
		return nil, notFound(profileID)
	}
	return save.Clone(), nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, save *SaveGame) error {
	if err := save.Validate(); err != nil {
		return err
	}

	stored := save.Clone()
	stored.UpdatedAt = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves[save.ProfileID] = stored
	return nil
}
