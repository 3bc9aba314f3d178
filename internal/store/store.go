// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package store persists save games: a profile's XP and the remaining
// trigger counts of its achievements.
package store

import (
	"context"
	"crypto/rand"
	"maps"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/holokit/internal/errs"
)

// SaveGame is the persisted progression state of one profile.
type SaveGame struct {
	ProfileID    ulid.ULID      `json:"profile_id"`
	XP           int            `json:"xp"`
	Achievements map[string]int `json:"achievements"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Store loads and saves save games.
type Store interface {
	// Load returns the save game for profileID, or a NOT_FOUND error.
	Load(ctx context.Context, profileID ulid.ULID) (*SaveGame, error)
	// Save creates or replaces the save game.
	Save(ctx context.Context, save *SaveGame) error
}

// NewSaveGame returns an empty save for profileID.
func NewSaveGame(profileID ulid.ULID) *SaveGame {
	return &SaveGame{
		ProfileID:    profileID,
		Achievements: make(map[string]int),
	}
}

// Validate checks that the save can be persisted.
func (s *SaveGame) Validate() error {
	if s.ProfileID == (ulid.ULID{}) {
		return errs.InvalidArgument("profile_id", "", "profile id is required")
	}
	if s.XP < 0 {
		return errs.InvalidArgument("xp", s.XP, "xp must be non-negative")
	}
	for id, times := range s.Achievements {
		if times < 0 {
			return errs.InvalidArgument("achievements", id, "achievement %s: times must be non-negative", id)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (s *SaveGame) Clone() *SaveGame {
	c := *s
	c.Achievements = maps.Clone(s.Achievements)
	if c.Achievements == nil {
		c.Achievements = make(map[string]int)
	}
	return &c
}

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// NewProfileID generates a new profile ULID.
func NewProfileID() ulid.ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
}

// ParseProfileID parses a profile ULID string.
func ParseProfileID(s string) (ulid.ULID, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return ulid.ULID{}, errs.InvalidArgument("profile_id", s, "invalid profile id: %v", err)
	}
	return id, nil
}
