// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/holokit/internal/errs"
)

// Compile-time interface check.
var _ Store = (*FileStore)(nil)

// FileStore keeps one JSON document per profile in a directory.
type FileStore struct {
	dir string
	now func() time.Time
}

// NewFileStore creates a store rooted at dir, creating it with 0700
// permissions if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errs.Storage("create save directory", err)
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Dir returns the directory the store writes to.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(profileID ulid.ULID) string {
	return filepath.Join(s.dir, profileID.String()+".json")
}

// Load implements Store.
func (s *FileStore) Load(_ context.Context, profileID ulid.ULID) (*SaveGame, error) {
	data, err := os.ReadFile(s.path(profileID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(profileID)
	}
	if err != nil {
		return nil, errs.Storage("read save", err)
	}

	var save SaveGame
	if err := json.Unmarshal(data, &save); err != nil {
		return nil, errs.Storage("decode save", err)
	}
	if save.Achievements == nil {
		save.Achievements = make(map[string]int)
	}
	return &save, nil
}

// Save implements Store. The document is written to a temporary file and
// renamed into place.
func (s *FileStore) Save(_ context.Context, save *SaveGame) error {
	if err := save.Validate(); err != nil {
		return err
	}

	stored := save.Clone()
	stored.UpdatedAt = s.now().UTC()

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return errs.Storage("encode save", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".save-*.json")
	if err != nil {
		return errs.Storage("create temp save", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // best effort; gone after rename

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // write error takes precedence
		return errs.Storage("write save", err)
	}
	if err := tmp.Close(); err != nil {
		return errs.Storage("close save", err)
	}
	if err := os.Rename(tmp.Name(), s.path(save.ProfileID)); err != nil {
		return errs.Storage("replace save", err)
	}
	return nil
}

func notFound(profileID ulid.ULID) error {
	return errs.NotFound("save game", profileID.String())
}
