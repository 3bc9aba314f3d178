// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package session ties one profile's progression together: an event bus,
// the leveled player, the achievement manager and the save store.
package session

import (
	"context"
	"errors"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/holokit/internal/achievement"
	"github.com/holomush/holokit/internal/bus"
	"github.com/holomush/holokit/internal/content"
	"github.com/holomush/holokit/internal/errs"
	"github.com/holomush/holokit/internal/game"
	"github.com/holomush/holokit/internal/leveling"
	"github.com/holomush/holokit/internal/store"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger for the session and everything it builds.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithHandler sets the handler the recorder forwards achievement
// notifications to. The default is achievement.LogHandler.
func WithHandler(h achievement.Handler) Option {
	return func(s *Session) {
		s.next = h
		s.nextSet = true
	}
}

// Session is one profile's progression run. It is not safe for concurrent
// use; events are processed on a single goroutine.
type Session struct {
	profile  ulid.ULID
	store    store.Store
	curve    leveling.Curve
	bus      *bus.Bus
	manager  *achievement.Manager
	recorder *Recorder
	player   *leveling.Entity
	logger   *slog.Logger
	next     achievement.Handler
	nextSet  bool
	started  bool
}

// New builds a session for profile from a validated content pack.
func New(pack *content.Pack, st store.Store, profile ulid.ULID, opts ...Option) (*Session, error) {
	if st == nil {
		return nil, errs.InvalidArgument("store", nil, "store is required")
	}
	if profile == (ulid.ULID{}) {
		return nil, errs.InvalidArgument("profile", "", "profile id is required")
	}
	curve, err := pack.Curve()
	if err != nil {
		return nil, err
	}

	s := &Session{
		profile: profile,
		store:   st,
		curve:   curve,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("profile", profile.String())
	if !s.nextSet {
		s.next = achievement.LogHandler{Logger: s.logger}
	}

	s.bus = bus.New(bus.WithLogger(s.logger))
	s.recorder = NewRecorder(s.next)
	s.manager = achievement.NewManager(s.bus,
		achievement.WithHandler(s.recorder),
		achievement.WithManagerLogger(s.logger),
	)
	if err := s.manager.Add(pack.Definitions()...); err != nil {
		return nil, err
	}
	return s, nil
}

// Start loads the profile's save, or starts fresh when none exists, and
// binds every achievement.
func (s *Session) Start(ctx context.Context) error {
	if s.started {
		return errs.InvalidState("start", "started")
	}

	save, err := s.store.Load(ctx, s.profile)
	switch {
	case errs.HasCode(err, errs.CodeNotFound):
		s.logger.Info("no save game, starting fresh")
		save = store.NewSaveGame(s.profile)
	case err != nil:
		return err
	}

	player, err := leveling.NewEntity(s.curve, save.XP, leveling.WithHooks(leveling.Hooks{
		OnXPGained: func(amount int) {
			s.logger.Debug("xp gained", "amount", amount)
		},
		OnLeveledUp: func(level int) {
			s.logger.Info("leveled up", "level", level)
			s.recorder.LevelUp(level)
		},
	}))
	if err != nil {
		return err
	}
	if err := s.manager.Restore(save.Achievements); err != nil {
		return err
	}
	if err := s.manager.BindAll(); err != nil {
		return err
	}

	s.player = player
	s.started = true
	s.logger.Info("session started", "xp", player.XP(), "level", player.Level())
	return nil
}

// Started reports whether the session is between Start and End.
func (s *Session) Started() bool { return s.started }

// Profile returns the session's profile id.
func (s *Session) Profile() ulid.ULID { return s.profile }

// Bus returns the session's event bus.
func (s *Session) Bus() *bus.Bus { return s.bus }

// Manager returns the achievement manager.
func (s *Session) Manager() *achievement.Manager { return s.manager }

// Recorder returns the notification recorder.
func (s *Session) Recorder() *Recorder { return s.recorder }

// Player returns the leveled player, nil before Start.
func (s *Session) Player() *leveling.Entity { return s.player }

// GainXP adds XP to the player.
func (s *Session) GainXP(amount int) error {
	if !s.started {
		return errs.InvalidState("gain xp", "stopped")
	}
	return s.player.GainXP(amount)
}

// Publish delivers a game event to the bound achievements.
func (s *Session) Publish(ev game.Event) error {
	if !s.started {
		return errs.InvalidState("publish", "stopped")
	}
	game.Publish(s.bus, ev)
	return nil
}

// Save persists the player's XP and achievement progress.
func (s *Session) Save(ctx context.Context) error {
	if s.player == nil {
		return errs.InvalidState("save", "stopped")
	}
	save := store.NewSaveGame(s.profile)
	save.XP = s.player.XP()
	save.Achievements = s.manager.Snapshot()
	return s.store.Save(ctx, save)
}

// End unbinds the achievements and saves. The session can be started
// again afterwards.
func (s *Session) End(ctx context.Context) error {
	if !s.started {
		return errs.InvalidState("end", "stopped")
	}
	s.started = false

	unbindErr := s.manager.UnbindAll()
	saveErr := s.Save(ctx)
	if err := errors.Join(unbindErr, saveErr); err != nil {
		return err
	}
	s.logger.Info("session ended", "xp", s.player.XP(), "level", s.player.Level())
	return nil
}

// Close releases achievement scripts. It does not save.
func (s *Session) Close() {
	s.manager.Close()
	s.started = false
}
