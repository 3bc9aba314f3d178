// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package leveling

import (
	"github.com/holomush/holokit/internal/errs"
)

// Hooks are side-effect callbacks invoked by GainXP. Nil hooks are skipped.
type Hooks struct {
	// OnXPGained receives the amount added by a successful GainXP.
	OnXPGained func(amount int)
	// OnLeveledUp receives the level after the gain.
	OnLeveledUp func(level int)
}

// Option configures an Entity.
type Option func(*Entity)

// WithHooks installs the XP and level-up callbacks.
func WithHooks(h Hooks) Option {
	return func(e *Entity) {
		e.hooks = h
	}
}

// Entity is something that accumulates XP against a shared curve.
type Entity struct {
	xp    int
	curve Curve
	hooks Hooks
}

// NewEntity creates an entity holding xp, typically restored from a save.
func NewEntity(curve Curve, xp int, opts ...Option) (*Entity, error) {
	if xp < 0 {
		return nil, errs.InvalidArgument("xp", xp, "xp must be non-negative")
	}
	e := &Entity{xp: xp, curve: curve}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// XP returns the cumulative XP.
func (e *Entity) XP() int { return e.xp }

// Curve returns the curve the entity levels against.
func (e *Entity) Curve() Curve { return e.curve }

// MaxLevel returns the curve's max level.
func (e *Entity) MaxLevel() int { return e.curve.MaxLevel() }

// Level returns the current level.
func (e *Entity) Level() int { return e.curve.LevelFor(e.xp) }

// NextLevelXP returns the next threshold, or Unbounded.
func (e *Entity) NextLevelXP() int { return e.curve.NextLevelXP(e.xp) }

// PreviousLevelXP returns the threshold below the current level.
func (e *Entity) PreviousLevelXP() int { return e.curve.PreviousLevelXP(e.xp) }

// XPToNextLevel returns the XP still needed, or Unbounded.
func (e *Entity) XPToNextLevel() int { return e.curve.XPToNextLevel(e.xp) }

// IsMaxed reports whether the entity is at max level.
func (e *Entity) IsMaxed() bool { return e.curve.IsMaxed(e.xp) }

// Progress returns the fraction of the current level completed.
func (e *Entity) Progress() float64 { return e.curve.Progress(e.xp) }

// GainXP adds amount to the entity's XP.
//
// Whether the gain levels the entity up is decided once, before XP changes,
// so a gain that crosses several thresholds fires OnLeveledUp a single time.
func (e *Entity) GainXP(amount int) error {
	if amount < 0 {
		return errs.InvalidArgument("amount", amount, "xp gain must be non-negative")
	}
	if amount > Unbounded-e.xp {
		return errs.InvalidArgument("amount", amount, "xp gain overflows current xp %d", e.xp)
	}

	willLevelUp := !e.IsMaxed() && e.XPToNextLevel() <= amount
	e.xp += amount

	recordXPGained(amount)
	if e.hooks.OnXPGained != nil {
		e.hooks.OnXPGained(amount)
	}

	if willLevelUp {
		recordLevelUp()
		if e.hooks.OnLeveledUp != nil {
			e.hooks.OnLeveledUp(e.Level())
		}
	}
	return nil
}
