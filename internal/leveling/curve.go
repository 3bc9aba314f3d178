// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package leveling resolves levels from cumulative XP against a threshold curve.
package leveling

import (
	"math"
	"sort"

	"github.com/holomush/holokit/internal/errs"
)

// Unbounded is returned as the next-level threshold once the curve is
// exhausted.
const Unbounded = math.MaxInt

// Curve holds ascending XP thresholds. Entry i is the total XP required to
// reach level i+2; level 1 requires no XP. A Curve is read-only once built
// and may be shared between entities.
type Curve []int

// NewCurve copies and validates thresholds.
func NewCurve(thresholds []int) (Curve, error) {
	for i, xp := range thresholds {
		if xp < 0 {
			return nil, errs.InvalidArgument("xp_curve", xp, "threshold %d is negative", i)
		}
		if i > 0 && xp < thresholds[i-1] {
			return nil, errs.InvalidArgument("xp_curve", xp,
				"threshold %d (%d) is below threshold %d (%d)", i, xp, i-1, thresholds[i-1])
		}
	}
	c := make(Curve, len(thresholds))
	copy(c, thresholds)
	return c, nil
}

// MaxLevel returns the highest reachable level. It is always at least 1.
func (c Curve) MaxLevel() int {
	return len(c) + 1
}

// LevelFor returns the level for xp: one more than the index of the first
// threshold that is >= xp, or MaxLevel when xp exceeds every threshold.
func (c Curve) LevelFor(xp int) int {
	return sort.SearchInts(c, xp) + 1
}

// NextLevelXP returns the threshold of the level after the one xp is in, or
// Unbounded at max level.
func (c Curve) NextLevelXP(xp int) int {
	level := c.LevelFor(xp)
	if level >= c.MaxLevel() {
		return Unbounded
	}
	return c[level-1]
}

// PreviousLevelXP returns the threshold of the level before the one xp is
// in, or 0 at level 1.
func (c Curve) PreviousLevelXP(xp int) int {
	level := c.LevelFor(xp)
	if level <= 1 {
		return 0
	}
	return c[level-2]
}

// XPToNextLevel returns the XP still needed to reach NextLevelXP. At max
// level it returns Unbounded.
func (c Curve) XPToNextLevel(xp int) int {
	next := c.NextLevelXP(xp)
	if next == Unbounded {
		return Unbounded
	}
	return next - xp
}

// IsMaxed reports whether xp resolves to the final level.
func (c Curve) IsMaxed(xp int) bool {
	return c.LevelFor(xp) >= c.MaxLevel()
}

// Progress returns how far xp sits between the previous and next thresholds,
// in [0, 1]. It is 1 at max level.
func (c Curve) Progress(xp int) float64 {
	if c.IsMaxed(xp) {
		return 1
	}
	prev, next := c.PreviousLevelXP(xp), c.NextLevelXP(xp)
	if next <= prev {
		return 1
	}
	p := float64(xp-prev) / float64(next-prev)
	return math.Max(0, math.Min(1, p))
}
