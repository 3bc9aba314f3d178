// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package achievement

import (
	"github.com/gobwas/glob"

	"github.com/holomush/holokit/internal/errs"
	"github.com/holomush/holokit/internal/game"
)

// Kind selects the event an achievement observes and what its pattern is
// matched against.
type Kind string

// Achievement kinds.
const (
	// KindConsumable counts ItemUsed events by item.
	KindConsumable Kind = "consumable"
	// KindPickup counts ItemPickedUp events by item.
	KindPickup Kind = "pickup"
	// KindWeapon counts PlayerKilled events by the killing weapon.
	KindWeapon Kind = "weapon"
	// KindWeaponFired counts WeaponUsed events by weapon.
	KindWeaponFired Kind = "weapon_fired"
	// KindWeaponReloaded counts WeaponReloaded events by weapon.
	KindWeaponReloaded Kind = "weapon_reloaded"
	// KindScript counts events of Definition.Event accepted by a Lua predicate.
	KindScript Kind = "script"
)

// Kinds returns every supported kind.
func Kinds() []Kind {
	return []Kind{KindConsumable, KindPickup, KindWeapon, KindWeaponFired, KindWeaponReloaded, KindScript}
}

// Event returns the event name observed by k, or "" for KindScript, whose
// event comes from the definition.
func (k Kind) Event() string {
	switch k {
	case KindConsumable:
		return game.EventItemUsed
	case KindPickup:
		return game.EventItemPickedUp
	case KindWeapon:
		return game.EventPlayerKilled
	case KindWeaponFired:
		return game.EventWeaponUsed
	case KindWeaponReloaded:
		return game.EventWeaponReloaded
	default:
		return ""
	}
}

// Valid reports whether k is a supported kind.
func (k Kind) Valid() bool {
	switch k {
	case KindConsumable, KindPickup, KindWeapon, KindWeaponFired, KindWeaponReloaded, KindScript:
		return true
	default:
		return false
	}
}

// Definition is the static description of an achievement.
type Definition struct {
	// ID uniquely identifies the achievement and keys its save data.
	ID string
	// Kind selects the observed event.
	Kind Kind
	// Match is a glob over the event subject, with '.' as the segment
	// separator. Empty matches every subject.
	Match string
	// Times is the number of partial triggers before the achievement is
	// achieved.
	Times int
	// Event names the observed event for KindScript.
	Event string
	// Script is the Lua source for KindScript.
	Script string
}

// EventName returns the event this definition observes.
func (d Definition) EventName() string {
	if d.Kind == KindScript {
		return d.Event
	}
	return d.Kind.Event()
}

// Validate checks the definition without compiling its script.
func (d Definition) Validate() error {
	if d.ID == "" {
		return errs.InvalidArgument("id", d.ID, "achievement id is required")
	}
	if !d.Kind.Valid() {
		return errs.InvalidArgument("kind", d.Kind, "achievement %s: unknown kind %q", d.ID, d.Kind)
	}
	if d.Times < 0 {
		return errs.InvalidArgument("times", d.Times, "achievement %s: times must be non-negative", d.ID)
	}
	if _, err := compilePattern(d.Match); err != nil {
		return errs.InvalidArgument("match", d.Match, "achievement %s: invalid match pattern: %v", d.ID, err)
	}

	if d.Kind == KindScript {
		if !game.IsKnown(d.Event) {
			return errs.InvalidArgument("event", d.Event, "achievement %s: unknown event %q", d.ID, d.Event)
		}
		if d.Script == "" {
			return errs.InvalidArgument("script", "", "achievement %s: script kind requires a script", d.ID)
		}
		return nil
	}

	if d.Event != "" && d.Event != d.Kind.Event() {
		return errs.InvalidArgument("event", d.Event, "achievement %s: kind %s observes %s", d.ID, d.Kind, d.Kind.Event())
	}
	if d.Script != "" {
		return errs.InvalidArgument("script", "<set>", "achievement %s: script is only valid for kind %s", d.ID, KindScript)
	}
	return nil
}

// compilePattern compiles a subject glob. '*' stays within one '.'-separated
// segment and '**' crosses segments. An empty pattern matches everything.
func compilePattern(pattern string) (glob.Glob, error) {
	if pattern == "" {
		pattern = "**"
	}
	return glob.Compile(pattern, '.')
}
