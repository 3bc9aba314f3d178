// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package game defines the domain events published by gameplay code.
//
// Events are immutable value records. Each one names a subject (the item or
// weapon identifier) that achievement patterns match against.
package game

import (
	"sort"

	"github.com/holomush/holokit/internal/bus"
	"github.com/holomush/holokit/internal/errs"
)

// Event names follow the pattern <entity>.<action>.
const (
	EventItemUsed       = "item.used"
	EventItemPickedUp   = "item.picked_up"
	EventWeaponUsed     = "weapon.used"
	EventWeaponReloaded = "weapon.reloaded"
	EventPlayerKilled   = "player.killed"
)

// Event is implemented by every gameplay message.
type Event interface {
	// Name returns the event name, e.g. "item.used".
	Name() string
	// Subject returns the identifier achievements filter on.
	Subject() string
	// Fields returns the event as flat string fields, including "name".
	Fields() map[string]string
}

// ItemUsed is published when a consumable item is used.
type ItemUsed struct {
	Item string
}

// ItemPickedUp is published when a player picks up an item.
type ItemPickedUp struct {
	Item   string
	Player string
}

// WeaponUsed is published when a weapon fires.
type WeaponUsed struct {
	Weapon string
}

// WeaponReloaded is published when a weapon is reloaded.
type WeaponReloaded struct {
	Weapon string
}

// PlayerKilled is published when a player is killed.
type PlayerKilled struct {
	Weapon string
	Victim string
}

func (e ItemUsed) Name() string    { return EventItemUsed }
func (e ItemUsed) Subject() string { return e.Item }
func (e ItemUsed) Fields() map[string]string {
	return map[string]string{"name": EventItemUsed, "item": e.Item}
}

func (e ItemPickedUp) Name() string    { return EventItemPickedUp }
func (e ItemPickedUp) Subject() string { return e.Item }
func (e ItemPickedUp) Fields() map[string]string {
	return map[string]string{"name": EventItemPickedUp, "item": e.Item, "player": e.Player}
}

func (e WeaponUsed) Name() string    { return EventWeaponUsed }
func (e WeaponUsed) Subject() string { return e.Weapon }
func (e WeaponUsed) Fields() map[string]string {
	return map[string]string{"name": EventWeaponUsed, "weapon": e.Weapon}
}

func (e WeaponReloaded) Name() string    { return EventWeaponReloaded }
func (e WeaponReloaded) Subject() string { return e.Weapon }
func (e WeaponReloaded) Fields() map[string]string {
	return map[string]string{"name": EventWeaponReloaded, "weapon": e.Weapon}
}

func (e PlayerKilled) Name() string    { return EventPlayerKilled }
func (e PlayerKilled) Subject() string { return e.Weapon }
func (e PlayerKilled) Fields() map[string]string {
	return map[string]string{"name": EventPlayerKilled, "weapon": e.Weapon, "victim": e.Victim}
}

// Names returns every known event name, sorted.
func Names() []string {
	names := []string{
		EventItemUsed,
		EventItemPickedUp,
		EventWeaponUsed,
		EventWeaponReloaded,
		EventPlayerKilled,
	}
	sort.Strings(names)
	return names
}

// IsKnown reports whether name is a known event name.
func IsKnown(name string) bool {
	switch name {
	case EventItemUsed, EventItemPickedUp, EventWeaponUsed, EventWeaponReloaded, EventPlayerKilled:
		return true
	default:
		return false
	}
}

// Publish sends ev on b under its concrete type, so typed subscribers
// registered with bus.Subscribe receive it.
func Publish(b *bus.Bus, ev Event) {
	switch e := ev.(type) {
	case ItemUsed:
		bus.Publish(b, e)
	case ItemPickedUp:
		bus.Publish(b, e)
	case WeaponUsed:
		bus.Publish(b, e)
	case WeaponReloaded:
		bus.Publish(b, e)
	case PlayerKilled:
		bus.Publish(b, e)
	}
}

// Decode builds an event from its name and fields. Unknown fields are
// ignored; unknown names are rejected.
func Decode(name string, fields map[string]string) (Event, error) {
	switch name {
	case EventItemUsed:
		return ItemUsed{Item: fields["item"]}, nil
	case EventItemPickedUp:
		return ItemPickedUp{Item: fields["item"], Player: fields["player"]}, nil
	case EventWeaponUsed:
		return WeaponUsed{Weapon: fields["weapon"]}, nil
	case EventWeaponReloaded:
		return WeaponReloaded{Weapon: fields["weapon"]}, nil
	case EventPlayerKilled:
		return PlayerKilled{Weapon: fields["weapon"], Victim: fields["victim"]}, nil
	default:
		return nil, errs.InvalidArgument("name", name, "unknown event %q", name)
	}
}

// Subscribe registers fn for the events called name, filtered by pred.
// It returns an INVALID_ARGUMENT error for an unknown name.
func Subscribe(b *bus.Bus, name string, pred func(Event) bool, fn func(Event)) (*bus.Subscription, error) {
	switch name {
	case EventItemUsed:
		return subscribe[ItemUsed](b, pred, fn), nil
	case EventItemPickedUp:
		return subscribe[ItemPickedUp](b, pred, fn), nil
	case EventWeaponUsed:
		return subscribe[WeaponUsed](b, pred, fn), nil
	case EventWeaponReloaded:
		return subscribe[WeaponReloaded](b, pred, fn), nil
	case EventPlayerKilled:
		return subscribe[PlayerKilled](b, pred, fn), nil
	default:
		return nil, errs.InvalidArgument("name", name, "unknown event %q", name)
	}
}

func subscribe[T Event](b *bus.Bus, pred func(Event) bool, fn func(Event)) *bus.Subscription {
	return bus.SubscribeWhere(b,
		func(e T) bool { return pred(e) },
		func(e T) { fn(e) },
	)
}
