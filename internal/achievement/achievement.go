// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package achievement counts matching gameplay events towards one-shot
// achievements.
//
// An Achievement starts Unbound. Bind subscribes it to its event on the bus;
// every matching event calls Trigger, which decrements the remaining count
// and publishes AchievementTriggered, or, once the count is exhausted,
// publishes AchievementAchieved. An achieved achievement stays bound and
// keeps publishing AchievementAchieved for further matches; unbinding it is
// left to whoever consumes that message.
package achievement

import (
	"log/slog"
	"time"

	"github.com/gobwas/glob"

	"github.com/holomush/holokit/internal/bus"
	"github.com/holomush/holokit/internal/errs"
	"github.com/holomush/holokit/internal/game"
	"github.com/holomush/holokit/internal/script"
)

// State is the binding state of an achievement.
type State uint8

// Binding states.
const (
	StateUnbound State = iota
	StateBound
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateBound:
		return "bound"
	default:
		return "unknown"
	}
}

// AchievementTriggered is published for each partial progress step.
type AchievementTriggered struct {
	Achievement *Achievement
	// Remaining is the count left after this trigger.
	Remaining int
}

// AchievementAchieved is published when a trigger finds no count remaining.
type AchievementAchieved struct {
	Achievement *Achievement
}

// Achievement is a countdown over one filtered event stream.
type Achievement struct {
	def       Definition
	times     int
	state     State
	sub       *bus.Subscription
	bus       *bus.Bus
	pattern   glob.Glob
	predicate *script.Predicate
	scriptOps []script.Option
	logger    *slog.Logger
}

// Option configures an Achievement.
type Option func(*Achievement)

// WithLogger sets the logger used for predicate failures.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Achievement) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithScriptTimeout bounds each run of a KindScript predicate. A script
// that runs past it counts as no match.
func WithScriptTimeout(d time.Duration) Option {
	return func(a *Achievement) {
		a.scriptOps = append(a.scriptOps, script.WithTimeout(d))
	}
}

// New validates def and builds an unbound achievement publishing on b.
// Times starts at def.Times. KindScript definitions compile their script
// here; call Close to release it.
func New(b *bus.Bus, def Definition, opts ...Option) (*Achievement, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	pattern, err := compilePattern(def.Match)
	if err != nil {
		return nil, errs.InvalidArgument("match", def.Match, "achievement %s: invalid match pattern: %v", def.ID, err)
	}

	a := &Achievement{
		def:     def,
		times:   def.Times,
		bus:     b,
		pattern: pattern,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if def.Kind == KindScript {
		a.predicate, err = script.Compile(def.ID, def.Script, a.scriptOps...)
		if err != nil {
			return nil, err
		}
	}
	return a, nil
}

// ID returns the achievement id.
func (a *Achievement) ID() string { return a.def.ID }

// Definition returns the static definition.
func (a *Achievement) Definition() Definition { return a.def }

// Times returns the remaining trigger count.
func (a *Achievement) Times() int { return a.times }

// State returns the binding state.
func (a *Achievement) State() State { return a.state }

// SetTimes restores the remaining count, typically from save data.
func (a *Achievement) SetTimes(times int) error {
	if times < 0 {
		return errs.InvalidArgument("times", times, "achievement %s: times must be non-negative", a.def.ID)
	}
	a.times = times
	return nil
}

// Matches reports whether ev counts towards this achievement.
func (a *Achievement) Matches(ev game.Event) bool {
	if ev.Name() != a.def.EventName() {
		return false
	}
	if !a.pattern.Match(ev.Subject()) {
		return false
	}
	if a.predicate == nil {
		return true
	}

	ok, err := a.predicate.Match(ev.Fields())
	if err != nil {
		errs.LogError(a.logger, "achievement predicate failed", err)
		return false
	}
	return ok
}

// Observer subscribes to the achievement's event on the bus, calling Trigger
// for each match. The caller owns the returned subscription.
func (a *Achievement) Observer() (*bus.Subscription, error) {
	return game.Subscribe(a.bus, a.def.EventName(), a.Matches, func(game.Event) {
		if err := a.Trigger(); err != nil {
			errs.LogError(a.logger, "achievement trigger failed", err)
		}
	})
}

// Bind attaches the observer. Binding an already bound achievement returns
// an INVALID_STATE error and leaves the existing subscription in place.
func (a *Achievement) Bind() error {
	if a.state == StateBound {
		return errs.InvalidState("bind", a.state.String())
	}
	sub, err := a.Observer()
	if err != nil {
		return err
	}
	a.sub = sub
	a.state = StateBound
	return nil
}

// Unbind disposes the observer. Unbinding an unbound achievement returns an
// INVALID_STATE error.
func (a *Achievement) Unbind() error {
	if a.state != StateBound {
		return errs.InvalidState("unbind", a.state.String())
	}
	a.sub.Dispose()
	a.sub = nil
	a.state = StateUnbound
	return nil
}

// Trigger records one matching event. With count remaining it decrements and
// publishes AchievementTriggered; otherwise it calls Achieve.
func (a *Achievement) Trigger() error {
	if a.state != StateBound {
		return errs.InvalidState("trigger", a.state.String())
	}

	if a.times > 0 {
		a.times--
		recordTrigger(a.def.ID)
		bus.Publish(a.bus, AchievementTriggered{Achievement: a, Remaining: a.times})
		return nil
	}

	a.Achieve()
	return nil
}

// Achieve publishes AchievementAchieved. It does not unbind.
func (a *Achievement) Achieve() {
	recordAchieved(a.def.ID)
	bus.Publish(a.bus, AchievementAchieved{Achievement: a})
}

// Close unbinds the achievement if needed and releases its script.
func (a *Achievement) Close() {
	if a.state == StateBound {
		_ = a.Unbind() //nolint:errcheck // state checked above
	}
	if a.predicate != nil {
		a.predicate.Close()
	}
}
