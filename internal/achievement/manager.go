// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package achievement

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/holomush/holokit/internal/bus"
	"github.com/holomush/holokit/internal/errs"
)

// Notification names used in logs, metrics and UNHANDLED errors.
const (
	NotificationTriggered = "achievement.triggered"
	NotificationAchieved  = "achievement.achieved"
)

// Handler receives achievement notifications collected by a Manager.
type Handler interface {
	OnTriggered(msg AchievementTriggered) error
	OnAchieved(msg AchievementAchieved) error
}

// LogHandler logs notifications and otherwise ignores them. It is the
// Manager's default handler.
type LogHandler struct {
	Logger *slog.Logger
}

func (h LogHandler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// OnTriggered implements Handler.
func (h LogHandler) OnTriggered(msg AchievementTriggered) error {
	h.logger().Info("achievement progressed",
		"achievement", msg.Achievement.ID(),
		"remaining", msg.Remaining,
	)
	return nil
}

// OnAchieved implements Handler.
func (h LogHandler) OnAchieved(msg AchievementAchieved) error {
	h.logger().Info("achievement achieved", "achievement", msg.Achievement.ID())
	return nil
}

// Compile-time interface check.
var _ Handler = LogHandler{}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithHandler replaces the default LogHandler. A nil handler makes every
// dispatch fail with UNHANDLED.
func WithHandler(h Handler) ManagerOption {
	return func(m *Manager) {
		m.handler = h
	}
}

// WithManagerLogger sets the logger for the manager and the achievements it
// builds.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// Manager owns a set of achievements on one bus, binds and unbinds them in
// bulk, and forwards their notifications to a Handler.
type Manager struct {
	bus          *bus.Bus
	handler      Handler
	logger       *slog.Logger
	achievements map[string]*Achievement
	order        []string
	subs         []*bus.Subscription
}

// NewManager creates a manager with the LogHandler default.
func NewManager(b *bus.Bus, opts ...ManagerOption) *Manager {
	m := &Manager{
		bus:          b,
		logger:       slog.Default(),
		achievements: make(map[string]*Achievement),
	}
	m.handler = LogHandler{Logger: m.logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add builds and registers achievements from defs. Duplicate ids are
// rejected; on error nothing from this call is registered.
func (m *Manager) Add(defs ...Definition) error {
	built := make([]*Achievement, 0, len(defs))
	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		if _, exists := m.achievements[def.ID]; exists || seen[def.ID] {
			closeAll(built)
			return errs.InvalidArgument("id", def.ID, "duplicate achievement id %q", def.ID)
		}
		seen[def.ID] = true

		a, err := New(m.bus, def, WithLogger(m.logger))
		if err != nil {
			closeAll(built)
			return err
		}
		built = append(built, a)
	}

	for _, a := range built {
		m.achievements[a.ID()] = a
		m.order = append(m.order, a.ID())
	}
	return nil
}

// Get returns the achievement with id.
func (m *Manager) Get(id string) (*Achievement, bool) {
	a, ok := m.achievements[id]
	return a, ok
}

// All returns the achievements in registration order.
func (m *Manager) All() []*Achievement {
	out := make([]*Achievement, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.achievements[id])
	}
	return out
}

// Started reports whether BindAll has run without a matching UnbindAll.
func (m *Manager) Started() bool {
	return m.subs != nil
}

// BindAll subscribes the manager to achievement notifications and binds
// every registered achievement. Calling it while started returns
// INVALID_STATE. Individual bind failures are joined; the remaining
// achievements are still bound.
func (m *Manager) BindAll() error {
	if m.Started() {
		return errs.InvalidState("bind all", "started")
	}

	m.subs = []*bus.Subscription{
		bus.Subscribe(m.bus, func(msg AchievementTriggered) { m.deliver(NotificationTriggered, msg) }),
		bus.Subscribe(m.bus, func(msg AchievementAchieved) { m.deliver(NotificationAchieved, msg) }),
	}

	var joined []error
	for _, a := range m.All() {
		if err := a.Bind(); err != nil {
			joined = append(joined, err)
		}
	}
	return errors.Join(joined...)
}

// UnbindAll unbinds every bound achievement and drops the manager's own
// subscriptions. Achievements that are already unbound are skipped.
func (m *Manager) UnbindAll() error {
	if !m.Started() {
		return errs.InvalidState("unbind all", "stopped")
	}

	var joined []error
	for _, a := range m.All() {
		if a.State() != StateBound {
			continue
		}
		if err := a.Unbind(); err != nil {
			joined = append(joined, err)
		}
	}

	for _, sub := range m.subs {
		sub.Dispose()
	}
	m.subs = nil
	return errors.Join(joined...)
}

// Dispatch forwards an AchievementTriggered or AchievementAchieved message to
// the handler. It returns UNHANDLED when no handler is configured.
func (m *Manager) Dispatch(msg any) error {
	switch msg := msg.(type) {
	case AchievementTriggered:
		if m.handler == nil {
			return errs.Unhandled(NotificationTriggered)
		}
		return m.handler.OnTriggered(msg)
	case AchievementAchieved:
		if m.handler == nil {
			return errs.Unhandled(NotificationAchieved)
		}
		return m.handler.OnAchieved(msg)
	default:
		return errs.InvalidArgument("msg", msg, "unsupported notification %T", msg)
	}
}

// Snapshot returns the remaining count of every achievement by id.
func (m *Manager) Snapshot() map[string]int {
	out := make(map[string]int, len(m.achievements))
	for id, a := range m.achievements {
		out[id] = a.Times()
	}
	return out
}

// Restore sets remaining counts from saved data. Ids without a registered
// achievement are logged and skipped.
func (m *Manager) Restore(saved map[string]int) error {
	ids := make([]string, 0, len(saved))
	for id := range saved {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		a, ok := m.achievements[id]
		if !ok {
			m.logger.Warn("saved progress for unknown achievement, skipping", "achievement", id)
			continue
		}
		if err := a.SetTimes(saved[id]); err != nil {
			return err
		}
	}
	return nil
}

// Close unbinds everything and releases achievement scripts.
func (m *Manager) Close() {
	if m.Started() {
		if err := m.UnbindAll(); err != nil {
			errs.LogError(m.logger, "failed to unbind achievements", err)
		}
	}
	closeAll(m.All())
}

func (m *Manager) deliver(notification string, msg any) {
	if err := m.Dispatch(msg); err != nil {
		recordDispatchFailure(notification)
		errs.LogError(m.logger, "achievement notification not handled", err)
	}
}

func closeAll(achievements []*Achievement) {
	for _, a := range achievements {
		a.Close()
	}
}
