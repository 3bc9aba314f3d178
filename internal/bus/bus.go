// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package bus provides a typed, synchronous publish/subscribe dispatcher.
//
// Messages are routed by their exact Go type. Publish delivers to a snapshot
// of the current subscribers, in subscription order, on the calling
// goroutine, and returns only after every handler has run.
package bus

import (
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
)

// Bus distributes typed messages to subscribers.
//
// A Bus is safe for concurrent use, but handlers run on the publisher's
// goroutine and the intended model is a single event loop.
type Bus struct {
	mu     sync.RWMutex
	subs   map[reflect.Type][]*Subscription
	logger *slog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for handler panics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs:   make(map[reflect.Type][]*Subscription),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscription is the handle returned by Subscribe. Disposing it removes the
// handler from the bus.
type Subscription struct {
	bus      *Bus
	key      reflect.Type
	deliver  func(any)
	disposed atomic.Bool
}

// Dispose unregisters the subscription. Disposing twice is a no-op.
func (s *Subscription) Dispose() {
	if s == nil || !s.disposed.CompareAndSwap(false, true) {
		return
	}
	s.bus.remove(s)
}

// Disposed reports whether Dispose has been called.
func (s *Subscription) Disposed() bool {
	return s.disposed.Load()
}

// Subscribe registers handler for messages of exactly type T.
func Subscribe[T any](b *Bus, handler func(T)) *Subscription {
	sub := &Subscription{
		bus: b,
		key: reflect.TypeFor[T](),
		deliver: func(msg any) {
			handler(msg.(T))
		},
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[sub.key] = append(b.subs[sub.key], sub)
	return sub
}

// Where wraps handler so it only sees messages accepted by pred.
func Where[T any](pred func(T) bool, handler func(T)) func(T) {
	return func(msg T) {
		if pred(msg) {
			handler(msg)
		}
	}
}

// SubscribeWhere is shorthand for Subscribe(b, Where(pred, handler)).
func SubscribeWhere[T any](b *Bus, pred func(T) bool, handler func(T)) *Subscription {
	return Subscribe(b, Where(pred, handler))
}

// Publish delivers msg to every current subscriber of type T. Subscribers
// added while the publish is in progress do not receive msg; subscribers
// disposed by an earlier handler are skipped.
func Publish[T any](b *Bus, msg T) {
	key := reflect.TypeFor[T]()

	b.mu.RLock()
	snapshot := make([]*Subscription, len(b.subs[key]))
	copy(snapshot, b.subs[key])
	b.mu.RUnlock()

	recordPublish(key)

	for _, sub := range snapshot {
		if sub.disposed.Load() {
			continue
		}
		b.invoke(key, sub, msg)
	}
}

// Len returns the number of live subscribers for type T.
func Len[T any](b *Bus) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[reflect.TypeFor[T]()])
}

func (b *Bus) invoke(key reflect.Type, sub *Subscription, msg any) {
	defer func() {
		if r := recover(); r != nil {
			recordHandlerPanic(key)
			b.logger.Error("bus handler panicked",
				"message_type", key.String(),
				"panic", r,
			)
		}
	}()
	sub.deliver(msg)
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[sub.key]
	for i, s := range subs {
		if s == sub {
			// Copy rather than append in place: an in-flight Publish may
			// still hold the old backing array as its snapshot.
			next := make([]*Subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.subs, sub.key)
			} else {
				b.subs[sub.key] = next
			}
			return
		}
	}
}
