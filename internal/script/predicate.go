// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package script

import (
	"context"
	"sync"
	"time"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/holomush/holokit/internal/errs"
)

// entryPoint is the global function a predicate script must define.
const entryPoint = "match"

// DefaultTimeout bounds a single load or match call.
const DefaultTimeout = time.Second

// Option configures a Predicate.
type Option func(*Predicate)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(p *Predicate) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// Predicate is a compiled Lua script exposing match(event) -> boolean.
//
// The event argument is a table of string fields (name, item, weapon, ...).
// A Predicate owns its Lua state; call Close when done.
type Predicate struct {
	name    string
	timeout time.Duration
	mu      sync.Mutex
	L       *lua.LState
	fn      *lua.LFunction
}

// Compile loads source into a fresh sandbox and resolves its match function.
// Loading is subject to the same timeout as Match.
func Compile(name, source string, opts ...Option) (*Predicate, error) {
	p := &Predicate{name: name, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(p)
	}

	L, err := newState()
	if err != nil {
		return nil, errs.Script(name, err)
	}

	err = p.bounded(L, func() error { return L.DoString(source) })
	if err != nil {
		L.Close()
		return nil, oops.Code(errs.CodeScript).
			In("script").
			With("script", name).
			Hint("syntax or runtime error while loading").
			Wrap(err)
	}

	fn, ok := L.GetGlobal(entryPoint).(*lua.LFunction)
	if !ok {
		L.Close()
		return nil, oops.Code(errs.CodeScript).
			In("script").
			With("script", name).
			Errorf("script must define a global %s(event) function", entryPoint)
	}

	p.L, p.fn = L, fn
	return p, nil
}

// bounded runs fn with a deadline attached to L. A script still running
// when the deadline passes is aborted with a context error.
func (p *Predicate) bounded(L *lua.LState, fn func() error) error {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	L.SetContext(ctx)
	defer L.RemoveContext()

	err := fn()
	if err != nil && ctx.Err() != nil {
		return oops.Code(errs.CodeScript).
			In("script").
			With("script", p.name).
			With("timeout", p.timeout.String()).
			Hint("script exceeded its execution time limit").
			Wrap(ctx.Err())
	}
	return err
}

// Name returns the name the predicate was compiled under.
func (p *Predicate) Name() string { return p.name }

// Match calls match(event) with fields as a Lua table. Only a boolean true
// result counts as a match.
func (p *Predicate) Match(fields map[string]string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.L == nil {
		return false, errs.InvalidState("match", "closed")
	}

	tbl := p.L.NewTable()
	for k, v := range fields {
		tbl.RawSetString(k, lua.LString(v))
	}

	err := p.bounded(p.L, func() error {
		return p.L.CallByParam(lua.P{
			Fn:      p.fn,
			NRet:    1,
			Protect: true,
		}, tbl)
	})
	if err != nil {
		if errs.HasCode(err, errs.CodeScript) {
			return false, err
		}
		return false, errs.Script(p.name, err)
	}

	ret := p.L.Get(-1)
	p.L.Pop(1)
	return ret == lua.LTrue, nil
}

// Close releases the Lua state. Close is idempotent.
func (p *Predicate) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.L != nil {
		p.L.Close()
		p.L = nil
	}
}
