// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package props

import (
	"context"
	"time"
)

// DefaultGroup is the deferred group used when none is named.
const DefaultGroup = "default"

// DeferredProp is excluded from the initial payload and instead
// announced under its group in the deferredProps index; the client
// fetches the group in a follow-up partial reload. The wrapped value
// may itself be another wrapper (a Scroll prop composed via its Defer
// transform keeps its merge and pagination behavior once fetched).
type DeferredProp struct {
	value any
	group string
	once  *oncePolicy
	cell  cell
}

// Defer wraps value as a deferred property, optionally naming the
// group it is batched under.
func Defer(value any, group ...string) *DeferredProp {
	g := DefaultGroup
	if len(group) > 0 && group[0] != "" {
		g = group[0]
	}
	return &DeferredProp{value: value, group: g}
}

func (p *DeferredProp) rawValue() any { return p.value }

// Group returns the deferred group name.
func (p *DeferredProp) Group() string { return p.group }

// Once marks the prop as once-only: the computed value is memoized in
// the wrapper and the client is told how long it stays valid.
func (p *DeferredProp) Once() *DeferredProp {
	p.ensureOnce()
	return p
}

// OnceFor sets a once policy with the given freshness window.
func (p *DeferredProp) OnceFor(ttl time.Duration) *DeferredProp {
	p.ensureOnce().ttl = ttl
	return p
}

// OnceKey overrides the once-registry key, which defaults to the
// prop's own key.
func (p *DeferredProp) OnceKey(key string) *DeferredProp {
	p.ensureOnce().key = key
	return p
}

func (p *DeferredProp) ensureOnce() *oncePolicy {
	if p.once == nil {
		p.once = &oncePolicy{}
	}
	return p.once
}

// included implements the Deferred inclusion predicate: explicitly
// requested on a partial reload, or its group is being fulfilled. An
// except entry wins over group fulfillment. A malformed context (nil)
// degrades to the safe initial-load interpretation: excluded.
func (p *DeferredProp) included(pctx *Context, key string, partial bool) bool {
	if pctx == nil {
		return false
	}
	if partial && pctx.exceptTop(key) {
		return false
	}
	if partial && pctx.requestedListed(key) {
		return true
	}
	return pctx.groupRequested(p.group)
}

// Value resolves the wrapped value directly, honoring any once policy.
// It returns ErrNotIncluded when the prop would not be included under
// pctx.
func (p *DeferredProp) Value(ctx context.Context, pctx *Context, key string) (any, error) {
	if pctx == nil {
		pctx = emptyContext
	}
	if !p.included(pctx, key, pctx.IsPartial()) {
		return nil, ErrNotIncluded
	}
	if p.once != nil {
		v, _, err := p.cell.resolve(ctx, p.value, p.once.ttl, p.once.refresh)
		return v, err
	}
	return invokeThunk(ctx, p.value)
}
