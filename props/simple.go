// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package props

import "context"

// AlwaysProp is included on every resolution, full or partial, and
// bypasses the partial-reload positive filter entirely. The wrapped
// thunk is invoked at most once per wrapper instance; subsequent
// resolutions reuse the memoized value.
type AlwaysProp struct {
	value any
	cell  cell
}

// Always wraps value (plain data or a thunk) as an always-included
// property.
func Always(value any) *AlwaysProp {
	return &AlwaysProp{value: value}
}

func (p *AlwaysProp) rawValue() any { return p.value }

// Value resolves the wrapped value, memoizing the first computation
// for the lifetime of the wrapper instance. Always props have no
// exclusion predicate, so direct resolution is never a usage error.
func (p *AlwaysProp) Value(ctx context.Context) (any, error) {
	v, _, err := p.cell.resolve(ctx, p.value, 0, false)
	return v, err
}

// LazyProp is included only when a partial reload explicitly requests
// its key. On full loads and unrelated partials it is omitted with no
// metadata emitted.
type LazyProp struct {
	value any
}

// Lazy wraps value as a property fetched only on request.
func Lazy(value any) *LazyProp {
	return &LazyProp{value: value}
}

// Optional is an alias for Lazy; the two are behaviorally identical
// and both names exist in the protocol's vocabulary.
func Optional(value any) *LazyProp {
	return Lazy(value)
}

func (p *LazyProp) rawValue() any { return p.value }

// included implements the Lazy inclusion predicate.
func (p *LazyProp) included(pctx *Context, key string, partial bool) bool {
	return partial && pctx.requestedListed(key) && !pctx.exceptTop(key)
}

// Value resolves the wrapped value directly. It returns ErrNotIncluded
// when the inclusion predicate is false for pctx, so callers bypassing
// the resolver's policy gate fail loudly.
func (p *LazyProp) Value(ctx context.Context, pctx *Context, key string) (any, error) {
	if pctx == nil {
		pctx = emptyContext
	}
	if !p.included(pctx, key, pctx.IsPartial()) {
		return nil, ErrNotIncluded
	}
	return invokeThunk(ctx, p.value)
}
