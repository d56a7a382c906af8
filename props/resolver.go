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

	"golang.org/x/sync/errgroup"
)

// Resolved is the output of one resolve call: the property payload and
// the metadata side-channels the Inertia client consumes. All fields
// preserve property declaration order.
type Resolved struct {
	// Props is the resolved property payload.
	Props *Map

	// MergeProps, PrependProps, DeepMergeProps, and MatchPropsOn are
	// the dotted merge paths emitted by Merge and Scroll props.
	MergeProps     []string
	PrependProps   []string
	DeepMergeProps []string
	MatchPropsOn   []string

	// DeferredProps indexes the keys of deferred props excluded from
	// this payload by the group the client should fetch them under.
	DeferredProps *OrderedMap[[]string]

	// OnceProps is the once registry: effective key to source prop and
	// expiry, recorded for every once-flavored prop on Inertia
	// requests whether or not its value was included.
	OnceProps *OrderedMap[OnceEntry]

	// ScrollProps carries pagination metadata per included Scroll prop.
	ScrollProps *OrderedMap[ScrollMeta]
}

// Resolve computes the property payload for one request, evaluating
// thunks inline in declaration order. component is the page component
// being rendered; it anchors the partial-reload component guard.
// Thunk errors propagate unmodified and abort the call.
func Resolve(m *Map, pctx *Context, component string) (*Resolved, error) {
	return resolveProps(context.Background(), m, pctx, component, false)
}

// ResolveAsync is Resolve with concurrent evaluation: independent
// top-level thunks, nested thunks, slice elements, and Proper maps are
// computed in parallel and reassembled in declaration order. The first
// error cancels ctx for the remaining thunks and aborts the call.
func ResolveAsync(ctx context.Context, m *Map, pctx *Context, component string) (*Resolved, error) {
	return resolveProps(ctx, m, pctx, component, true)
}

// task is the per-key resolution plan: the inclusion decision made up
// front, the value computation to run, and the metadata to emit during
// ordered assembly.
type task struct {
	key        string
	prop       Prop
	include    bool
	deferGroup string // register under this group when excluded
	oncePol    *oncePolicy
	onceCell   *cell
	run        func(ctx context.Context) error
	value      any
	scrollMeta *ScrollMeta
	computedAt time.Time
}

func resolveProps(ctx context.Context, m *Map, pctx *Context, component string, async bool) (*Resolved, error) {
	if pctx == nil {
		pctx = emptyContext
	}
	r := &Resolved{
		Props:         NewMap(),
		DeferredProps: NewOrderedMap[[]string](),
		OnceProps:     NewOrderedMap[OnceEntry](),
		ScrollProps:   NewOrderedMap[ScrollMeta](),
	}
	if m == nil {
		return r, nil
	}
	partial := pctx.PartialFor(component)

	var tasks []*task
	unpackDotted(m).Range(func(key string, raw any) bool {
		tasks = append(tasks, planTask(key, raw, pctx, partial, async))
		return true
	})

	if async {
		g, gctx := errgroup.WithContext(ctx)
		for _, t := range tasks {
			t := t
			if t.run == nil {
				continue
			}
			g.Go(func() error { return t.run(gctx) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for _, t := range tasks {
			if t.run == nil {
				continue
			}
			if err := t.run(ctx); err != nil {
				return nil, err
			}
		}
	}

	for _, t := range tasks {
		if t.deferGroup != "" {
			keys, _ := r.DeferredProps.Get(t.deferGroup)
			r.DeferredProps.Set(t.deferGroup, append(keys, t.key))
		}
		if t.oncePol != nil && pctx.IsInertia() {
			r.OnceProps.Set(t.oncePol.effectiveKey(t.key), OnceEntry{
				Prop:      t.key,
				ExpiresAt: onceExpiry(t),
			})
		}
		if !t.include {
			continue
		}
		r.Props.Set(t.key, t.value)
		emitMetadata(r, t, pctx)
	}
	return r, nil
}

// planTask is the resolver's single dispatch point over the closed
// prop variant set: it decides inclusion, notes deferred registration
// and once bookkeeping, and prepares the value computation.
func planTask(key string, raw any, pctx *Context, partial, async bool) *task {
	t := &task{key: key}
	only, except := partialLists(pctx, key, partial)

	switch p := raw.(type) {
	case *AlwaysProp:
		// Always bypasses the partial filter entirely, nested paths
		// included.
		t.prop = p
		t.include = true
		t.run = valueRun(t, p.value, nil, &p.cell, nil, nil, async)

	case *LazyProp:
		t.prop = p
		t.include = p.included(pctx, key, partial)
		if t.include {
			t.run = valueRun(t, p.value, nil, nil, only, except, async)
		}

	case *OnceProp:
		t.prop = p
		t.oncePol = &p.policy
		t.onceCell = &p.cell
		t.include = p.included(pctx, key, partial)
		if t.include {
			t.run = valueRun(t, p.value, &p.policy, &p.cell, only, except, async)
		}

	case *MergeProp:
		t.prop = p
		pol, c := p.once, &p.cell
		if pol == nil {
			c = nil
		}
		t.oncePol, t.onceCell = pol, c
		t.include = p.included(pctx, key, partial)
		if t.include {
			t.run = valueRun(t, p.value, pol, c, only, except, async)
		}

	case *ScrollProp:
		t.prop = p
		pol, c := p.once, &p.cell
		if pol == nil {
			c = nil
		}
		t.oncePol, t.onceCell = pol, c
		t.include = p.included(pctx, key, partial)
		if t.include {
			t.run = scrollRun(t, p, pol, c, only, except, async)
		}

	case *DeferredProp:
		t.prop = p
		pol, c := deferredOnce(p)
		t.oncePol, t.onceCell = pol, c
		t.include = p.included(pctx, key, partial)
		if !t.include {
			// Initial loads announce the group; a partial that simply
			// did not ask for the key does not re-announce it.
			if !partial {
				t.deferGroup = p.group
			}
			break
		}
		switch inner := p.value.(type) {
		case *ScrollProp:
			t.run = scrollRun(t, inner, pol, c, only, except, async)
		case *MergeProp:
			t.run = valueRun(t, inner.value, pol, c, only, except, async)
		case Prop:
			t.run = valueRun(t, inner.rawValue(), pol, c, only, except, async)
		default:
			t.run = valueRun(t, inner, pol, c, only, except, async)
		}

	default:
		// Plain value, thunk, or Proper without a wrapper.
		t.include = !partial || (pctx.requestedTop(key) && !pctx.exceptTop(key))
		if t.include {
			t.run = valueRun(t, raw, nil, nil, only, except, async)
		}
	}
	return t
}

// partialLists extracts the relative only/except sub-paths that apply
// below key on a partial reload. A whole-key request means no
// narrowing.
func partialLists(pctx *Context, key string, partial bool) (only, except []string) {
	if !partial {
		return nil, nil
	}
	rel, whole := subPaths(pctx.only, key)
	if !whole {
		only = rel
	}
	except, _ = subPaths(pctx.except, key)
	return only, except
}

// valueRun builds the value pipeline for an included entry: memoized
// or direct thunk evaluation, partial sub-path filtering, then
// recursive descent.
func valueRun(t *task, value any, pol *oncePolicy, c *cell, only, except []string, async bool) func(context.Context) error {
	return func(ctx context.Context) error {
		var v any
		var err error
		if c != nil {
			var ttl time.Duration
			var refresh bool
			if pol != nil {
				ttl, refresh = pol.ttl, pol.refresh
			}
			v, t.computedAt, err = c.resolve(ctx, value, ttl, refresh)
		} else {
			v, err = invokeThunk(ctx, value)
		}
		if err != nil {
			return err
		}
		if len(only) > 0 || len(except) > 0 {
			v = filterPartial(v, only, except)
		}
		v, err = resolveValue(ctx, v, async)
		if err != nil {
			return err
		}
		t.value = v
		return nil
	}
}

// scrollRun extends valueRun with wrapper-key normalization and
// pagination metadata resolution.
func scrollRun(t *task, sp *ScrollProp, pol *oncePolicy, c *cell, only, except []string, async bool) func(context.Context) error {
	base := valueRun(t, sp.value, pol, c, only, except, async)
	return func(ctx context.Context) error {
		if err := base(ctx); err != nil {
			return err
		}
		t.value = wrapScroll(t.value, sp.wrapperKey)
		meta, err := sp.resolveMeta(ctx, t.value, async)
		if err != nil {
			return err
		}
		t.scrollMeta = &meta
		return nil
	}
}

// wrapScroll nests a bare page value under the wrapper key unless the
// value already carries it (a paginator object serialized with its own
// data key).
func wrapScroll(v any, wrapperKey string) any {
	switch m := v.(type) {
	case *Map:
		if m.Has(wrapperKey) {
			return v
		}
	case map[string]any:
		if _, ok := m[wrapperKey]; ok {
			return v
		}
	}
	return NewMap().Set(wrapperKey, v)
}

// deferredOnce locates the once policy governing a deferred prop: its
// own, or the one carried by the wrapper it composes.
func deferredOnce(p *DeferredProp) (*oncePolicy, *cell) {
	if p.once != nil {
		return p.once, &p.cell
	}
	switch inner := p.value.(type) {
	case *ScrollProp:
		if inner.once != nil {
			return inner.once, &inner.cell
		}
	case *MergeProp:
		if inner.once != nil {
			return inner.once, &inner.cell
		}
	case *OnceProp:
		return &inner.policy, &inner.cell
	}
	return nil, nil
}

// emitMetadata routes an included entry's merge, scroll, and reset
// metadata into r in declaration order.
func emitMetadata(r *Resolved, t *task, pctx *Context) {
	switch p := t.prop.(type) {
	case *MergeProp:
		p.emitPaths(r, t.key, pctx)
	case *ScrollProp:
		p.emitPaths(r, t.key, pctx)
	case *DeferredProp:
		switch inner := p.value.(type) {
		case *ScrollProp:
			inner.emitPaths(r, t.key, pctx)
		case *MergeProp:
			inner.emitPaths(r, t.key, pctx)
		}
	}
	if t.scrollMeta != nil {
		meta := *t.scrollMeta
		meta.Reset = pctx.resetHas(t.key)
		r.ScrollProps.Set(t.key, meta)
	}
}

// onceExpiry computes the registry expiry for a once-flavored task: the
// freshness window anchored at the cache entry's computation time, nil
// when no TTL bounds the value or nothing has been computed yet.
func onceExpiry(t *task) *time.Time {
	if t.oncePol.ttl == 0 {
		return nil
	}
	base := t.computedAt
	if base.IsZero() {
		ct, ok := t.onceCell.peek()
		if !ok {
			return nil
		}
		base = ct
	}
	exp := base.Add(t.oncePol.ttl)
	return &exp
}
