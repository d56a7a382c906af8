// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package props

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// resolveValue is the recursive descent shared by both resolve paths:
// thunks are auto-invoked, Proper values are spliced in, and maps and
// slices are walked to arbitrary depth. Policy filtering never happens
// here; only top-level keys are policy-bearing. When concurrent is
// true the members of each container are resolved in parallel and
// reassembled in their original positions.
func resolveValue(ctx context.Context, value any, concurrent bool) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case func() any, func() (any, error), func(context.Context) (any, error):
		out, err := invokeThunk(ctx, v)
		if err != nil {
			return nil, err
		}
		return resolveValue(ctx, out, concurrent)
	case Prop:
		// A wrapper below the top level has no policy to apply; its
		// value participates like plain data.
		return resolveValue(ctx, v.rawValue(), concurrent)
	case Proper:
		return resolveValue(ctx, v.Props(), concurrent)
	case *Map:
		return resolveOrdered(ctx, v, concurrent)
	case map[string]any:
		return resolveNative(ctx, v, concurrent)
	case []any:
		return resolveSlice(ctx, v, concurrent)
	default:
		return value, nil
	}
}

func resolveOrdered(ctx context.Context, m *Map, concurrent bool) (any, error) {
	keys := m.Keys()
	results := make([]any, len(keys))
	if concurrent {
		g, gctx := errgroup.WithContext(ctx)
		for i, k := range keys {
			i := i
			v, _ := m.Get(k)
			g.Go(func() error {
				out, err := resolveValue(gctx, v, true)
				if err != nil {
					return err
				}
				results[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, k := range keys {
			v, _ := m.Get(k)
			out, err := resolveValue(ctx, v, false)
			if err != nil {
				return nil, err
			}
			results[i] = out
		}
	}
	out := NewMap()
	for i, k := range keys {
		out.Set(k, results[i])
	}
	return out, nil
}

func resolveNative(ctx context.Context, m map[string]any, concurrent bool) (any, error) {
	out := make(map[string]any, len(m))
	if concurrent {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		vals := make([]any, len(keys))
		g, gctx := errgroup.WithContext(ctx)
		for i, k := range keys {
			i := i
			v := m[k]
			g.Go(func() error {
				r, err := resolveValue(gctx, v, true)
				if err != nil {
					return err
				}
				vals[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for i, k := range keys {
			out[k] = vals[i]
		}
		return out, nil
	}
	for k, v := range m {
		r, err := resolveValue(ctx, v, false)
		if err != nil {
			return nil, err
		}
		out[k] = r
	}
	return out, nil
}

func resolveSlice(ctx context.Context, s []any, concurrent bool) (any, error) {
	out := make([]any, len(s))
	if concurrent {
		g, gctx := errgroup.WithContext(ctx)
		for i, v := range s {
			i, v := i, v
			g.Go(func() error {
				r, err := resolveValue(gctx, v, true)
				if err != nil {
					return err
				}
				out[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return out, nil
	}
	for i, v := range s {
		r, err := resolveValue(ctx, v, false)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

// filterPartial narrows a container to the sub-keys selected by the
// relative only/except paths of a partial reload. Filtering happens
// before nested thunks are invoked, so dropped sub-keys are never
// computed. Non-container values pass through unchanged.
func filterPartial(value any, only, except []string) any {
	switch m := value.(type) {
	case *Map:
		out := NewMap()
		m.Range(func(k string, v any) bool {
			if keep, subOnly, subExcept := filterKey(k, only, except); keep {
				if len(subOnly) > 0 || len(subExcept) > 0 {
					v = filterPartial(v, subOnly, subExcept)
				}
				out.Set(k, v)
			}
			return true
		})
		return out
	case map[string]any:
		out := make(map[string]any)
		for k, v := range m {
			if keep, subOnly, subExcept := filterKey(k, only, except); keep {
				if len(subOnly) > 0 || len(subExcept) > 0 {
					v = filterPartial(v, subOnly, subExcept)
				}
				out[k] = v
			}
		}
		return out
	default:
		return value
	}
}

// filterKey decides whether sub-key k survives the relative only and
// except lists, and computes the lists one level deeper.
func filterKey(k string, only, except []string) (keep bool, subOnly, subExcept []string) {
	for _, e := range except {
		if e == k {
			return false, nil, nil
		}
	}
	if len(only) > 0 {
		if !pathSelects(only, k) {
			return false, nil, nil
		}
		rel, whole := subPaths(only, k)
		if !whole {
			// The key is only reachable through deeper paths; keep
			// narrowing.
			subOnly = rel
		}
	}
	subExcept, _ = subPaths(except, k)
	return true, subOnly, subExcept
}

// unpackDotted expands dotted top-level keys into nested maps:
// {"auth.user.can": V} becomes {"auth": {"user": {"can": V}}}, merged
// with any existing "auth" entry. Only top-level keys are unpacked;
// dotted keys inside nested maps stay verbatim. Maps descended into
// are cloned so the caller's declaration is never mutated.
func unpackDotted(m *Map) *Map {
	out := NewMap()
	m.Range(func(k string, v any) bool {
		if !strings.Contains(k, ".") {
			out.Set(k, v)
			return true
		}
		segs := strings.Split(k, ".")
		cur := childMap(out, segs[0])
		for _, seg := range segs[1 : len(segs)-1] {
			cur = childMap(cur, seg)
		}
		cur.Set(segs[len(segs)-1], v)
		return true
	})
	return out
}

// childMap returns the *Map under key in parent, cloning an existing
// map before reuse and replacing any non-map occupant.
func childMap(parent *Map, key string) *Map {
	if existing, ok := parent.Get(key); ok {
		if mm, ok := existing.(*Map); ok {
			clone := mm.Clone()
			parent.Set(key, clone)
			return clone
		}
	}
	fresh := NewMap()
	parent.Set(key, fresh)
	return fresh
}
