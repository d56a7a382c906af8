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

// mergeDirection is the root merge policy of a Merge prop.
type mergeDirection int

const (
	mergeAppend mergeDirection = iota
	mergePrepend
	mergeNone
)

// mergePath is one configured sub-path plus the match keys bound to it.
type mergePath struct {
	path    string
	matchOn []string
}

// MergeProp is returned like a plain value but additionally tells the
// client to merge it into existing client-side state instead of
// replacing it. The root value or any number of dotted sub-paths can
// be marked for appending or prepending, optionally matched on a key
// for upserts, and optionally deep-merged.
//
// When the prop's key appears in the context's reset list the value is
// still returned but all merge metadata for it is suppressed, so the
// client replaces its state wholesale.
type MergeProp struct {
	value    any
	root     mergeDirection
	appends  []mergePath
	prepends []mergePath
	matchOn  []string
	deep     bool
	once     *oncePolicy
	cell     cell
}

// Merge wraps value as a mergeable property. The root value is
// appended by default.
func Merge(value any) *MergeProp {
	return &MergeProp{value: value}
}

func (p *MergeProp) rawValue() any { return p.value }

// Append marks dotted sub-paths for appending. Called with no paths it
// restores the root append policy. Configuring any sub-path turns the
// root policy off until explicitly restored.
func (p *MergeProp) Append(paths ...string) *MergeProp {
	if len(paths) == 0 {
		p.root = mergeAppend
		return p
	}
	for _, path := range paths {
		p.appends = append(p.appends, mergePath{path: path})
	}
	p.root = mergeNone
	return p
}

// AppendMatching marks one sub-path for appending with match keys for
// upsert semantics: matchOn entries are emitted as
// "<key>.<path>.<matchOn>" paths in matchPropsOn.
func (p *MergeProp) AppendMatching(path string, matchOn ...string) *MergeProp {
	p.appends = append(p.appends, mergePath{path: path, matchOn: matchOn})
	p.root = mergeNone
	return p
}

// Prepend marks dotted sub-paths for prepending. Called with no paths
// it switches the root policy to prepend.
func (p *MergeProp) Prepend(paths ...string) *MergeProp {
	if len(paths) == 0 {
		p.root = mergePrepend
		return p
	}
	for _, path := range paths {
		p.prepends = append(p.prepends, mergePath{path: path})
	}
	p.root = mergeNone
	return p
}

// PrependMatching marks one sub-path for prepending with match keys.
func (p *MergeProp) PrependMatching(path string, matchOn ...string) *MergeProp {
	p.prepends = append(p.prepends, mergePath{path: path, matchOn: matchOn})
	p.root = mergeNone
	return p
}

// MatchOn adds match keys scoped to the root value, emitted as
// "<key>.<path>" in matchPropsOn.
func (p *MergeProp) MatchOn(paths ...string) *MergeProp {
	p.matchOn = append(p.matchOn, paths...)
	return p
}

// DeepMerge additionally routes every emitted merge path into
// deepMergeProps, telling the client to merge nested objects
// recursively instead of replacing them.
func (p *MergeProp) DeepMerge() *MergeProp {
	p.deep = true
	return p
}

// Once marks the prop as once-only.
func (p *MergeProp) Once() *MergeProp {
	p.ensureOnce()
	return p
}

// OnceFor sets a once policy with the given freshness window.
func (p *MergeProp) OnceFor(ttl time.Duration) *MergeProp {
	p.ensureOnce().ttl = ttl
	return p
}

// OnceKey overrides the once-registry key.
func (p *MergeProp) OnceKey(key string) *MergeProp {
	p.ensureOnce().key = key
	return p
}

func (p *MergeProp) ensureOnce() *oncePolicy {
	if p.once == nil {
		p.once = &oncePolicy{}
	}
	return p.once
}

// included implements the Merge inclusion predicate, which matches a
// plain value: always on full loads, positively filtered on partials.
func (p *MergeProp) included(pctx *Context, key string, partial bool) bool {
	if !partial {
		return true
	}
	return pctx.requestedTop(key) && !pctx.exceptTop(key)
}

// Value resolves the wrapped value directly, honoring any once policy.
func (p *MergeProp) Value(ctx context.Context, pctx *Context, key string) (any, error) {
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

// emitPaths routes the prop's configured merge paths for key into r,
// honoring the reset suppression rule.
func (p *MergeProp) emitPaths(r *Resolved, key string, pctx *Context) {
	if pctx.resetHas(key) {
		return
	}
	var emitted []string
	switch p.root {
	case mergeAppend:
		r.MergeProps = appendUnique(r.MergeProps, key)
		emitted = append(emitted, key)
	case mergePrepend:
		r.PrependProps = appendUnique(r.PrependProps, key)
		emitted = append(emitted, key)
	}
	for _, mp := range p.appends {
		full := key + "." + mp.path
		r.MergeProps = appendUnique(r.MergeProps, full)
		emitted = append(emitted, full)
		for _, m := range mp.matchOn {
			r.MatchPropsOn = appendUnique(r.MatchPropsOn, full+"."+m)
		}
	}
	for _, mp := range p.prepends {
		full := key + "." + mp.path
		r.PrependProps = appendUnique(r.PrependProps, full)
		emitted = append(emitted, full)
		for _, m := range mp.matchOn {
			r.MatchPropsOn = appendUnique(r.MatchPropsOn, full+"."+m)
		}
	}
	for _, m := range p.matchOn {
		r.MatchPropsOn = appendUnique(r.MatchPropsOn, key+"."+m)
	}
	if p.deep {
		r.DeepMergeProps = appendUnique(r.DeepMergeProps, emitted...)
	}
}
