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

// DefaultWrapperKey is the sub-key a Scroll prop's page data lives
// under when none is configured.
const DefaultWrapperKey = "data"

// DefaultPageName is the query parameter name reported in scroll
// metadata when no metadata resolver supplies one.
const DefaultPageName = "page"

// ScrollMeta is the pagination metadata emitted per Scroll prop. Page
// values are left as any so handlers can use numeric pages or opaque
// cursors interchangeably; nil marks an absent boundary.
type ScrollMeta struct {
	PageName     string `json:"pageName"`
	PreviousPage any    `json:"previousPage"`
	NextPage     any    `json:"nextPage"`
	CurrentPage  any    `json:"currentPage"`
	Reset        bool   `json:"reset"`
}

// ScrollProp is a Merge-flavored property specialized for infinite
// scrolling: its page data is merged under a wrapper key in the
// direction the client scrolled, and page-boundary metadata rides
// alongside the data. Compose with Defer to keep the first page out of
// the initial payload.
type ScrollProp struct {
	value       any
	wrapperKey  string
	matchOn     []string
	metadata    func(value any) ScrollMeta
	metadataCtx func(ctx context.Context, value any) (ScrollMeta, error)
	once        *oncePolicy
	cell        cell
}

// Scroll wraps value as an infinite-scroll property merged under the
// default wrapper key.
func Scroll(value any) *ScrollProp {
	return &ScrollProp{value: value, wrapperKey: DefaultWrapperKey}
}

func (p *ScrollProp) rawValue() any { return p.value }

// WrapperKey overrides the sub-key the page data is merged under.
func (p *ScrollProp) WrapperKey(key string) *ScrollProp {
	if key != "" {
		p.wrapperKey = key
	}
	return p
}

// MatchOn adds match keys relative to the wrapper key for upsert
// semantics, emitted as "<key>.<wrapper>.<matchOn>" in matchPropsOn.
func (p *ScrollProp) MatchOn(paths ...string) *ScrollProp {
	p.matchOn = append(p.matchOn, paths...)
	return p
}

// Metadata sets a synchronous pagination metadata resolver, called
// with the resolved value. Usable from both resolve paths.
func (p *ScrollProp) Metadata(fn func(value any) ScrollMeta) *ScrollProp {
	p.metadata = fn
	return p
}

// MetadataContext sets a context-taking metadata resolver for
// pagination state that itself requires I/O. A Scroll prop configured
// only with a context-taking resolver is rejected by the synchronous
// resolve path with ErrAsyncMetadataResolver.
func (p *ScrollProp) MetadataContext(fn func(ctx context.Context, value any) (ScrollMeta, error)) *ScrollProp {
	p.metadataCtx = fn
	return p
}

// Defer composes the scroll prop with deferral: the prop is announced
// in deferredProps and only computed when its group is fetched, at
// which point the scroll merge and pagination behavior applies.
func (p *ScrollProp) Defer(group ...string) *DeferredProp {
	return Defer(p, group...)
}

// Once marks the prop as once-only.
func (p *ScrollProp) Once() *ScrollProp {
	p.ensureOnce()
	return p
}

// OnceFor sets a once policy with the given freshness window.
func (p *ScrollProp) OnceFor(ttl time.Duration) *ScrollProp {
	p.ensureOnce().ttl = ttl
	return p
}

// OnceKey overrides the once-registry key.
func (p *ScrollProp) OnceKey(key string) *ScrollProp {
	p.ensureOnce().key = key
	return p
}

func (p *ScrollProp) ensureOnce() *oncePolicy {
	if p.once == nil {
		p.once = &oncePolicy{}
	}
	return p.once
}

// included matches plain-value visibility, like Merge.
func (p *ScrollProp) included(pctx *Context, key string, partial bool) bool {
	if !partial {
		return true
	}
	return pctx.requestedTop(key) && !pctx.exceptTop(key)
}

// Value resolves the wrapped value directly, honoring any once policy.
func (p *ScrollProp) Value(ctx context.Context, pctx *Context, key string) (any, error) {
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

// resolveMeta produces the prop's ScrollMeta for the resolved value.
// async reports whether the caller is the asynchronous resolve path;
// the sync path must reject a context-only resolver.
func (p *ScrollProp) resolveMeta(ctx context.Context, value any, async bool) (ScrollMeta, error) {
	var meta ScrollMeta
	switch {
	case p.metadata != nil:
		meta = p.metadata(value)
	case p.metadataCtx != nil:
		if !async {
			return ScrollMeta{}, ErrAsyncMetadataResolver
		}
		var err error
		meta, err = p.metadataCtx(ctx, value)
		if err != nil {
			return ScrollMeta{}, err
		}
	}
	if meta.PageName == "" {
		meta.PageName = DefaultPageName
	}
	return meta, nil
}

// emitPaths routes the scroll merge paths for key into r: the wrapper
// path in the direction of the client's scroll intent, plus any match
// keys. Reset suppression applies as for Merge.
func (p *ScrollProp) emitPaths(r *Resolved, key string, pctx *Context) {
	if pctx.resetHas(key) {
		return
	}
	full := key + "." + p.wrapperKey
	if pctx.ScrollIntent() == ScrollPrepend {
		r.PrependProps = appendUnique(r.PrependProps, full)
	} else {
		r.MergeProps = appendUnique(r.MergeProps, full)
	}
	for _, m := range p.matchOn {
		r.MatchPropsOn = appendUnique(r.MatchPropsOn, full+"."+m)
	}
}
