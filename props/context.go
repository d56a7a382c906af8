// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package props

import "strings"

// ScrollIntent is the client's merge direction for infinite-scroll
// props, taken from the X-Inertia-Infinite-Scroll-Merge-Intent header.
type ScrollIntent int

const (
	// ScrollAppend merges new scroll pages after the existing data.
	ScrollAppend ScrollIntent = iota

	// ScrollPrepend merges new scroll pages before the existing data,
	// as when the client scrolled upward.
	ScrollPrepend
)

// ContextConfig carries the raw per-request signals used to build a
// Context. The adapter's protocol package fills it from request
// headers; tests and deferred-group fulfillment fill it directly.
type ContextConfig struct {
	// IsInertia marks the request as an Inertia protocol request.
	IsInertia bool

	// PartialComponent is the component name the client computed its
	// partial request against. When it does not match the component
	// actually being rendered, all partial filtering is disabled for
	// the call as a safety fallback against stale client state.
	PartialComponent string

	// Only lists the dotted prop keys requested on a partial reload.
	Only []string

	// Except lists the dotted prop keys excluded on a partial reload.
	// An except entry wins over any rule that would include the key.
	Except []string

	// DeferredGroups names the deferred-prop groups being fulfilled.
	DeferredGroups []string

	// Reset lists keys whose client-side merge state is being reset:
	// the fresh value is still returned but no merge metadata is
	// emitted for them.
	Reset []string

	// ExceptOnce lists once-prop keys the client claims to already
	// hold an unexpired value for.
	ExceptOnce []string

	// ScrollIntent is the infinite-scroll merge direction.
	ScrollIntent ScrollIntent

	// ErrorBag is the validation error bag name, carried for the
	// response layer; the resolver itself never reads it.
	ErrorBag string
}

// Context is the immutable per-request snapshot the resolver evaluates
// property policies against. Construct it once per request with
// NewContext; all derived state is computed at construction.
type Context struct {
	isInertia        bool
	partial          bool
	partialComponent string
	only             []string
	except           []string
	deferredGroups   []string
	reset            map[string]struct{}
	exceptOnce       map[string]struct{}
	scrollIntent     ScrollIntent
	errorBag         string
}

// emptyContext stands in when the caller passes a nil context; it
// behaves as a plain full (non-Inertia, non-partial) load.
var emptyContext = &Context{}

// NewContext builds an immutable Context from cfg. Slices are copied;
// mutating cfg afterwards does not affect the Context.
func NewContext(cfg ContextConfig) *Context {
	c := &Context{
		isInertia:        cfg.IsInertia,
		partialComponent: cfg.PartialComponent,
		only:             copyList(cfg.Only),
		except:           copyList(cfg.Except),
		deferredGroups:   copyList(cfg.DeferredGroups),
		reset:            toSet(cfg.Reset),
		exceptOnce:       toSet(cfg.ExceptOnce),
		scrollIntent:     cfg.ScrollIntent,
		errorBag:         cfg.ErrorBag,
	}
	c.partial = len(c.only) > 0 || len(c.except) > 0
	return c
}

// IsInertia reports whether the request is an Inertia protocol request.
func (c *Context) IsInertia() bool { return c.isInertia }

// IsPartial reports whether the client asked for a subset reload of an
// already rendered page.
func (c *Context) IsPartial() bool { return c.partial }

// PartialComponent returns the component name the partial request was
// computed against, or "" when none was sent.
func (c *Context) PartialComponent() string { return c.partialComponent }

// Only returns the requested prop keys of a partial reload.
func (c *Context) Only() []string { return copyList(c.only) }

// Except returns the excluded prop keys of a partial reload.
func (c *Context) Except() []string { return copyList(c.except) }

// DeferredGroups returns the deferred groups being fulfilled.
func (c *Context) DeferredGroups() []string { return copyList(c.deferredGroups) }

// ScrollIntent returns the client's infinite-scroll merge direction.
func (c *Context) ScrollIntent() ScrollIntent { return c.scrollIntent }

// ErrorBag returns the validation error bag name.
func (c *Context) ErrorBag() string { return c.errorBag }

// PartialFor reports whether partial filtering applies when rendering
// component. A mismatched PartialComponent disables partial filtering
// entirely (the request degrades to a full load).
func (c *Context) PartialFor(component string) bool {
	if !c.partial {
		return false
	}
	if c.partialComponent != "" && component != "" && c.partialComponent != component {
		return false
	}
	return true
}

// requestedTop reports whether top-level key is positively selected by
// a partial reload: either listed in Only (exactly or via a nested
// path such as "auth.user" selecting "auth"), or the partial carries
// no Only list at all (except-only partials select everything).
func (c *Context) requestedTop(key string) bool {
	if len(c.only) == 0 {
		return true
	}
	return pathSelects(c.only, key)
}

// requestedListed reports whether key is listed in Only, exactly or
// via a nested path. Unlike requestedTop, an empty Only list selects
// nothing; Lazy and Deferred props are only fetched when named.
func (c *Context) requestedListed(key string) bool {
	return pathSelects(c.only, key)
}

// requestedExact reports whether key itself appears in the Only list.
// Used by the once-exclusion rule, which only yields to an explicit
// request for the key.
func (c *Context) requestedExact(key string) bool {
	for _, e := range c.only {
		if e == key {
			return true
		}
	}
	return false
}

// exceptTop reports whether top-level key is excluded outright. Only
// an exact match excludes the whole key; a nested entry such as
// "auth.user" leaves "auth" included and is applied by the nested
// filter instead.
func (c *Context) exceptTop(key string) bool {
	for _, e := range c.except {
		if e == key {
			return true
		}
	}
	return false
}

// groupRequested reports whether a deferred group is being fulfilled.
func (c *Context) groupRequested(group string) bool {
	for _, g := range c.deferredGroups {
		if g == group {
			return true
		}
	}
	return false
}

// resetHas reports whether the client asked to reset merge state for
// key.
func (c *Context) resetHas(key string) bool {
	_, ok := c.reset[key]
	return ok
}

// exceptOnceHas reports whether the client claims a valid once value
// under key.
func (c *Context) exceptOnceHas(key string) bool {
	_, ok := c.exceptOnce[key]
	return ok
}

// subPaths extracts the entries of list scoped under key, stripped of
// the "key." prefix. An entry equal to key itself maps to the empty
// remainder, which callers treat as "the whole subtree".
func subPaths(list []string, key string) (rel []string, whole bool) {
	prefix := key + "."
	for _, e := range list {
		switch {
		case e == key:
			whole = true
		case strings.HasPrefix(e, prefix):
			rel = append(rel, e[len(prefix):])
		}
	}
	return rel, whole
}

// pathSelects reports whether any entry selects key, either exactly or
// through a nested path under it.
func pathSelects(list []string, key string) bool {
	prefix := key + "."
	for _, e := range list {
		if e == key || strings.HasPrefix(e, prefix) {
			return true
		}
	}
	return false
}

func copyList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func toSet(in []string) map[string]struct{} {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		out[s] = struct{}{}
	}
	return out
}
