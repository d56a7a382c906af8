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

// OnceEntry is one record of the once registry returned to the client:
// which prop the entry describes and when its value stops being valid.
// A nil ExpiresAt means the value never expires on its own and is only
// replaced by an explicit refresh.
type OnceEntry struct {
	Prop      string     `json:"prop"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// OnceProp is computed at most once per wrapper instance within its
// freshness window. The client reports the once keys it already holds
// via the except-once list and the server skips recomputing them;
// either party can force a refresh.
type OnceProp struct {
	value  any
	policy oncePolicy
	cell   cell
}

// Once wraps value as a once-only property with no expiry.
func Once(value any) *OnceProp {
	return &OnceProp{value: value}
}

func (p *OnceProp) rawValue() any { return p.value }

// TTL bounds the freshness window. After ttl elapses the next
// resolution recomputes the value.
func (p *OnceProp) TTL(ttl time.Duration) *OnceProp {
	p.policy.ttl = ttl
	return p
}

// Key overrides the once-registry key, which defaults to the prop's
// own key. Distinct props sharing a Key share one client-side registry
// slot.
func (p *OnceProp) Key(key string) *OnceProp {
	p.policy.key = key
	return p
}

// Refresh forces recomputation and re-delivery even when the client
// claims a valid value.
func (p *OnceProp) Refresh() *OnceProp {
	p.policy.refresh = true
	return p
}

// included implements the Once inclusion predicate: base visibility is
// that of a plain value, minus the case where the client already holds
// an unexpired copy and is not explicitly asking for it again.
func (p *OnceProp) included(pctx *Context, key string, partial bool) bool {
	if partial && !(pctx.requestedTop(key) && !pctx.exceptTop(key)) {
		return false
	}
	if p.skippedForClient(pctx, key, partial) {
		return false
	}
	return true
}

// skippedForClient reports whether delivery is skipped because the
// client claims a still-valid value under the effective key.
func (p *OnceProp) skippedForClient(pctx *Context, key string, partial bool) bool {
	if !pctx.IsInertia() || p.policy.refresh {
		return false
	}
	if !pctx.exceptOnceHas(p.policy.effectiveKey(key)) {
		return false
	}
	// An explicit partial request for the key overrides the client's
	// claim.
	return !(partial && pctx.requestedExact(key))
}

// Value resolves the wrapped value directly through the memo cell.
func (p *OnceProp) Value(ctx context.Context, pctx *Context, key string) (any, error) {
	if pctx == nil {
		pctx = emptyContext
	}
	if !p.included(pctx, key, pctx.IsPartial()) {
		return nil, ErrNotIncluded
	}
	v, _, err := p.cell.resolve(ctx, p.value, p.policy.ttl, p.policy.refresh)
	return v, err
}
