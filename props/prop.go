// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package props

import (
	"context"
	"sync"
	"time"
)

// Prop is the closed set of policy-bearing property wrappers: Always,
// Lazy/Optional, Deferred, Merge, Once, and Scroll. The resolver
// dispatches on the concrete type in a single type switch; the
// unexported method seals the set to this package.
type Prop interface {
	// rawValue returns the wrapped value or thunk without applying any
	// inclusion policy.
	rawValue() any
}

// Proper is the serializable contract: any value exposing Props() is
// spliced into the property tree as if its returned map had been the
// declared value. The returned map may itself contain thunks and
// nested maps.
type Proper interface {
	Props() *Map
}

// oncePolicy is the shared once-only configuration carried by Once
// itself and by Deferred, Merge, and Scroll wrappers composed with a
// once policy.
type oncePolicy struct {
	ttl     time.Duration
	key     string // cache key override; "" means the prop's own key
	refresh bool
}

// effectiveKey returns the once-registry key for a prop declared under
// propKey.
func (p *oncePolicy) effectiveKey(propKey string) string {
	if p.key != "" {
		return p.key
	}
	return propKey
}

// cell is the per-wrapper memo store: the last computed value and its
// computation timestamp. It outlives individual requests whenever the
// wrapper does (shared props), so the check-then-compute is guarded.
type cell struct {
	mu         sync.Mutex
	value      any
	computedAt time.Time
	valid      bool
}

// resolve returns the cached value when one exists, refresh is false,
// and the entry is still fresh (ttl zero means it never goes stale).
// Otherwise it invokes fn and overwrites the entry. Errors are not
// cached; a failed computation leaves any previous entry in place.
func (c *cell) resolve(ctx context.Context, value any, ttl time.Duration, refresh bool) (any, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid && !refresh {
		if ttl == 0 || time.Since(c.computedAt) < ttl {
			return c.value, c.computedAt, nil
		}
	}
	v, err := invokeThunk(ctx, value)
	if err != nil {
		return nil, time.Time{}, err
	}
	c.value = v
	c.computedAt = time.Now()
	c.valid = true
	return c.value, c.computedAt, nil
}

// peek returns the entry timestamp without computing anything. Used to
// report a once expiry window for props excluded from this response.
func (c *cell) peek() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.computedAt, c.valid
}

// invokeThunk evaluates value if it is one of the supported thunk
// shapes, returning non-thunk values unchanged. Nested containers are
// left alone here; the recursive descent lives in resolveValue.
func invokeThunk(ctx context.Context, value any) (any, error) {
	switch fn := value.(type) {
	case func() any:
		if fn == nil {
			return nil, ErrNilThunk
		}
		return fn(), nil
	case func() (any, error):
		if fn == nil {
			return nil, ErrNilThunk
		}
		return fn()
	case func(context.Context) (any, error):
		if fn == nil {
			return nil, ErrNilThunk
		}
		return fn(ctx)
	default:
		return value, nil
	}
}
