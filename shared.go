// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inertia

import (
	"sync"

	"github.com/AleutianAI/inertia/props"
)

// SharedProps is the process-wide registry of props merged beneath
// every render: the authenticated user, flash messages, app metadata.
// It is an explicit injected store rather than ambient global state,
// and it is safe for concurrent use.
//
// Values may be anything the resolver accepts, including Prop
// wrappers. A Once-wrapped shared prop keeps its memo cell across
// requests, making it a genuine cross-request cache.
type SharedProps struct {
	mu sync.RWMutex
	m  *props.Map
}

// NewSharedProps creates an empty registry.
func NewSharedProps() *SharedProps {
	return &SharedProps{m: props.NewMap()}
}

// Set registers value under key, keeping the key's registration order
// on overwrite.
func (s *SharedProps) Set(key string, value any) *SharedProps {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Set(key, value)
	return s
}

// Delete removes key from the registry.
func (s *SharedProps) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Delete(key)
}

// Snapshot returns a copy of the registry in registration order.
func (s *SharedProps) Snapshot() *props.Map {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Clone()
}

// mergeWith lays request props over a snapshot of the shared ones:
// shared keys come first, request keys override on collision.
func (s *SharedProps) mergeWith(request *props.Map) *props.Map {
	merged := s.Snapshot()
	if request != nil {
		request.Range(func(k string, v any) bool {
			merged.Set(k, v)
			return true
		})
	}
	return merged
}
