// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package props

import (
	"bytes"
	"encoding/json"
)

// OrderedMap is a string-keyed map that remembers insertion order.
//
// Go's native maps iterate in randomized order, but the Inertia wire
// contract requires props and metadata to be emitted in declaration
// order. OrderedMap iterates and marshals to JSON in the order keys
// were first set; overwriting an existing key keeps its original
// position.
//
// OrderedMap is not safe for concurrent mutation. The resolver only
// reads the maps it is handed and builds fresh output maps per call.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// Map is the property map handed to the resolver and produced by it.
// Values may be plain data, thunks, Prop wrappers, Proper
// implementations, nested *Map values, or native maps and slices.
type Map = OrderedMap[any]

// NewMap creates an empty property map.
func NewMap() *Map {
	return NewOrderedMap[any]()
}

// NewOrderedMap creates an empty OrderedMap.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: make(map[string]V)}
}

// Set stores value under key, appending the key to the iteration order
// on first use. It returns the map to allow declaration chaining:
//
//	props.NewMap().Set("user", user).Set("stats", props.Defer(loadStats))
func (m *OrderedMap[V]) Set(key string, value V) *OrderedMap[V] {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
	return m
}

// Get returns the value stored under key and whether it exists.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *OrderedMap[V]) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Delete removes key and its position in the iteration order.
func (m *OrderedMap[V]) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order. The returned slice is a
// copy and safe for the caller to retain.
func (m *OrderedMap[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range calls fn for each entry in insertion order until fn returns
// false.
func (m *OrderedMap[V]) Range(fn func(key string, value V) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Clone returns a shallow copy preserving insertion order.
func (m *OrderedMap[V]) Clone() *OrderedMap[V] {
	out := NewOrderedMap[V]()
	for _, k := range m.keys {
		out.Set(k, m.values[k])
	}
	return out
}

// MarshalJSON encodes the map as a JSON object with keys in insertion
// order.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving the key order of the
// document. Values decode to the zero-decoding of V (any for Map).
func (m *OrderedMap[V]) UnmarshalJSON(data []byte) error {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return &json.UnmarshalTypeError{Value: "non-object", Type: nil}
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		var v V
		if err := dec.Decode(&v); err != nil {
			return err
		}
		m.Set(key, v)
	}
	_, err = dec.Token()
	return err
}

// appendUnique appends each path to set unless already present,
// preserving first-seen order. Used for the merge metadata channels.
func appendUnique(set []string, paths ...string) []string {
	for _, p := range paths {
		seen := false
		for _, existing := range set {
			if existing == p {
				seen = true
				break
			}
		}
		if !seen {
			set = append(set, p)
		}
	}
	return set
}
