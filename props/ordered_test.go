// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package props

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestOrderedMap_InsertionOrder(t *testing.T) {
	m := NewMap().Set("c", 1).Set("a", 2).Set("b", 3)
	want := []string{"c", "a", "b"}
	if got := m.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

func TestOrderedMap_OverwriteKeepsPosition(t *testing.T) {
	m := NewMap().Set("x", 1).Set("y", 2).Set("x", 9)
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Errorf("Keys() = %v, want [x y]", got)
	}
	v, ok := m.Get("x")
	if !ok || v != 9 {
		t.Errorf("Get(x) = %v, %v, want 9, true", v, ok)
	}
}

func TestOrderedMap_Delete(t *testing.T) {
	m := NewMap().Set("a", 1).Set("b", 2).Set("c", 3)
	m.Delete("b")
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Keys() = %v, want [a c]", got)
	}
	if m.Has("b") {
		t.Error("Has(b) = true after Delete")
	}
	// Deleting a missing key is a no-op.
	m.Delete("missing")
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestOrderedMap_MarshalJSONOrder(t *testing.T) {
	m := NewMap().Set("zebra", 1).Set("apple", 2).Set("nested", NewMap().Set("b", 3).Set("a", 4))
	got, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"zebra":1,"apple":2,"nested":{"b":3,"a":4}}`
	if string(got) != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}
}

func TestOrderedMap_MarshalNil(t *testing.T) {
	var m *Map
	got, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(got) != "null" {
		t.Errorf("Marshal(nil) = %s, want null", got)
	}
}

func TestOrderedMap_UnmarshalJSON(t *testing.T) {
	var m Map
	if err := json.Unmarshal([]byte(`{"z":1,"a":{"k":true},"m":[1,2]}`), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"z", "a", "m"}) {
		t.Errorf("Keys() = %v, want [z a m]", got)
	}
}

func TestOrderedMap_Clone(t *testing.T) {
	m := NewMap().Set("a", 1).Set("b", 2)
	c := m.Clone()
	c.Set("a", 10).Set("z", 3)
	if v, _ := m.Get("a"); v != 1 {
		t.Errorf("original mutated: a = %v", v)
	}
	if m.Has("z") {
		t.Error("original gained key z")
	}
	if got := c.Keys(); !reflect.DeepEqual(got, []string{"a", "b", "z"}) {
		t.Errorf("clone Keys() = %v", got)
	}
}

func TestAppendUnique(t *testing.T) {
	got := appendUnique(nil, "a", "b")
	got = appendUnique(got, "b", "c", "a")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("appendUnique = %v, want [a b c]", got)
	}
}
