// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package page

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/AleutianAI/inertia/props"
)

func resolve(t *testing.T, m *props.Map, pctx *props.Context, component string) *props.Resolved {
	t.Helper()
	r, err := props.Resolve(m, pctx, component)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return r
}

func TestNew_MinimalDocument(t *testing.T) {
	m := props.NewMap().Set("name", "aleutian")
	r := resolve(t, m, nil, "Home")
	p := New("Home", "/", "v1", r)

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	doc := string(raw)
	want := `{"component":"Home","props":{"name":"aleutian"},"url":"/","version":"v1","encryptHistory":false,"clearHistory":false}`
	if doc != want {
		t.Errorf("document = %s\nwant       %s", doc, want)
	}
	for _, field := range []string{"deferredProps", "mergeProps", "deepMergeProps", "prependProps", "matchPropsOn", "scrollProps", "onceProps"} {
		if strings.Contains(doc, field) {
			t.Errorf("empty metadata channel %q present in document", field)
		}
	}
}

func TestNew_MetadataChannels(t *testing.T) {
	exp := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	r := &props.Resolved{
		Props:          props.NewMap().Set("feed", []any{1}),
		MergeProps:     []string{"feed"},
		PrependProps:   []string{"pinned"},
		DeepMergeProps: []string{"settings"},
		MatchPropsOn:   []string{"feed.id"},
		DeferredProps:  props.NewOrderedMap[[]string]().Set("default", []string{"stats"}),
		OnceProps: props.NewOrderedMap[props.OnceEntry]().
			Set("release", props.OnceEntry{Prop: "release", ExpiresAt: &exp}),
		ScrollProps: props.NewOrderedMap[props.ScrollMeta]().
			Set("feed", props.ScrollMeta{PageName: "page", CurrentPage: 2}),
	}
	p := New("Feed", "/feed?page=2", "v1", r)

	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	checks := map[string]string{
		"mergeProps":     `["feed"]`,
		"prependProps":   `["pinned"]`,
		"deepMergeProps": `["settings"]`,
		"matchPropsOn":   `["feed.id"]`,
		"deferredProps":  `{"default":["stats"]}`,
		"onceProps":      `{"release":{"prop":"release","expiresAt":"2026-08-28T12:00:00Z"}}`,
	}
	for field, want := range checks {
		got, ok := doc[field]
		if !ok {
			t.Errorf("field %q missing", field)
			continue
		}
		if string(got) != want {
			t.Errorf("%s = %s, want %s", field, got, want)
		}
	}
	var scroll map[string]props.ScrollMeta
	if err := json.Unmarshal(doc["scrollProps"], &scroll); err != nil {
		t.Fatalf("scrollProps: %v", err)
	}
	if scroll["feed"].PageName != "page" {
		t.Errorf("scrollProps.feed = %+v", scroll["feed"])
	}
}

func TestNew_OnceEntryNullExpiry(t *testing.T) {
	m := props.NewMap().Set("release", props.Once(func() any { return 1 }))
	r := resolve(t, m, props.NewContext(props.ContextConfig{IsInertia: true}), "Home")
	raw, err := json.Marshal(New("Home", "/", "v1", r))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"onceProps":{"release":{"prop":"release","expiresAt":null}}`) {
		t.Errorf("document = %s", raw)
	}
}

func TestWithHistory(t *testing.T) {
	r := resolve(t, props.NewMap(), nil, "Logout")
	p := New("Logout", "/logout", "v1", r).WithHistory(true, true)
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	doc := string(raw)
	if !strings.Contains(doc, `"encryptHistory":true`) || !strings.Contains(doc, `"clearHistory":true`) {
		t.Errorf("document = %s", doc)
	}
}

func TestNew_PropOrderSurvivesMarshaling(t *testing.T) {
	m := props.NewMap().Set("zebra", 1).Set("apple", 2).Set("mango", 3)
	r := resolve(t, m, nil, "Home")
	raw, err := json.Marshal(New("Home", "/", "v1", r))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"props":{"zebra":1,"apple":2,"mango":3}`) {
		t.Errorf("document = %s", raw)
	}
}
