// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package protocol

import (
	"net/http"
	"reflect"
	"testing"

	"github.com/AleutianAI/inertia/props"
)

func TestParseRequest_PlainRequest(t *testing.T) {
	pctx := ParseRequest(http.Header{})
	if pctx.IsInertia() {
		t.Error("IsInertia() = true for a bare request")
	}
	if pctx.IsPartial() {
		t.Error("IsPartial() = true for a bare request")
	}
}

func TestParseRequest_InertiaMarker(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"", false},
		{"1", false},
		{"TRUE", false},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.value != "" {
			h.Set(HeaderInertia, tt.value)
		}
		if got := ParseRequest(h).IsInertia(); got != tt.want {
			t.Errorf("X-Inertia: %q: IsInertia() = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestParseRequest_PartialHeaders(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderInertia, "true")
	h.Set(HeaderPartialComponent, "Users/Index")
	h.Set(HeaderPartialData, "users, stats ,auth.user")
	h.Set(HeaderPartialExcept, "secrets")
	pctx := ParseRequest(h)
	if !pctx.IsPartial() {
		t.Fatal("IsPartial() = false")
	}
	if got := pctx.PartialComponent(); got != "Users/Index" {
		t.Errorf("PartialComponent() = %q", got)
	}
	if got := pctx.Only(); !reflect.DeepEqual(got, []string{"users", "stats", "auth.user"}) {
		t.Errorf("Only() = %v", got)
	}
	if got := pctx.Except(); !reflect.DeepEqual(got, []string{"secrets"}) {
		t.Errorf("Except() = %v", got)
	}
}

func TestParseRequest_EmptyListEntriesDropped(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderInertia, "true")
	h.Set(HeaderPartialData, " , ,")
	pctx := ParseRequest(h)
	if pctx.IsPartial() {
		t.Error("a list of empty entries must not make the request partial")
	}
	if got := pctx.Only(); got != nil {
		t.Errorf("Only() = %v, want nil", got)
	}
}

func TestParseRequest_CaseInsensitiveLookup(t *testing.T) {
	h := http.Header{}
	h.Set("x-inertia", "true")
	h.Set("X-INERTIA-PARTIAL-DATA", "users")
	pctx := ParseRequest(h)
	if !pctx.IsInertia() || !pctx.IsPartial() {
		t.Error("header lookup must be case-insensitive")
	}
}

func TestParseRequest_ScrollIntent(t *testing.T) {
	tests := []struct {
		value string
		want  props.ScrollIntent
	}{
		{"", props.ScrollAppend},
		{"append", props.ScrollAppend},
		{"prepend", props.ScrollPrepend},
		{"sideways", props.ScrollAppend},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.value != "" {
			h.Set(HeaderScrollMergeIntent, tt.value)
		}
		if got := ParseRequest(h).ScrollIntent(); got != tt.want {
			t.Errorf("intent %q: ScrollIntent() = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestParseRequest_ErrorBagAndOnceClaims(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderInertia, "true")
	h.Set(HeaderErrorBag, "login")
	h.Set(HeaderExceptOnceProps, "server_info,release")
	pctx := ParseRequest(h)
	if got := pctx.ErrorBag(); got != "login" {
		t.Errorf("ErrorBag() = %q", got)
	}

	// The once claim flows through to resolution.
	m := props.NewMap().Set("server_info", props.Once(func() any { return 1 }))
	r, err := props.Resolve(m, pctx, "Dash")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.Props.Has("server_info") {
		t.Error("claimed once prop delivered")
	}
}
