// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package protocol defines the Inertia wire headers and parses them
// into the engine's request context.
//
// The header names and their comma-separated list encodings are a
// compatibility requirement inherited from the Inertia.js protocol;
// they must match what stock Inertia clients send and expect. The
// resolver never reads headers itself; this package is the only place
// raw header values are interpreted.
package protocol

import (
	"net/http"
	"strings"

	"github.com/AleutianAI/inertia/props"
)

// Inertia protocol headers.
const (
	// HeaderInertia marks a request or response as an Inertia protocol
	// exchange. The value is always "true".
	HeaderInertia = "X-Inertia"

	// HeaderVersion carries the asset version the client was built
	// against. A mismatch on a GET forces a full reload.
	HeaderVersion = "X-Inertia-Version"

	// HeaderLocation tells the client to do a hard visit to an
	// external URL, sent with a 409 Conflict status.
	HeaderLocation = "X-Inertia-Location"

	// HeaderPartialData lists the prop keys requested on a partial
	// reload, comma separated.
	HeaderPartialData = "X-Inertia-Partial-Data"

	// HeaderPartialExcept lists the prop keys excluded on a partial
	// reload, comma separated.
	HeaderPartialExcept = "X-Inertia-Partial-Except"

	// HeaderPartialComponent names the component the partial request
	// was computed against.
	HeaderPartialComponent = "X-Inertia-Partial-Component"

	// HeaderReset lists the keys whose client-side merge state is
	// being reset, comma separated.
	HeaderReset = "X-Inertia-Reset"

	// HeaderErrorBag names the validation error bag.
	HeaderErrorBag = "X-Inertia-Error-Bag"

	// HeaderExceptOnceProps lists the once keys the client claims an
	// unexpired value for, comma separated.
	HeaderExceptOnceProps = "X-Inertia-Except-Once-Props"

	// HeaderScrollMergeIntent carries the infinite-scroll merge
	// direction: "append" (default) or "prepend".
	HeaderScrollMergeIntent = "X-Inertia-Infinite-Scroll-Merge-Intent"
)

// ScrollPrependIntent is the HeaderScrollMergeIntent value selecting
// prepend merging; any other value means append.
const ScrollPrependIntent = "prepend"

// ParseRequest builds the engine's request context from raw request
// headers. Header lookup is case-insensitive per net/http canonical
// form. A request without the X-Inertia marker yields a context that
// resolves as a plain full page load.
func ParseRequest(h http.Header) *props.Context {
	cfg := props.ContextConfig{
		IsInertia:        h.Get(HeaderInertia) == "true",
		PartialComponent: h.Get(HeaderPartialComponent),
		Only:             splitList(h.Get(HeaderPartialData)),
		Except:           splitList(h.Get(HeaderPartialExcept)),
		Reset:            splitList(h.Get(HeaderReset)),
		ExceptOnce:       splitList(h.Get(HeaderExceptOnceProps)),
		ErrorBag:         h.Get(HeaderErrorBag),
	}
	if h.Get(HeaderScrollMergeIntent) == ScrollPrependIntent {
		cfg.ScrollIntent = props.ScrollPrepend
	}
	return props.NewContext(cfg)
}

// splitList parses a comma-separated header value, trimming whitespace
// and dropping empty entries.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
