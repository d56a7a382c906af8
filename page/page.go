// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package page assembles the resolver's output into the Inertia page
// document.
//
// The field names and shapes below are the wire contract stock Inertia
// clients deserialize; they must be reproduced verbatim. Metadata
// channels are omitted when empty rather than sent as empty
// containers, matching client expectations.
package page

import "github.com/AleutianAI/inertia/props"

// Page is the JSON document returned for an Inertia request and
// embedded in the root template's data-page attribute on full loads.
type Page struct {
	Component      string                              `json:"component"`
	Props          *props.Map                          `json:"props"`
	URL            string                              `json:"url"`
	Version        string                              `json:"version"`
	EncryptHistory bool                                `json:"encryptHistory"`
	ClearHistory   bool                                `json:"clearHistory"`
	DeferredProps  *props.OrderedMap[[]string]         `json:"deferredProps,omitempty"`
	MergeProps     []string                            `json:"mergeProps,omitempty"`
	DeepMergeProps []string                            `json:"deepMergeProps,omitempty"`
	PrependProps   []string                            `json:"prependProps,omitempty"`
	MatchPropsOn   []string                            `json:"matchPropsOn,omitempty"`
	ScrollProps    *props.OrderedMap[props.ScrollMeta] `json:"scrollProps,omitempty"`
	OnceProps      *props.OrderedMap[props.OnceEntry]  `json:"onceProps,omitempty"`
}

// New assembles a Page from a resolve result. Empty metadata channels
// become nil so their fields are dropped from the JSON document.
func New(component, url, version string, r *props.Resolved) *Page {
	p := &Page{
		Component:    component,
		Props:        r.Props,
		URL:          url,
		Version:      version,
		MergeProps:   r.MergeProps,
		MatchPropsOn: r.MatchPropsOn,
	}
	p.DeepMergeProps = r.DeepMergeProps
	p.PrependProps = r.PrependProps
	if r.DeferredProps.Len() > 0 {
		p.DeferredProps = r.DeferredProps
	}
	if r.OnceProps.Len() > 0 {
		p.OnceProps = r.OnceProps
	}
	if r.ScrollProps.Len() > 0 {
		p.ScrollProps = r.ScrollProps
	}
	return p
}

// WithHistory sets the history encryption and clearing flags, used by
// handlers dealing with sensitive pages and logout flows.
func (p *Page) WithHistory(encrypt, clear bool) *Page {
	p.EncryptHistory = encrypt
	p.ClearHistory = clear
	return p
}
