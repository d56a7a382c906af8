// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package inertia is a server-side Inertia.js adapter for gin.
//
// The adapter connects three narrow pieces: the props resolution
// engine (package props), the wire protocol headers (package
// protocol), and the page document (package page). A Renderer owns
// the cross-request state -- root template, asset version, shared
// props, logger, metrics -- and turns one handler call into either an
// Inertia JSON response or the root HTML document:
//
//	rnd, err := inertia.New(
//	    inertia.WithManifest("dist/.vite/manifest.json"),
//	)
//	...
//	router.Use(rnd.Middleware())
//	router.GET("/dashboard", func(c *gin.Context) {
//	    err := rnd.Render(c, "Dashboard", props.NewMap().
//	        Set("user", currentUser(c)).
//	        Set("stats", props.Defer(loadStats, "stats")),
//	    )
//	    ...
//	})
//
// # Thread Safety
//
// A Renderer is shared across concurrently served requests. Shared
// props, the manifest watcher, and the memo cells inside shared prop
// wrappers are the only mutable state; all are guarded.
package inertia
