// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package props implements the Inertia property resolution engine.
//
// A page handler declares its properties as an ordered map whose values
// may be plain data, zero-argument thunks, or wrapper types that attach
// a policy to the value (Always, Lazy, Optional, Defer, Merge, Once,
// Scroll). The resolver walks that map against a per-request Context --
// the parsed protocol signals describing what the client already holds
// and what it is asking for -- and produces the exact property payload
// plus the metadata side-channels the Inertia client consumes
// (deferredProps, mergeProps, prependProps, deepMergeProps,
// matchPropsOn, onceProps, scrollProps).
//
// # Policies compose
//
// A single property may carry several policies at once. A deferred,
// mergeable, paginated list that should only be recomputed once per
// TTL window is expressed as:
//
//	props.NewMap().Set("feed",
//	    props.Scroll(loadFeed).
//	        MatchOn("id").
//	        OnceFor(30*time.Second).
//	        Defer("feed"),
//	)
//
// # Ordering
//
// Declaration order is part of the wire contract: props and every
// metadata channel are emitted in the order properties were declared,
// which is why the engine operates on the insertion-ordered Map type
// rather than a native Go map.
//
// # Thread Safety
//
// Context and Resolved are immutable snapshots. The only mutable state
// is the per-wrapper memo cell used by Always and Once-flavored props;
// it is mutex-guarded because wrappers registered as shared props live
// across concurrently served requests.
//
// # Sync vs async resolution
//
// Resolve evaluates thunks inline, one after another. ResolveAsync
// evaluates independent top-level thunks concurrently and reassembles
// results in declaration order. Both paths apply identical policy
// logic; the one observable difference is that a Scroll prop whose
// only metadata resolver takes a context.Context is rejected by the
// synchronous path with ErrAsyncMetadataResolver.
package props
