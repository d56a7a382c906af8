// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package props

import "errors"

// Sentinel errors for property resolution.
var (
	// ErrNotIncluded is returned when a wrapper's Value method is called
	// directly while its inclusion predicate is false for the given
	// context. It distinguishes a policy violation from missing data:
	// prop authors bypassing the resolver's gate get a loud failure
	// instead of a silent nil.
	ErrNotIncluded = errors.New("prop is not included under the current request context")

	// ErrAsyncMetadataResolver is returned by the synchronous resolve
	// path when a Scroll prop is configured with only a context-taking
	// metadata resolver. The misconfiguration is not retried or
	// silently degraded; use ResolveAsync or supply Metadata instead of
	// MetadataContext.
	ErrAsyncMetadataResolver = errors.New("scroll metadata resolver requires the asynchronous resolve path")

	// ErrNilThunk is returned when a wrapper was constructed around a
	// nil function value.
	ErrNilThunk = errors.New("prop thunk is nil")
)
