// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inertia

import "errors"

// Sentinel errors for adapter configuration and rendering.
var (
	// ErrNilTemplate is returned when a nil root template is supplied.
	ErrNilTemplate = errors.New("root template is nil")

	// ErrNilVersion is returned when a nil version provider is
	// supplied.
	ErrNilVersion = errors.New("version provider is nil")

	// ErrWatcherClosed is returned when a closed manifest watcher is
	// asked to close again.
	ErrWatcherClosed = errors.New("manifest watcher already closed")
)
