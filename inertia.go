// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inertia

import (
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/AleutianAI/inertia/pkg/logging"
)

// defaultRootHTML is the fallback root document used when no template
// is configured. Real applications supply their own template carrying
// their asset tags.
const defaultRootHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"></head>
<body><div id="{{.ContainerID}}" data-page="{{.Page}}"></div></body>
</html>
`

// Renderer is the adapter's entry point: it owns the cross-request
// state and renders Inertia responses. Create one per application with
// New and share it across handlers.
type Renderer struct {
	rootTemplate     *template.Template
	containerID      string
	version          VersionFunc
	manifest         *ManifestWatcher
	shared           *SharedProps
	flash            FlashProvider
	logger           *logging.Logger
	metrics          *Metrics
	encryptByDefault bool
}

// FlashProvider produces the per-request flash value rendered under
// the "flash" prop key. It is called once per render.
type FlashProvider func(c *gin.Context) any

// Option configures a Renderer.
type Option func(*Renderer) error

// New creates a Renderer. Without options it renders with an empty
// asset version, a minimal root document, and stderr logging.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		containerID: "app",
		version:     StaticVersion(""),
		shared:      NewSharedProps(),
		logger:      logging.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.rootTemplate == nil {
		r.rootTemplate = template.Must(template.New("inertia_root").Parse(defaultRootHTML))
	}
	return r, nil
}

// WithRootTemplate sets the root HTML template. It is executed with
// {ContainerID, Page} where Page is the JSON page document destined
// for the data-page attribute.
func WithRootTemplate(t *template.Template) Option {
	return func(r *Renderer) error {
		if t == nil {
			return ErrNilTemplate
		}
		r.rootTemplate = t
		return nil
	}
}

// WithContainerID overrides the id of the client mount element
// (default "app").
func WithContainerID(id string) Option {
	return func(r *Renderer) error {
		if id != "" {
			r.containerID = id
		}
		return nil
	}
}

// WithVersion sets the asset version provider.
func WithVersion(fn VersionFunc) Option {
	return func(r *Renderer) error {
		if fn == nil {
			return ErrNilVersion
		}
		r.version = fn
		return nil
	}
}

// WithStaticVersion pins the asset version to a fixed string.
func WithStaticVersion(version string) Option {
	return WithVersion(StaticVersion(version))
}

// WithManifest derives the asset version from the build manifest at
// path and watches it so a rebuild flips the version without a
// restart. The watcher is released by Renderer.Close.
func WithManifest(path string) Option {
	return func(r *Renderer) error {
		w, err := WatchManifest(path, r.logger)
		if err != nil {
			return err
		}
		r.manifest = w
		r.version = w.Version
		return nil
	}
}

// WithLogger replaces the default stderr logger. Order matters when
// combined with WithManifest: set the logger first so the watcher
// inherits it.
func WithLogger(l *logging.Logger) Option {
	return func(r *Renderer) error {
		if l != nil {
			r.logger = l
		}
		return nil
	}
}

// WithMetrics registers render metrics with reg and enables
// collection. Pass prometheus.DefaultRegisterer for the default
// registry.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(r *Renderer) error {
		r.metrics = NewMetrics(reg)
		return nil
	}
}

// WithSharedProps injects an existing shared-props registry, letting
// several Renderers (or application wiring built ahead of the
// Renderer) share one store.
func WithSharedProps(s *SharedProps) Option {
	return func(r *Renderer) error {
		if s != nil {
			r.shared = s
		}
		return nil
	}
}

// WithFlashProvider installs a per-request flash source. Each render
// wraps the provider's value in a fresh Always prop under the "flash"
// key, so it survives partial reloads and is never memoized across
// requests. Request props override it on key collision.
func WithFlashProvider(fn FlashProvider) Option {
	return func(r *Renderer) error {
		r.flash = fn
		return nil
	}
}

// WithEncryptHistory makes pages request client history encryption by
// default; individual renders can still override via RenderPage.
func WithEncryptHistory() Option {
	return func(r *Renderer) error {
		r.encryptByDefault = true
		return nil
	}
}

// Shared returns the shared-props registry. Entries registered here
// are merged beneath every render's props; request props win on key
// collisions.
func (r *Renderer) Shared() *SharedProps { return r.shared }

// Version returns the current asset version.
func (r *Renderer) Version() string { return r.version() }

// Close releases the manifest watcher, if any.
func (r *Renderer) Close() error {
	if r.manifest == nil {
		return nil
	}
	return r.manifest.Close()
}
