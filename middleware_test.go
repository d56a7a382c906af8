// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inertia

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/inertia/protocol"
)

func middlewareRouter(t *testing.T, r *Renderer) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.Use(r.Middleware())
	router.GET("/dash", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.POST("/save", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dash")
	})
	router.PUT("/users/7", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/users/7")
	})
	router.DELETE("/users/7", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/users")
	})
	return router
}

func TestMiddleware_VersionMismatchForcesReload(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newTestRenderer(t, WithStaticVersion("v2"), WithMetrics(reg))
	router := middlewareRouter(t, r)

	req := httptest.NewRequest(http.MethodGet, "/dash?tab=2", nil)
	req.Header.Set(protocol.HeaderInertia, "true")
	req.Header.Set(protocol.HeaderVersion, "v1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "/dash?tab=2", w.Header().Get(protocol.HeaderLocation))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.metrics.versionMismatches))
}

func TestMiddleware_VersionChecks(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		path          string
		serverVersion string
		clientVersion string
		inertia       bool
		wantCode      int
	}{
		{"matching version passes", http.MethodGet, "/dash", "v1", "v1", true, http.StatusOK},
		{"missing client version passes", http.MethodGet, "/dash", "v1", "", true, http.StatusOK},
		{"empty server version passes", http.MethodGet, "/dash", "", "v1", true, http.StatusOK},
		{"non-inertia request passes", http.MethodGet, "/dash", "v2", "v1", false, http.StatusOK},
		{"post skips the check", http.MethodPost, "/save", "v2", "v1", true, http.StatusFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRenderer(t, WithStaticVersion(tt.serverVersion))
			router := middlewareRouter(t, r)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.inertia {
				req.Header.Set(protocol.HeaderInertia, "true")
			}
			if tt.clientVersion != "" {
				req.Header.Set(protocol.HeaderVersion, tt.clientVersion)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestMiddleware_RedirectRewrite(t *testing.T) {
	r := newTestRenderer(t)
	router := middlewareRouter(t, r)

	tests := []struct {
		method   string
		path     string
		wantCode int
	}{
		// State-changing methods the client would replay on a 302.
		{http.MethodPut, "/users/7", http.StatusSeeOther},
		{http.MethodDelete, "/users/7", http.StatusSeeOther},
		// POST follows with GET already; 302 stays.
		{http.MethodPost, "/save", http.StatusFound},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		req.Header.Set(protocol.HeaderInertia, "true")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equalf(t, tt.wantCode, w.Code, "%s %s", tt.method, tt.path)
	}
}

func TestMiddleware_RequestID(t *testing.T) {
	r := newTestRenderer(t)
	router := middlewareRouter(t, r)

	// Generated when absent.
	req := httptest.NewRequest(http.MethodGet, "/dash", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// Echoed when supplied.
	req = httptest.NewRequest(http.MethodGet, "/dash", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestMetrics_RenderCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newTestRenderer(t, WithMetrics(reg))

	serve(t, r, "Home", nil, asInertia)
	serve(t, r, "Home", nil, asInertia)
	serve(t, r, "Home", nil, nil)

	assert.Equal(t, float64(2), testutil.ToFloat64(r.metrics.renders.WithLabelValues("Home", "json")))
	assert.Equal(t, float64(1), testutil.ToFloat64(r.metrics.renders.WithLabelValues("Home", "html")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observeRender("Home", "json")
		m.observeResolve(0)
		m.observeVersionMismatch()
	})
}
