// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inertia

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/inertia/page"
	"github.com/AleutianAI/inertia/props"
	"github.com/AleutianAI/inertia/protocol"
)

// rootData is what the root template is executed with.
type rootData struct {
	ContainerID string
	Page        string
}

// Render resolves p against the request's protocol context and writes
// either the Inertia JSON document (protocol requests) or the root
// HTML page. Shared props are merged beneath p first; request props
// win on key collisions. Thunk errors abort the response and are
// returned for the handler to convert.
func (r *Renderer) Render(c *gin.Context, component string, p *props.Map) error {
	pctx := protocol.ParseRequest(c.Request.Header)
	merged := r.shared.mergeWith(p)
	if r.flash != nil && (p == nil || !p.Has("flash")) {
		// A fresh Always wrapper per request: the wrapper memoizes per
		// instance, so reusing one would pin the first flash forever.
		merged.Set("flash", props.Always(r.flash(c)))
	}

	start := time.Now()
	resolved, err := props.ResolveAsync(c.Request.Context(), merged, pctx, component)
	if err != nil {
		return fmt.Errorf("resolve props for %s: %w", component, err)
	}
	r.metrics.observeResolve(time.Since(start))

	pg := page.New(component, requestURL(c), r.version(), resolved)
	if r.encryptByDefault {
		pg.WithHistory(true, false)
	}
	return r.RenderPage(c, pg, pctx)
}

// RenderPage writes an already assembled page document. Most handlers
// use Render; this entry point exists for callers that tweak history
// flags or assemble pages themselves.
func (r *Renderer) RenderPage(c *gin.Context, pg *page.Page, pctx *props.Context) error {
	if pctx.IsInertia() {
		c.Header(protocol.HeaderInertia, "true")
		c.Header("Vary", protocol.HeaderInertia)
		c.JSON(http.StatusOK, pg)
		r.metrics.observeRender(pg.Component, "json")
		r.logger.Debug("render", "component", pg.Component, "mode", "json", "partial", pctx.IsPartial())
		return nil
	}

	doc, err := json.Marshal(pg)
	if err != nil {
		return fmt.Errorf("marshal page document: %w", err)
	}
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := r.rootTemplate.Execute(c.Writer, rootData{
		ContainerID: r.containerID,
		Page:        string(doc),
	}); err != nil {
		return fmt.Errorf("execute root template: %w", err)
	}
	r.metrics.observeRender(pg.Component, "html")
	r.logger.Debug("render", "component", pg.Component, "mode", "html")
	return nil
}

// Location sends the client to an external URL: a hard visit via 409
// Conflict for protocol requests, a plain redirect otherwise.
func Location(c *gin.Context, url string) {
	if c.GetHeader(protocol.HeaderInertia) == "true" {
		c.Header(protocol.HeaderLocation, url)
		c.AbortWithStatus(http.StatusConflict)
		return
	}
	c.Redirect(http.StatusFound, url)
}

// Back redirects to the referring page, or to fallback when the
// request carries no referer. Pass "/" as a safe default.
func Back(c *gin.Context, fallback string) {
	target := c.Request.Referer()
	if target == "" {
		target = fallback
	}
	c.Redirect(http.StatusFound, target)
}

// requestURL reconstructs the path-plus-query URL the page was served
// under, which the client uses for history entries.
func requestURL(c *gin.Context) string {
	return c.Request.URL.RequestURI()
}
