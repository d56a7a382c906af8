// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inertia

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AleutianAI/inertia/protocol"
)

// Middleware returns the protocol middleware every Inertia route group
// needs:
//
//   - stamps X-Request-ID (generating one when absent)
//   - forces a full reload via 409 + X-Inertia-Location when a GET
//     arrives with a stale asset version
//   - rewrites 302 redirects after PUT/PATCH/DELETE to 303 so the
//     client follows with a GET
func (r *Renderer) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		if c.GetHeader(protocol.HeaderInertia) == "true" && c.Request.Method == http.MethodGet {
			current := r.version()
			sent := c.GetHeader(protocol.HeaderVersion)
			if current != "" && sent != "" && sent != current {
				r.metrics.observeVersionMismatch()
				r.logger.Info("asset version mismatch",
					"request_id", requestID,
					"client_version", sent,
					"server_version", current,
				)
				c.Header(protocol.HeaderLocation, requestURL(c))
				c.AbortWithStatus(http.StatusConflict)
				return
			}
		}

		c.Writer = &redirectRewriter{ResponseWriter: c.Writer, method: c.Request.Method}
		c.Next()
	}
}

// redirectRewriter turns a 302 after a state-changing method into a
// 303. The Inertia client follows redirects with the original method
// otherwise, replaying the mutation.
type redirectRewriter struct {
	gin.ResponseWriter
	method string
}

func (w *redirectRewriter) WriteHeader(code int) {
	if code == http.StatusFound {
		switch w.method {
		case http.MethodPut, http.MethodPatch, http.MethodDelete:
			code = http.StatusSeeOther
		}
	}
	w.ResponseWriter.WriteHeader(code)
}
