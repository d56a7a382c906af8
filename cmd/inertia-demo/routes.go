// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/inertia"
	"github.com/AleutianAI/inertia/pkg/logging"
	"github.com/AleutianAI/inertia/props"
)

const feedPageSize = 10

// demoStore is the demo's in-memory state: a message feed and a flash
// slot, enough to make merges and redirects observable.
type demoStore struct {
	mu       sync.Mutex
	messages []string
	flash    string
}

func (s *demoStore) addMessage(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, text)
	s.flash = "message posted"
}

// takeFlash returns and clears the flash message.
func (s *demoStore) takeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.flash
	s.flash = ""
	return f
}

// feedPage returns one page of messages plus the next page number, or
// 0 when exhausted.
func (s *demoStore) feedPage(page int) ([]any, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := (page - 1) * feedPageSize
	if start >= len(s.messages) {
		return []any{}, 0
	}
	end := start + feedPageSize
	if end > len(s.messages) {
		end = len(s.messages)
	}
	out := make([]any, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, map[string]any{"id": i + 1, "text": s.messages[i]})
	}
	next := 0
	if end < len(s.messages) {
		next = page + 1
	}
	return out, next
}

// newDemoStore seeds the store with enough messages to paginate.
func newDemoStore() *demoStore {
	store := &demoStore{}
	for i := 1; i <= 45; i++ {
		store.messages = append(store.messages, fmt.Sprintf("message %d", i))
	}
	return store
}

func registerRoutes(router *gin.Engine, r *inertia.Renderer, logger *logging.Logger, store *demoStore) {
	// Shared props ride beneath every page. The once-wrapped server
	// info is computed at most once per hour across all requests.
	r.Shared().
		Set("app_name", "inertia-demo").
		Set("server_info", props.Once(func() any {
			return map[string]any{"go_time": time.Now().Format(time.RFC3339)}
		}).TTL(time.Hour))

	router.Use(r.Middleware())

	router.GET("/", func(c *gin.Context) {
		p := props.NewMap().
			Set("title", "Dashboard").
			// Computed concurrently with the other thunks.
			Set("user", func(ctx context.Context) (any, error) {
				return map[string]any{"id": 1, "name": "demo"}, nil
			}).
			// Fetched only when a partial reload names it.
			Set("activity", props.Lazy(func() any {
				time.Sleep(50 * time.Millisecond)
				return []any{"logged in", "posted a message"}
			})).
			// Announced on first load, fetched in a follow-up request.
			Set("stats", props.Defer(func() any {
				time.Sleep(100 * time.Millisecond)
				return map[string]any{"messages": len(store.messages)}
			}, "metrics"))
		render(c, r, logger, "Dashboard", p)
	})

	router.GET("/feed", func(c *gin.Context) {
		pageNum, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if pageNum < 1 {
			pageNum = 1
		}
		items, next := store.feedPage(pageNum)
		var prev any
		if pageNum > 1 {
			prev = pageNum - 1
		}
		var nextPage any
		if next != 0 {
			nextPage = next
		}
		p := props.NewMap().Set("messages", props.Scroll(items).
			MatchOn("id").
			Metadata(func(any) props.ScrollMeta {
				return props.ScrollMeta{
					CurrentPage:  pageNum,
					PreviousPage: prev,
					NextPage:     nextPage,
				}
			}))
		render(c, r, logger, "Feed", p)
	})

	router.GET("/notifications", func(c *gin.Context) {
		// A merge prop: reloads append rather than replace.
		p := props.NewMap().Set("notifications", props.Merge(func() any {
			items, _ := store.feedPage(1)
			return items
		}).MatchOn("id"))
		render(c, r, logger, "Notifications", p)
	})

	router.POST("/messages", func(c *gin.Context) {
		text := c.PostForm("text")
		if text == "" {
			text = "empty message"
		}
		store.addMessage(text)
		c.Redirect(http.StatusFound, "/feed")
	})

	router.DELETE("/messages", func(c *gin.Context) {
		// The middleware rewrites this 302 to 303 so the client
		// follows with a GET.
		c.Redirect(http.StatusFound, "/feed")
	})

	router.GET("/external", func(c *gin.Context) {
		inertia.Location(c, "https://inertiajs.com")
	})
}

// render converts resolution failures into a 500; the demo keeps
// error pages out of scope.
func render(c *gin.Context, r *inertia.Renderer, logger *logging.Logger, component string, p *props.Map) {
	if err := r.Render(c, component, p); err != nil {
		logger.Error("render failed", "component", component, "error", err.Error())
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
