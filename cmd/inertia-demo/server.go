// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/inertia"
	"github.com/AleutianAI/inertia/pkg/logging"
)

func runServe(cmd *cobra.Command, args []string) error {
	logger := logging.New(logging.Config{
		Level:   config.Logging.logLevel(),
		LogDir:  config.Logging.Dir,
		Service: "inertia-demo",
		JSON:    config.Logging.JSON,
		Quiet:   config.Logging.Quiet,
	})
	defer logger.Close()

	if config.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	store := newDemoStore()
	opts := []inertia.Option{
		inertia.WithLogger(logger),
		inertia.WithMetrics(registry),
		inertia.WithFlashProvider(func(c *gin.Context) any {
			return store.takeFlash()
		}),
	}
	if config.Assets.Manifest != "" {
		opts = append(opts, inertia.WithManifest(config.Assets.Manifest))
	} else {
		opts = append(opts, inertia.WithStaticVersion(config.Assets.Version))
	}
	renderer, err := inertia.New(opts...)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer renderer.Close()

	router := gin.New()
	router.Use(gin.Recovery())
	registerRoutes(router, renderer, logger, store)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": renderer.Version()})
	})

	srv := &http.Server{
		Addr:         config.Server.addr(),
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting demo server", "address", srv.Addr, "asset_version", renderer.Version())
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	logger.Info("demo server stopped")
	return nil
}
