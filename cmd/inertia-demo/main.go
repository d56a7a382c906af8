// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command inertia-demo starts a demonstration server exercising the
// Inertia adapter end to end: shared props, partial reloads, deferred
// groups, merge and infinite-scroll props, once props, and asset
// version reloads.
//
// Usage:
//
//	go run ./cmd/inertia-demo serve
//	go run ./cmd/inertia-demo serve --config ./config.yaml
//
// Example requests:
//
//	# Full page load (HTML shell with embedded page document)
//	curl http://localhost:8080/
//
//	# Inertia page document
//	curl -H "X-Inertia: true" http://localhost:8080/
//
//	# Partial reload of one prop
//	curl -H "X-Inertia: true" \
//	  -H "X-Inertia-Partial-Component: Dashboard" \
//	  -H "X-Inertia-Partial-Data: activity" http://localhost:8080/
package main

import (
	"log"

	"github.com/spf13/cobra"
)

var (
	configPath string
	config     Config

	rootCmd = &cobra.Command{
		Use:   "inertia-demo",
		Short: "Demonstration server for the Inertia adapter",
		Long: `inertia-demo serves a small application whose pages exercise
every property flavor the adapter supports, so client behavior can be
inspected with curl or a stock Inertia frontend.`,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the demo HTTP server",
		RunE:  runServe, // Defined in server.go
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to the config file")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		config = cfg
		return nil
	}
	rootCmd.AddCommand(serveCmd)
}
