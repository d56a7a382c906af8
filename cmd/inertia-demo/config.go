// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/inertia/pkg/logging"
)

// configValidate is the validator instance for the demo config.
var configValidate = validator.New()

// Config is the demo server configuration, loaded from config.yaml.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Assets  AssetsConfig  `yaml:"assets"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `yaml:"host" validate:"required"`
	Port            int           `yaml:"port" validate:"required,gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	Debug           bool          `yaml:"debug"`
}

// AssetsConfig selects the asset version source. Manifest takes
// precedence over Version when both are set.
type AssetsConfig struct {
	// Version pins a static asset version string.
	Version string `yaml:"version"`

	// Manifest is the path to a build manifest to hash and watch.
	Manifest string `yaml:"manifest" validate:"omitempty,filepath"`
}

// LoggingConfig maps onto the logging package's Config.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
	Quiet bool   `yaml:"quiet"`
}

// defaultConfig is what a missing or partial config.yaml falls back to.
func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Assets: AssetsConfig{
			Version: "dev",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// loadConfig reads and validates the config file at path. A missing
// file yields the defaults; a malformed or invalid file is an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := configValidate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

// logLevel converts the config's level string for the logging package.
func (c LoggingConfig) logLevel() logging.Level {
	switch c.Level {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// addr returns the listen address.
func (s ServerConfig) addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
