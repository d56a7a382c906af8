// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package inertia

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/inertia/pkg/logging"
)

// VersionFunc supplies the current asset version. The client sends its
// version with every Inertia request; a mismatch on a GET triggers a
// full reload so stale bundles never render new pages.
type VersionFunc func() string

// StaticVersion returns a provider pinned to a fixed version string.
func StaticVersion(version string) VersionFunc {
	return func() string { return version }
}

// ManifestWatcher derives the asset version from a build manifest file
// (a Vite manifest, typically) and keeps it current by watching the
// file for rewrites. The version is the hex SHA-256 of the manifest
// contents, so any rebuild that changes an asset hash changes the
// version.
type ManifestWatcher struct {
	path    string
	logger  *logging.Logger
	watcher *fsnotify.Watcher

	mu      sync.RWMutex
	version string
	closed  bool
}

// WatchManifest hashes the manifest at path and starts watching its
// directory for changes. Watching the directory rather than the file
// survives the rename-replace dance build tools do on rewrite.
func WatchManifest(path string, logger *logging.Logger) (*ManifestWatcher, error) {
	version, err := hashFile(path)
	if err != nil {
		return nil, fmt.Errorf("hash manifest: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create manifest watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch manifest dir: %w", err)
	}
	w := &ManifestWatcher{
		path:    path,
		logger:  logger,
		watcher: fw,
		version: version,
	}
	go w.loop()
	return w, nil
}

// Version returns the current asset version.
func (w *ManifestWatcher) Version() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.version
}

// Close stops watching. The last computed version remains readable.
func (w *ManifestWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherClosed
	}
	w.closed = true
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *ManifestWatcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			w.rehash()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("manifest watch error", "error", err.Error())
			}
		}
	}
}

func (w *ManifestWatcher) rehash() {
	version, err := hashFile(w.path)
	if err != nil {
		// A rebuild may briefly leave the file missing; keep serving
		// the previous version until it reappears.
		if w.logger != nil {
			w.logger.Warn("manifest rehash failed", "path", w.path, "error", err.Error())
		}
		return
	}
	w.mu.Lock()
	changed := version != w.version
	w.version = version
	w.mu.Unlock()
	if changed && w.logger != nil {
		w.logger.Info("asset version changed", "version", version)
	}
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
