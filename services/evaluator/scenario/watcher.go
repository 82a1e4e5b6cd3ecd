// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scenario

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher hot-reloads a Store when its catalog file changes.
//
// # Description
//
// Watches the catalog's parent directory (editors often replace files via
// rename, which drops a watch on the file itself) and debounces bursts of
// events into a single reload. A reload that fails leaves the previous
// catalog serving.
//
// # Thread Safety
//
// Safe for concurrent use. Start is idempotent.
type Watcher struct {
	store    *Store
	watcher  *fsnotify.Watcher
	debounce time.Duration

	done     chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	started bool
}

// NewWatcher creates a watcher for the store's catalog file. Call Start to
// begin watching and Stop to release the underlying watcher.
func NewWatcher(store *Store, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		store:    store,
		watcher:  fsw,
		debounce: debounce,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. The reload loop exits when ctx is canceled or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.store.path)); err != nil {
		return err
	}

	go w.loop(ctx)
	return nil
}

// Stop stops watching and closes the underlying watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	target := filepath.Clean(w.store.path)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("scenario watcher error", "error", err)
		case <-timerC:
			timerC = nil
			timer = nil
			if err := w.store.Reload(); err != nil {
				slog.Error("scenario hot reload failed, keeping previous catalog",
					"path", w.store.path, "error", err)
				continue
			}
			slog.Info("scenario catalog hot reloaded", "path", w.store.path)
		}
	}
}
