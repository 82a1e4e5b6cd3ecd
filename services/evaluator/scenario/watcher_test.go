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
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_HotReload(t *testing.T) {
	path := writeCatalog(t, testCatalog)
	store, err := NewStore(path)
	require.NoError(t, err)

	watcher, err := NewWatcher(store, 20*time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	updated := `scenarios:
  - scenario_id: only-one
    content: "New content"
    theme: misc
    difficulty: easy
    expected_answer: "New answer"
    scoring_weight: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	assert.Eventually(t, func() bool {
		return store.Count() == 1
	}, 3*time.Second, 10*time.Millisecond, "catalog should hot reload after the file changes")
}

func TestWatcher_BadWriteKeepsServing(t *testing.T) {
	path := writeCatalog(t, testCatalog)
	store, err := NewStore(path)
	require.NoError(t, err)

	watcher, err := NewWatcher(store, 20*time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	require.NoError(t, watcher.Start(context.Background()))
	require.NoError(t, os.WriteFile(path, []byte("{{{{"), 0o644))

	// Give the debounce window time to fire the failing reload.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 2, store.Count())
}

func TestWatcher_StartIdempotent(t *testing.T) {
	store, err := NewStore(writeCatalog(t, testCatalog))
	require.NoError(t, err)

	watcher, err := NewWatcher(store, time.Millisecond)
	require.NoError(t, err)
	defer watcher.Stop()

	ctx := context.Background()
	require.NoError(t, watcher.Start(ctx))
	require.NoError(t, watcher.Start(ctx))
}
