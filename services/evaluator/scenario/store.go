// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scenario loads and serves the curated scenario catalog. The
// catalog lives in a YAML file, is validated on load, and can be hot
// reloaded when the file changes on disk.
package scenario

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/datatypes"
)

// Scoring weight bounds mirror the clamp applied at aggregation time.
// Weights outside this range are rejected at load so bad catalog entries
// surface early instead of being silently clamped per request.
const (
	minScoringWeight = 0.1
	maxScoringWeight = 2.0
)

// ErrNotFound is returned when a scenario ID is not in the catalog.
var ErrNotFound = fmt.Errorf("scenario not found")

// catalogFile is the on-disk YAML shape.
type catalogFile struct {
	Scenarios []datatypes.Scenario `yaml:"scenarios"`
}

// Store is an in-memory scenario catalog backed by a YAML file.
//
// # Thread Safety
//
// Safe for concurrent use. Reload swaps the whole index under a write lock;
// readers never observe a partially-loaded catalog.
type Store struct {
	path string

	mu      sync.RWMutex
	byID    map[string]datatypes.Scenario
	ordered []datatypes.Scenario

	// rngMu guards rng; rand.Rand is not safe for concurrent use.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewStore loads the catalog at path.
//
// # Outputs
//
//   - *Store: Populated store ready for lookups.
//   - error: Non-nil when the file cannot be read, parsed, or validated.
//     The store is unusable on error; callers should treat this as fatal.
func NewStore(path string) (*Store, error) {
	s := &Store{
		path: path,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the catalog file and atomically replaces the index.
// On any error the previous catalog stays in place.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("reading scenario catalog %s: %w", s.path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing scenario catalog %s: %w", s.path, err)
	}
	if len(file.Scenarios) == 0 {
		return fmt.Errorf("scenario catalog %s contains no scenarios", s.path)
	}

	byID := make(map[string]datatypes.Scenario, len(file.Scenarios))
	for i, sc := range file.Scenarios {
		if err := validateScenario(sc); err != nil {
			return fmt.Errorf("scenario %d (%q): %w", i, sc.ID, err)
		}
		if _, dup := byID[sc.ID]; dup {
			return fmt.Errorf("duplicate scenario id %q", sc.ID)
		}
		byID[sc.ID] = sc
	}

	s.mu.Lock()
	s.byID = byID
	s.ordered = file.Scenarios
	s.mu.Unlock()

	slog.Info("scenario catalog loaded", "path", s.path, "count", len(file.Scenarios))
	return nil
}

// GetByID returns the scenario with the given ID or ErrNotFound.
func (s *Store) GetByID(id string) (datatypes.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.byID[id]
	if !ok {
		return datatypes.Scenario{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sc, nil
}

// Random returns a uniformly chosen scenario, optionally filtered by theme.
// An empty theme matches everything.
func (s *Store) Random(theme string) (datatypes.Scenario, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates := s.ordered
	if theme != "" {
		candidates = nil
		for _, sc := range s.ordered {
			if sc.Theme == theme {
				candidates = append(candidates, sc)
			}
		}
	}
	if len(candidates) == 0 {
		return datatypes.Scenario{}, fmt.Errorf("%w: theme %q", ErrNotFound, theme)
	}

	s.rngMu.Lock()
	idx := s.rng.Intn(len(candidates))
	s.rngMu.Unlock()
	return candidates[idx], nil
}

// Count returns the number of loaded scenarios.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered)
}

// Stats summarizes the loaded catalog by theme and difficulty.
func (s *Store) Stats() datatypes.ScenarioStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := datatypes.ScenarioStats{
		TotalScenarios: len(s.ordered),
		ByTheme:        make(map[string]int),
		ByDifficulty:   make(map[string]int),
		SourcePath:     s.path,
	}
	for _, sc := range s.ordered {
		stats.ByTheme[sc.Theme]++
		stats.ByDifficulty[sc.Difficulty]++
	}
	return stats
}

func validateScenario(sc datatypes.Scenario) error {
	switch {
	case sc.ID == "":
		return fmt.Errorf("missing scenario_id")
	case sc.Content == "":
		return fmt.Errorf("missing content")
	case sc.ExpectedAnswer == "":
		return fmt.Errorf("missing expected_answer")
	case sc.ScoringWeight < minScoringWeight || sc.ScoringWeight > maxScoringWeight:
		return fmt.Errorf("scoring_weight %v outside [%v, %v]",
			sc.ScoringWeight, minScoringWeight, maxScoringWeight)
	}
	return nil
}
