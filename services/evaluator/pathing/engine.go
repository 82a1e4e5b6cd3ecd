// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pathing maps evaluation scores to a next-stage path difficulty and
// a bounded node count. Pure functions over config, no external calls.
package pathing

import (
	"math"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/config"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/datatypes"
)

// Scaling factors applied to the base node count. Shorter paths fast-track
// strong players; longer paths give weak scores more practice stops.
const (
	shorterScale = 0.6
	longerScale  = 1.4
)

// Engine recommends path adjustments from a total score.
type Engine struct {
	path    config.PathConfig
	scoring config.ScoringConfig
}

// NewEngine builds an engine over the given path bounds and score
// thresholds.
func NewEngine(path config.PathConfig, scoring config.ScoringConfig) *Engine {
	return &Engine{path: path, scoring: scoring}
}

// Recommendation pairs a difficulty bucket with its node count.
type Recommendation struct {
	Difficulty datatypes.PathDifficulty `json:"path_difficulty"`
	NodeCount  int                      `json:"recommended_node_count"`
}

// Recommend maps a total score to a path recommendation.
//
// # Description
//
// Scores at or below the poor threshold get a longer path, scores at or
// above the excellent threshold get a shorter one, everything in between
// stays on the normal path. The node count scales the base by the
// difficulty factor, rounded, and is always clamped to the configured
// bounds. Identical inputs always produce identical output.
func (e *Engine) Recommend(score float64, baseNodes int) Recommendation {
	difficulty := e.DifficultyFor(score)
	return Recommendation{
		Difficulty: difficulty,
		NodeCount:  e.NodeCount(difficulty, baseNodes),
	}
}

// RecommendDefault is Recommend with the configured default base.
func (e *Engine) RecommendDefault(score float64) Recommendation {
	return e.Recommend(score, e.path.DefaultNodes)
}

// DifficultyFor returns the difficulty bucket for a score. Thresholds are
// inclusive on both sides.
func (e *Engine) DifficultyFor(score float64) datatypes.PathDifficulty {
	switch {
	case score <= e.scoring.PoorMax:
		return datatypes.PathLonger
	case score >= e.scoring.ExcellentMin:
		return datatypes.PathShorter
	default:
		return datatypes.PathMedium
	}
}

// NodeCount scales baseNodes by the difficulty factor and clamps to the
// configured bounds. A non-positive base falls back to the default.
func (e *Engine) NodeCount(difficulty datatypes.PathDifficulty, baseNodes int) int {
	if baseNodes <= 0 {
		baseNodes = e.path.DefaultNodes
	}

	var count int
	switch difficulty {
	case datatypes.PathShorter:
		count = max(e.path.MinNodes, int(math.Round(float64(baseNodes)*shorterScale)))
	case datatypes.PathLonger:
		count = min(e.path.MaxNodes, int(math.Round(float64(baseNodes)*longerScale)))
	default:
		count = baseNodes
	}

	return max(e.path.MinNodes, min(e.path.MaxNodes, count))
}
