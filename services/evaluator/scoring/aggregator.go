// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scoring

import (
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/config"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/datatypes"
)

// ScoreAggregator combines comparison and reasoning sub-scores into a
// total score and a category.
//
// # Thread Safety
//
// Read-only after construction; safe for concurrent use.
type ScoreAggregator struct {
	comparisonWeight float64
	reasoningWeight  float64
	poorMax          float64
	excellentMin     float64
}

// NewScoreAggregator builds an aggregator from scoring configuration.
//
// # Description
//
// If the two weights deviate from summing to 1.0 by more than 0.01 they
// are proportionally renormalized here, with a logged warning. Inverted
// thresholds fall back to the 30/70 defaults.
func NewScoreAggregator(cfg config.ScoringConfig) *ScoreAggregator {
	cw, rw := cfg.ComparisonWeight, cfg.ReasoningWeight
	sum := cw + rw
	if sum > 0 && (sum > 1.01 || sum < 0.99) {
		slog.Warn("scoring weights do not sum to 1.0, renormalizing",
			"comparison_weight", cw, "reasoning_weight", rw, "sum", sum)
		cw /= sum
		rw /= sum
	}

	poorMax, excellentMin := cfg.PoorMax, cfg.ExcellentMin
	if poorMax >= excellentMin {
		slog.Warn("score thresholds are inverted, restoring defaults",
			"poor_max", poorMax, "excellent_min", excellentMin)
		poorMax, excellentMin = 30, 70
	}

	return &ScoreAggregator{
		comparisonWeight: cw,
		reasoningWeight:  rw,
		poorMax:          poorMax,
		excellentMin:     excellentMin,
	}
}

// Weights returns the effective (possibly renormalized) weights.
func (a *ScoreAggregator) Weights() (comparison, reasoning float64) {
	return a.comparisonWeight, a.reasoningWeight
}

// Thresholds returns the effective category thresholds.
func (a *ScoreAggregator) Thresholds() (poorMax, excellentMin float64) {
	return a.poorMax, a.excellentMin
}

// AggregateTotal computes the weighted total score, in [0,100].
//
// # Description
//
// Both sub-scores are clamped to [0,100] and the scenario weight to
// [0.1,2.0] before the weighted sum is scaled and finally clamped again.
func (a *ScoreAggregator) AggregateTotal(comparisonScore, reasoningScore, scenarioWeight float64) float64 {
	comparisonScore = clampScore(comparisonScore)
	reasoningScore = clampScore(reasoningScore)
	if scenarioWeight < 0.1 {
		scenarioWeight = 0.1
	}
	if scenarioWeight > 2.0 {
		scenarioWeight = 2.0
	}

	total := (comparisonScore*a.comparisonWeight + reasoningScore*a.reasoningWeight) * scenarioWeight
	return clampScore(total)
}

// CategoryOf buckets a total score.
//
// # Description
//
// Boundary values belong to the outer buckets: total == poorMax is poor
// and total == excellentMin is excellent.
func (a *ScoreAggregator) CategoryOf(total float64) datatypes.ScoreCategory {
	switch {
	case total <= a.poorMax:
		return datatypes.CategoryPoor
	case total >= a.excellentMin:
		return datatypes.CategoryExcellent
	default:
		return datatypes.CategoryAverage
	}
}

// DetailedFeedback assembles the human-readable feedback text from score
// bands and detected reasoning patterns.
func (a *ScoreAggregator) DetailedFeedback(total, comparisonScore, reasoningScore float64, patterns datatypes.ReasoningPatterns) string {
	var parts []string

	switch {
	case total >= a.excellentMin:
		parts = append(parts, "Excellent response! Your answer demonstrates strong understanding and reasoning.")
	case total >= (a.poorMax+a.excellentMin)/2:
		parts = append(parts, "Good response with solid reasoning and understanding.")
	case total > a.poorMax:
		parts = append(parts, "Decent response, but there's room for improvement.")
	default:
		parts = append(parts, "Your response shows some understanding, but needs significant improvement.")
	}

	switch {
	case comparisonScore >= 80:
		parts = append(parts, "Your solution closely matches the expected approach.")
	case comparisonScore >= 60:
		parts = append(parts, "Your solution has good elements but differs from the optimal approach.")
	case comparisonScore >= 40:
		parts = append(parts, "Your solution has some relevant points but misses key elements.")
	default:
		parts = append(parts, "Your solution needs to be more aligned with effective approaches.")
	}

	switch {
	case reasoningScore >= 80:
		parts = append(parts, "Your reasoning is clear, logical, and well-structured.")
	case reasoningScore >= 60:
		parts = append(parts, "Your reasoning is generally sound with good logical flow.")
	case reasoningScore >= 40:
		parts = append(parts, "Your reasoning shows some logic but could be more structured.")
	default:
		parts = append(parts, "Try to provide clearer reasoning and logical connections.")
	}

	if strengths := patternStrengths(patterns); strengths != "" {
		parts = append(parts, strengths)
	}

	parts = append(parts, a.improvementSuggestions(total, comparisonScore, reasoningScore, patterns)...)

	return strings.Join(parts, " ")
}

// patternStrengths names the reasoning patterns that fired.
func patternStrengths(p datatypes.ReasoningPatterns) string {
	var found []string
	if p.Causal {
		found = append(found, "good use of cause-and-effect thinking")
	}
	if p.Structure {
		found = append(found, "well-organized logical structure")
	}
	if p.Evidence {
		found = append(found, "nice use of evidence-based reasoning")
	}
	if p.StepByStep {
		found = append(found, "excellent systematic approach")
	}
	if p.Alternatives {
		found = append(found, "great consideration of alternatives")
	}
	if p.Consequence {
		found = append(found, "good analysis of potential outcomes")
	}

	switch len(found) {
	case 0:
		return "Consider using more structured reasoning approaches."
	case 1:
		return "Strength: " + found[0] + "."
	default:
		return "Strengths: " + strings.Join(found[:len(found)-1], ", ") + ", and " + found[len(found)-1] + "."
	}
}

func (a *ScoreAggregator) improvementSuggestions(total, comparisonScore, reasoningScore float64, patterns datatypes.ReasoningPatterns) []string {
	var suggestions []string

	if comparisonScore < 50 {
		suggestions = append(suggestions, "Try to think about what the most effective solution would be.")
	}
	if reasoningScore < 50 {
		suggestions = append(suggestions, "Work on explaining your thought process more clearly.")
	}
	if !patterns.Causal && reasoningScore < 70 {
		suggestions = append(suggestions, "Try explaining why your solution would work.")
	}
	if !patterns.StepByStep && comparisonScore < 70 {
		suggestions = append(suggestions, "Consider breaking down your approach into clear steps.")
	}
	if !patterns.Consequence && total < 60 {
		suggestions = append(suggestions, "Think about the potential outcomes of your solution.")
	}
	if total < a.poorMax {
		suggestions = append(suggestions,
			"Consider researching best practices for similar situations.",
			"Take time to think through the problem from different angles.")
	}

	return suggestions
}
