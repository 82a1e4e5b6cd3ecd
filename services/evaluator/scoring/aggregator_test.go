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
	"testing"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/config"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/datatypes"
	"github.com/stretchr/testify/assert"
)

func defaultScoring() config.ScoringConfig {
	return config.ScoringConfig{
		ComparisonWeight: 0.6,
		ReasoningWeight:  0.4,
		PoorMax:          30,
		ExcellentMin:     70,
	}
}

func TestNewScoreAggregator_RenormalizesWeights(t *testing.T) {
	agg := NewScoreAggregator(config.ScoringConfig{
		ComparisonWeight: 0.5,
		ReasoningWeight:  0.3,
		PoorMax:          30,
		ExcellentMin:     70,
	})

	cw, rw := agg.Weights()
	assert.InDelta(t, 0.625, cw, 1e-9)
	assert.InDelta(t, 0.375, rw, 1e-9)
}

func TestNewScoreAggregator_KeepsValidWeights(t *testing.T) {
	agg := NewScoreAggregator(defaultScoring())

	cw, rw := agg.Weights()
	assert.InDelta(t, 0.6, cw, 1e-9)
	assert.InDelta(t, 0.4, rw, 1e-9)
}

func TestNewScoreAggregator_FixesInvertedThresholds(t *testing.T) {
	agg := NewScoreAggregator(config.ScoringConfig{
		ComparisonWeight: 0.6,
		ReasoningWeight:  0.4,
		PoorMax:          80,
		ExcellentMin:     20,
	})

	poorMax, excellentMin := agg.Thresholds()
	assert.Equal(t, 30.0, poorMax)
	assert.Equal(t, 70.0, excellentMin)
}

func TestAggregateTotal(t *testing.T) {
	agg := NewScoreAggregator(defaultScoring())

	tests := []struct {
		name       string
		comparison float64
		reasoning  float64
		weight     float64
		want       float64
	}{
		{"plain blend", 80, 60, 1.0, 72},
		{"scenario weight scales", 80, 60, 1.5, 100}, // 72*1.5 clamped
		{"weight clamped low", 50, 50, 0.01, 5},      // weight becomes 0.1
		{"weight clamped high", 50, 50, 5.0, 100},    // weight becomes 2.0
		{"inputs clamped", 150, -20, 1.0, 60},        // 100*0.6 + 0*0.4
		{"zero", 0, 0, 1.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := agg.AggregateTotal(tt.comparison, tt.reasoning, tt.weight)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestCategoryOf_Boundaries(t *testing.T) {
	agg := NewScoreAggregator(defaultScoring())

	tests := []struct {
		total float64
		want  datatypes.ScoreCategory
	}{
		{0, datatypes.CategoryPoor},
		{30, datatypes.CategoryPoor},      // exactly poorMax
		{30.01, datatypes.CategoryAverage},
		{50, datatypes.CategoryAverage},
		{69.99, datatypes.CategoryAverage},
		{70, datatypes.CategoryExcellent}, // exactly excellentMin
		{100, datatypes.CategoryExcellent},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, agg.CategoryOf(tt.total), "total=%v", tt.total)
	}
}

func TestDetailedFeedback_Suggestions(t *testing.T) {
	agg := NewScoreAggregator(defaultScoring())

	// Weak response with no detected patterns triggers the full set.
	fb := agg.DetailedFeedback(25, 40, 45, datatypes.ReasoningPatterns{})
	assert.NotEmpty(t, fb)
	assert.Contains(t, fb, "Try to think about what the most effective solution would be.")
	assert.Contains(t, fb, "Work on explaining your thought process more clearly.")
	assert.Contains(t, fb, "Try explaining why your solution would work.")
	assert.Contains(t, fb, "Consider breaking down your approach into clear steps.")
	assert.Contains(t, fb, "Think about the potential outcomes of your solution.")
	assert.Contains(t, fb, "researching best practices")
}

func TestDetailedFeedback_StrongResponse(t *testing.T) {
	agg := NewScoreAggregator(defaultScoring())

	patterns := datatypes.ReasoningPatterns{
		Causal:     true,
		StepByStep: true,
	}
	fb := agg.DetailedFeedback(85, 88, 82, patterns)
	assert.Contains(t, fb, "Excellent response!")
	assert.Contains(t, fb, "closely matches the expected approach")
	assert.Contains(t, fb, "clear, logical, and well-structured")
	assert.Contains(t, fb, "Strengths:")
	assert.NotContains(t, fb, "researching best practices")
}

func TestDetailedFeedback_NeverEmpty(t *testing.T) {
	agg := NewScoreAggregator(defaultScoring())

	for _, total := range []float64{0, 30, 50, 70, 100} {
		fb := agg.DetailedFeedback(total, total, total, datatypes.ReasoningPatterns{})
		assert.NotEmpty(t, fb)
	}
}
