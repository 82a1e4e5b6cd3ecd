// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package narrative

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/config"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/datatypes"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNarrativeConfig() config.NarrativeConfig {
	return config.NarrativeConfig{
		Exaggeration:         config.ExaggerationHigh,
		AppropriatenessCheck: true,
	}
}

func TestGenerateByCategory_ReturnsModelOutcome(t *testing.T) {
	mock := llm.NewMockClient().QueueResponse(
		"Your fix lands flawlessly and the whole team celebrates your quick thinking!")
	gen := NewOutcomeNarrativeGenerator(mock, testNarrativeConfig())

	outcome := gen.GenerateByCategory(context.Background(),
		datatypes.CategoryExcellent, "A bug appears before release", "I escalate and document it")

	assert.Equal(t, "Your fix lands flawlessly and the whole team celebrates your quick thinking!", outcome)
	require.NoError(t, mock.Verify())
}

func TestGenerateByCategory_FallbackOnBackendError(t *testing.T) {
	for _, category := range []datatypes.ScoreCategory{
		datatypes.CategoryPoor,
		datatypes.CategoryAverage,
		datatypes.CategoryExcellent,
	} {
		t.Run(string(category), func(t *testing.T) {
			mock := llm.NewMockClient().WithError(errors.New("backend down"))
			gen := NewOutcomeNarrativeGenerator(mock, testNarrativeConfig()).
				WithRand(rand.New(rand.NewSource(7)))

			outcome := gen.GenerateByCategory(context.Background(), category, "scenario", "response")

			assert.NotEmpty(t, outcome)
			assert.Equal(t, FallbackOutcome(category, rand.New(rand.NewSource(7))), outcome)
		})
	}
}

func TestGenerateByCategory_FallbackOnEmptyOutput(t *testing.T) {
	mock := llm.NewMockClient().QueueResponse("   \n  ")
	gen := NewOutcomeNarrativeGenerator(mock, testNarrativeConfig()).
		WithRand(rand.New(rand.NewSource(1)))

	outcome := gen.GenerateByCategory(context.Background(),
		datatypes.CategoryAverage, "scenario", "response")

	assert.NotEmpty(t, outcome)
	assert.Contains(t, averageFallbacks, outcome)
}

func TestGenerateByCategory_DeniedTermTriggersFallback(t *testing.T) {
	mock := llm.NewMockClient().QueueResponse(
		"Your plan is a complete failure and everyone points and laughs.")
	gen := NewOutcomeNarrativeGenerator(mock, testNarrativeConfig()).
		WithRand(rand.New(rand.NewSource(3)))

	outcome := gen.GenerateByCategory(context.Background(),
		datatypes.CategoryPoor, "scenario", "response")

	assert.Contains(t, poorFallbacks, outcome)
	assert.NotContains(t, strings.ToLower(outcome), "failure")
}

func TestGenerateByCategory_PromptAndParamsPerCategory(t *testing.T) {
	tests := []struct {
		category  datatypes.ScoreCategory
		wantText  string
		maxTokens int
	}{
		{datatypes.CategoryExcellent, "dramatically POSITIVE", 300},
		{datatypes.CategoryPoor, "dramatically NEGATIVE", 300},
		{datatypes.CategoryAverage, "MODERATE outcome", 250},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			mock := llm.NewMockClient().QueueResponse("A perfectly reasonable outcome happens.")
			gen := NewOutcomeNarrativeGenerator(mock, testNarrativeConfig())

			gen.GenerateByCategory(context.Background(), tt.category, "scenario", "response")

			calls := mock.GetCalls()
			require.Len(t, calls, 1)
			assert.Contains(t, calls[0].Prompt, tt.wantText)
			require.NotNil(t, calls[0].Params.MaxTokens)
			assert.Equal(t, tt.maxTokens, *calls[0].Params.MaxTokens)
		})
	}
}

func TestValidateAppropriateness_DenylistAlwaysRuns(t *testing.T) {
	// Check disabled: the denylist still rejects, with zero model calls.
	mock := llm.NewMockClient()
	gen := NewOutcomeNarrativeGenerator(mock, config.NarrativeConfig{
		Exaggeration:         config.ExaggerationLow,
		AppropriatenessCheck: false,
	})

	result := gen.ValidateAppropriateness(context.Background(), "what a pathetic attempt")

	assert.False(t, result.IsAppropriate)
	assert.Equal(t, RatingInappropriate, result.Rating)
	assert.Equal(t, 0, mock.CallCount())
}

func TestValidateAppropriateness_ShortOutcomeSkipsModel(t *testing.T) {
	mock := llm.NewMockClient()
	gen := NewOutcomeNarrativeGenerator(mock, testNarrativeConfig())

	result := gen.ValidateAppropriateness(context.Background(), "A short and cheerful outcome.")

	assert.True(t, result.IsAppropriate)
	assert.Equal(t, 0, mock.CallCount())
}

func TestValidateAppropriateness_LongOutcomeUsesModel(t *testing.T) {
	long := strings.Repeat("The story keeps going and going with more detail. ", 6)

	t.Run("model rejects", func(t *testing.T) {
		mock := llm.NewMockClient().QueueResponse(
			"Rating: NEEDS_MODIFICATION\nReason: Tone is too harsh\nSuggestions: Soften the ending")
		gen := NewOutcomeNarrativeGenerator(mock, testNarrativeConfig())

		result := gen.ValidateAppropriateness(context.Background(), long)

		assert.False(t, result.IsAppropriate)
		assert.Equal(t, RatingNeedsModification, result.Rating)
		assert.Equal(t, "Tone is too harsh", result.Reason)
		assert.Equal(t, 1, mock.CallCount())
	})

	t.Run("model error defaults to appropriate", func(t *testing.T) {
		mock := llm.NewMockClient().WithError(errors.New("backend down"))
		gen := NewOutcomeNarrativeGenerator(mock, testNarrativeConfig())

		result := gen.ValidateAppropriateness(context.Background(), long)
		assert.True(t, result.IsAppropriate)
	})

	t.Run("check disabled skips model", func(t *testing.T) {
		mock := llm.NewMockClient()
		gen := NewOutcomeNarrativeGenerator(mock, config.NarrativeConfig{
			Exaggeration:         config.ExaggerationHigh,
			AppropriatenessCheck: false,
		})

		result := gen.ValidateAppropriateness(context.Background(), long)

		assert.True(t, result.IsAppropriate)
		assert.Equal(t, 0, mock.CallCount())
	})
}

func TestFallbackOutcome_NeverEmpty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, category := range []datatypes.ScoreCategory{
		datatypes.CategoryPoor,
		datatypes.CategoryAverage,
		datatypes.CategoryExcellent,
	} {
		for i := 0; i < 20; i++ {
			assert.NotEmpty(t, FallbackOutcome(category, rng))
		}
	}
}

func TestExaggerationInstructions_VaryByLevel(t *testing.T) {
	high := exaggerationInstructions(config.ExaggerationHigh, true)
	medium := exaggerationInstructions(config.ExaggerationMedium, true)
	low := exaggerationInstructions(config.ExaggerationLow, true)

	assert.Contains(t, high, "EXTREMELY over-the-top")
	assert.Contains(t, medium, "moderately exaggerated")
	assert.Contains(t, low, "mildly positive")
	assert.NotEqual(t, high, exaggerationInstructions(config.ExaggerationHigh, false))
}
