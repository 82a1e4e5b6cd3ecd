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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseScoredOutcome(t *testing.T) {
	t.Run("full response", func(t *testing.T) {
		raw := "Creativity: 80\nFeasibility: 65 points\nTotal: 72\n" +
			"Outcome: Your clever workaround saves the day and the release ships on time, earning you a round of applause."

		parsed := ParseScoredOutcome(raw)

		assert.Equal(t, 80.0, parsed.Scores["creativity"])
		assert.Equal(t, 65.0, parsed.Scores["feasibility"])
		assert.Equal(t, 72.0, parsed.Scores["total"])
		assert.Contains(t, parsed.Outcome, "saves the day")
		assert.NotContains(t, parsed.Outcome, truncationFiller)
	})

	t.Run("digits extracted from noisy values", func(t *testing.T) {
		parsed := ParseScoredOutcome("Total: about 85 out of 100\nOutcome: " + strings.Repeat("x", 60))
		assert.Equal(t, 85100.0, parsed.Scores["total"])
	})

	t.Run("short outcome gets continuation filler", func(t *testing.T) {
		parsed := ParseScoredOutcome("Outcome: You win!")
		assert.Equal(t, "You win!"+truncationFiller, parsed.Outcome)
	})

	t.Run("missing outcome gets default", func(t *testing.T) {
		parsed := ParseScoredOutcome("Total: 50")
		assert.Equal(t, missingOutcome, parsed.Outcome)
	})

	t.Run("garbage input still yields non-empty outcome", func(t *testing.T) {
		for _, raw := range []string{"", "no structure at all", ":::", "just words\nmore words"} {
			parsed := ParseScoredOutcome(raw)
			assert.NotEmpty(t, parsed.Outcome, "raw=%q", raw)
		}
	})
}

func TestParseAppropriateness(t *testing.T) {
	t.Run("appropriate", func(t *testing.T) {
		result := ParseAppropriateness("Rating: APPROPRIATE\nReason: Light and fun")
		assert.True(t, result.IsAppropriate)
		assert.Equal(t, RatingAppropriate, result.Rating)
		assert.Equal(t, "Light and fun", result.Reason)
	})

	t.Run("bracketed rating", func(t *testing.T) {
		result := ParseAppropriateness("Rating: [INAPPROPRIATE]\nReason: Too dark\nSuggestions: Lighten the tone")
		assert.False(t, result.IsAppropriate)
		assert.Equal(t, RatingInappropriate, result.Rating)
		assert.Equal(t, "Lighten the tone", result.Suggestions)
	})

	t.Run("lowercase rating accepted", func(t *testing.T) {
		result := ParseAppropriateness("rating: appropriate")
		assert.True(t, result.IsAppropriate)
	})

	t.Run("unparseable defaults to appropriate", func(t *testing.T) {
		result := ParseAppropriateness("the model rambled instead of following the format")
		assert.True(t, result.IsAppropriate)
		assert.Equal(t, RatingAppropriate, result.Rating)
	})
}
