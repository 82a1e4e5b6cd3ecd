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
	"context"
	"errors"
	"testing"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/llm"
	"github.com/stretchr/testify/assert"
)

func TestDetectPatterns(t *testing.T) {
	t.Run("causal", func(t *testing.T) {
		p := DetectPatterns("This works because the root cause is fixed")
		assert.True(t, p.Causal)
	})

	t.Run("structure", func(t *testing.T) {
		p := DetectPatterns("First I isolate the issue. Finally I verify the fix.")
		assert.True(t, p.Structure)
	})

	t.Run("evidence", func(t *testing.T) {
		p := DetectPatterns("The crash logs are strong evidence of a race")
		assert.True(t, p.Evidence)
	})

	t.Run("step by step", func(t *testing.T) {
		p := DetectPatterns("My plan has a clear first step")
		assert.True(t, p.StepByStep)
	})

	t.Run("alternatives", func(t *testing.T) {
		p := DetectPatterns("Alternatively, we delay the release")
		assert.True(t, p.Alternatives)
	})

	t.Run("consequence", func(t *testing.T) {
		p := DetectPatterns("The impact on users would be severe")
		assert.True(t, p.Consequence)
	})

	t.Run("bare response fires nothing", func(t *testing.T) {
		p := DetectPatterns("yes")
		assert.Equal(t, 0, p.Count())
	})
}

func TestReasoningPatternsCount(t *testing.T) {
	p := DetectPatterns("I would escalate this because the release is at risk. " +
		"First, I document the reproduction steps as evidence. " +
		"Alternatively we could delay, but the impact of shipping the bug " +
		"could result in data loss.")
	assert.Equal(t, 6, p.Count())
}

func TestStructuralCoherence(t *testing.T) {
	t.Run("empty response scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, StructuralCoherence(""))
	})

	t.Run("single flat sentence", func(t *testing.T) {
		// No connectors counted for single-sentence responses, no question
		// words, no conditionals.
		assert.Equal(t, 0.0, StructuralCoherence("Ship it."))
	})

	t.Run("conditional adds 25", func(t *testing.T) {
		assert.Equal(t, 25.0, StructuralCoherence("Ship it if tests pass."))
	})

	t.Run("question word adds 25", func(t *testing.T) {
		assert.Equal(t, 25.0, StructuralCoherence("Ask who owns the release."))
	})

	t.Run("connectors across sentences", func(t *testing.T) {
		// Both sentences carry connectors: 50. "why" adds 25 and the "if"
		// connector doubles as a conditional for another 25.
		score := StructuralCoherence(
			"I escalate because the release is at risk. If we ship, ask why the bug got through.")
		assert.Equal(t, 100.0, score)
	})

	t.Run("capped at 100", func(t *testing.T) {
		score := StructuralCoherence(
			"Why did this happen? Because the test was skipped. If we fix it, then we ship. When it lands, how do we verify?")
		assert.LessOrEqual(t, score, 100.0)
	})
}

func TestEvaluate_BlendsModelAndPatterns(t *testing.T) {
	mock := llm.NewMockClient().QueueResponse("SCORE: 90")
	analyzer := NewReasoningQualityAnalyzer(mock)

	// Fires causal ("because") and consequence ("result").
	response := "I escalate because shipping could result in data loss"
	score := analyzer.Evaluate(context.Background(), response, "A bug appears before release")

	patterns := DetectPatterns(response)
	expected := 90*0.8 + float64(patterns.Count())/6*100*0.2
	assert.InDelta(t, expected, score, 1e-9)
}

func TestEvaluate_ModelFailureUsesPatternsOnly(t *testing.T) {
	mock := llm.NewMockClient().WithError(errors.New("backend down"))
	analyzer := NewReasoningQualityAnalyzer(mock)

	response := "I escalate because shipping could result in data loss"
	score := analyzer.Evaluate(context.Background(), response, "scenario")

	expected := float64(DetectPatterns(response).Count()) / 6 * 100
	assert.InDelta(t, expected, score, 1e-9)
}

func TestScoreCoherence_Blend(t *testing.T) {
	mock := llm.NewMockClient().QueueResponse("SCORE: 80")
	analyzer := NewReasoningQualityAnalyzer(mock)

	response := "I escalate because the release is at risk. If we ship, ask why the bug got through."
	score := analyzer.ScoreCoherence(context.Background(), response)

	expected := 80*0.7 + StructuralCoherence(response)*0.3
	assert.InDelta(t, expected, score, 1e-9)
}
