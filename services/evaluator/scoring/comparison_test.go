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
	"github.com/stretchr/testify/require"
)

func TestCompare_BlendsModelAndText(t *testing.T) {
	mock := llm.NewMockClient().QueueResponse("SCORE: 80")
	engine := NewAnswerComparisonEngine(mock)

	reference := "report the bug to your manager"
	// Identical candidate: text similarity is 100.
	score := engine.Compare(context.Background(), reference, reference)

	// 0.7*80 + 0.3*100 = 86
	assert.InDelta(t, 86, score, 1e-9)
	require.NoError(t, mock.Verify())
}

func TestCompare_ModelFailureFallsBackToText(t *testing.T) {
	mock := llm.NewMockClient().WithError(errors.New("backend down"))
	engine := NewAnswerComparisonEngine(mock)

	reference := "report the bug to your manager"
	score := engine.Compare(context.Background(), reference, reference)

	assert.InDelta(t, 100, score, 1e-9, "identical texts score 100 on the lexical path")
}

func TestCompare_UnparsableModelOutputDefaults(t *testing.T) {
	mock := llm.NewMockClient().QueueResponse("that was a fine answer")
	engine := NewAnswerComparisonEngine(mock)

	score := engine.Compare(context.Background(), "totally unrelated words", "report the bug")

	// Model contributes the neutral default; lexical part is near zero.
	assert.InDelta(t, 0.7*50, score, 5)
}

func TestCompare_Bounds(t *testing.T) {
	mock := llm.NewMockClient().WithResponseFunc(func(string, llm.GenerationParams) (string, error) {
		return "SCORE: 100", nil
	})
	engine := NewAnswerComparisonEngine(mock)

	score := engine.Compare(context.Background(), "report the bug", "report the bug")
	assert.LessOrEqual(t, score, 100.0)
	assert.GreaterOrEqual(t, score, 0.0)
}

func TestCompare_LexicalOrderingWithFixedStub(t *testing.T) {
	// Deterministic stub: every model judgment returns the same score, so
	// only lexical closeness can move the result.
	stub := func(string, llm.GenerationParams) (string, error) { return "SCORE: 60", nil }

	reference := "Report the bug to your manager immediately and document reproduction steps"
	closeCandidate := "I report it to my manager with clear repro steps"
	farCandidate := "I silently fix it and tell no one"

	engineClose := NewAnswerComparisonEngine(llm.NewMockClient().WithResponseFunc(stub))
	engineFar := NewAnswerComparisonEngine(llm.NewMockClient().WithResponseFunc(stub))

	closeScore := engineClose.Compare(context.Background(), closeCandidate, reference)
	farScore := engineFar.Compare(context.Background(), farCandidate, reference)

	assert.Greater(t, closeScore, farScore)
}

func TestAnalyzeReasoningAlignment(t *testing.T) {
	criteria := []string{
		"Escalate to the manager",
		"Document reproduction steps",
	}

	t.Run("blends model and element scores", func(t *testing.T) {
		mock := llm.NewMockClient().QueueResponse("SCORE: 70")
		engine := NewAnswerComparisonEngine(mock)

		// Both criteria have a key concept present.
		score := engine.AnalyzeReasoningAlignment(context.Background(),
			"I would escalate to my manager and document everything", criteria)

		// 0.6*70 + 0.4*100 = 82
		assert.InDelta(t, 82, score, 1e-9)
	})

	t.Run("no criteria returns neutral default", func(t *testing.T) {
		mock := llm.NewMockClient()
		engine := NewAnswerComparisonEngine(mock)

		score := engine.AnalyzeReasoningAlignment(context.Background(), "whatever", nil)
		assert.Equal(t, DefaultScore, score)
		assert.Equal(t, 0, mock.CallCount(), "no model call without criteria")
	})

	t.Run("model failure uses element score only", func(t *testing.T) {
		mock := llm.NewMockClient().WithError(errors.New("backend down"))
		engine := NewAnswerComparisonEngine(mock)

		score := engine.AnalyzeReasoningAlignment(context.Background(),
			"I would escalate to my manager", criteria)

		// One of two criteria matched.
		assert.InDelta(t, 50, score, 1e-9)
	})
}

func TestCriteriaElementScore_CountsEachCriterionOnce(t *testing.T) {
	// Several concepts of the same criterion must not double-count.
	score := criteriaElementScore(
		"escalate escalate manager manager",
		[]string{"Escalate to the manager"},
	)
	assert.InDelta(t, 100, score, 1e-9)
}
