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
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/llm"
)

const scoreFormatInstruction = `Respond with a single line in the exact format:
SCORE: <number between 0 and 100>`

// AnswerComparisonEngine scores how closely a candidate response matches a
// reference answer.
//
// # Description
//
// Two sub-scores are blended: a model-judged similarity rating (weight
// 0.7) and the deterministic lexical similarity of TextSimilarity (weight
// 0.3). When the model path fails the engine degrades to the lexical
// score alone rather than failing.
//
// # Thread Safety
//
// Safe for concurrent use; the engine holds no mutable state.
type AnswerComparisonEngine struct {
	client llm.Client
}

// NewAnswerComparisonEngine creates the engine on top of a generation
// client, normally a ResilientClient.
func NewAnswerComparisonEngine(client llm.Client) *AnswerComparisonEngine {
	return &AnswerComparisonEngine{client: client}
}

// Compare rates candidate against reference, returning a score in [0,100].
func (e *AnswerComparisonEngine) Compare(ctx context.Context, candidate, reference string) float64 {
	textScore := TextSimilarity(candidate, reference)

	aiScore, err := e.aiComparison(ctx, candidate, reference)
	if err != nil {
		slog.Warn("model comparison failed, using text similarity only", "error", err)
		return textScore
	}

	return clampScore(aiScore*0.7 + textScore*0.3)
}

// AnalyzeReasoningAlignment rates how well candidate covers the expected
// reasoning criteria, returning a score in [0,100].
//
// # Description
//
// Blend of a model-judged alignment rating (weight 0.6) and the fraction
// of criteria whose key concepts appear verbatim in the candidate (weight
// 0.4). With no criteria configured the neutral DefaultScore is returned.
func (e *AnswerComparisonEngine) AnalyzeReasoningAlignment(ctx context.Context, candidate string, criteria []string) float64 {
	if len(criteria) == 0 {
		slog.Warn("no reasoning criteria provided for alignment analysis")
		return DefaultScore
	}

	elementScore := criteriaElementScore(candidate, criteria)

	aiScore, err := e.aiAlignment(ctx, candidate, criteria)
	if err != nil {
		slog.Warn("model alignment analysis failed, using element score only", "error", err)
		return elementScore
	}

	return clampScore(aiScore*0.6 + elementScore*0.4)
}

// criteriaElementScore is the percentage of criteria with at least one key
// concept present in the candidate. Each criterion counts once.
func criteriaElementScore(candidate string, criteria []string) float64 {
	norm := normalizeText(candidate)
	found := 0
	for _, criterion := range criteria {
		for _, concept := range keyConcepts(normalizeText(criterion)) {
			if strings.Contains(norm, concept) {
				found++
				break
			}
		}
	}
	return clampScore(float64(found) / float64(len(criteria)) * 100)
}

func (e *AnswerComparisonEngine) aiComparison(ctx context.Context, candidate, reference string) (float64, error) {
	prompt := fmt.Sprintf(`Compare the following player response with the expected answer and rate how similar they are in terms of meaning, approach, and quality.

Expected Answer: %s

Player Response: %s

Rate the similarity on a scale of 0-100 where:
- 0-20: Completely different or wrong approach
- 21-40: Some relevant elements but major differences
- 41-60: Partially correct with some good points
- 61-80: Good answer with minor differences
- 81-100: Excellent answer, very similar or better than expected

Consider:
1. Core concept understanding
2. Solution approach similarity
3. Practical feasibility
4. Overall quality

%s`, reference, candidate, scoreFormatInstruction)

	raw, err := e.client.Generate(ctx, prompt, llm.Params(50, 0.3))
	if err != nil {
		return 0, err
	}
	score, found := ExtractScore(raw)
	if !found {
		slog.Debug("no score in model comparison output, using default", "output", raw)
	}
	return score, nil
}

func (e *AnswerComparisonEngine) aiAlignment(ctx context.Context, candidate string, criteria []string) (float64, error) {
	var points strings.Builder
	for _, p := range criteria {
		points.WriteString("- ")
		points.WriteString(p)
		points.WriteString("\n")
	}

	prompt := fmt.Sprintf(`Analyze how well the player's response demonstrates the expected reasoning patterns.

Expected Reasoning Points:
%s
Player Response: %s

Rate how well the player's response shows these reasoning patterns on a scale of 0-100:
- 0-20: No evidence of expected reasoning
- 21-40: Minimal reasoning alignment
- 41-60: Some reasoning elements present
- 61-80: Good reasoning with most elements
- 81-100: Excellent reasoning, all elements well demonstrated

%s`, points.String(), candidate, scoreFormatInstruction)

	raw, err := e.client.Generate(ctx, prompt, llm.Params(50, 0.3))
	if err != nil {
		return 0, err
	}
	score, _ := ExtractScore(raw)
	return score, nil
}
