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
	"regexp"
	"strings"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/datatypes"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/llm"
)

// Detector term lists. Matching is plain lowercase substring containment,
// which deliberately over-fires on short terms like "or"; the pattern
// score only contributes 20% of the blend.
var (
	causalIndicators = []string{
		"because", "since", "due to", "as a result", "therefore", "thus",
		"consequently", "leads to", "causes", "results in", "brings about",
	}
	structureIndicators = []string{
		"first", "second", "third", "finally", "in conclusion",
		"to begin", "next", "then", "lastly", "in summary",
	}
	evidenceIndicators = []string{
		"evidence", "data", "research", "studies", "statistics",
		"proven", "demonstrated", "shown", "indicates", "suggests",
	}
	stepIndicators = []string{
		"step", "approach", "method", "process", "procedure",
		"plan", "strategy", "solution", "way to", "how to",
	}
	alternativeIndicators = []string{
		"alternatively", "on the other hand", "however", "but",
		"instead", "rather than", "or", "another option", "different approach",
	}
	consequenceIndicators = []string{
		"consequence", "result", "outcome", "effect", "impact",
		"implication", "would lead to", "might cause", "could result",
	}

	logicalConnectors = []string{
		"because", "therefore", "thus", "consequently", "as a result",
		"however", "although", "despite", "nevertheless", "on the other hand",
		"first", "second", "third", "finally", "in conclusion",
		"if", "then", "when", "since", "given that",
	}
	questionWords    = []string{"why", "how", "what", "when", "where", "who"}
	conditionalWords = []string{"if", "unless", "provided that", "assuming", "suppose"}

	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
)

// ReasoningQualityAnalyzer scores the logical quality of a response.
//
// # Thread Safety
//
// Safe for concurrent use; the analyzer holds no mutable state.
type ReasoningQualityAnalyzer struct {
	client llm.Client
}

// NewReasoningQualityAnalyzer creates the analyzer on top of a generation
// client, normally a ResilientClient.
func NewReasoningQualityAnalyzer(client llm.Client) *ReasoningQualityAnalyzer {
	return &ReasoningQualityAnalyzer{client: client}
}

// Evaluate rates the reasoning quality of a response, in [0,100].
//
// # Description
//
// Blend of a model-judged quality rating (weight 0.8) and the pattern
// score (patterns detected / 6) * 100 (weight 0.2). When the model path
// fails the pattern score stands alone.
func (a *ReasoningQualityAnalyzer) Evaluate(ctx context.Context, response, scenarioPrompt string) float64 {
	patternScore := float64(DetectPatterns(response).Count()) / 6 * 100

	aiScore, err := a.aiQuality(ctx, response, scenarioPrompt)
	if err != nil {
		slog.Warn("model reasoning evaluation failed, using pattern score only", "error", err)
		return clampScore(patternScore)
	}

	return clampScore(aiScore*0.8 + patternScore*0.2)
}

// ScoreCoherence rates the logical coherence of a response, in [0,100].
//
// # Description
//
// Blend of a model-judged coherence rating (weight 0.7) and the
// structural score (weight 0.3): logical-connector density across
// sentences up to 50 points, plus flat 25 for any interrogative word and
// flat 25 for any conditional marker, capped at 100.
func (a *ReasoningQualityAnalyzer) ScoreCoherence(ctx context.Context, response string) float64 {
	structural := StructuralCoherence(response)

	aiScore, err := a.aiCoherence(ctx, response)
	if err != nil {
		slog.Warn("model coherence evaluation failed, using structural score only", "error", err)
		return structural
	}

	return clampScore(aiScore*0.7 + structural*0.3)
}

// DetectPatterns runs the six boolean reasoning detectors on a response.
func DetectPatterns(response string) datatypes.ReasoningPatterns {
	lower := strings.ToLower(response)
	return datatypes.ReasoningPatterns{
		Causal:       containsAny(lower, causalIndicators),
		Structure:    containsAny(lower, structureIndicators),
		Evidence:     containsAny(lower, evidenceIndicators),
		StepByStep:   containsAny(lower, stepIndicators),
		Alternatives: containsAny(lower, alternativeIndicators),
		Consequence:  containsAny(lower, consequenceIndicators),
	}
}

// StructuralCoherence is the deterministic part of the coherence score,
// in [0,100].
func StructuralCoherence(response string) float64 {
	sentences := splitSentences(response)
	if len(sentences) == 0 {
		return 0
	}

	score := 0.0

	if len(sentences) > 1 {
		withConnector := 0
		for _, s := range sentences {
			if containsAny(strings.ToLower(s), logicalConnectors) {
				withConnector++
			}
		}
		score += float64(withConnector) / float64(len(sentences)) * 50
	}

	for _, s := range sentences {
		if containsAny(strings.ToLower(s), questionWords) {
			score += 25
			break
		}
	}

	if containsAny(strings.ToLower(response), conditionalWords) {
		score += 25
	}

	return clampScore(score)
}

func containsAny(lower string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func splitSentences(text string) []string {
	var sentences []string
	for _, s := range sentenceSplitRe.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func (a *ReasoningQualityAnalyzer) aiQuality(ctx context.Context, response, scenarioPrompt string) (float64, error) {
	prompt := fmt.Sprintf(`Evaluate the reasoning quality of this response to the given scenario.

Scenario: %s

Response: %s

Rate the reasoning quality on a scale of 0-100 based on:
1. Logical flow and coherence
2. Depth of analysis
3. Consideration of multiple factors
4. Practical thinking
5. Clear cause-and-effect relationships

Scoring guide:
- 0-20: Poor reasoning, illogical or incoherent
- 21-40: Basic reasoning with significant gaps
- 41-60: Adequate reasoning with some logical flow
- 61-80: Good reasoning with clear logic
- 81-100: Excellent reasoning, sophisticated, creative and well-structured

%s`, scenarioPrompt, response, scoreFormatInstruction)

	raw, err := a.client.Generate(ctx, prompt, llm.Params(50, 0.3))
	if err != nil {
		return 0, err
	}
	score, _ := ExtractScore(raw)
	return score, nil
}

func (a *ReasoningQualityAnalyzer) aiCoherence(ctx context.Context, response string) (float64, error) {
	prompt := fmt.Sprintf(`Evaluate the logical coherence of this response.

Response: %s

Rate the logical coherence on a scale of 0-100 based on:
1. Internal consistency
2. Logical flow between ideas
3. Absence of contradictions
4. Clear connections between statements
5. Overall structural soundness

%s`, response, scoreFormatInstruction)

	raw, err := a.client.Generate(ctx, prompt, llm.Params(50, 0.3))
	if err != nil {
		return 0, err
	}
	score, _ := ExtractScore(raw)
	return score, nil
}
