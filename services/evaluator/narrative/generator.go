// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package narrative turns a score category into a short, stylized outcome
// story for the player. Generation goes through the shared llm.Client; every
// path that can fail lands on a deterministic category fallback so callers
// always receive a usable outcome.
package narrative

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/config"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/datatypes"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/llm"
)

// aiCheckMinLength gates the model-backed appropriateness review. Short
// outcomes are covered by the denylist alone.
const aiCheckMinLength = 200

// OutcomeNarrativeGenerator produces exaggerated positive, comically negative,
// or balanced outcomes depending on the score category.
//
// # Thread Safety
//
// Safe for concurrent use. The random source behind fallback selection is
// mutex-guarded.
type OutcomeNarrativeGenerator struct {
	client llm.Client
	cfg    config.NarrativeConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewOutcomeNarrativeGenerator builds a generator over the given backend.
// The fallback random source is time-seeded; tests inject their own via
// WithRand.
func NewOutcomeNarrativeGenerator(client llm.Client, cfg config.NarrativeConfig) *OutcomeNarrativeGenerator {
	return &OutcomeNarrativeGenerator{
		client: client,
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand replaces the random source used for fallback selection and
// returns the generator for chaining.
func (g *OutcomeNarrativeGenerator) WithRand(rng *rand.Rand) *OutcomeNarrativeGenerator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rng = rng
	return g
}

// GenerateByCategory creates a narrative outcome for the category.
//
// # Description
//
// Builds the category-specific prompt, asks the backend for an outcome, and
// screens the result for appropriateness. Any generation error, empty
// output, or failed screen resolves to a canned fallback for the same
// category, so the returned string is never empty.
//
// # Inputs
//   - ctx: controls the backend call.
//   - category: poor, average, or excellent.
//   - scenario: the prompt text the player answered.
//   - response: the player's free-text answer.
//
// # Outputs
//   - A non-empty outcome string.
func (g *OutcomeNarrativeGenerator) GenerateByCategory(ctx context.Context, category datatypes.ScoreCategory, scenario, response string) string {
	prompt, params := g.promptFor(category, scenario, response)

	raw, err := g.client.Generate(ctx, prompt, params)
	if err != nil {
		slog.Warn("outcome generation failed, using fallback",
			"category", category, "error", err)
		return g.fallback(category)
	}

	outcome := strings.TrimSpace(raw)
	if outcome == "" {
		return g.fallback(category)
	}

	check := g.ValidateAppropriateness(ctx, outcome)
	if !check.IsAppropriate {
		slog.Warn("generated outcome rejected as inappropriate",
			"category", category, "rating", check.Rating, "reason", check.Reason)
		return g.fallback(category)
	}

	return outcome
}

// ValidateAppropriateness screens an outcome for all-audience suitability.
// The denylist always runs; the model-backed rubric runs only for outcomes
// longer than aiCheckMinLength characters and only when the check is enabled
// in config. A rubric that cannot be obtained or parsed counts as
// appropriate.
func (g *OutcomeNarrativeGenerator) ValidateAppropriateness(ctx context.Context, outcome string) AppropriatenessResult {
	lower := strings.ToLower(outcome)
	for _, term := range deniedTerms {
		if strings.Contains(lower, term) {
			return AppropriatenessResult{
				Rating:        RatingInappropriate,
				Reason:        fmt.Sprintf("outcome contains denied term %q", term),
				IsAppropriate: false,
			}
		}
	}

	if !g.cfg.AppropriatenessCheck || len(outcome) <= aiCheckMinLength {
		return appropriateByDefault()
	}

	raw, err := g.client.Generate(ctx, buildAppropriatenessPrompt(outcome), llm.Params(200, 0.3))
	if err != nil {
		slog.Warn("appropriateness check failed, defaulting to appropriate", "error", err)
		return appropriateByDefault()
	}
	return ParseAppropriateness(raw)
}

func (g *OutcomeNarrativeGenerator) promptFor(category datatypes.ScoreCategory, scenario, response string) (string, llm.GenerationParams) {
	switch category {
	case datatypes.CategoryExcellent:
		return buildExcellentPrompt(scenario, response, g.cfg.Exaggeration), llm.Params(300, 0.8)
	case datatypes.CategoryPoor:
		return buildPoorPrompt(scenario, response, g.cfg.Exaggeration), llm.Params(300, 0.8)
	default:
		return buildAveragePrompt(scenario, response), llm.Params(250, 0.7)
	}
}

func (g *OutcomeNarrativeGenerator) fallback(category datatypes.ScoreCategory) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return FallbackOutcome(category, g.rng)
}

func buildExcellentPrompt(scenario, response string, level config.ExaggerationLevel) string {
	return fmt.Sprintf(`Generate a dramatically POSITIVE and exaggerated outcome for this scenario response.

Scenario: %s

Player Response: %s

The player scored EXCELLENTLY - create a wildly successful, celebratory outcome!

%s

POSITIVE OUTCOME REQUIREMENTS:
- Make it dramatically successful and celebratory
- Use over-the-top enthusiastic language
- Make the player feel like a hero or genius
- Include unexpected positive consequences
- Keep it entertaining and fun
- Stay appropriate for all audiences
- 2-4 sentences maximum

Generate only the exaggerated positive outcome, no additional text.`,
		scenario, response, exaggerationInstructions(level, true))
}

func buildPoorPrompt(scenario, response string, level config.ExaggerationLevel) string {
	return fmt.Sprintf(`Generate a dramatically NEGATIVE but entertaining outcome for this scenario response.

Scenario: %s

Player Response: %s

The player scored POORLY - create a comically exaggerated negative outcome!

%s

NEGATIVE OUTCOME REQUIREMENTS:
- Make it dramatically unsuccessful but funny
- Use over-the-top language but keep it light-hearted
- Make it comically disastrous, not genuinely upsetting
- Include unexpected negative consequences
- Keep it entertaining and educational
- Stay appropriate for all audiences - no mean-spirited content
- 2-4 sentences maximum

Generate only the exaggerated negative outcome, no additional text.`,
		scenario, response, exaggerationInstructions(level, false))
}

func buildAveragePrompt(scenario, response string) string {
	return fmt.Sprintf(`Generate a MODERATE outcome for this scenario response.

Scenario: %s

Player Response: %s

The player scored AVERAGELY - create a balanced, realistic outcome.

MODERATE OUTCOME REQUIREMENTS:
- Make it neither great nor terrible
- Use balanced, realistic language
- Show mixed results - some good, some areas for improvement
- Include both positive and constructive elements
- Keep it encouraging but honest
- Stay appropriate for all audiences
- 2-3 sentences maximum

Generate only the moderate outcome, no additional text.`, scenario, response)
}

func buildAppropriatenessPrompt(outcome string) string {
	return fmt.Sprintf(`Evaluate the following game outcome text for appropriateness and content safety.

Outcome Text: %s

EVALUATION CRITERIA:
1. Age Appropriateness: Is this suitable for all ages including children?
2. Content Safety: Does it avoid violence, inappropriate themes, or offensive content?
3. Tone Appropriateness: Is the tone fun and engaging without being mean-spirited?
4. Language Appropriateness: Does it use appropriate language and avoid profanity?

EVALUATION SCALE:
- APPROPRIATE: Safe for all audiences, fun and engaging
- NEEDS_MODIFICATION: Minor issues that should be addressed
- INAPPROPRIATE: Significant issues that require major changes

Provide your evaluation in this exact format:
Rating: [APPROPRIATE/NEEDS_MODIFICATION/INAPPROPRIATE]
Reason: [Brief explanation of the rating]
Suggestions: [If not appropriate, suggest specific improvements]

Generate only the evaluation in the specified format.`, outcome)
}
