// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine orchestrates the full evaluation pipeline: scenario lookup,
// concurrent comparison and reasoning analysis, aggregation, narrative
// generation, and path recommendation. Evaluate never fails from the
// caller's perspective; internal errors degrade to a complete default
// result.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/config"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/datatypes"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/llm"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/narrative"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/pathing"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/scenario"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/scoring"
)

// defaultNarrative is used when the pipeline degrades before narrative
// generation can run.
const defaultNarrative = "Your choice leads to unexpected adventures!"

// Orchestrator wires the evaluation stages together.
//
// # Thread Safety
//
// Safe for concurrent use; all stages are either stateless or internally
// synchronized.
type Orchestrator struct {
	store      *scenario.Store
	comparison *scoring.AnswerComparisonEngine
	reasoning  *scoring.ReasoningQualityAnalyzer
	aggregator *scoring.ScoreAggregator
	narrator   *narrative.OutcomeNarrativeGenerator
	paths      *pathing.Engine
}

// NewOrchestrator assembles the pipeline over a shared generation client.
func NewOrchestrator(store *scenario.Store, client llm.Client, cfg *config.Config) *Orchestrator {
	return &Orchestrator{
		store:      store,
		comparison: scoring.NewAnswerComparisonEngine(client),
		reasoning:  scoring.NewReasoningQualityAnalyzer(client),
		aggregator: scoring.NewScoreAggregator(cfg.Scoring),
		narrator:   narrative.NewOutcomeNarrativeGenerator(client, cfg.Narrative),
		paths:      pathing.NewEngine(cfg.Path, cfg.Scoring),
	}
}

// Evaluate scores one response against its scenario.
//
// # Description
//
// Comparison and reasoning analysis run concurrently; their results feed
// aggregation, narrative generation, and path recommendation. The result is
// always fully populated: scores in [0,100], a non-empty narrative, and a
// node count within the configured bounds. A missing scenario or a panic in
// any stage yields the default result instead of an error.
//
// # Inputs
//   - ctx: bounds all model calls for this evaluation.
//   - req: the scenario ID and player response to score.
//
// # Outputs
//   - A complete EvaluationResult; never an error.
func (o *Orchestrator) Evaluate(ctx context.Context, req datatypes.EvaluationRequest) datatypes.EvaluationResult {
	start := time.Now()

	sc, err := o.store.GetByID(req.ScenarioID)
	if err != nil {
		slog.Warn("evaluation degraded to default result",
			"scenario_id", req.ScenarioID, "error", err)
		return o.defaultResult(req.ScenarioID, start)
	}

	result, err := o.evaluate(ctx, sc, req.PlayerResponse)
	if err != nil {
		slog.Error("evaluation pipeline failed, returning default result",
			"scenario_id", req.ScenarioID, "error", err)
		return o.defaultResult(req.ScenarioID, start)
	}

	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result
}

// BatchEvaluate scores every request independently and concurrently. The
// returned slice matches the input in order and length; one item's failure
// never affects its siblings.
func (o *Orchestrator) BatchEvaluate(ctx context.Context, reqs []datatypes.EvaluationRequest) []datatypes.EvaluationResult {
	results := make([]datatypes.EvaluationResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			results[i] = o.Evaluate(gctx, req)
			return nil
		})
	}
	// Workers never return errors; Evaluate absorbs all failures.
	_ = g.Wait()

	return results
}

func (o *Orchestrator) evaluate(ctx context.Context, sc datatypes.Scenario, response string) (datatypes.EvaluationResult, error) {
	var comparisonScore, reasoningScore float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		defer recoverStage("comparison", &err)
		comparisonScore = o.comparison.Compare(gctx, response, sc.ExpectedAnswer)
		return nil
	})
	g.Go(func() (err error) {
		defer recoverStage("reasoning", &err)
		reasoningScore = o.reasoningScore(gctx, sc, response)
		return nil
	})
	if err := g.Wait(); err != nil {
		return datatypes.EvaluationResult{}, err
	}

	total := o.aggregator.AggregateTotal(comparisonScore, reasoningScore, sc.ScoringWeight)
	category := o.aggregator.CategoryOf(total)
	patterns := scoring.DetectPatterns(response)

	outcome := o.narrator.GenerateByCategory(ctx, category, sc.Content, response)
	rec := o.paths.RecommendDefault(total)

	return datatypes.EvaluationResult{
		ResponseID:           uuid.NewString(),
		ScenarioID:           sc.ID,
		TotalScore:           total,
		ComparisonScore:      comparisonScore,
		ReasoningScore:       reasoningScore,
		Category:             category,
		Narrative:            outcome,
		PathDifficulty:       rec.Difficulty,
		RecommendedNodeCount: rec.NodeCount,
		DetailedFeedback:     o.aggregator.DetailedFeedback(total, comparisonScore, reasoningScore, patterns),
	}, nil
}

// reasoningScore averages criteria alignment with free-form reasoning
// quality. Scenarios without criteria fall back to quality alone.
func (o *Orchestrator) reasoningScore(ctx context.Context, sc datatypes.Scenario, response string) float64 {
	quality := o.reasoning.Evaluate(ctx, response, sc.Content)
	if len(sc.ReasoningCriteria) == 0 {
		return quality
	}
	alignment := o.comparison.AnalyzeReasoningAlignment(ctx, response, sc.ReasoningCriteria)
	return (quality + alignment) / 2
}

func (o *Orchestrator) defaultResult(scenarioID string, start time.Time) datatypes.EvaluationResult {
	return datatypes.EvaluationResult{
		ResponseID:           uuid.NewString(),
		ScenarioID:           scenarioID,
		TotalScore:           scoring.DefaultScore,
		ComparisonScore:      scoring.DefaultScore,
		ReasoningScore:       scoring.DefaultScore,
		Category:             datatypes.CategoryAverage,
		Narrative:            defaultNarrative,
		PathDifficulty:       datatypes.PathMedium,
		RecommendedNodeCount: o.paths.NodeCount(datatypes.PathMedium, 0),
		DetailedFeedback:     "Unable to generate detailed feedback at this time.",
		ProcessingTimeMs:     time.Since(start).Milliseconds(),
	}
}

func recoverStage(stage string, err *error) {
	if r := recover(); r != nil {
		slog.Error("evaluation stage panicked", "stage", stage, "panic", r)
		*err = &stagePanicError{stage: stage}
	}
}

type stagePanicError struct {
	stage string
}

func (e *stagePanicError) Error() string {
	return "evaluation stage " + e.stage + " panicked"
}
