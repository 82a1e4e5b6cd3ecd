// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// ScoreCategory buckets a total score against the configured thresholds.
type ScoreCategory string

const (
	CategoryPoor      ScoreCategory = "poor"
	CategoryAverage   ScoreCategory = "average"
	CategoryExcellent ScoreCategory = "excellent"
)

// PathDifficulty is the adaptive-difficulty signal derived from the total score.
type PathDifficulty string

const (
	PathShorter PathDifficulty = "shorter_path"
	PathMedium  PathDifficulty = "normal_path"
	PathLonger  PathDifficulty = "longer_path"
)

// Scenario is a curated prompt with its reference answer and scoring metadata.
//
// Description:
//
//	Scenario is loaded from the scenario file at startup and is read-only to
//	the evaluation pipeline. ReasoningCriteria is an ordered list of the
//	reasoning points an ideal answer covers; KeyConcepts is the vocabulary
//	expected in a strong answer. ScoringWeight scales the aggregated total
//	and is clamped to [0.1, 2.0] at aggregation time.
type Scenario struct {
	ID                string   `yaml:"scenario_id" json:"scenario_id"`
	Content           string   `yaml:"content" json:"content"`
	Theme             string   `yaml:"theme" json:"theme"`
	Difficulty        string   `yaml:"difficulty" json:"difficulty"`
	ExpectedAnswer    string   `yaml:"expected_answer" json:"expected_answer"`
	ReasoningCriteria []string `yaml:"reasoning_criteria" json:"reasoning_criteria"`
	KeyConcepts       []string `yaml:"key_concepts" json:"key_concepts"`
	ScoringWeight     float64  `yaml:"scoring_weight" json:"scoring_weight"`
}

// EvaluationRequest is one candidate response to score against a scenario.
type EvaluationRequest struct {
	ScenarioID     string            `json:"scenario_id" binding:"required"`
	PlayerResponse string            `json:"player_response" binding:"required,max=1000"`
	SessionID      string            `json:"session_id,omitempty"`
	Context        map[string]string `json:"context,omitempty"`
}

// BatchEvaluationRequest scores several responses in one call.
type BatchEvaluationRequest struct {
	Requests []EvaluationRequest `json:"requests" binding:"required,min=1,dive"`
}

// EvaluationResult is the fully-populated outcome of one evaluation.
//
// Description:
//
//	Every field is always set, even when the pipeline degraded internally.
//	Scores are in [0,100], Narrative is never empty, and RecommendedNodeCount
//	is within the configured path bounds. Callers never need a second layer
//	of error handling around a result.
type EvaluationResult struct {
	ResponseID           string         `json:"response_id"`
	ScenarioID           string         `json:"scenario_id"`
	TotalScore           float64        `json:"total_score"`
	ComparisonScore      float64        `json:"comparison_score"`
	ReasoningScore       float64        `json:"reasoning_score"`
	Category             ScoreCategory  `json:"score_category"`
	Narrative            string         `json:"exaggerated_outcome"`
	PathDifficulty       PathDifficulty `json:"path_recommendation"`
	RecommendedNodeCount int            `json:"recommended_node_count"`
	DetailedFeedback     string         `json:"detailed_feedback"`
	ProcessingTimeMs     int64          `json:"processing_time_ms"`
}

// BatchEvaluationResponse preserves request order and cardinality 1:1.
type BatchEvaluationResponse struct {
	Results []EvaluationResult `json:"results"`
}

// ReasoningPatterns records which of the six reasoning detectors fired.
type ReasoningPatterns struct {
	Causal       bool `json:"causal_reasoning"`
	Structure    bool `json:"logical_structure"`
	Evidence     bool `json:"evidence_based"`
	StepByStep   bool `json:"step_by_step"`
	Alternatives bool `json:"considers_alternatives"`
	Consequence  bool `json:"consequence_analysis"`
}

// Count returns how many detectors fired.
func (p ReasoningPatterns) Count() int {
	n := 0
	for _, b := range []bool{p.Causal, p.Structure, p.Evidence, p.StepByStep, p.Alternatives, p.Consequence} {
		if b {
			n++
		}
	}
	return n
}

// ScenarioStats summarizes the loaded scenario set.
type ScenarioStats struct {
	TotalScenarios int            `json:"total_scenarios"`
	ByTheme        map[string]int `json:"by_theme"`
	ByDifficulty   map[string]int `json:"by_difficulty"`
	SourcePath     string         `json:"source_path"`
}

// ServiceStatus reports provider identity and resilience state for /v1/service/status.
type ServiceStatus struct {
	Provider       string         `json:"provider"`
	Model          string         `json:"model"`
	FallbackActive bool           `json:"fallback_active"`
	CircuitBreaker map[string]any `json:"circuit_breaker"`
}
