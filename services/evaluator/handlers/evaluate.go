// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/datatypes"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/engine"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/observability"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/scenario"
)

// HandleEvaluate scores a single player response against its scenario.
//
// # Description
//
// Validates the request body, confirms the scenario exists (unknown IDs are
// a client error at this surface, unlike inside a batch), and delegates to
// the orchestrator. The orchestrator never fails, so a bound request always
// produces HTTP 200 with a complete result.
func HandleEvaluate(orch *engine.Orchestrator, store *scenario.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.EvaluationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			recordError(observability.EndpointEvaluate, observability.ErrorCodeValidation)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		if _, err := store.GetByID(req.ScenarioID); err != nil {
			if errors.Is(err, scenario.ErrNotFound) {
				recordError(observability.EndpointEvaluate, observability.ErrorCodeNotFound)
				c.JSON(http.StatusNotFound, gin.H{"error": "Unknown scenario", "scenario_id": req.ScenarioID})
				return
			}
			recordError(observability.EndpointEvaluate, observability.ErrorCodeInternal)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Scenario lookup failed"})
			return
		}

		start := time.Now()
		result := orch.Evaluate(c.Request.Context(), req)

		recordEvaluation(observability.EndpointEvaluate, result, time.Since(start))
		slog.Info("response evaluated",
			"scenario_id", req.ScenarioID,
			"total_score", result.TotalScore,
			"category", result.Category,
			"processing_time_ms", result.ProcessingTimeMs)

		c.JSON(http.StatusOK, result)
	}
}

// HandleBatchEvaluate scores several responses concurrently. The response
// preserves request order and length; items that fail internally come back
// as default results rather than failing the batch.
func HandleBatchEvaluate(orch *engine.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.BatchEvaluationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			recordError(observability.EndpointBatch, observability.ErrorCodeValidation)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		start := time.Now()
		results := orch.BatchEvaluate(c.Request.Context(), req.Requests)

		if m := observability.DefaultMetrics; m != nil {
			m.RecordBatchSize(len(req.Requests))
			m.RecordRequest(observability.EndpointBatch, true)
			m.RecordDuration(observability.EndpointBatch, time.Since(start).Seconds())
			for _, r := range results {
				m.RecordScore(string(r.Category), r.TotalScore)
			}
		}
		slog.Info("batch evaluated", "items", len(results), "duration_ms", time.Since(start).Milliseconds())

		c.JSON(http.StatusOK, datatypes.BatchEvaluationResponse{Results: results})
	}
}

func recordEvaluation(endpoint observability.Endpoint, result datatypes.EvaluationResult, elapsed time.Duration) {
	m := observability.DefaultMetrics
	if m == nil {
		return
	}
	m.RecordRequest(endpoint, true)
	m.RecordDuration(endpoint, elapsed.Seconds())
	m.RecordScore(string(result.Category), result.TotalScore)
}

func recordError(endpoint observability.Endpoint, code observability.ErrorCode) {
	m := observability.DefaultMetrics
	if m == nil {
		return
	}
	m.RecordRequest(endpoint, false)
	m.RecordError(endpoint, code)
}
