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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/config"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/datatypes"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/llm"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/observability"
)

// HealthCheck reports basic liveness plus backend reachability.
func HealthCheck(client *llm.ResilientClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		backend := "ok"
		if err := client.HealthCheck(c.Request.Context()); err != nil {
			// The service still evaluates through the deterministic
			// fallback, so a sick backend degrades rather than fails.
			backend = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "aleutian-judge",
			"backend": backend,
		})
	}
}

// GetServiceStatus reports provider identity and resilience counters.
func GetServiceStatus(client *llm.ResilientClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := client.BreakerStats()

		if m := observability.DefaultMetrics; m != nil {
			m.SetCircuitState(circuitGaugeValue(stats.State))
		}

		c.JSON(http.StatusOK, datatypes.ServiceStatus{
			Provider:       client.Name(),
			Model:          client.Model(),
			FallbackActive: client.TotalFallbacks() > 0,
			CircuitBreaker: map[string]any{
				"state":             stats.State,
				"total_calls":       stats.TotalCalls,
				"total_failures":    stats.TotalFailures,
				"total_rejections":  stats.TotalRejections,
				"current_failures":  stats.CurrentFailures,
				"last_state_change": stats.LastStateChange,
				"total_fallbacks":   client.TotalFallbacks(),
			},
		})
	}
}

// GetScoringConfig exposes the live scoring and path configuration.
func GetScoringConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"scoring":   cfg.Scoring,
			"path":      cfg.Path,
			"narrative": cfg.Narrative,
		})
	}
}

func circuitGaugeValue(state string) float64 {
	switch state {
	case "open":
		return 2
	case "half-open":
		return 1
	default:
		return 0
	}
}
