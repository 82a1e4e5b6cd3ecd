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

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/observability"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/scenario"
)

// GetScenario returns one scenario by ID.
func GetScenario(store *scenario.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sc, err := store.GetByID(c.Param("id"))
		if err != nil {
			if errors.Is(err, scenario.ErrNotFound) {
				recordError(observability.EndpointScenario, observability.ErrorCodeNotFound)
				c.JSON(http.StatusNotFound, gin.H{"error": "Unknown scenario", "scenario_id": c.Param("id")})
				return
			}
			recordError(observability.EndpointScenario, observability.ErrorCodeInternal)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Scenario lookup failed"})
			return
		}
		c.JSON(http.StatusOK, sc)
	}
}

// GetRandomScenario returns a random scenario, optionally filtered by the
// theme query parameter.
func GetRandomScenario(store *scenario.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sc, err := store.Random(c.Query("theme"))
		if err != nil {
			recordError(observability.EndpointScenario, observability.ErrorCodeNotFound)
			c.JSON(http.StatusNotFound, gin.H{"error": "No scenarios found", "theme": c.Query("theme")})
			return
		}
		c.JSON(http.StatusOK, sc)
	}
}

// GetScenarioStats reports catalog counts by theme and difficulty.
func GetScenarioStats(store *scenario.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, store.Stats())
	}
}

// ReloadScenarios re-reads the catalog file on demand. A failed reload
// keeps the previous catalog serving and reports the parse error.
func ReloadScenarios(store *scenario.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Reload(); err != nil {
			slog.Error("manual scenario reload failed", "error", err)
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "Reload failed, previous catalog still active",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "reloaded", "total_scenarios": store.Count()})
	}
}
