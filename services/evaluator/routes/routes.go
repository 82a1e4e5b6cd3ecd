// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/config"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/engine"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/handlers"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/llm"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/scenario"
)

func SetupRoutes(router *gin.Engine, orch *engine.Orchestrator, store *scenario.Store,
	client *llm.ResilientClient, cfg *config.Config) {

	router.GET("/health", handlers.HealthCheck(client))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		evaluation := v1.Group("/evaluation")
		{
			evaluation.POST("/evaluate", handlers.HandleEvaluate(orch, store))
			evaluation.POST("/batch", handlers.HandleBatchEvaluate(orch))
		}

		scenarios := v1.Group("/scenarios")
		{
			scenarios.GET("/random", handlers.GetRandomScenario(store))
			scenarios.GET("/stats", handlers.GetScenarioStats(store))
			scenarios.POST("/reload", handlers.ReloadScenarios(store))
			scenarios.GET("/:id", handlers.GetScenario(store))
		}

		v1.GET("/config/scoring", handlers.GetScoringConfig(cfg))
		v1.GET("/service/status", handlers.GetServiceStatus(client))
	}
}
