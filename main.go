// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/config"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/engine"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/llm"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/observability"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/routes"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/scenario"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: configuration invalid: %v", err)
	}

	log.Println("Configuring the generation client")
	primary, err := llm.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize generation client: %v", err)
	}
	client := llm.NewResilientClient(primary, cfg.Resilience)
	slog.Info("generation backend ready", "provider", client.Name(), "model", client.Model())

	store, err := scenario.NewStore(cfg.ScenarioPath)
	if err != nil {
		log.Fatalf("FATAL: could not load scenario catalog: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher, err := scenario.NewWatcher(store, 0)
	if err != nil {
		slog.Warn("scenario hot reload unavailable", "error", err)
	} else {
		if err := watcher.Start(ctx); err != nil {
			slog.Warn("scenario hot reload failed to start", "error", err)
		}
		defer watcher.Stop()
	}

	observability.InitMetrics()

	orch := engine.NewOrchestrator(store, client, cfg)

	router := gin.Default()
	routes.SetupRoutes(router, orch, store, client, cfg)

	log.Println("Starting the evaluation server on port ", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
