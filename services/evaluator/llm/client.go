// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides the generation backend interface for the evaluation
// pipeline and the resilience layer that protects it.
//
// # Description
//
// The scoring engines never talk to a backend directly. They go through a
// ResilientClient, which wraps one of the interchangeable Client
// implementations (OpenAI, Ollama, or the deterministic mock) with a
// circuit breaker, bounded exponential-backoff retry, a central per-call
// timeout, and a mock fallback that never fails.
//
// # Thread Safety
//
// All types in this package are safe for concurrent use.
package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/config"
)

// Client defines the interface to an external text-generation capability.
//
// Implementations must be safe for concurrent use.
type Client interface {
	// Generate sends a prompt to the backend and returns the raw text.
	//
	// Inputs:
	//   ctx - Context for cancellation and timeout
	//   prompt - The full prompt text
	//   params - Sampling parameters; nil fields use backend defaults
	//
	// Outputs:
	//   string - The generated text
	//   error - Non-nil if the request failed
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error

	// Name returns the provider name (e.g., "openai", "ollama", "mock").
	Name() string

	// Model returns the model being used.
	Model() string
}

// GenerationParams holds optional sampling parameters for a generation call.
type GenerationParams struct {
	// MaxTokens limits the response length.
	MaxTokens *int

	// Temperature controls randomness (0.0-2.0).
	Temperature *float32

	// TopP is the nucleus sampling cutoff.
	TopP *float32

	// Stop defines sequences that stop generation.
	Stop []string
}

// Params is a convenience constructor for the common maxTokens+temperature
// pair the scoring engines use.
func Params(maxTokens int, temperature float32) GenerationParams {
	return GenerationParams{
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	}
}

// NewClient constructs the backend selected by configuration.
//
// # Description
//
// The backend set is closed: openai, ollama, or mock. Selection happens
// exactly once at startup; no call site branches on backend identity
// afterwards. An unknown provider is a startup error.
//
// # Inputs
//
//   - cfg: The service configuration.
//
// # Outputs
//
//   - Client: The constructed backend.
//   - error: Non-nil for an unknown provider or failed construction.
func NewClient(cfg *config.Config) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel)
	case config.ProviderOllama:
		return NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel), nil
	case config.ProviderMock:
		slog.Info("Using mock generation backend")
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
