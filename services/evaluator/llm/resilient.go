// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/config"
)

// ResilientClient wraps a generation backend with a circuit breaker,
// bounded retry, a central per-call timeout, and a deterministic mock
// fallback.
//
// # Description
//
// One Generate call is one logical call toward the circuit breaker: the
// breaker wraps the whole retry sequence, so three failed attempts count
// as a single breaker failure. When the breaker is open the backend is not
// touched at all. When the breaker rejects the call or every retry is
// exhausted, Generate answers from the mock fallback instead of returning
// an error; the only errors it ever returns are caller mistakes
// (ErrInvalidRequest).
//
// # Thread Safety
//
// Safe for concurrent use. The breaker state is the only shared mutable
// state and is mutex-guarded internally.
type ResilientClient struct {
	primary  Client
	fallback Client
	breaker  *CircuitBreaker
	policy   RetryPolicy
	timeout  time.Duration

	totalFallbacks atomic.Int64
}

// NewResilientClient wraps primary with the configured resilience layer.
//
// # Inputs
//
//   - primary: The backend chosen by the provider factory.
//   - cfg: Circuit, retry, and timeout settings.
func NewResilientClient(primary Client, cfg config.ResilienceConfig) *ResilientClient {
	return &ResilientClient{
		primary:  primary,
		fallback: NewMockClient().WithName("mock-fallback"),
		breaker: NewCircuitBreaker(CircuitBreakerConfig{
			FailureThreshold: cfg.FailureThreshold,
			RecoveryTimeout:  cfg.RecoveryTimeout,
		}),
		policy: RetryPolicy{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxDelay:    cfg.RetryMaxDelay,
			Multiplier:  cfg.RetryMultiplier,
		},
		timeout: cfg.RequestTimeout,
	}
}

// Generate implements the Client interface.
//
// # Description
//
// The per-call timeout is enforced here, once, for the whole logical call
// including retries, so no individual call site needs its own deadline
// and a slow backend cannot stall a batch.
func (r *ResilientClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: empty prompt", ErrInvalidRequest)
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if r.timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	var out string
	err := r.breaker.Execute(callCtx, func() error {
		return r.policy.Do(callCtx, func(attemptCtx context.Context) error {
			text, genErr := r.primary.Generate(attemptCtx, prompt, params)
			if genErr != nil {
				return genErr
			}
			out = text
			return nil
		})
	})
	if err == nil {
		return out, nil
	}

	r.totalFallbacks.Add(1)
	slog.Warn("generation backend unavailable, answering from mock fallback",
		"provider", r.primary.Name(),
		"circuit_state", r.breaker.State().String(),
		"error", err)

	// The fallback must not inherit an already-expired deadline; it is
	// local and deterministic, so it answers instantly regardless.
	text, fbErr := r.fallback.Generate(context.WithoutCancel(ctx), prompt, params)
	if fbErr != nil {
		return cannedResponse(prompt), nil
	}
	return text, nil
}

// HealthCheck implements the Client interface, checking the primary.
func (r *ResilientClient) HealthCheck(ctx context.Context) error {
	return r.primary.HealthCheck(ctx)
}

// Name implements the Client interface.
func (r *ResilientClient) Name() string {
	return r.primary.Name()
}

// Model implements the Client interface.
func (r *ResilientClient) Model() string {
	return r.primary.Model()
}

// BreakerStats returns a snapshot of the circuit breaker state.
func (r *ResilientClient) BreakerStats() CircuitBreakerStats {
	return r.breaker.Stats()
}

// TotalFallbacks returns how many logical calls were answered by the mock.
func (r *ResilientClient) TotalFallbacks() int64 {
	return r.totalFallbacks.Load()
}

// ResetBreaker forces the circuit back to closed. Operational use only.
func (r *ResilientClient) ResetBreaker() {
	r.breaker.Reset()
}
