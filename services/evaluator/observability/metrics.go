// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides metrics and instrumentation for the
// evaluation service.
//
// # Description
//
// This package implements Prometheus metrics for monitoring evaluation
// operations. Metrics include:
//   - Request counters (by endpoint, status, error type)
//   - Score distribution histograms (by category)
//   - Latency histograms (per evaluation, per batch)
//   - Circuit breaker state and fallback counters
//
// # Integration
//
// Metrics are exposed via /metrics endpoint. Use with Prometheus + Grafana
// for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "aleutian"

// Subsystem for evaluation metrics
const evaluationSubsystem = "evaluation"

// EvaluationMetrics holds all Prometheus metrics for evaluation operations.
//
// # Description
//
// Provides counters, histograms, and gauges for monitoring scoring volume,
// score distribution, and resilience behavior. Initialize once at startup
// via InitMetrics().
//
// # Thread Safety
//
// All operations are thread-safe.
type EvaluationMetrics struct {
	// RequestsTotal counts evaluation requests by endpoint and status.
	// Labels: endpoint (evaluate, batch, scenario), status (success, error)
	RequestsTotal *prometheus.CounterVec

	// ScoreDistribution tracks total scores by category.
	// Labels: category (poor, average, excellent)
	ScoreDistribution *prometheus.HistogramVec

	// EvaluationDurationSeconds measures end-to-end evaluation latency.
	// Labels: endpoint (evaluate, batch)
	EvaluationDurationSeconds *prometheus.HistogramVec

	// BatchSize measures how many items each batch request carries.
	BatchSize prometheus.Histogram

	// ErrorsTotal counts errors by type and endpoint.
	// Labels: endpoint, error_code (validation, not_found, generation_error, internal)
	ErrorsTotal *prometheus.CounterVec

	// FallbacksTotal counts responses served by the deterministic fallback
	// backend instead of the primary.
	FallbacksTotal prometheus.Counter

	// CircuitState reports the generation circuit breaker state.
	// 0 = closed, 1 = half-open, 2 = open.
	CircuitState prometheus.Gauge
}

// DefaultMetrics is the singleton instance of EvaluationMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *EvaluationMetrics

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics. Should be called once
// at application startup, after Prometheus registry is available.
//
// # Outputs
//
//   - *EvaluationMetrics: The initialized metrics instance.
//
// # Limitations
//
//   - Panics if called twice (duplicate registration).
func InitMetrics() *EvaluationMetrics {
	DefaultMetrics = &EvaluationMetrics{
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: evaluationSubsystem,
				Name:      "requests_total",
				Help:      "Total number of evaluation requests by endpoint and status",
			},
			[]string{"endpoint", "status"},
		),

		ScoreDistribution: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: evaluationSubsystem,
				Name:      "total_score",
				Help:      "Distribution of aggregated total scores by category",
				Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
			},
			[]string{"category"},
		),

		EvaluationDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: evaluationSubsystem,
				Name:      "duration_seconds",
				Help:      "End-to-end evaluation latency in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"endpoint"},
		),

		BatchSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: evaluationSubsystem,
				Name:      "batch_size",
				Help:      "Number of items per batch evaluation request",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
			},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: evaluationSubsystem,
				Name:      "errors_total",
				Help:      "Total evaluation errors by type and endpoint",
			},
			[]string{"endpoint", "error_code"},
		),

		FallbacksTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: evaluationSubsystem,
				Name:      "fallbacks_total",
				Help:      "Total responses served by the deterministic fallback backend",
			},
		),

		CircuitState: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: evaluationSubsystem,
				Name:      "circuit_state",
				Help:      "Generation circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
		),
	}

	return DefaultMetrics
}

// =============================================================================
// Error Codes
// =============================================================================

// ErrorCode represents a categorized error type for metrics.
type ErrorCode string

const (
	// ErrorCodeValidation indicates request validation failure.
	ErrorCodeValidation ErrorCode = "validation"

	// ErrorCodeNotFound indicates an unknown scenario ID.
	ErrorCodeNotFound ErrorCode = "not_found"

	// ErrorCodeGeneration indicates a generation backend failure.
	ErrorCodeGeneration ErrorCode = "generation_error"

	// ErrorCodeInternal indicates internal server error.
	ErrorCodeInternal ErrorCode = "internal"
)

// =============================================================================
// Endpoint Names
// =============================================================================

// Endpoint represents an evaluation endpoint for metrics labeling.
type Endpoint string

const (
	// EndpointEvaluate is the single-response evaluation endpoint.
	EndpointEvaluate Endpoint = "evaluate"

	// EndpointBatch is the batch evaluation endpoint.
	EndpointBatch Endpoint = "batch"

	// EndpointScenario covers scenario catalog reads.
	EndpointScenario Endpoint = "scenario"
)

// =============================================================================
// Helper Methods
// =============================================================================

// RecordRequest records a completed evaluation request.
func (m *EvaluationMetrics) RecordRequest(endpoint Endpoint, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(string(endpoint), status).Inc()
}

// RecordError records a categorized request error.
func (m *EvaluationMetrics) RecordError(endpoint Endpoint, code ErrorCode) {
	m.ErrorsTotal.WithLabelValues(string(endpoint), string(code)).Inc()
}

// RecordScore records an aggregated total score under its category.
func (m *EvaluationMetrics) RecordScore(category string, total float64) {
	m.ScoreDistribution.WithLabelValues(category).Observe(total)
}

// RecordDuration records end-to-end evaluation latency.
func (m *EvaluationMetrics) RecordDuration(endpoint Endpoint, seconds float64) {
	m.EvaluationDurationSeconds.WithLabelValues(string(endpoint)).Observe(seconds)
}

// RecordBatchSize records the item count of a batch request.
func (m *EvaluationMetrics) RecordBatchSize(n int) {
	m.BatchSize.Observe(float64(n))
}

// SetCircuitState reports the breaker state (0 closed, 1 half-open, 2 open).
func (m *EvaluationMetrics) SetCircuitState(state float64) {
	m.CircuitState.Set(state)
}

// RecordFallback increments the fallback counter.
func (m *EvaluationMetrics) RecordFallback() {
	m.FallbacksTotal.Inc()
}
