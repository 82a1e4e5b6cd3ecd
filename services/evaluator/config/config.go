// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates the evaluator service configuration.
//
// # Description
//
// Configuration is read once from environment variables at startup and
// passed by reference into every component constructor. There is no global
// singleton; tests construct their own Config values.
//
// # Thread Safety
//
// Config is read-only after Load returns.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Provider identifies which generation backend to construct at startup.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderMock   Provider = "mock"
)

// ExaggerationLevel controls how dramatic generated narrative outcomes are.
type ExaggerationLevel string

const (
	ExaggerationLow    ExaggerationLevel = "low"
	ExaggerationMedium ExaggerationLevel = "medium"
	ExaggerationHigh   ExaggerationLevel = "high"
)

// ScoringConfig holds weights and thresholds for score aggregation.
type ScoringConfig struct {
	// ComparisonWeight and ReasoningWeight must sum to 1.0. Drift greater
	// than 0.01 is renormalized with a logged warning rather than rejected.
	ComparisonWeight float64 `json:"comparison_weight" validate:"gt=0"`
	ReasoningWeight  float64 `json:"reasoning_weight" validate:"gt=0"`

	// PoorMax and ExcellentMin partition [0,100] into poor/average/excellent.
	PoorMax      float64 `json:"poor_max" validate:"gte=0,lte=100"`
	ExcellentMin float64 `json:"excellent_min" validate:"gte=0,lte=100"`
}

// PathConfig bounds the recommended node count for the next stage.
type PathConfig struct {
	MinNodes     int `json:"min_nodes" validate:"gt=0"`
	DefaultNodes int `json:"default_nodes" validate:"gt=0"`
	MaxNodes     int `json:"max_nodes" validate:"gt=0"`
}

// ResilienceConfig holds circuit breaker and retry settings for the
// generation backend.
type ResilienceConfig struct {
	FailureThreshold int           `json:"failure_threshold" validate:"gt=0"`
	RecoveryTimeout  time.Duration `json:"recovery_timeout" validate:"gt=0"`
	RetryMaxAttempts int           `json:"retry_max_attempts" validate:"gt=0"`
	RetryBaseDelay   time.Duration `json:"retry_base_delay" validate:"gt=0"`
	RetryMaxDelay    time.Duration `json:"retry_max_delay" validate:"gt=0"`
	RetryMultiplier  float64       `json:"retry_multiplier" validate:"gte=1"`

	// RequestTimeout bounds every outbound generation call. Enforced
	// centrally by the resilient client, not at individual call sites.
	RequestTimeout time.Duration `json:"request_timeout" validate:"gt=0"`
}

// NarrativeConfig controls outcome generation.
type NarrativeConfig struct {
	Exaggeration         ExaggerationLevel `json:"exaggeration_level" validate:"oneof=low medium high"`
	AppropriatenessCheck bool              `json:"appropriateness_check"`
}

// Config is the full evaluator service configuration.
type Config struct {
	Port         string `json:"port"`
	ScenarioPath string `json:"scenario_path"`

	Provider    Provider `json:"provider" validate:"oneof=openai ollama mock"`
	OpenAIKey   string   `json:"-"`
	OpenAIModel string   `json:"openai_model"`
	OllamaURL   string   `json:"ollama_url"`
	OllamaModel string   `json:"ollama_model"`

	Scoring    ScoringConfig    `json:"scoring" validate:"required"`
	Path       PathConfig       `json:"path" validate:"required"`
	Resilience ResilienceConfig `json:"resilience" validate:"required"`
	Narrative  NarrativeConfig  `json:"narrative" validate:"required"`
}

// Load reads configuration from the environment, applies defaults, and
// validates the result.
//
// # Description
//
// Soft problems (weight drift, inverted thresholds, inconsistent path
// bounds) are corrected in place with a logged warning. Hard problems are
// returned as errors and should halt startup: an unknown provider, a
// validator failure, or a missing OPENAI_API_KEY when the openai provider
// is selected.
//
// # Outputs
//
//   - *Config: The validated configuration.
//   - error: Non-nil only for startup-fatal problems.
func Load() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8090"),
		ScenarioPath: getEnv("SCENARIO_FILE", "scenarios.yaml"),
		Provider:     Provider(strings.ToLower(getEnv("AI_PROVIDER", "mock"))),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OllamaURL:    getEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:  getEnv("OLLAMA_MODEL", "gpt-oss:20b"),
		Scoring: ScoringConfig{
			ComparisonWeight: getEnvFloat("COMPARISON_WEIGHT", 0.6),
			ReasoningWeight:  getEnvFloat("REASONING_WEIGHT", 0.4),
			PoorMax:          getEnvFloat("SCORE_THRESHOLD_POOR_MAX", 30),
			ExcellentMin:     getEnvFloat("SCORE_THRESHOLD_EXCELLENT_MIN", 70),
		},
		Path: PathConfig{
			MinNodes:     getEnvInt("MIN_PATH_NODES", 3),
			DefaultNodes: getEnvInt("DEFAULT_PATH_NODES", 6),
			MaxNodes:     getEnvInt("MAX_PATH_NODES", 10),
		},
		Resilience: ResilienceConfig{
			FailureThreshold: getEnvInt("CIRCUIT_FAILURE_THRESHOLD", 3),
			RecoveryTimeout:  getEnvDuration("CIRCUIT_RECOVERY_TIMEOUT", 30*time.Second),
			RetryMaxAttempts: getEnvInt("RETRY_MAX_ATTEMPTS", 3),
			RetryBaseDelay:   getEnvDuration("RETRY_BASE_DELAY", 500*time.Millisecond),
			RetryMaxDelay:    getEnvDuration("RETRY_MAX_DELAY", 8*time.Second),
			RetryMultiplier:  getEnvFloat("RETRY_MULTIPLIER", 2.0),
			RequestTimeout:   getEnvDuration("AI_REQUEST_TIMEOUT", 30*time.Second),
		},
		Narrative: NarrativeConfig{
			Exaggeration:         ExaggerationLevel(strings.ToLower(getEnv("OUTCOME_EXAGGERATION_LEVEL", "high"))),
			AppropriatenessCheck: getEnvBool("OUTCOME_APPROPRIATENESS_CHECK", true),
		},
	}

	cfg.Normalize()

	if cfg.Provider == ProviderOpenAI && cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("AI_PROVIDER is openai but OPENAI_API_KEY is not set")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Normalize corrects soft configuration problems in place.
//
// # Description
//
// Renormalizes scoring weights when their sum drifts more than 0.01 from
// 1.0, restores default thresholds when poorMax >= excellentMin, and
// restores default path bounds when min <= default <= max does not hold.
// Each correction logs a warning.
func (c *Config) Normalize() {
	sum := c.Scoring.ComparisonWeight + c.Scoring.ReasoningWeight
	if sum > 0 && (sum > 1.01 || sum < 0.99) {
		slog.Warn("scoring weights do not sum to 1.0, renormalizing",
			"comparison_weight", c.Scoring.ComparisonWeight,
			"reasoning_weight", c.Scoring.ReasoningWeight,
			"sum", sum)
		c.Scoring.ComparisonWeight /= sum
		c.Scoring.ReasoningWeight /= sum
	}

	if c.Scoring.PoorMax >= c.Scoring.ExcellentMin {
		slog.Warn("score thresholds are inverted, restoring defaults",
			"poor_max", c.Scoring.PoorMax, "excellent_min", c.Scoring.ExcellentMin)
		c.Scoring.PoorMax = 30
		c.Scoring.ExcellentMin = 70
	}

	if c.Path.MinNodes > c.Path.MaxNodes || c.Path.DefaultNodes < c.Path.MinNodes || c.Path.DefaultNodes > c.Path.MaxNodes {
		slog.Warn("path bounds are inconsistent, restoring defaults",
			"min_nodes", c.Path.MinNodes, "default_nodes", c.Path.DefaultNodes, "max_nodes", c.Path.MaxNodes)
		c.Path.MinNodes = 3
		c.Path.DefaultNodes = 6
		c.Path.MaxNodes = 10
	}

	switch c.Narrative.Exaggeration {
	case ExaggerationLow, ExaggerationMedium, ExaggerationHigh:
	default:
		slog.Warn("unknown exaggeration level, defaulting to high",
			"level", c.Narrative.Exaggeration)
		c.Narrative.Exaggeration = ExaggerationHigh
	}
}

// Default returns a Config with all defaults applied, suitable for tests.
func Default() *Config {
	return &Config{
		Port:         "8090",
		ScenarioPath: "scenarios.yaml",
		Provider:     ProviderMock,
		OpenAIModel:  "gpt-4o-mini",
		OllamaURL:    "http://localhost:11434",
		OllamaModel:  "gpt-oss:20b",
		Scoring: ScoringConfig{
			ComparisonWeight: 0.6,
			ReasoningWeight:  0.4,
			PoorMax:          30,
			ExcellentMin:     70,
		},
		Path: PathConfig{MinNodes: 3, DefaultNodes: 6, MaxNodes: 10},
		Resilience: ResilienceConfig{
			FailureThreshold: 3,
			RecoveryTimeout:  30 * time.Second,
			RetryMaxAttempts: 3,
			RetryBaseDelay:   500 * time.Millisecond,
			RetryMaxDelay:    8 * time.Second,
			RetryMultiplier:  2.0,
			RequestTimeout:   30 * time.Second,
		},
		Narrative: NarrativeConfig{
			Exaggeration:         ExaggerationHigh,
			AppropriatenessCheck: true,
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		slog.Warn("invalid float in environment, using fallback", "key", key, "value", v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		slog.Warn("invalid int in environment, using fallback", "key", key, "value", v)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		slog.Warn("invalid bool in environment, using fallback", "key", key, "value", v)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// Bare integers are treated as seconds for compatibility with the
		// older deployment manifests.
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
		slog.Warn("invalid duration in environment, using fallback", "key", key, "value", v)
	}
	return fallback
}
