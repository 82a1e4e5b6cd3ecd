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
	"log/slog"
	"math"
	"time"
)

// RetryPolicy is an immutable bounded exponential-backoff configuration.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the delay after the first failed attempt.
	BaseDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration

	// Multiplier is the exponential growth factor, at least 1.
	Multiplier float64
}

// DefaultRetryPolicy returns the standard backend retry policy.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
		Multiplier:  2.0,
	}
}

// Delay returns the wait before attempt number attempt+1.
//
// # Description
//
// The delay after the zero-indexed attempt n is
// min(BaseDelay * Multiplier^n, MaxDelay). With Multiplier >= 1 the
// sequence is non-decreasing.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}

// Do executes fn up to MaxAttempts times with backoff between attempts.
//
// # Description
//
// Only retryable errors (see IsRetryable) cause another attempt. The sleep
// between attempts honors context cancellation, and there is no sleep
// after the final attempt: its error surfaces immediately to the caller,
// which is the circuit breaker in the resilient client.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
		if attempt == attempts-1 {
			break
		}

		delay := p.Delay(attempt)
		slog.Debug("generation attempt failed, retrying",
			"attempt", attempt+1,
			"max_attempts", attempts,
			"delay", delay,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
