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
	"errors"
)

var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a call
	// without attempting the backend. Never retried.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrEmptyResponse is returned when the backend answered but produced
	// no usable text.
	ErrEmptyResponse = errors.New("backend returned an empty response")

	// ErrInvalidRequest marks caller mistakes (empty prompt, bad params).
	// Never retried.
	ErrInvalidRequest = errors.New("invalid generation request")
)

// IsRetryable reports whether a generation error is worth another attempt.
//
// # Description
//
// Transient provider failures (network, timeouts, 5xx) are retryable.
// Context cancellation, circuit rejections, and validation errors are not:
// retrying them either cannot succeed or would defeat the breaker.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrInvalidRequest) {
		return false
	}
	return true
}
