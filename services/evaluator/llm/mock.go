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
	"strings"
	"sync"
	"time"
)

// MockClient is the deterministic generation backend.
//
// # Description
//
// MockClient serves two roles: the last-resort fallback backend used by
// ResilientClient when the real backend is exhausted, and the test double
// for every component that talks to a backend. The zero configuration
// behavior is fully deterministic, keyed on prompt content, so evaluation
// stays functional with no external capability at all.
//
// # Thread Safety
//
// MockClient is safe for concurrent use.
type MockClient struct {
	mu sync.RWMutex

	// name is the provider name.
	name string

	// model is the model name.
	model string

	// responses are queued responses to return, consumed in order.
	responses []string

	// calls records all calls made to Generate.
	calls []GenerationCall

	// responseFunc allows dynamic response generation.
	responseFunc func(prompt string, params GenerationParams) (string, error)

	// delay adds artificial latency to responses.
	delay time.Duration

	// errorToReturn causes Generate to return this error.
	errorToReturn error
}

// GenerationCall records a call to Generate.
type GenerationCall struct {
	Prompt    string
	Params    GenerationParams
	Timestamp time.Time
}

// NewMockClient creates a new deterministic mock backend.
func NewMockClient() *MockClient {
	return &MockClient{
		name:  "mock",
		model: "mock-model",
		calls: make([]GenerationCall, 0),
	}
}

// WithName sets the provider name.
func (c *MockClient) WithName(name string) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
	return c
}

// WithModel sets the model name.
func (c *MockClient) WithModel(model string) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
	return c
}

// WithDelay adds artificial latency.
func (c *MockClient) WithDelay(d time.Duration) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = d
	return c
}

// WithError configures the client to return an error.
func (c *MockClient) WithError(err error) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorToReturn = err
	return c
}

// WithResponseFunc sets a dynamic response function.
func (c *MockClient) WithResponseFunc(f func(prompt string, params GenerationParams) (string, error)) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responseFunc = f
	return c
}

// QueueResponse adds a response to the queue.
func (c *MockClient) QueueResponse(text string) *MockClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses = append(c.responses, text)
	return c
}

// Generate implements the Client interface.
//
// # Description
//
// Precedence: configured error, response function, queued responses, then
// the deterministic canned output. The canned output mirrors the shapes
// the scoring engines request: prompts asking for a score get "SCORE: 75",
// prompts asking for a scenario get a canned scenario, everything else
// gets a fixed sentence.
func (c *MockClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, GenerationCall{
		Prompt:    prompt,
		Params:    params,
		Timestamp: time.Now(),
	})

	if c.delay > 0 {
		time.Sleep(c.delay)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if c.errorToReturn != nil {
		return "", c.errorToReturn
	}

	if c.responseFunc != nil {
		return c.responseFunc(prompt, params)
	}

	if len(c.responses) > 0 {
		response := c.responses[0]
		c.responses = c.responses[1:]
		return response, nil
	}

	return cannedResponse(prompt), nil
}

// cannedResponse is the deterministic zero-configuration output.
func cannedResponse(prompt string) string {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "score") && strings.Contains(lower, "response"):
		return "SCORE: 75"
	case strings.Contains(lower, "scenario"):
		return "You discover a critical bug in production minutes before a major release. " +
			"The fix is risky and untested. What do you do?"
	default:
		return "Mock AI response generated successfully."
	}
}

// HealthCheck implements the Client interface. The mock is always healthy.
func (c *MockClient) HealthCheck(ctx context.Context) error {
	return ctx.Err()
}

// Name implements the Client interface.
func (c *MockClient) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// Model implements the Client interface.
func (c *MockClient) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// GetCalls returns all recorded calls.
func (c *MockClient) GetCalls() []GenerationCall {
	c.mu.RLock()
	defer c.mu.RUnlock()

	calls := make([]GenerationCall, len(c.calls))
	copy(calls, c.calls)
	return calls
}

// CallCount returns the number of calls made.
func (c *MockClient) CallCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.calls)
}

// LastPrompt returns the most recent prompt, or "" if none.
func (c *MockClient) LastPrompt() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.calls) == 0 {
		return ""
	}
	return c.calls[len(c.calls)-1].Prompt
}

// Reset clears all state.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.responses = nil
	c.calls = make([]GenerationCall, 0)
	c.errorToReturn = nil
	c.responseFunc = nil
	c.delay = 0
}

// Verify ensures all queued responses were consumed.
func (c *MockClient) Verify() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.responses) > 0 {
		return fmt.Errorf("mock: %d queued responses not consumed", len(c.responses))
	}
	return nil
}

// ExpectCall returns an error if the expected number of calls wasn't made.
func (c *MockClient) ExpectCall(count int) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.calls) != count {
		return fmt.Errorf("mock: expected %d calls, got %d", count, len(c.calls))
	}
	return nil
}
