// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package narrative

import (
	"log/slog"
	"strconv"
	"strings"
)

const (
	// minOutcomeLength marks the point below which a parsed outcome is
	// treated as truncated model output.
	minOutcomeLength = 50

	truncationFiller = "... and the adventure continues with unexpected twists and amazing results!"
	missingOutcome   = "Your choice leads to unexpected adventures!"
)

// Appropriateness ratings as emitted by the rubric prompt.
const (
	RatingAppropriate       = "APPROPRIATE"
	RatingNeedsModification = "NEEDS_MODIFICATION"
	RatingInappropriate     = "INAPPROPRIATE"
)

// AppropriatenessResult is the parsed verdict of an appropriateness review.
type AppropriatenessResult struct {
	Rating        string `json:"rating"`
	Reason        string `json:"reason"`
	Suggestions   string `json:"suggestions"`
	IsAppropriate bool   `json:"is_appropriate"`
}

func appropriateByDefault() AppropriatenessResult {
	return AppropriatenessResult{
		Rating:        RatingAppropriate,
		Reason:        "Content appears suitable for all audiences",
		IsAppropriate: true,
	}
}

// ScoredOutcome holds the numeric fields and outcome text extracted from a
// combined scoring-plus-narrative model response.
type ScoredOutcome struct {
	Scores  map[string]float64
	Outcome string
}

// ParseScoredOutcome extracts "key: value" lines from a model response.
//
// # Description
//
// Lines whose lowercased key is "outcome" contribute the narrative text; all
// other keyed lines have their digits extracted as a score. An outcome
// shorter than minOutcomeLength characters is assumed to be cut off and gets
// a continuation filler appended; a missing outcome resolves to a neutral
// default. The returned Outcome is never empty.
func ParseScoredOutcome(raw string) ScoredOutcome {
	parsed := ScoredOutcome{Scores: make(map[string]float64)}

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		if key == "outcome" {
			parsed.Outcome = value
			continue
		}
		if digits := digitsOnly(value); digits != "" {
			if score, err := strconv.ParseFloat(digits, 64); err == nil {
				parsed.Scores[key] = score
			}
		}
	}

	switch {
	case parsed.Outcome == "":
		slog.Warn("no outcome found in model response", "raw", raw)
		parsed.Outcome = missingOutcome
	case len(parsed.Outcome) < minOutcomeLength:
		slog.Warn("outcome appears truncated", "outcome", parsed.Outcome)
		parsed.Outcome += truncationFiller
	}

	return parsed
}

// ParseAppropriateness reads the Rating/Reason/Suggestions lines of a rubric
// response. Unparseable input yields the safe default.
func ParseAppropriateness(raw string) AppropriatenessResult {
	result := appropriateByDefault()

	for _, line := range strings.Split(strings.TrimSpace(raw), "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)

		switch strings.ToLower(strings.TrimSpace(key)) {
		case "rating":
			rating := strings.ToUpper(strings.Trim(value, "[]"))
			result.Rating = rating
			result.IsAppropriate = rating == RatingAppropriate
		case "reason":
			result.Reason = value
		case "suggestions":
			result.Suggestions = value
		}
	}

	return result
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
