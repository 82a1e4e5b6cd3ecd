// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scoring

import (
	"regexp"
	"strconv"
)

// DefaultScore is the neutral value used when a model response carries no
// recognizable score.
const DefaultScore = 50.0

var (
	structuredScoreRe = regexp.MustCompile(`(?i)score\s*[:=]\s*(\d+(?:\.\d+)?)`)
	looseNumberRe     = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ExtractScore pulls a 0-100 score out of raw model text.
//
// # Description
//
// The prompts ask for the structured form "SCORE: <number>", which is
// parsed first. When the model ignores the format, the first digit run in
// the text wins; that loose path can misparse when other numbers precede
// the score ("out of 100"), which is why the structured form is requested.
// Values outside [0,100] are clamped. When no number is present at all the
// neutral DefaultScore is returned with found=false.
//
// # Outputs
//
//   - float64: The extracted score, clamped to [0,100].
//   - bool: False when no number was found and the default was used.
func ExtractScore(raw string) (float64, bool) {
	if m := structuredScoreRe.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return clampScore(v), true
		}
	}
	if m := looseNumberRe.FindString(raw); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			return clampScore(v), true
		}
	}
	return DefaultScore, false
}
