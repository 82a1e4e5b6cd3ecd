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
	"math/rand"

	"github.com/AleutianAI/AleutianJudge/services/evaluator/config"
	"github.com/AleutianAI/AleutianJudge/services/evaluator/datatypes"
)

// deniedTerms are substring-matched against a lowercased outcome. Any hit
// rejects the outcome before the model is ever consulted.
var deniedTerms = []string{
	"hate", "stupid", "idiot", "loser", "failure", "pathetic",
	"worthless", "useless", "terrible person", "awful",
}

// Fallback pools per category. Selection is driven by the generator's
// injected random source so callers can seed it deterministically.
var (
	excellentFallbacks = []string{
		"🎉 Incredible! Your brilliant solution works perfectly and everyone is amazed by your genius! You've become a legend!",
		"🌟 Outstanding! Your approach is so effective that it becomes the gold standard everyone wants to follow!",
		"🏆 Phenomenal! Your solution not only works flawlessly but also inspires others to think more creatively!",
		"✨ Spectacular! Your response demonstrates such wisdom that you're immediately recognized as an expert!",
	}

	poorFallbacks = []string{
		"😅 Oops! Your approach leads to some unexpected complications, but hey, that's how we learn!",
		"🤔 Well, that didn't go quite as planned! Your solution creates a few amusing mix-ups that everyone will laugh about later.",
		"😬 Yikes! Your approach causes some comical confusion, but nothing that can't be fixed with a better plan next time!",
		"🙃 Oh dear! Your solution leads to some entertaining chaos, but it's all part of the learning adventure!",
	}

	averageFallbacks = []string{
		"👍 Your solution works okay! It gets the job done with some mixed results - not bad, but there's room for improvement.",
		"🤷 Your approach has its ups and downs. Some parts work well while others could use some tweaking.",
		"😊 Decent effort! Your solution shows promise but could benefit from a bit more thought and refinement.",
		"👌 Your response is solid but not spectacular. It's a good foundation that could be built upon.",
	}
)

// FallbackOutcome returns a canned outcome for the category using the given
// random source. The pools are non-empty for every category, so the result
// is never an empty string.
func FallbackOutcome(category datatypes.ScoreCategory, rng *rand.Rand) string {
	var pool []string
	switch category {
	case datatypes.CategoryExcellent:
		pool = excellentFallbacks
	case datatypes.CategoryPoor:
		pool = poorFallbacks
	default:
		pool = averageFallbacks
	}
	return pool[rng.Intn(len(pool))]
}

// exaggerationInstructions returns the tone block injected into the
// excellent and poor prompts. The average prompt stays measured and never
// takes one.
func exaggerationInstructions(level config.ExaggerationLevel, positive bool) string {
	switch level {
	case config.ExaggerationHigh:
		if positive {
			return `Make it EXTREMELY over-the-top positive:
- Use superlatives and dramatic language
- Include multiple amazing consequences
- Make it feel like winning the lottery
- Use exciting punctuation and energy`
		}
		return `Make it EXTREMELY over-the-top negative but funny:
- Use dramatic disaster language
- Include multiple creative failures
- Make it feel like a dramatic movie disaster
- Keep it entertaining, not cruel`
	case config.ExaggerationMedium:
		if positive {
			return `Make it moderately exaggerated positive:
- Use enthusiastic but not extreme language
- Include some great consequences
- Make it feel very successful`
		}
		return `Make it moderately exaggerated negative:
- Use disappointed but not extreme language
- Include some unfortunate consequences
- Make it feel unsuccessful but not devastating`
	default:
		if positive {
			return "Make it mildly positive with some good results."
		}
		return "Make it mildly negative with some disappointing results."
	}
}
