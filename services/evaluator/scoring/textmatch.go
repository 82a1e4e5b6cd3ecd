// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scoring implements the deterministic and model-blended scoring
// engines of the evaluation pipeline.
package scoring

import (
	"strings"
	"unicode"
)

// stopWords are excluded from key-concept extraction and overlap counting.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {}, "might": {},
	"can": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
}

// normalizeText lowercases, strips punctuation except apostrophes, and
// collapses whitespace.
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// keyConcepts returns the meaningful words of a text: longer than two
// characters and not a stop word.
func keyConcepts(normalized string) []string {
	var concepts []string
	for _, w := range strings.Fields(normalized) {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		concepts = append(concepts, w)
	}
	return concepts
}

// wordSet builds a unique word set from normalized text.
func wordSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		set[w] = struct{}{}
	}
	return set
}

// sequenceSimilarity is an edit-distance ratio over two normalized texts,
// in [0,1]. Identical texts score 1, disjoint texts approach 0.
func sequenceSimilarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	dist := levenshtein(a, b)
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return 1 - float64(dist)/float64(longest)
}

// levenshtein computes the edit distance with a two-row table.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// wordOverlapRatio is |candidate ∩ reference| / |reference| over unique
// words, in [0,1].
func wordOverlapRatio(candidate, reference string) float64 {
	refWords := wordSet(reference)
	if len(refWords) == 0 {
		return 0
	}
	candWords := wordSet(candidate)
	common := 0
	for w := range refWords {
		if _, ok := candWords[w]; ok {
			common++
		}
	}
	return float64(common) / float64(len(refWords))
}

// extractPhrases returns the unique 2-word and 3-word n-grams of
// normalized text.
func extractPhrases(normalized string) map[string]struct{} {
	words := strings.Fields(normalized)
	phrases := make(map[string]struct{})
	for n := 2; n <= 3; n++ {
		for i := 0; i+n <= len(words); i++ {
			phrases[strings.Join(words[i:i+n], " ")] = struct{}{}
		}
	}
	return phrases
}

// phraseOverlapRatio is the fraction of unique reference 2-3-word phrases
// also present in the candidate, in [0,1].
func phraseOverlapRatio(candidate, reference string) float64 {
	refPhrases := extractPhrases(reference)
	if len(refPhrases) == 0 {
		return 0
	}
	candPhrases := extractPhrases(candidate)
	matched := 0
	for p := range refPhrases {
		if _, ok := candPhrases[p]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(refPhrases))
}

// TextSimilarity is the deterministic lexical similarity of a candidate
// against a reference answer, in [0,100].
//
// # Description
//
// Blend of three signals over normalized text: 0.3 edit-distance ratio,
// 0.4 word-overlap ratio, 0.3 phrase-overlap ratio.
func TextSimilarity(candidate, reference string) float64 {
	cn := normalizeText(candidate)
	rn := normalizeText(reference)

	score := 0.3*sequenceSimilarity(cn, rn) +
		0.4*wordOverlapRatio(cn, rn) +
		0.3*phraseOverlapRatio(cn, rn)
	return clampScore(score * 100)
}

// clampScore bounds a score to [0,100].
func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
