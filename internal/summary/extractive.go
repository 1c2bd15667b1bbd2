package summary

import (
	"regexp"
	"sort"
	"strings"
)

const (
	topKeywords   = 5
	maxSummaryLen = 120
	minWordLen    = 3
)

var wordRe = regexp.MustCompile(`[a-z']+`)

// stopwords are excluded from the frequency table.
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "was": true, "are": true,
	"but": true, "not": true, "you": true, "this": true, "that": true,
	"with": true, "very": true, "too": true, "had": true, "has": true,
	"have": true, "were": true, "its": true, "it's": true, "all": true,
	"can": true, "could": true, "would": true, "should": true, "there": true,
	"they": true, "them": true, "then": true, "than": true, "what": true,
	"when": true, "more": true, "some": true, "just": true, "about": true,
}

// extractiveFrequencyFallback picks the comment that best represents the
// whole set: build a word-frequency table over all comments (ignoring
// stopwords and words shorter than minWordLen), score each comment by the
// summed frequencies of the top-K frequent words it contains, and return the
// highest-scoring comment truncated to maxSummaryLen, with the top-K words
// as keywords.
func extractiveFrequencyFallback(comments []string) Summary {
	freq := make(map[string]int)
	for _, c := range comments {
		for _, w := range wordRe.FindAllString(strings.ToLower(c), -1) {
			if len(w) < minWordLen || stopwords[w] {
				continue
			}
			freq[w]++
		}
	}

	keywords := topWords(freq, topKeywords)
	top := make(map[string]bool, len(keywords))
	for _, w := range keywords {
		top[w] = true
	}

	best := comments[0]
	bestScore := -1
	for _, c := range comments {
		score := 0
		for _, w := range wordRe.FindAllString(strings.ToLower(c), -1) {
			if top[w] {
				score += freq[w]
			}
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}

	return Summary{
		Text:     truncate(best, maxSummaryLen),
		Keywords: keywords,
	}
}

// topWords returns the k most frequent words, ties broken alphabetically so
// the result is deterministic.
func topWords(freq map[string]int, k int) []string {
	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > k {
		words = words[:k]
	}
	return words
}

// truncate cuts s to at most n characters, never splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
