package keywords

import (
	"strings"
	"unicode/utf8"
)

const (
	// HeadlineTokens is the largest whitespace token count still treated as a headline.
	HeadlineTokens = 15
	// LongTextCap bounds the keywords taken from anything longer than a headline.
	LongTextCap = 6
	minWordLen  = 3
)

const trimSet = ".,!?\":;()[]{}"

var quoteReplacer = strings.NewReplacer("\"", "", "“", "", "”", "")

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"this": {}, "that": {}, "these": {}, "those": {},
}

// IsStopWord reports whether word is dropped by Extract regardless of length.
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}

// Extract reduces text to at most maxWords significant words, space-joined in
// their original order. Text longer than a headline is further capped at
// LongTextCap words.
func Extract(text string, maxWords int) string {
	tokens := strings.Fields(text)
	limit := maxWords
	if len(tokens) > HeadlineTokens && limit > LongTextCap {
		limit = LongTextCap
	}
	if limit <= 0 {
		return ""
	}

	words := make([]string, 0, limit)
	for _, token := range tokens {
		word := quoteReplacer.Replace(strings.Trim(token, trimSet))
		if utf8.RuneCountInString(word) < minWordLen || IsStopWord(word) {
			continue
		}
		words = append(words, word)
		if len(words) == limit {
			break
		}
	}
	return strings.Join(words, " ")
}

// Candidates returns the ordered query variants tried against a provider: the
// trimmed raw query followed by one keyword extraction per budget. Empty
// variants are dropped; identical variants are kept so every budget gets its
// own attempt.
func Candidates(query string, budgets ...int) []string {
	raw := []string{strings.TrimSpace(query)}
	for _, budget := range budgets {
		raw = append(raw, Extract(query, budget))
	}

	out := make([]string, 0, len(raw))
	for _, candidate := range raw {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		out = append(out, candidate)
	}
	return out
}
