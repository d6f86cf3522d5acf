package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const minTokenRunes = 2

// stopWords covers articles, prepositions, conjunctions, auxiliaries and
// question words. Legally meaningful words such as "not", "shall" and
// "without" are deliberately absent.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"of": {}, "to": {}, "in": {}, "on": {}, "at": {}, "by": {}, "for": {}, "from": {}, "with": {},
	"into": {}, "onto": {}, "upon": {}, "about": {}, "over": {}, "under": {}, "between": {}, "among": {},
	"as": {}, "and": {}, "or": {}, "nor": {}, "but": {}, "if": {}, "then": {}, "than": {},
	"that": {}, "this": {}, "these": {}, "those": {}, "there": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"do": {}, "does": {}, "did": {}, "has": {}, "have": {}, "had": {},
	"can": {}, "could": {}, "would": {}, "should": {}, "will": {}, "may": {}, "might": {},
	"what": {}, "which": {}, "who": {}, "whom": {}, "whose": {}, "when": {}, "where": {}, "why": {}, "how": {},
	"it": {}, "its": {}, "they": {}, "them": {}, "their": {}, "we": {}, "our": {}, "you": {}, "your": {},
	"me": {}, "my": {}, "tell": {}, "explain": {}, "mean": {}, "means": {},
}

// Normalize lowercases text, treats every rune that is not a letter or digit
// as a separator and drops stop words and tokens shorter than two runes.
// The query and entry fields go through the same function so matching is
// symmetric.
func Normalize(text string) []string {
	if text == "" {
		return nil
	}

	tokens := make([]string, 0, 16)
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		token := b.String()
		b.Reset()
		if utf8.RuneCountInString(token) < minTokenRunes {
			return
		}
		if _, skip := stopWords[token]; skip {
			return
		}
		tokens = append(tokens, token)
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()
	return tokens
}

func toTokenSet(tokens []string) map[string]struct{} {
	out := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		out[token] = struct{}{}
	}
	return out
}

func distinctTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}
