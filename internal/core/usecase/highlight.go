package usecase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

const (
	ellipsis           = "…"
	highlightLeadWords = 4
	highlightMinChars  = 40
)

// extractHighlights returns excerpt spans that contain at least one query
// token, or the summary when none does.
func extractHighlights(queryTokens []string, entry domain.Entry, maxSpans, maxChars int) []string {
	if maxSpans <= 0 {
		maxSpans = 3
	}
	if maxChars < highlightMinChars {
		maxChars = highlightMinChars
	}

	query := toTokenSet(queryTokens)
	out := make([]string, 0, maxSpans)
	seen := make(map[string]struct{}, maxSpans)
	for _, span := range splitSpans(entry.Excerpt) {
		if len(out) == maxSpans {
			break
		}
		words := strings.Fields(span)
		hit := firstMatchingWord(words, query)
		if hit < 0 {
			continue
		}
		clipped := clipWords(words, hit, maxChars)
		if _, dup := seen[clipped]; dup {
			continue
		}
		seen[clipped] = struct{}{}
		out = append(out, clipped)
	}

	if len(out) == 0 && strings.TrimSpace(entry.Summary) != "" {
		out = append(out, strings.TrimSpace(entry.Summary))
	}
	return out
}

// splitSpans cuts text after '.', ';', '?' or '!' when followed by whitespace
// and at line breaks.
func splitSpans(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	spans := make([]string, 0, 8)
	start := 0
	emit := func(end int) {
		span := strings.TrimSpace(string(runes[start:end]))
		if span != "" {
			spans = append(spans, span)
		}
		start = end
	}

	for i, r := range runes {
		switch {
		case r == '\n':
			emit(i + 1)
		case r == '.' || r == ';' || r == '?' || r == '!':
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				emit(i + 1)
			}
		}
	}
	if start < len(runes) {
		emit(len(runes))
	}
	return spans
}

func firstMatchingWord(words []string, query map[string]struct{}) int {
	for i, word := range words {
		for _, token := range Normalize(word) {
			if _, ok := query[token]; ok {
				return i
			}
		}
	}
	return -1
}

// clipWords keeps whole words around words[hit] so that the span stays within
// maxChars, marking cut ends with an ellipsis.
func clipWords(words []string, hit, maxChars int) string {
	full := strings.Join(words, " ")
	if utf8.RuneCountInString(full) <= maxChars {
		return full
	}

	start := hit - highlightLeadWords
	if start < 0 {
		start = 0
	}
	end := hit + 1
	for start < hit && joinedLen(words[start:end]) > maxChars {
		start++
	}
	for end < len(words) && joinedLen(words[start:end+1]) <= maxChars {
		end++
	}

	clipped := strings.Join(words[start:end], " ")
	if start > 0 {
		clipped = ellipsis + clipped
	}
	if end < len(words) {
		clipped += ellipsis
	}
	return clipped
}

func joinedLen(words []string) int {
	n := 0
	for i, word := range words {
		if i > 0 {
			n++
		}
		n += utf8.RuneCountInString(word)
	}
	return n
}
