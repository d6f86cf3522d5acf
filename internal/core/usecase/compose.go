package usecase

import (
	"fmt"
	"strings"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

// NoMatchAnswer is returned verbatim when nothing in the knowledge base
// matches the question.
const NoMatchAnswer = "I could not find a direct match for that question in the legal knowledge base. " +
	"Try rephrasing it with a specific legal term, doctrine, or statute name."

const maxSynthesizedResults = 3

// TemplateComposer builds answers by filling a fixed template with result
// fields. It never adds content that is not present in the results.
type TemplateComposer struct {
	maxResults int
}

func NewTemplateComposer() *TemplateComposer {
	return &TemplateComposer{maxResults: maxSynthesizedResults}
}

func (c *TemplateComposer) Compose(_ string, results []domain.Result) string {
	if len(results) == 0 {
		return NoMatchAnswer
	}

	referenced := results
	if len(referenced) > c.maxResults {
		referenced = referenced[:c.maxResults]
	}

	top := referenced[0]
	var b strings.Builder
	fmt.Fprintf(&b, "\"%s\" is the closest match: %s%s.", top.Title, withArticle(typeLabel(top.Type)), scopeClause(top.Entry))
	b.WriteString(" ")
	b.WriteString(asSentence(top.Summary))

	if len(referenced) > 1 {
		b.WriteString(" Related entries:")
		for _, r := range referenced[1:] {
			fmt.Fprintf(&b, " \"%s\" (%s): %s", r.Title, typeLabel(r.Type), asSentence(r.Summary))
		}
	}

	citations := make([]string, 0, len(referenced))
	for _, r := range referenced {
		if len(r.Citations) == 0 {
			continue
		}
		citations = append(citations, fmt.Sprintf("%s: %s", r.Title, strings.Join(r.Citations, "; ")))
	}
	if len(citations) > 0 {
		b.WriteString("\n\nCitations: ")
		b.WriteString(strings.Join(citations, ". "))
		b.WriteString(".")
	}
	return b.String()
}

func typeLabel(entryType string) string {
	switch entryType {
	case domain.EntryTypeDefinition:
		return "legal definition"
	case domain.EntryTypeDoctrine:
		return "legal doctrine"
	case domain.EntryTypeStatute:
		return "statute"
	case domain.EntryTypeCase:
		return "case"
	default:
		return entryType
	}
}

func withArticle(noun string) string {
	if noun == "" {
		return "an entry"
	}
	switch strings.ToLower(noun[:1]) {
	case "a", "e", "i", "o", "u":
		return "an " + noun
	default:
		return "a " + noun
	}
}

func scopeClause(entry domain.Entry) string {
	var parts []string
	if region := strings.TrimSpace(entry.Region); region != "" {
		parts = append(parts, "in "+region)
	}
	if era := strings.TrimSpace(entry.Era); era != "" {
		parts = append(parts, "("+era+")")
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func asSentence(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	default:
		return s + "."
	}
}
