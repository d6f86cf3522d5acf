// Package knowledge holds the process-wide legal knowledge base.
package knowledge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

var knownTypes = map[string]struct{}{
	domain.EntryTypeDefinition: {},
	domain.EntryTypeDoctrine:   {},
	domain.EntryTypeStatute:    {},
	domain.EntryTypeCase:       {},
}

// Base is an immutable registry of entries in load order. It is safe for
// concurrent use because nothing writes to it after New returns.
type Base struct {
	entries []domain.Entry
	byID    map[string]int
}

// New validates entries and builds the registry. Entries are copied, so later
// changes to the input slice do not leak into the base.
func New(entries []domain.Entry) (*Base, error) {
	if len(entries) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidKnowledgeBase, "knowledge.new", errors.New("no entries"))
	}

	b := &Base{
		entries: make([]domain.Entry, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	for i, entry := range entries {
		if err := validateEntry(entry); err != nil {
			return nil, domain.WrapError(domain.ErrInvalidKnowledgeBase, "knowledge.new", fmt.Errorf("entry #%d: %w", i, err))
		}
		if _, dup := b.byID[entry.ID]; dup {
			return nil, domain.WrapError(domain.ErrInvalidKnowledgeBase, "knowledge.new", fmt.Errorf("duplicate id %q", entry.ID))
		}
		b.byID[entry.ID] = len(b.entries)
		b.entries = append(b.entries, cloneEntry(entry))
	}
	return b, nil
}

func validateEntry(entry domain.Entry) error {
	if strings.TrimSpace(entry.ID) == "" {
		return errors.New("id is required")
	}
	if entry.ID != strings.TrimSpace(entry.ID) {
		return fmt.Errorf("id %q has surrounding whitespace", entry.ID)
	}
	if strings.TrimSpace(entry.Title) == "" {
		return fmt.Errorf("entry %q: title is required", entry.ID)
	}
	if _, ok := knownTypes[entry.Type]; !ok {
		return fmt.Errorf("entry %q: unknown type %q", entry.ID, entry.Type)
	}
	if strings.TrimSpace(entry.Summary) == "" {
		return fmt.Errorf("entry %q: summary is required", entry.ID)
	}
	for _, src := range entry.Sources {
		if strings.TrimSpace(src.Label) == "" {
			return fmt.Errorf("entry %q: source label is required", entry.ID)
		}
	}
	return nil
}

func cloneEntry(entry domain.Entry) domain.Entry {
	out := entry
	out.Keywords = append(make([]string, 0, len(entry.Keywords)), entry.Keywords...)
	out.Citations = append(make([]string, 0, len(entry.Citations)), entry.Citations...)
	out.Sources = append(make([]domain.Source, 0, len(entry.Sources)), entry.Sources...)
	return out
}

// Entries returns deep copies of the entries in load order.
func (b *Base) Entries() []domain.Entry {
	out := make([]domain.Entry, len(b.entries))
	for i, entry := range b.entries {
		out[i] = cloneEntry(entry)
	}
	return out
}

func (b *Base) Get(id string) (domain.Entry, bool) {
	idx, ok := b.byID[id]
	if !ok {
		return domain.Entry{}, false
	}
	return cloneEntry(b.entries[idx]), true
}

// Position reports the load-order index of id, or -1.
func (b *Base) Position(id string) int {
	idx, ok := b.byID[id]
	if !ok {
		return -1
	}
	return idx
}

func (b *Base) Len() int {
	return len(b.entries)
}

// CountByType is used for startup logging and the integrity report.
func (b *Base) CountByType() map[string]int {
	out := make(map[string]int, len(knownTypes))
	for _, entry := range b.entries {
		out[entry.Type]++
	}
	return out
}
