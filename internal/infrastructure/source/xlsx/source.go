// Package xlsx loads knowledge-base entries from a spreadsheet maintained by
// editors. The first row is a header; columns are matched by name.
//
// Multi-valued cells (keywords, citations, sources) separate items with "|".
// A source item is written as "Label <https://url>"; the URL part is optional.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
)

const listSeparator = "|"

var Columns = []string{"id", "title", "type", "region", "era", "summary", "excerpt", "keywords", "citations", "sources"}

// DefaultSheet names the sheet Write creates when none is given.
const DefaultSheet = "entries"

type Source struct {
	path  string
	sheet string
}

// New reads path. An empty sheet selects the first sheet of the workbook.
func New(path, sheet string) *Source {
	return &Source{path: path, sheet: sheet}
}

func (s *Source) Load(_ context.Context) ([]domain.Entry, error) {
	if s.path == "" {
		return nil, domain.WrapError(domain.ErrInvalidKnowledgeBase, "xlsx load", errors.New("path is required"))
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return parseRows(rows)
}

func parseRows(rows [][]string) ([]domain.Entry, error) {
	if len(rows) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidKnowledgeBase, "xlsx parse", errors.New("sheet is empty"))
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"id", "title", "type", "summary"} {
		if _, ok := index[required]; !ok {
			return nil, domain.WrapError(domain.ErrInvalidKnowledgeBase, "xlsx parse", fmt.Errorf("missing column %q", required))
		}
	}

	entries := make([]domain.Entry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cell := func(column string) string {
			i, ok := index[column]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if cell("id") == "" && cell("title") == "" {
			continue
		}
		entries = append(entries, domain.Entry{
			ID:        cell("id"),
			Title:     cell("title"),
			Type:      strings.ToLower(cell("type")),
			Region:    cell("region"),
			Era:       cell("era"),
			Summary:   cell("summary"),
			Excerpt:   cell("excerpt"),
			Keywords:  splitList(cell("keywords")),
			Citations: splitList(cell("citations")),
			Sources:   parseSources(cell("sources")),
		})
	}
	return entries, nil
}

func splitList(value string) []string {
	out := []string{}
	for _, item := range strings.Split(value, listSeparator) {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseSources(value string) []domain.Source {
	items := splitList(value)
	out := make([]domain.Source, 0, len(items))
	for _, item := range items {
		src := domain.Source{Label: item}
		if open := strings.LastIndex(item, "<"); open >= 0 && strings.HasSuffix(item, ">") {
			src.Label = strings.TrimSpace(item[:open])
			src.URL = strings.TrimSpace(item[open+1 : len(item)-1])
		}
		out = append(out, src)
	}
	return out
}

// Write stores entries in the layout Load reads, on a sheet named sheet.
func Write(path, sheet string, entries []domain.Entry) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if sheet == "" {
		sheet = DefaultSheet
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, e := range entries {
		sources := make([]string, 0, len(e.Sources))
		for _, src := range e.Sources {
			if src.URL == "" {
				sources = append(sources, src.Label)
				continue
			}
			sources = append(sources, fmt.Sprintf("%s <%s>", src.Label, src.URL))
		}
		row := []interface{}{
			e.ID, e.Title, e.Type, e.Region, e.Era, e.Summary, e.Excerpt,
			strings.Join(e.Keywords, " "+listSeparator+" "),
			strings.Join(e.Citations, " "+listSeparator+" "),
			strings.Join(sources, " "+listSeparator+" "),
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
