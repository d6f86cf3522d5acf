package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/legal-research-assistant/internal/config"
	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
	"github.com/kirillkom/legal-research-assistant/internal/infrastructure/resilience"
)

func embeddedConfig() config.Config {
	return config.Config{
		KnowledgeSource: config.SourceEmbedded,
		LegalTopK:       5,
		LegalMaxLimit:   20,
	}
}

func TestNewBuildsAppFromEmbeddedSeed(t *testing.T) {
	app, err := New(context.Background(), embeddedConfig(), Options{})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer app.Close()

	if app.Knowledge.Len() < 20 {
		t.Fatalf("expected seed knowledge base, got %d entries", app.Knowledge.Len())
	}
	res, err := app.AskUC.Ask(context.Background(), domain.AskRequest{Question: "champerty", Channel: domain.ChannelCLI})
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if len(res.Results) == 0 || res.Results[0].ID != "champerty" {
		t.Fatalf("expected champerty first, got %+v", res.Results)
	}
	if _, err := app.Entries.Entry("barratry"); err != nil {
		t.Fatalf("expected barratry entry: %v", err)
	}
}

func TestLoadKnowledgeBaseFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.yaml")
	raw := `entries:
  - id: laches
    title: Laches
    type: doctrine
    region: United States
    era: Modern
    summary: Unreasonable delay bars an equitable claim.
    excerpt: Equity aids the vigilant.
    keywords: [delay, equity]
    citations: []
    sources: []
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write kb: %v", err)
	}
	cfg := embeddedConfig()
	cfg.KnowledgeSource = config.SourceYAML
	cfg.KnowledgePath = path

	base, err := LoadKnowledgeBase(context.Background(), cfg, resilience.NewExecutor(resilience.DefaultConfig()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if base.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", base.Len())
	}
}

func TestOpenKnowledgeSourceRejectsBadSelection(t *testing.T) {
	cases := []config.Config{
		{KnowledgeSource: "mongo"},
		{KnowledgeSource: config.SourceYAML},
		{KnowledgeSource: config.SourceXLSX},
	}
	for _, cfg := range cases {
		_, closeFn, err := OpenKnowledgeSource(cfg, nil)
		closeFn()
		if !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Fatalf("source %q: expected invalid input, got %v", cfg.KnowledgeSource, err)
		}
	}
}

func TestLoadKnowledgeBaseRejectsDuplicateIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.yaml")
	raw := `entries:
  - {id: a, title: A, type: definition, summary: first}
  - {id: a, title: B, type: definition, summary: second}
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write kb: %v", err)
	}
	cfg := config.Config{KnowledgeSource: config.SourceYAML, KnowledgePath: path}

	_, err := LoadKnowledgeBase(context.Background(), cfg, nil)
	if !domain.IsKind(err, domain.ErrInvalidKnowledgeBase) {
		t.Fatalf("expected invalid knowledge base, got %v", err)
	}
}
