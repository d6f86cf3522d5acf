// Package cli implements the legalctl command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirillkom/legal-research-assistant/internal/adapters/payload"
	"github.com/kirillkom/legal-research-assistant/internal/bootstrap"
	"github.com/kirillkom/legal-research-assistant/internal/config"
	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
	"github.com/kirillkom/legal-research-assistant/internal/core/knowledge"
	"github.com/kirillkom/legal-research-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/legal-research-assistant/internal/infrastructure/source/xlsx"
	"github.com/kirillkom/legal-research-assistant/internal/infrastructure/source/yamlfile"
)

// NewRootCommand builds legalctl. loadConfig is called lazily by each
// subcommand so flags can override it.
func NewRootCommand(loadConfig func() config.Config, logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "legalctl",
		Short:         "Query and maintain the legal research knowledge base",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var (
		source string
		path   string
	)
	root.PersistentFlags().StringVar(&source, "source", "", "knowledge source override: embedded, yaml, xlsx or postgres")
	root.PersistentFlags().StringVar(&path, "path", "", "knowledge file override for yaml and xlsx sources")

	resolve := func() config.Config {
		cfg := loadConfig()
		if source != "" {
			cfg.KnowledgeSource = strings.ToLower(source)
		}
		if path != "" {
			cfg.KnowledgePath = path
		}
		return cfg
	}

	root.AddCommand(
		newAskCommand(resolve, logger),
		newCheckCommand(resolve, logger),
		newSyncPostgresCommand(resolve, logger),
		newExportCommand(resolve, logger),
	)
	return root
}

func newAskCommand(resolve func() config.Config, logger *slog.Logger) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer a legal question and print the JSON payload",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New(cmd.Context(), resolve(), bootstrap.Options{
				Logger:        logger,
				DisableEvents: true,
			})
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.AskUC.Ask(cmd.Context(), domain.AskRequest{
				Question: strings.Join(args, " "),
				Limit:    limit,
				Channel:  domain.ChannelCLI,
			})
			if err != nil {
				return err
			}
			return writeIndentedJSON(cmd.OutOrStdout(), payload.NewQueryResponse(res, time.Now()))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of results (default from LEGAL_TOP_K)")
	return cmd
}

func newCheckCommand(resolve func() config.Config, logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the configured knowledge source and report its integrity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := resolve()
			base, err := bootstrap.LoadKnowledgeBase(cmd.Context(), cfg, newExecutor(cfg, logger))
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), cfg.KnowledgeSource, base)
		},
	}
}

func newSyncPostgresCommand(resolve func() config.Config, logger *slog.Logger) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "sync-postgres",
		Short: "Replace the Postgres knowledge table with entries from another source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := resolve()
			srcCfg := cfg
			srcCfg.KnowledgeSource = strings.ToLower(from)
			if srcCfg.KnowledgeSource == config.SourcePostgres {
				return domain.WrapError(domain.ErrInvalidInput, "sync-postgres", fmt.Errorf("--from must not be postgres"))
			}

			executor := newExecutor(cfg, logger)
			base, err := bootstrap.LoadKnowledgeBase(cmd.Context(), srcCfg, executor)
			if err != nil {
				return err
			}

			repo, db, err := bootstrap.OpenEntryRepository(cfg, executor)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repo.EnsureSchema(cmd.Context()); err != nil {
				return err
			}
			if err := repo.ReplaceAll(cmd.Context(), base.Entries()); err != nil {
				return err
			}
			logger.Info("postgres_synced", "from", srcCfg.KnowledgeSource, "entries", base.Len())
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "synced %d entries from %s\n", base.Len(), srcCfg.KnowledgeSource)
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", config.SourceEmbedded, "source to copy from: embedded, yaml or xlsx")
	return cmd
}

func newExportCommand(resolve func() config.Config, logger *slog.Logger) *cobra.Command {
	var (
		format string
		sheet  string
	)
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write the configured knowledge base to a YAML or XLSX file for editing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := resolve()
			base, err := bootstrap.LoadKnowledgeBase(cmd.Context(), cfg, newExecutor(cfg, logger))
			if err != nil {
				return err
			}
			return exportBase(args[0], format, sheet, base)
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or xlsx")
	cmd.Flags().StringVar(&sheet, "sheet", xlsx.DefaultSheet, "sheet name for xlsx output")
	return cmd
}

func exportBase(path, format, sheet string, base *knowledge.Base) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		raw, err := yamlfile.Encode(base.Entries())
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, raw, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		return nil
	case "xlsx":
		return xlsx.Write(path, sheet, base.Entries())
	default:
		return domain.WrapError(domain.ErrInvalidInput, "export", fmt.Errorf("unknown format %q", format))
	}
}

type integrityReport struct {
	Source      string         `json:"source"`
	Entries     int            `json:"entries"`
	ByType      map[string]int `json:"byType"`
	NoCitations []string       `json:"entriesWithoutCitations"`
	NoSources   []string       `json:"entriesWithoutSources"`
	NoExcerpt   []string       `json:"entriesWithoutExcerpt"`
}

func writeReport(w io.Writer, source string, base *knowledge.Base) error {
	report := integrityReport{
		Source:      source,
		Entries:     base.Len(),
		ByType:      base.CountByType(),
		NoCitations: []string{},
		NoSources:   []string{},
		NoExcerpt:   []string{},
	}
	for _, entry := range base.Entries() {
		if len(entry.Citations) == 0 {
			report.NoCitations = append(report.NoCitations, entry.ID)
		}
		if len(entry.Sources) == 0 {
			report.NoSources = append(report.NoSources, entry.ID)
		}
		if strings.TrimSpace(entry.Excerpt) == "" {
			report.NoExcerpt = append(report.NoExcerpt, entry.ID)
		}
	}
	sort.Strings(report.NoCitations)
	sort.Strings(report.NoSources)
	sort.Strings(report.NoExcerpt)
	return writeIndentedJSON(w, report)
}

func newExecutor(cfg config.Config, logger *slog.Logger) *resilience.Executor {
	return resilience.NewExecutor(cfg.ResilienceConfig()).WithLogger(logger)
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the command tree with ctx.
func Execute(ctx context.Context, root *cobra.Command, args []string) error {
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}
