package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kirillkom/legal-research-assistant/internal/config"
	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
	"github.com/kirillkom/legal-research-assistant/internal/core/knowledge"
	"github.com/kirillkom/legal-research-assistant/internal/core/ports"
	"github.com/kirillkom/legal-research-assistant/internal/core/usecase"
	"github.com/kirillkom/legal-research-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/legal-research-assistant/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/legal-research-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/legal-research-assistant/internal/infrastructure/source/xlsx"
	"github.com/kirillkom/legal-research-assistant/internal/infrastructure/source/yamlfile"
)

type Options struct {
	// ClientName identifies the process towards NATS.
	ClientName string
	Logger     *slog.Logger
	// DisableEvents skips connecting to NATS even when NATS_URL is set.
	DisableEvents bool
	StateObserver resilience.StateObserver
}

type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Knowledge *knowledge.Base

	Research ports.LegalResearchService
	Entries  ports.EntryReader
	AskUC    *usecase.AskUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	executor := resilience.NewExecutor(cfg.ResilienceConfig()).
		WithLogger(logger).
		WithStateObserver(opts.StateObserver)

	base, err := LoadKnowledgeBase(ctx, cfg, executor)
	if err != nil {
		return nil, err
	}
	logger.Info("knowledge_base_loaded",
		"source", cfg.KnowledgeSource,
		"entries", base.Len(),
		"by_type", base.CountByType(),
	)

	var (
		publisher ports.QueryEventPublisher
		closeFn   = func() {}
	)
	if cfg.NATSURL != "" && !opts.DisableEvents {
		queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ClientName:         opts.ClientName,
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			return nil, fmt.Errorf("init query event queue: %w", err)
		}
		publisher = queue
		closeFn = queue.Close
	}

	research := usecase.NewResearchUseCase(base, nil, nil, cfg.ScoringConfig())
	askUC := usecase.NewAskUseCase(research, publisher, cfg.LegalTopK, cfg.LegalMaxLimit).WithLogger(logger)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Knowledge: base,
		Research:  research,
		Entries:   research,
		AskUC:     askUC,
		closeFn:   closeFn,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// LoadKnowledgeBase reads entries from the configured source and validates
// them into an immutable base.
func LoadKnowledgeBase(ctx context.Context, cfg config.Config, executor *resilience.Executor) (*knowledge.Base, error) {
	source, closeSource, err := OpenKnowledgeSource(cfg, executor)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	entries, err := source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load knowledge source %s: %w", cfg.KnowledgeSource, err)
	}
	base, err := knowledge.New(entries)
	if err != nil {
		return nil, fmt.Errorf("build knowledge base from %s: %w", cfg.KnowledgeSource, err)
	}
	return base, nil
}

// OpenKnowledgeSource returns the source selected by KB_SOURCE and a close
// function releasing its resources.
func OpenKnowledgeSource(cfg config.Config, executor *resilience.Executor) (ports.KnowledgeSource, func(), error) {
	noop := func() {}
	switch cfg.KnowledgeSource {
	case config.SourceEmbedded, "":
		return yamlfile.Embedded(), noop, nil
	case config.SourceYAML:
		if cfg.KnowledgePath == "" {
			return nil, noop, domain.WrapError(domain.ErrInvalidInput, "open knowledge source", fmt.Errorf("KB_PATH is required for source %q", cfg.KnowledgeSource))
		}
		return yamlfile.New(cfg.KnowledgePath), noop, nil
	case config.SourceXLSX:
		if cfg.KnowledgePath == "" {
			return nil, noop, domain.WrapError(domain.ErrInvalidInput, "open knowledge source", fmt.Errorf("KB_PATH is required for source %q", cfg.KnowledgeSource))
		}
		return xlsx.New(cfg.KnowledgePath, cfg.KnowledgeSheet), noop, nil
	case config.SourcePostgres:
		repo, db, err := OpenEntryRepository(cfg, executor)
		if err != nil {
			return nil, noop, err
		}
		return repo, func() { _ = db.Close() }, nil
	default:
		return nil, noop, domain.WrapError(domain.ErrInvalidInput, "open knowledge source", fmt.Errorf("unknown KB_SOURCE %q", cfg.KnowledgeSource))
	}
}

// OpenEntryRepository connects to Postgres. The caller closes the returned db.
func OpenEntryRepository(cfg config.Config, executor *resilience.Executor) (*postgres.EntryRepository, *sql.DB, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	return postgres.NewEntryRepository(db).WithExecutor(executor), db, nil
}
