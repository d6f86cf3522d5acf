package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/legal-research-assistant/internal/core/domain"
	"github.com/kirillkom/legal-research-assistant/internal/infrastructure/resilience"
)

// EntryRepository stores curated entries in Postgres. The service reads the
// table once at startup; writes only happen through the sync tooling.
type EntryRepository struct {
	db       *sql.DB
	executor *resilience.Executor
}

func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// WithExecutor routes Load through the startup retry policy.
func (r *EntryRepository) WithExecutor(executor *resilience.Executor) *EntryRepository {
	r.executor = executor
	return r
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *EntryRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101601)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS legal_entries (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	entry_type TEXT NOT NULL,
	region TEXT NOT NULL DEFAULT '',
	era TEXT NOT NULL DEFAULT '',
	summary TEXT NOT NULL,
	excerpt TEXT NOT NULL DEFAULT '',
	keywords JSONB NOT NULL DEFAULT '[]'::jsonb,
	citations JSONB NOT NULL DEFAULT '[]'::jsonb,
	sources JSONB NOT NULL DEFAULT '[]'::jsonb,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_legal_entries_position ON legal_entries(position);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Load returns all entries in position order.
func (r *EntryRepository) Load(ctx context.Context) ([]domain.Entry, error) {
	var entries []domain.Entry
	call := func(ctx context.Context) error {
		loaded, err := r.load(ctx)
		if err != nil {
			return err
		}
		entries = loaded
		return nil
	}

	var err error
	if r.executor != nil {
		err = r.executor.ExecuteStartup(ctx, "postgres.load_entries", call, classifyPostgresError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		if classifyPostgresError(err).Retryable {
			return nil, domain.WrapError(domain.ErrTemporary, "load entries", err)
		}
		return nil, err
	}
	return entries, nil
}

func (r *EntryRepository) load(ctx context.Context) ([]domain.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, entry_type, region, era, summary, excerpt, keywords, citations, sources
FROM legal_entries
ORDER BY position ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("query legal entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var entry domain.Entry
		var keywordsRaw, citationsRaw, sourcesRaw []byte
		if err := rows.Scan(
			&entry.ID, &entry.Title, &entry.Type, &entry.Region, &entry.Era, &entry.Summary, &entry.Excerpt,
			&keywordsRaw, &citationsRaw, &sourcesRaw,
		); err != nil {
			return nil, fmt.Errorf("scan legal entry: %w", err)
		}
		if err := json.Unmarshal(keywordsRaw, &entry.Keywords); err != nil {
			return nil, fmt.Errorf("unmarshal keywords of %s: %w", entry.ID, err)
		}
		if err := json.Unmarshal(citationsRaw, &entry.Citations); err != nil {
			return nil, fmt.Errorf("unmarshal citations of %s: %w", entry.ID, err)
		}
		if err := json.Unmarshal(sourcesRaw, &entry.Sources); err != nil {
			return nil, fmt.Errorf("unmarshal sources of %s: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate legal entries: %w", err)
	}
	return entries, nil
}

// ReplaceAll swaps the table contents for entries in one transaction.
func (r *EntryRepository) ReplaceAll(ctx context.Context, entries []domain.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sync tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM legal_entries`); err != nil {
		return fmt.Errorf("clear legal entries: %w", err)
	}

	now := time.Now().UTC()
	for i, entry := range entries {
		keywords, err := marshalList(entry.Keywords)
		if err != nil {
			return fmt.Errorf("marshal keywords of %s: %w", entry.ID, err)
		}
		citations, err := marshalList(entry.Citations)
		if err != nil {
			return fmt.Errorf("marshal citations of %s: %w", entry.ID, err)
		}
		sources, err := json.Marshal(entry.Sources)
		if err != nil {
			return fmt.Errorf("marshal sources of %s: %w", entry.ID, err)
		}
		if entry.Sources == nil {
			sources = []byte("[]")
		}

		_, err = tx.ExecContext(ctx, `
INSERT INTO legal_entries (
	id, position, title, entry_type, region, era, summary, excerpt, keywords, citations, sources, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
`,
			entry.ID, i, entry.Title, entry.Type, entry.Region, entry.Era, entry.Summary, entry.Excerpt,
			keywords, citations, sources, now,
		)
		if err != nil {
			return fmt.Errorf("insert legal entry %s: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit sync tx: %w", err)
	}
	return nil
}

func marshalList(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}

func classifyPostgresError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
