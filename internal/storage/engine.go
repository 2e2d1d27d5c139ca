// Package storage implements the persistence engine (C5): a single
// writer connection guarded by a mutex, a bounded reader pool, migrations,
// transactional CRUD, full-text and vector indexes, audit, version
// history, and retention. Backed by PostgreSQL via jackc/pgx.
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"cortex/internal/core"
)

// Options configures the engine's pools and tuning knobs, with defaults
// matching spec.md §6's configuration table.
type Options struct {
	DSN               string
	ReaderPoolSize    int32
	WriterTimeout     time.Duration
	RetentionShort    time.Duration
	RetentionMedium   time.Duration
	RetentionLong     time.Duration
	VectorDimensions  int
}

// DefaultOptions returns the spec's configuration defaults.
func DefaultOptions(dsn string) Options {
	return Options{
		DSN:              dsn,
		ReaderPoolSize:   4,
		WriterTimeout:    5 * time.Second,
		RetentionShort:   30 * 24 * time.Hour,
		RetentionMedium:  90 * 24 * time.Hour,
		RetentionLong:    365 * 24 * time.Hour,
		VectorDimensions: 1024,
	}
}

// Engine owns one writer connection (serialized by writerMu, mirroring
// the spec's single-logical-writer discipline even though Postgres
// itself permits concurrent writers) and a bounded reader pool. Readers
// and the writer share the same underlying pgxpool.Pool; the writer
// path simply never runs concurrently with itself.
type Engine struct {
	pool      *pgxpool.Pool
	writerMu  sync.Mutex
	opts      Options
	audit     AuditSink
	vectorIdx VectorIndex

	seqMu       sync.Mutex
	seqCounters map[string]uint64
}

// Open connects to Postgres, verifies connectivity, and runs all
// migrations. Re-opening an already-migrated database is idempotent.
func Open(ctx context.Context, opts Options) (*Engine, error) {
	poolCfg, err := pgxpool.ParseConfig(opts.DSN)
	if err != nil {
		return nil, &core.StorageError{Op: "open", Reason: "parse dsn", Err: err}
	}
	if opts.ReaderPoolSize > 0 {
		poolCfg.MaxConns = opts.ReaderPoolSize + 1 // + 1 for the writer
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, &core.StorageError{Op: "open", Reason: "connect", Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, &core.StorageError{Op: "open", Reason: "ping", Err: err}
	}

	e := &Engine{pool: pool, opts: opts}
	if err := e.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info().Str("component", "storage").Msg("engine opened and migrated")
	return e, nil
}

// SetAuditSink wires an additional audit destination (e.g. ClickHouse)
// that receives every audit entry alongside the transactional Postgres
// audit row.
func (e *Engine) SetAuditSink(sink AuditSink) { e.audit = sink }

// SetVectorIndex wires an external vector index (e.g. Qdrant) used in
// place of the in-database pgvector column for search_vector.
func (e *Engine) SetVectorIndex(idx VectorIndex) { e.vectorIdx = idx }

// Close releases the pool and any wired external sinks.
func (e *Engine) Close() error {
	e.pool.Close()
	if e.audit != nil {
		return e.audit.Close()
	}
	return nil
}

// withWriter serializes mutation through the single logical writer,
// matching spec.md §5's "writes against the storage engine are totally
// ordered by the writer lock."
func (e *Engine) withWriter(ctx context.Context, fn func(ctx context.Context) error) error {
	done := make(chan struct{})
	var fnErr error
	go func() {
		e.writerMu.Lock()
		defer e.writerMu.Unlock()
		fnErr = fn(ctx)
		close(done)
	}()

	timeout := e.opts.WriterTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	select {
	case <-done:
		return fnErr
	case <-time.After(timeout):
		return core.NewBusyError("with_writer")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) migrate(ctx context.Context) error {
	for i, m := range migrations {
		if _, err := e.pool.Exec(ctx, m); err != nil {
			return &core.StorageError{Op: fmt.Sprintf("migrate[%d]", i), Reason: "apply migration", Err: err}
		}
	}
	return nil
}

// migrations is a numbered, append-only list. Every statement uses
// IF NOT EXISTS / ADD COLUMN IF NOT EXISTS so re-applying the full list
// on every Open is a no-op once applied, grounded on the teacher's
// EnsureAgenticMemoryTable/EnsureEnhancedMemoryTables migration style.
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS memories (
		id TEXT PRIMARY KEY,
		memory_type TEXT NOT NULL,
		content JSONB NOT NULL,
		summary TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		importance INT NOT NULL,
		transaction_time TIMESTAMPTZ NOT NULL,
		valid_time TIMESTAMPTZ NOT NULL,
		valid_until TIMESTAMPTZ,
		last_accessed TIMESTAMPTZ,
		access_count BIGINT NOT NULL DEFAULT 0,
		tags TEXT[] NOT NULL DEFAULT '{}',
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		superseded_by TEXT,
		supersedes TEXT,
		namespace TEXT NOT NULL,
		source_agent TEXT NOT NULL,
		summary_tsv tsvector GENERATED ALWAYS AS (to_tsvector('english', summary)) STORED
	)`,
	`CREATE INDEX IF NOT EXISTS memories_summary_fts_idx ON memories USING GIN (summary_tsv)`,
	`CREATE INDEX IF NOT EXISTS memories_type_idx ON memories (memory_type)`,
	`CREATE INDEX IF NOT EXISTS memories_namespace_idx ON memories (namespace)`,
	`ALTER TABLE memories ADD COLUMN IF NOT EXISTS embedding vector(1024)`,
	`CREATE INDEX IF NOT EXISTS memories_embedding_idx ON memories USING ivfflat (embedding vector_cosine_ops)`,
	`CREATE TABLE IF NOT EXISTS memory_versions (
		id BIGSERIAL PRIMARY KEY,
		memory_id TEXT NOT NULL REFERENCES memories(id),
		snapshot JSONB NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS memory_versions_memory_id_idx ON memory_versions (memory_id)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id BIGSERIAL PRIMARY KEY,
		memory_id TEXT NOT NULL,
		action TEXT NOT NULL,
		detail TEXT,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS relationship_edges (
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		type TEXT NOT NULL,
		strength DOUBLE PRECISION NOT NULL,
		evidence TEXT[] NOT NULL DEFAULT '{}',
		PRIMARY KEY (source_id, target_id, type)
	)`,
	`CREATE TABLE IF NOT EXISTS causal_edges (
		source_id TEXT NOT NULL,
		target_id TEXT NOT NULL,
		relation TEXT NOT NULL,
		strength DOUBLE PRECISION NOT NULL,
		evidence JSONB NOT NULL DEFAULT '[]',
		source_agent TEXT,
		PRIMARY KEY (source_id, target_id)
	)`,
	`CREATE TABLE IF NOT EXISTS pattern_links (memory_id TEXT NOT NULL, pattern TEXT NOT NULL, PRIMARY KEY (memory_id, pattern))`,
	`CREATE TABLE IF NOT EXISTS constraint_links (memory_id TEXT NOT NULL, constraint_name TEXT NOT NULL, PRIMARY KEY (memory_id, constraint_name))`,
	`CREATE TABLE IF NOT EXISTS file_links (
		memory_id TEXT NOT NULL,
		path TEXT NOT NULL,
		line_start INT,
		line_end INT,
		content_hash TEXT,
		PRIMARY KEY (memory_id, path)
	)`,
	`CREATE TABLE IF NOT EXISTS function_links (memory_id TEXT NOT NULL, function_name TEXT NOT NULL, PRIMARY KEY (memory_id, function_name))`,
}
