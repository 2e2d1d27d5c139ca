package storage

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"cortex/internal/core"
)

// Create atomically inserts the memory row, all typed link rows, and an
// audit entry in one transaction. Fails with a duplicate-id StorageError
// on primary-key collision; the entire batch rolls back.
func (e *Engine) Create(ctx context.Context, m *core.Memory) error {
	return e.withWriter(ctx, func(ctx context.Context) error {
		tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return &core.StorageError{Op: "create", Reason: "begin tx", Err: err}
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := insertMemoryRow(ctx, tx, m); err != nil {
			return err
		}
		if err := insertLinkRows(ctx, tx, m); err != nil {
			return err
		}
		if err := insertAuditRow(ctx, tx, m.ID, "create", ""); err != nil {
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			return &core.StorageError{Op: "create", Reason: "commit", Err: err}
		}
		e.emitAudit(ctx, m.ID, "create", "")
		return nil
	})
}

// CreateBulk inserts every memory in one all-or-nothing transaction. Any
// duplicate fails the entire batch.
func (e *Engine) CreateBulk(ctx context.Context, memories []*core.Memory) error {
	return e.withWriter(ctx, func(ctx context.Context) error {
		tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return &core.StorageError{Op: "create_bulk", Reason: "begin tx", Err: err}
		}
		defer func() { _ = tx.Rollback(ctx) }()

		for _, m := range memories {
			if err := insertMemoryRow(ctx, tx, m); err != nil {
				return err
			}
			if err := insertLinkRows(ctx, tx, m); err != nil {
				return err
			}
			if err := insertAuditRow(ctx, tx, m.ID, "create", ""); err != nil {
				return err
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return &core.StorageError{Op: "create_bulk", Reason: "commit", Err: err}
		}
		for _, m := range memories {
			e.emitAudit(ctx, m.ID, "create", "")
		}
		return nil
	})
}

// Update snapshots the prior row into the version table, applies the new
// state, then writes an audit row — all inside one transaction.
func (e *Engine) Update(ctx context.Context, m *core.Memory) error {
	return e.withWriter(ctx, func(ctx context.Context) error {
		tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return &core.StorageError{Op: "update", Reason: "begin tx", Err: err}
		}
		defer func() { _ = tx.Rollback(ctx) }()

		prior, err := getMemoryRowTx(ctx, tx, m.ID)
		if err != nil {
			return err
		}
		if err := snapshotVersion(ctx, tx, prior); err != nil {
			return err
		}
		if err := updateMemoryRow(ctx, tx, m); err != nil {
			return err
		}
		if err := insertAuditRow(ctx, tx, m.ID, "update", ""); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return &core.StorageError{Op: "update", Reason: "commit", Err: err}
		}
		e.emitAudit(ctx, m.ID, "update", "")
		return nil
	})
}

// Delete soft-deletes: writes an archive audit entry and sets
// archived=true. Rows are physically removed only by Vacuum and by
// RunRetention's long tier.
func (e *Engine) Delete(ctx context.Context, id string) error {
	return e.withWriter(ctx, func(ctx context.Context) error {
		tx, err := e.pool.BeginTx(ctx, pgx.TxOptions{})
		if err != nil {
			return &core.StorageError{Op: "delete", Reason: "begin tx", Err: err}
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if _, err := tx.Exec(ctx, `UPDATE memories SET archived = TRUE WHERE id = $1`, id); err != nil {
			return &core.StorageError{Op: "delete", Reason: "archive", Err: err}
		}
		if err := insertAuditRow(ctx, tx, id, "archive", ""); err != nil {
			return err
		}
		if err := tx.Commit(ctx); err != nil {
			return &core.StorageError{Op: "delete", Reason: "commit", Err: err}
		}
		e.emitAudit(ctx, id, "archive", "")
		return nil
	})
}

// Get fetches a single memory by id using the reader pool.
func (e *Engine) Get(ctx context.Context, id string) (*core.Memory, error) {
	row := e.pool.QueryRow(ctx, memorySelectColumns+` WHERE id = $1`, id)
	return scanMemoryRow(row)
}

// GetBulk fetches every memory whose id is in ids.
func (e *Engine) GetBulk(ctx context.Context, ids []string) ([]*core.Memory, error) {
	rows, err := e.pool.Query(ctx, memorySelectColumns+` WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, &core.StorageError{Op: "get_bulk", Reason: "query", Err: err}
	}
	defer rows.Close()
	return scanMemoryRows(rows)
}

func (e *Engine) emitAudit(ctx context.Context, memoryID, action, detail string) {
	if e.audit == nil {
		return
	}
	_ = e.audit.Record(ctx, AuditEntry{MemoryID: memoryID, Action: action, Detail: detail})
}

const memorySelectColumns = `SELECT id, memory_type, content, summary, content_hash, confidence, importance,
	transaction_time, valid_time, valid_until, last_accessed, access_count, tags, archived,
	superseded_by, supersedes, namespace, source_agent FROM memories`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemoryRow(row rowScanner) (*core.Memory, error) {
	var (
		m           core.Memory
		contentRaw  []byte
		namespaceURI string
	)
	err := row.Scan(&m.ID, &m.MemoryType, &contentRaw, &m.Summary, &m.ContentHash, &m.Confidence, &m.Importance,
		&m.TransactionTime, &m.ValidTime, &m.ValidUntil, &m.LastAccessed, &m.AccessCount, &m.Tags, &m.Archived,
		&m.SupersededBy, &m.Supersedes, &namespaceURI, &m.SourceAgent)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &core.StorageError{Op: "get", Reason: "not found", Err: core.ErrNotFound}
		}
		return nil, &core.StorageError{Op: "get", Reason: "scan", Err: err}
	}
	ns, err := core.ParseNamespaceURI(namespaceURI)
	if err != nil {
		return nil, &core.StorageError{Op: "get", Reason: "parse namespace", Err: err}
	}
	m.Namespace = ns
	content, err := decodeContent(m.MemoryType, contentRaw)
	if err != nil {
		return nil, &core.StorageError{Op: "get", Reason: "decode content", Err: err}
	}
	m.Content = content
	return &m, nil
}

type rowsScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanMemoryRows(rows rowsScanner) ([]*core.Memory, error) {
	out := make([]*core.Memory, 0)
	for rows.Next() {
		m, err := scanMemoryRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// decodeContent unmarshals raw JSONB into the TypedContent variant named
// by memoryType; the store never coerces between variants.
func decodeContent(memoryType core.MemoryType, raw []byte) (core.TypedContent, error) {
	switch memoryType {
	case core.MemoryTypeEpisodic:
		var c core.EpisodicContent
		return c, json.Unmarshal(raw, &c)
	case core.MemoryTypeTribal:
		var c core.TribalContent
		return c, json.Unmarshal(raw, &c)
	case core.MemoryTypeSemantic:
		var c core.SemanticContent
		return c, json.Unmarshal(raw, &c)
	case core.MemoryTypeCore:
		var c core.CoreContent
		return c, json.Unmarshal(raw, &c)
	case core.MemoryTypeInsight:
		var c core.InsightContent
		return c, json.Unmarshal(raw, &c)
	case core.MemoryTypeDecision:
		var c core.DecisionContent
		return c, json.Unmarshal(raw, &c)
	case core.MemoryTypePatternRationale:
		var c core.PatternRationaleContent
		return c, json.Unmarshal(raw, &c)
	case core.MemoryTypeConversation:
		var c core.ConversationContent
		return c, json.Unmarshal(raw, &c)
	default:
		return nil, &core.StorageError{Op: "decode_content", Reason: "unknown memory type " + string(memoryType)}
	}
}
