package storage

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"cortex/internal/core"
)

// txQuerier is satisfied by pgx.Tx; narrowed here so helpers don't need
// to import the concrete pgx.Tx type everywhere.
type txQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgx.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func insertMemoryRow(ctx context.Context, tx txQuerier, m *core.Memory) error {
	contentJSON, err := json.Marshal(m.Content)
	if err != nil {
		return &core.StorageError{Op: "create", Reason: "marshal content", Err: err}
	}
	hash, err := core.ContentHash(m.Content)
	if err != nil {
		return &core.StorageError{Op: "create", Reason: "hash content", Err: err}
	}
	m.ContentHash = hash

	_, err = tx.Exec(ctx, `INSERT INTO memories
		(id, memory_type, content, summary, content_hash, confidence, importance,
		 transaction_time, valid_time, valid_until, last_accessed, access_count, tags, archived,
		 superseded_by, supersedes, namespace, source_agent)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		m.ID, m.MemoryType, contentJSON, m.Summary, m.ContentHash, m.Confidence, m.Importance,
		m.TransactionTime, m.ValidTime, m.ValidUntil, m.LastAccessed, m.AccessCount, m.Tags, m.Archived,
		m.SupersededBy, m.Supersedes, m.Namespace.URI(), m.SourceAgent,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.NewDuplicateIDError("create", m.ID)
		}
		return &core.StorageError{Op: "create", Reason: "insert memory row", Err: err}
	}
	return nil
}

func updateMemoryRow(ctx context.Context, tx txQuerier, m *core.Memory) error {
	contentJSON, err := json.Marshal(m.Content)
	if err != nil {
		return &core.StorageError{Op: "update", Reason: "marshal content", Err: err}
	}
	hash, err := core.ContentHash(m.Content)
	if err != nil {
		return &core.StorageError{Op: "update", Reason: "hash content", Err: err}
	}
	m.ContentHash = hash

	_, err = tx.Exec(ctx, `UPDATE memories SET
		content=$2, summary=$3, content_hash=$4, confidence=$5, importance=$6,
		valid_until=$7, last_accessed=$8, access_count=$9, tags=$10, archived=$11,
		superseded_by=$12, supersedes=$13, namespace=$14
		WHERE id=$1`,
		m.ID, contentJSON, m.Summary, m.ContentHash, m.Confidence, m.Importance,
		m.ValidUntil, m.LastAccessed, m.AccessCount, m.Tags, m.Archived,
		m.SupersededBy, m.Supersedes, m.Namespace.URI(),
	)
	if err != nil {
		return &core.StorageError{Op: "update", Reason: "update memory row", Err: err}
	}
	return nil
}

func getMemoryRowTx(ctx context.Context, tx txQuerier, id string) (*core.Memory, error) {
	row := tx.QueryRow(ctx, memorySelectColumns+` WHERE id = $1`, id)
	return scanMemoryRow(row)
}

func snapshotVersion(ctx context.Context, tx txQuerier, prior *core.Memory) error {
	snap, err := json.Marshal(prior)
	if err != nil {
		return &core.StorageError{Op: "update", Reason: "marshal snapshot", Err: err}
	}
	_, err = tx.Exec(ctx, `INSERT INTO memory_versions (memory_id, snapshot) VALUES ($1, $2)`, prior.ID, snap)
	if err != nil {
		return &core.StorageError{Op: "update", Reason: "snapshot version", Err: err}
	}
	return nil
}

func insertAuditRow(ctx context.Context, tx txQuerier, memoryID, action, detail string) error {
	_, err := tx.Exec(ctx, `INSERT INTO audit_log (memory_id, action, detail) VALUES ($1, $2, $3)`, memoryID, action, detail)
	if err != nil {
		return &core.StorageError{Op: action, Reason: "audit row", Err: err}
	}
	return nil
}

func insertLinkRows(ctx context.Context, tx txQuerier, m *core.Memory) error {
	for _, p := range m.LinkedPatterns {
		if _, err := tx.Exec(ctx, `INSERT INTO pattern_links (memory_id, pattern) VALUES ($1,$2) ON CONFLICT DO NOTHING`, m.ID, p); err != nil {
			return &core.StorageError{Op: "create", Reason: "pattern link", Err: err}
		}
	}
	for _, c := range m.LinkedConstraints {
		if _, err := tx.Exec(ctx, `INSERT INTO constraint_links (memory_id, constraint_name) VALUES ($1,$2) ON CONFLICT DO NOTHING`, m.ID, c); err != nil {
			return &core.StorageError{Op: "create", Reason: "constraint link", Err: err}
		}
	}
	for _, f := range m.LinkedFiles {
		if _, err := tx.Exec(ctx, `INSERT INTO file_links (memory_id, path, line_start, line_end, content_hash) VALUES ($1,$2,$3,$4,$5) ON CONFLICT DO NOTHING`,
			m.ID, f.Path, f.LineStart, f.LineEnd, f.ContentHash); err != nil {
			return &core.StorageError{Op: "create", Reason: "file link", Err: err}
		}
	}
	for _, fn := range m.LinkedFunctions {
		if _, err := tx.Exec(ctx, `INSERT INTO function_links (memory_id, function_name) VALUES ($1,$2) ON CONFLICT DO NOTHING`, m.ID, fn); err != nil {
			return &core.StorageError{Op: "create", Reason: "function link", Err: err}
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique_violation
// (SQLSTATE 23505), surfaced by pgx as a *pgconn.PgError.
func isUniqueViolation(err error) bool {
	type pgCode interface{ SQLState() string }
	if pe, ok := err.(pgCode); ok {
		return pe.SQLState() == "23505"
	}
	return false
}
