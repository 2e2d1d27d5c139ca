package storage

import (
	"context"

	"cortex/internal/core"
)

// AddRelationship inserts or replaces a relationship edge.
func (e *Engine) AddRelationship(ctx context.Context, r core.RelationshipEdge) error {
	return e.withWriter(ctx, func(ctx context.Context) error {
		_, err := e.pool.Exec(ctx, `INSERT INTO relationship_edges (source_id, target_id, type, strength, evidence)
			VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (source_id, target_id, type) DO UPDATE SET strength = EXCLUDED.strength, evidence = EXCLUDED.evidence`,
			r.SourceID, r.TargetID, r.Type, r.Strength, r.Evidence)
		if err != nil {
			return &core.StorageError{Op: "add_relationship", Reason: "insert", Err: err}
		}
		return nil
	})
}

// RemoveRelationship deletes an edge of the given type between two memories.
func (e *Engine) RemoveRelationship(ctx context.Context, sourceID, targetID string, t core.RelationshipType) error {
	return e.withWriter(ctx, func(ctx context.Context) error {
		_, err := e.pool.Exec(ctx, `DELETE FROM relationship_edges WHERE source_id=$1 AND target_id=$2 AND type=$3`,
			sourceID, targetID, t)
		if err != nil {
			return &core.StorageError{Op: "remove_relationship", Reason: "delete", Err: err}
		}
		return nil
	})
}

// GetRelationships returns every relationship edge from memoryID,
// optionally filtered by type.
func (e *Engine) GetRelationships(ctx context.Context, memoryID string, t *core.RelationshipType) ([]core.RelationshipEdge, error) {
	var rows rowsIface
	var err error
	if t != nil {
		rows, err = e.pool.Query(ctx, `SELECT source_id, target_id, type, strength, evidence FROM relationship_edges WHERE source_id=$1 AND type=$2`, memoryID, *t)
	} else {
		rows, err = e.pool.Query(ctx, `SELECT source_id, target_id, type, strength, evidence FROM relationship_edges WHERE source_id=$1`, memoryID)
	}
	if err != nil {
		return nil, &core.StorageError{Op: "get_relationships", Reason: "query", Err: err}
	}
	defer rows.Close()

	out := make([]core.RelationshipEdge, 0)
	for rows.Next() {
		var r core.RelationshipEdge
		if err := rows.Scan(&r.SourceID, &r.TargetID, &r.Type, &r.Strength, &r.Evidence); err != nil {
			return nil, &core.StorageError{Op: "get_relationships", Reason: "scan", Err: err}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowsIface interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// AddPatternLink, AddConstraintLink, AddFileLink, AddFunctionLink add one
// typed link row each, outside of the create/update transaction (used
// for incremental linking after ingest).
func (e *Engine) AddPatternLink(ctx context.Context, memoryID, pattern string) error {
	return e.withWriter(ctx, func(ctx context.Context) error {
		_, err := e.pool.Exec(ctx, `INSERT INTO pattern_links (memory_id, pattern) VALUES ($1,$2) ON CONFLICT DO NOTHING`, memoryID, pattern)
		return wrapStorageErr("add_pattern_link", err)
	})
}

func (e *Engine) AddConstraintLink(ctx context.Context, memoryID, constraint string) error {
	return e.withWriter(ctx, func(ctx context.Context) error {
		_, err := e.pool.Exec(ctx, `INSERT INTO constraint_links (memory_id, constraint_name) VALUES ($1,$2) ON CONFLICT DO NOTHING`, memoryID, constraint)
		return wrapStorageErr("add_constraint_link", err)
	})
}

func (e *Engine) AddFileLink(ctx context.Context, memoryID string, link core.FileLink) error {
	return e.withWriter(ctx, func(ctx context.Context) error {
		_, err := e.pool.Exec(ctx, `INSERT INTO file_links (memory_id, path, line_start, line_end, content_hash) VALUES ($1,$2,$3,$4,$5) ON CONFLICT DO NOTHING`,
			memoryID, link.Path, link.LineStart, link.LineEnd, link.ContentHash)
		return wrapStorageErr("add_file_link", err)
	})
}

func (e *Engine) AddFunctionLink(ctx context.Context, memoryID, function string) error {
	return e.withWriter(ctx, func(ctx context.Context) error {
		_, err := e.pool.Exec(ctx, `INSERT INTO function_links (memory_id, function_name) VALUES ($1,$2) ON CONFLICT DO NOTHING`, memoryID, function)
		return wrapStorageErr("add_function_link", err)
	})
}

func wrapStorageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &core.StorageError{Op: op, Reason: "exec", Err: err}
}
