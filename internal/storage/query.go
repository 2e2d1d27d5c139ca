package storage

import (
	"context"
	"fmt"
	"time"

	"cortex/internal/core"
)

// SearchFTS runs a full-text query against summary_tsv, grounded on the
// teacher's vector-search query shape generalized to Postgres tsvector.
func (e *Engine) SearchFTS(ctx context.Context, query string, limit int) ([]*core.Memory, error) {
	rows, err := e.pool.Query(ctx,
		memorySelectColumns+` WHERE summary_tsv @@ plainto_tsquery('english', $1)
		 ORDER BY ts_rank(summary_tsv, plainto_tsquery('english', $1)) DESC LIMIT $2`,
		query, limit)
	if err != nil {
		return nil, &core.StorageError{Op: "search_fts5", Reason: "query", Err: err}
	}
	defer rows.Close()
	return scanMemoryRows(rows)
}

// SearchVector finds the nearest memories to embedding by cosine
// distance. If an external VectorIndex is wired, it is used instead of
// the in-database pgvector column.
func (e *Engine) SearchVector(ctx context.Context, embedding []float32, limit int) ([]*core.Memory, error) {
	if e.vectorIdx != nil {
		ids, err := e.vectorIdx.Search(ctx, embedding, limit)
		if err != nil {
			return nil, err
		}
		return e.GetBulk(ctx, ids)
	}
	rows, err := e.pool.Query(ctx,
		memorySelectColumns+` WHERE embedding IS NOT NULL ORDER BY embedding <-> $1 LIMIT $2`,
		vectorLiteral(embedding), limit)
	if err != nil {
		return nil, &core.StorageError{Op: "search_vector", Reason: "query", Err: err}
	}
	defer rows.Close()
	return scanMemoryRows(rows)
}

func vectorLiteral(v []float32) string {
	s := "["
	for i, f := range v {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%g", f)
	}
	return s + "]"
}

// ByType returns every memory of the given type.
func (e *Engine) ByType(ctx context.Context, t core.MemoryType) ([]*core.Memory, error) {
	rows, err := e.pool.Query(ctx, memorySelectColumns+` WHERE memory_type = $1`, t)
	if err != nil {
		return nil, &core.StorageError{Op: "by_type", Reason: "query", Err: err}
	}
	defer rows.Close()
	return scanMemoryRows(rows)
}

// ByImportance returns every memory at or above the given importance.
func (e *Engine) ByImportance(ctx context.Context, min core.Importance) ([]*core.Memory, error) {
	rows, err := e.pool.Query(ctx, memorySelectColumns+` WHERE importance >= $1`, min)
	if err != nil {
		return nil, &core.StorageError{Op: "by_importance", Reason: "query", Err: err}
	}
	defer rows.Close()
	return scanMemoryRows(rows)
}

// ByConfidenceRange returns every memory with confidence in [lo, hi].
func (e *Engine) ByConfidenceRange(ctx context.Context, lo, hi float64) ([]*core.Memory, error) {
	rows, err := e.pool.Query(ctx, memorySelectColumns+` WHERE confidence BETWEEN $1 AND $2`, lo, hi)
	if err != nil {
		return nil, &core.StorageError{Op: "by_confidence_range", Reason: "query", Err: err}
	}
	defer rows.Close()
	return scanMemoryRows(rows)
}

// ByDateRange returns every memory whose valid_time falls in [from, to].
func (e *Engine) ByDateRange(ctx context.Context, from, to time.Time) ([]*core.Memory, error) {
	rows, err := e.pool.Query(ctx, memorySelectColumns+` WHERE valid_time BETWEEN $1 AND $2`, from, to)
	if err != nil {
		return nil, &core.StorageError{Op: "by_date_range", Reason: "query", Err: err}
	}
	defer rows.Close()
	return scanMemoryRows(rows)
}

// ByTags returns every memory that carries every tag in tags.
func (e *Engine) ByTags(ctx context.Context, tags []string) ([]*core.Memory, error) {
	rows, err := e.pool.Query(ctx, memorySelectColumns+` WHERE tags @> $1`, tags)
	if err != nil {
		return nil, &core.StorageError{Op: "by_tags", Reason: "query", Err: err}
	}
	defer rows.Close()
	return scanMemoryRows(rows)
}

// CountByType returns the number of memories per MemoryType.
func (e *Engine) CountByType(ctx context.Context) (map[core.MemoryType]int64, error) {
	rows, err := e.pool.Query(ctx, `SELECT memory_type, count(*) FROM memories GROUP BY memory_type`)
	if err != nil {
		return nil, &core.StorageError{Op: "count_by_type", Reason: "query", Err: err}
	}
	defer rows.Close()
	out := make(map[core.MemoryType]int64)
	for rows.Next() {
		var t core.MemoryType
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, &core.StorageError{Op: "count_by_type", Reason: "scan", Err: err}
		}
		out[t] = n
	}
	return out, rows.Err()
}

// AverageConfidence returns the mean confidence across all non-archived
// memories.
func (e *Engine) AverageConfidence(ctx context.Context) (float64, error) {
	var avg *float64
	err := e.pool.QueryRow(ctx, `SELECT avg(confidence) FROM memories WHERE NOT archived`).Scan(&avg)
	if err != nil {
		return 0, &core.StorageError{Op: "average_confidence", Reason: "query", Err: err}
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

// StaleCount returns the number of non-archived memories not accessed
// within thresholdDays.
func (e *Engine) StaleCount(ctx context.Context, thresholdDays int) (int64, error) {
	var n int64
	err := e.pool.QueryRow(ctx,
		`SELECT count(*) FROM memories WHERE NOT archived AND last_accessed < now() - ($1 || ' days')::interval`,
		thresholdDays).Scan(&n)
	if err != nil {
		return 0, &core.StorageError{Op: "stale_count", Reason: "query", Err: err}
	}
	return n, nil
}

// Vacuum physically removes archived rows past the retention horizon and
// runs a Postgres VACUUM. Unlike Delete, this is genuinely destructive.
func (e *Engine) Vacuum(ctx context.Context) error {
	return e.withWriter(ctx, func(ctx context.Context) error {
		if _, err := e.pool.Exec(ctx, `DELETE FROM memories WHERE archived AND transaction_time < now() - interval '365 days'`); err != nil {
			return &core.StorageError{Op: "vacuum", Reason: "delete archived", Err: err}
		}
		if _, err := e.pool.Exec(ctx, `VACUUM`); err != nil {
			return &core.StorageError{Op: "vacuum", Reason: "vacuum", Err: err}
		}
		return nil
	})
}
